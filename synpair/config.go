// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synpair

import (
	"fmt"

	"github.com/CompCogNeuro/neurotut/hhcell"
	"github.com/goki/ki/kit"
)

// Mode selects which presynaptic cells drive the postsynaptic cell
type Mode int32

//go:generate stringer -type=Mode

var KiT_Mode = kit.Enums.AddEnum(ModeN, kit.NotBitFlag, nil)

func (ev Mode) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Mode) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// MarshalText and UnmarshalText let config files name the mode.
func (ev Mode) MarshalText() ([]byte, error) { return []byte(ev.String()), nil }
func (ev *Mode) UnmarshalText(b []byte) error { return ev.FromString(string(b)) }

const (
	// Excite connects only pre1, through the excitatory synapse
	Excite Mode = iota

	// Inhibit connects only pre2, through the inhibitory synapse
	Inhibit

	// Both connects pre1 excitatory and pre2 inhibitory
	Both

	// TwoExcite connects pre1 and pre2 each through its own excitatory synapse
	TwoExcite

	ModeN
)

// SynConfig is one synapse on the postsynaptic dendrite and the connection
// that drives it.
type SynConfig struct {

	// reversal potential in mV
	E float64 `toml:"e" yaml:"e"`

	// decay time constant in ms
	Tau float64 `toml:"tau" yaml:"tau" def:"2"`

	// connection weight in uS
	Weight float64 `toml:"weight" yaml:"weight"`

	// connection delay in ms
	Delay float64 `toml:"delay" yaml:"delay" def:"1"`
}

func (sc *SynConfig) Validate() error {
	if sc.Tau <= 0 {
		return fmt.Errorf("tau=%g must be > 0", sc.Tau)
	}
	if sc.Delay < 0 {
		return fmt.Errorf("delay=%g must be >= 0", sc.Delay)
	}
	return nil
}

// Config has the parameters of the three-cell scenario
type Config struct {

	// simulation duration in ms
	TStop float64 `toml:"tstop" yaml:"tstop" def:"30"`

	// onset of the current pulse into both presynaptic cells, in ms
	StimDelay float64 `toml:"stim_delay" yaml:"stim_delay" def:"10"`

	// which presynaptic cells are connected, and how
	Mode Mode `toml:"mode" yaml:"mode" def:"Both"`

	// excitatory synapse
	Exc SynConfig `toml:"exc" yaml:"exc"`

	// inhibitory synapse
	Inh SynConfig `toml:"inh" yaml:"inh"`

	// cell parameters shared by all three cells
	Cell hhcell.Params `toml:"-" yaml:"-"`
}

func (cfg *Config) Defaults() {
	cfg.TStop = 30
	cfg.StimDelay = 10
	cfg.Mode = Both
	cfg.Exc = SynConfig{E: 0, Tau: 2, Weight: 0.005, Delay: 1}
	cfg.Inh = SynConfig{E: -80, Tau: 2, Weight: 0.01, Delay: 1}
	cfg.Cell.Defaults()
}

// NewConfig returns a Config with defaults.
func NewConfig() *Config {
	cfg := &Config{}
	cfg.Defaults()
	return cfg
}

func (cfg *Config) Validate() error {
	if cfg.TStop <= 0 {
		return fmt.Errorf("synpair: tstop=%g must be > 0", cfg.TStop)
	}
	if cfg.StimDelay < 0 {
		return fmt.Errorf("synpair: stim delay=%g must be >= 0", cfg.StimDelay)
	}
	if cfg.Mode < 0 || cfg.Mode >= ModeN {
		return fmt.Errorf("synpair: invalid mode %v", cfg.Mode)
	}
	if err := cfg.Exc.Validate(); err != nil {
		return fmt.Errorf("synpair: exc: %w", err)
	}
	if err := cfg.Inh.Validate(); err != nil {
		return fmt.Errorf("synpair: inh: %w", err)
	}
	return cfg.Cell.Validate()
}
