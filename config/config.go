// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the settings of the neurotut command, loaded from a
// TOML or YAML file on top of the defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/CompCogNeuro/neurotut/pop"
	"github.com/CompCogNeuro/neurotut/sim"
	"github.com/CompCogNeuro/neurotut/synpair"
	"gopkg.in/yaml.v3"
)

// ErrFormat is returned for config files that are neither TOML nor YAML.
var ErrFormat = errors.New("config: unsupported file extension")

// LogConfig configures logging.
type LogConfig struct {
	// Level is "info" (default) or "debug"
	Level string `toml:"level" yaml:"level"`
}

// CellConfig is the single stimulated cell run.
type CellConfig struct {

	// simulation duration in ms
	TStop float64 `toml:"tstop" yaml:"tstop" def:"30"`

	// onset of the current pulse at the dendrite tip, in ms
	StimDelay float64 `toml:"stim_delay" yaml:"stim_delay" def:"10"`

	// number of dendrite compartments
	DendNseg int `toml:"dend_nseg" yaml:"dend_nseg" def:"9"`
}

// PopConfig is the two-population network run.
type PopConfig struct {

	// simulation duration in ms
	TStop float64 `toml:"tstop" yaml:"tstop" def:"1000"`

	// seed of the position source shared by both populations
	Seed uint64 `toml:"seed" yaml:"seed" def:"111"`

	// excitatory population
	Exc pop.Config `toml:"exc" yaml:"exc"`

	// inhibitory population
	Inh pop.Config `toml:"inh" yaml:"inh"`
}

// SynPairConfig is the three-cell synapse run.
type SynPairConfig struct {
	synpair.Config `yaml:",inline"`

	// extra param sheets applied after Base, in order
	Sheets []string `toml:"sheets" yaml:"sheets"`
}

// Config is the complete command configuration.
type Config struct {

	// directory figures and logs are written to
	Out string `toml:"out" yaml:"out" def:"out"`

	Log LogConfig `toml:"log" yaml:"log"`

	// integration settings shared by all runs
	Sim sim.Options `toml:"sim" yaml:"sim"`

	Cell CellConfig `toml:"cell" yaml:"cell"`

	SynPair SynPairConfig `toml:"synpair" yaml:"synpair"`

	Pop PopConfig `toml:"pop" yaml:"pop"`
}

func (cfg *Config) Defaults() {
	cfg.Out = "out"
	cfg.Log.Level = "info"
	cfg.Sim.Defaults()
	cfg.Cell = CellConfig{TStop: 30, StimDelay: 10, DendNseg: 9}
	cfg.SynPair.Config.Defaults()
	cfg.SynPair.Sheets = nil
	cfg.Pop.TStop = 1000
	cfg.Pop.Seed = pop.DefaultSeed
	cfg.Pop.Exc.Defaults()
	cfg.Pop.Exc.Name = "exc"
	cfg.Pop.Exc.NumCells = 100
	cfg.Pop.Exc.YNormRange = [2]float64{0.2, 1}
	cfg.Pop.Inh.Defaults()
	cfg.Pop.Inh.Name = "inh"
	cfg.Pop.Inh.NumCells = 40
	cfg.Pop.Inh.YNormRange = [2]float64{0, 0.33}
}

// NewConfig returns a Config with defaults.
func NewConfig() *Config {
	cfg := &Config{}
	cfg.Defaults()
	return cfg
}

func (cfg *Config) Validate() error {
	if err := cfg.Sim.Validate(); err != nil {
		return err
	}
	if cfg.Cell.TStop <= 0 || cfg.Cell.StimDelay < 0 || cfg.Cell.DendNseg < 1 {
		return fmt.Errorf("config: cell: tstop=%g stim_delay=%g dend_nseg=%d out of range",
			cfg.Cell.TStop, cfg.Cell.StimDelay, cfg.Cell.DendNseg)
	}
	if err := cfg.SynPair.Validate(); err != nil {
		return err
	}
	if cfg.Pop.TStop <= 0 {
		return fmt.Errorf("config: pop: tstop=%g must be > 0", cfg.Pop.TStop)
	}
	if err := cfg.Pop.Exc.Validate(); err != nil {
		return err
	}
	return cfg.Pop.Inh.Validate()
}

// Open reads the file at path over the defaults. The format follows the
// extension: .toml, or .yaml / .yml. Unknown keys are an error.
func Open(path string) (*Config, error) {
	cfg := NewConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = decodeTOML(b, cfg)
	case ".yaml", ".yml":
		err = decodeYAML(b, cfg)
	default:
		err = fmt.Errorf("%q: %w", ext, ErrFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func decodeTOML(b []byte, cfg *Config) error {
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return err
	}
	if und := md.Undecoded(); len(und) > 0 {
		return fmt.Errorf("unknown keys %v", und)
	}
	return nil
}

func decodeYAML(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	err := dec.Decode(cfg)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
