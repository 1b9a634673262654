// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package synpair wires two stimulated presynaptic cells onto one
postsynaptic cell through exponential synapses on its dendrite, and
checks whether the postsynaptic soma fires.
*/
package synpair

import (
	"fmt"
	"log/slog"

	"github.com/CompCogNeuro/neurotut/hhcell"
	"github.com/CompCogNeuro/neurotut/plots"
	"github.com/CompCogNeuro/neurotut/sim"
	"gonum.org/v1/plot"
)

// Net is the built scenario.
type Net struct {
	Config Config
	Ctx    *sim.Context

	Pre1 *hhcell.Cell
	Pre2 *hhcell.Cell
	Post *hhcell.Cell
}

// Build creates the three cells in ctx and connects them according to
// cfg.Mode. Both presynaptic cells get a current pulse at cfg.StimDelay
// and all three record their potentials. nil cfg means defaults.
func Build(ctx *sim.Context, cfg *Config) (*Net, error) {
	nt := &Net{Ctx: ctx}
	if cfg != nil {
		nt.Config = *cfg
	} else {
		nt.Config.Defaults()
	}
	if err := nt.Config.Validate(); err != nil {
		return nil, err
	}
	cp := &nt.Config.Cell

	var err error
	if nt.Post, err = hhcell.New(ctx, "post", cp); err != nil {
		return nil, err
	}
	if nt.Pre1, err = hhcell.New(ctx, "pre1", cp); err != nil {
		return nil, err
	}
	if nt.Pre2, err = hhcell.New(ctx, "pre2", cp); err != nil {
		return nil, err
	}
	for _, cl := range []*hhcell.Cell{nt.Post, nt.Pre1, nt.Pre2} {
		if err := cl.SetRecording(); err != nil {
			return nil, err
		}
	}
	for _, cl := range []*hhcell.Cell{nt.Pre1, nt.Pre2} {
		if err := cl.AddCurrentStim(nt.Config.StimDelay); err != nil {
			return nil, err
		}
	}

	switch nt.Config.Mode {
	case Excite:
		err = nt.connect(nt.Pre1, &nt.Config.Exc)
	case Inhibit:
		err = nt.connect(nt.Pre2, &nt.Config.Inh)
	case Both:
		if err = nt.connect(nt.Pre1, &nt.Config.Exc); err == nil {
			err = nt.connect(nt.Pre2, &nt.Config.Inh)
		}
	case TwoExcite:
		if err = nt.connect(nt.Pre1, &nt.Config.Exc); err == nil {
			err = nt.connect(nt.Pre2, &nt.Config.Exc)
		}
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("synpair built", "mode", nt.Config.Mode, "synapses", len(nt.Post.Synapses))
	return nt, nil
}

// connect adds a new synapse on the post dendrite and drives it from pre.
func (nt *Net) connect(pre *hhcell.Cell, sc *SynConfig) error {
	if _, err := nt.Post.CreateSynapse(nt.Config.Cell.Syn.Loc, sc.Tau, sc.E); err != nil {
		return err
	}
	id := len(nt.Post.Synapses) - 1
	if _, err := nt.Post.Connect2Pre(pre, id, sc.Delay, sc.Weight); err != nil {
		return fmt.Errorf("synpair: %s -> %s: %w", pre.Name, nt.Post.Name, err)
	}
	return nil
}

// Run runs the context from Init to Config.TStop.
func (nt *Net) Run() error {
	return nt.Ctx.Run(nt.Config.TStop)
}

// PostSpikes returns the upward threshold crossings of the post soma in
// the last run.
func (nt *Net) PostSpikes() []float64 {
	return nt.Post.SomaSpikes(nt.Ctx.Opts.Threshold)
}

// PostSpiked reports whether the post soma crossed threshold in the last run.
func (nt *Net) PostSpiked() bool {
	return len(nt.PostSpikes()) > 0
}

// PlotPost plots the post cell potentials on the usual [-80, 30] mV range.
func (nt *Net) PlotPost() (*plot.Plot, error) {
	return nt.Post.PlotVoltage("postCell voltage", plots.Range{Min: -80, Max: 30})
}
