// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hhcell

import (
	"fmt"

	"github.com/CompCogNeuro/neurotut/sim"
)

// GeomParams are the section dimensions of the cell
type GeomParams struct {

	// length of the soma in microns -- equal to diameter gives a sphere-like area
	SomaL float64 `def:"12.6157"`

	// diameter of the soma in microns
	SomaDiam float64 `def:"12.6157"`

	// number of soma compartments
	SomaNseg int `def:"1"`

	// length of the dendrite in microns
	DendL float64 `def:"200"`

	// diameter of the dendrite in microns
	DendDiam float64 `def:"1"`

	// number of dendrite compartments
	DendNseg int `def:"9"`
}

func (gp *GeomParams) Defaults() {
	gp.SomaL = 12.6157
	gp.SomaDiam = 12.6157
	gp.SomaNseg = 1
	gp.DendL = 200
	gp.DendDiam = 1
	gp.DendNseg = 9
}

func (gp *GeomParams) Validate() error {
	if gp.SomaL <= 0 || gp.SomaDiam <= 0 || gp.SomaNseg < 1 {
		return fmt.Errorf("soma L=%g diam=%g nseg=%d: %w", gp.SomaL, gp.SomaDiam, gp.SomaNseg, sim.ErrBadGeometry)
	}
	if gp.DendL <= 0 || gp.DendDiam <= 0 || gp.DendNseg < 1 {
		return fmt.Errorf("dend L=%g diam=%g nseg=%d: %w", gp.DendL, gp.DendDiam, gp.DendNseg, sim.ErrBadGeometry)
	}
	return nil
}

// StimParams are the current pulse delivered to the dendrite tip
type StimParams struct {

	// pulse amplitude in nA
	Amp float64 `def:"0.3"`

	// pulse duration in ms
	Dur float64 `def:"1"`
}

func (sp *StimParams) Defaults() {
	sp.Amp = 0.3
	sp.Dur = 1
}

// SynParams are the defaults for CreateSynapse and Connect2Pre
type SynParams struct {

	// fractional position along the dendrite
	Loc float64 `def:"0.5" min:"0" max:"1"`

	// decay time constant in ms
	Tau float64 `def:"2"`

	// reversal potential in mV
	E float64 `def:"0"`

	// connection delay in ms
	Delay float64 `def:"2"`

	// connection weight in uS
	Weight float64 `def:"1"`
}

func (sp *SynParams) Defaults() {
	sp.Loc = 0.5
	sp.Tau = 2
	sp.E = 0
	sp.Delay = 2
	sp.Weight = 1
}

// Params are all the parameters of the two-compartment cell
type Params struct {

	// section geometry
	Geom GeomParams `view:"inline"`

	// axial resistivity of both sections in Ohm * cm
	Ra float64 `def:"100"`

	// specific membrane capacitance of both sections in uF / cm^2
	Cm float64 `def:"1"`

	// Hodgkin-Huxley channels of the soma
	Soma sim.HHParams `view:"inline"`

	// passive leak of the dendrite
	Dend sim.PasParams `view:"inline"`

	// current stimulus
	Stim StimParams `view:"inline"`

	// synapse and connection defaults
	Syn SynParams `view:"inline"`
}

func (pr *Params) Defaults() {
	pr.Geom.Defaults()
	pr.Ra = 100
	pr.Cm = 1
	pr.Soma.Defaults()
	pr.Dend.G = 0.001
	pr.Dend.E = -65
	pr.Stim.Defaults()
	pr.Syn.Defaults()
}

func (pr *Params) Validate() error {
	if err := pr.Geom.Validate(); err != nil {
		return err
	}
	if pr.Ra <= 0 || pr.Cm <= 0 {
		return fmt.Errorf("Ra=%g cm=%g: %w", pr.Ra, pr.Cm, sim.ErrBadGeometry)
	}
	if err := pr.Soma.Validate(); err != nil {
		return err
	}
	if err := pr.Dend.Validate(); err != nil {
		return err
	}
	if pr.Syn.Tau <= 0 {
		return fmt.Errorf("synapse tau=%g must be > 0", pr.Syn.Tau)
	}
	if pr.Syn.Delay < 0 {
		return fmt.Errorf("connection delay=%g must be >= 0", pr.Syn.Delay)
	}
	return nil
}
