// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package hhcell builds the two-compartment tutorial cell: a Hodgkin-Huxley
soma with a passive dendrite attached at its 1 end. Build steps follow the
usual order: create sections, connect them, set geometry, then insert the
membrane mechanisms. Synapses on the dendrite are indexed in creation order
and are the targets of Connect2Pre.
*/
package hhcell

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/CompCogNeuro/neurotut/plots"
	"github.com/CompCogNeuro/neurotut/sim"
	"gonum.org/v1/plot"
)

var (
	// ErrTopologyBuilt is returned by a second BuildTopology call.
	ErrTopologyBuilt = errors.New("hhcell: topology already built")

	// ErrSynapseIndex is wrapped by IndexError.
	ErrSynapseIndex = errors.New("hhcell: synapse index out of range")

	// ErrNoSections is returned by build steps run before CreateSections.
	ErrNoSections = errors.New("hhcell: sections not created")
)

// IndexError reports a synapse id that does not exist on the cell.
type IndexError struct {
	Cell  string
	Index int
	Len   int
}

func (ie *IndexError) Error() string {
	return fmt.Sprintf("hhcell: %s: synapse %d out of range [0, %d)", ie.Cell, ie.Index, ie.Len)
}

func (ie *IndexError) Unwrap() error { return ErrSynapseIndex }

// Cell is a soma plus dendrite, with its stimulus, synapses, incoming
// connections and recordings.
type Cell struct {

	// Name prefixes the section names; empty means plain soma and dend
	Name string

	// Params are the values the build steps apply; the sections keep
	// pointers to the mechanism params so later edits take effect on Init
	Params Params

	Soma *sim.Section
	Dend *sim.Section

	// Stim is the current clamp at dend(1), nil until AddCurrentStim
	Stim *sim.IClamp

	// Synapses are on the dendrite, in creation order
	Synapses []*sim.ExpSyn

	// Conns are the incoming connections, in creation order
	Conns []*sim.NetCon

	// recordings, nil until SetRecording
	T     *sim.Vector
	SomaV *sim.Vector
	DendV *sim.Vector

	// X, Y is the position on the network canvas
	X float64
	Y float64

	ctx  *sim.Context
	topo bool
}

// New builds a complete cell in ctx. nil pars means defaults.
func New(ctx *sim.Context, name string, pars *Params) (*Cell, error) {
	cl := &Cell{Name: name, ctx: ctx}
	if pars != nil {
		cl.Params = *pars
	} else {
		cl.Params.Defaults()
	}
	if err := cl.Params.Validate(); err != nil {
		return nil, fmt.Errorf("hhcell: %s: %w", name, err)
	}
	if err := cl.CreateSections(); err != nil {
		return nil, err
	}
	if err := cl.BuildTopology(); err != nil {
		return nil, err
	}
	cl.DefineGeometry()
	cl.DefineBiophysics()
	return cl, nil
}

func (cl *Cell) secName(sec string) string {
	if cl.Name == "" {
		return sec
	}
	return cl.Name + "." + sec
}

// Context returns the context the cell lives in.
func (cl *Cell) Context() *sim.Context { return cl.ctx }

// CreateSections allocates the soma and dend sections.
func (cl *Cell) CreateSections() error {
	var err error
	if cl.Soma, err = cl.ctx.NewSection(cl.secName("soma")); err != nil {
		return err
	}
	cl.Dend, err = cl.ctx.NewSection(cl.secName("dend"))
	return err
}

// BuildTopology attaches dend(0) to soma(1). It may only be called once.
func (cl *Cell) BuildTopology() error {
	if cl.Soma == nil || cl.Dend == nil {
		return ErrNoSections
	}
	if cl.topo {
		return fmt.Errorf("%s: %w", cl.Soma.Name, ErrTopologyBuilt)
	}
	if err := cl.Dend.Connect(cl.Soma, 1, 0); err != nil {
		return err
	}
	cl.topo = true
	return nil
}

// DefineGeometry sets the section dimensions from Params.Geom.
func (cl *Cell) DefineGeometry() {
	gp := &cl.Params.Geom
	cl.Soma.L, cl.Soma.Diam, cl.Soma.Nseg = gp.SomaL, gp.SomaDiam, gp.SomaNseg
	cl.Dend.L, cl.Dend.Diam, cl.Dend.Nseg = gp.DendL, gp.DendDiam, gp.DendNseg
}

// DefineBiophysics sets Ra and cm everywhere, HH channels on the soma and a
// passive leak on the dendrite.
func (cl *Cell) DefineBiophysics() {
	for _, sc := range []*sim.Section{cl.Soma, cl.Dend} {
		sc.Ra = cl.Params.Ra
		sc.Cm = cl.Params.Cm
	}
	cl.Soma.Insert(&cl.Params.Soma)
	cl.Dend.Insert(&cl.Params.Dend)
}

// AddCurrentStim puts a Params.Stim pulse at dend(1) starting at delay ms.
// Calling it again replaces the previous pulse.
func (cl *Cell) AddCurrentStim(delay float64) error {
	if delay < 0 {
		return fmt.Errorf("hhcell: %s: stim delay=%g must be >= 0", cl.Soma.Name, delay)
	}
	if cl.Stim != nil {
		cl.ctx.RemoveIClamp(cl.Stim)
		cl.Stim = nil
	}
	ic, err := cl.ctx.NewIClamp(cl.Dend.At(1))
	if err != nil {
		return err
	}
	ic.Delay = delay
	ic.Dur = cl.Params.Stim.Dur
	ic.Amp = cl.Params.Stim.Amp
	cl.Stim = ic
	return nil
}

// SetRecording records soma(0.5) and dend(0.5) potentials and time.
// New vectors are empty until the next run.
func (cl *Cell) SetRecording() error {
	var err error
	if cl.SomaV, err = cl.ctx.RecordV(cl.Soma.At(0.5)); err != nil {
		return err
	}
	if cl.DendV, err = cl.ctx.RecordV(cl.Dend.At(0.5)); err != nil {
		return err
	}
	cl.T, err = cl.ctx.RecordT()
	return err
}

// CreateSynapse adds an exponential synapse at dend(loc) and returns it;
// its index in Synapses is its creation order.
func (cl *Cell) CreateSynapse(loc, tau, e float64) (*sim.ExpSyn, error) {
	if tau <= 0 {
		return nil, fmt.Errorf("hhcell: %s: synapse tau=%g must be > 0", cl.Dend.Name, tau)
	}
	syn, err := cl.ctx.NewExpSyn(cl.Dend.At(loc))
	if err != nil {
		return nil, err
	}
	syn.Tau = tau
	syn.E = e
	cl.Synapses = append(cl.Synapses, syn)
	return syn, nil
}

// CreateDefaultSynapse adds a synapse with the Params.Syn values.
func (cl *Cell) CreateDefaultSynapse() (*sim.ExpSyn, error) {
	sp := &cl.Params.Syn
	return cl.CreateSynapse(sp.Loc, sp.Tau, sp.E)
}

// Connect2Pre connects threshold crossings at pre's soma(0.5) to synapse
// synID of this cell.
func (cl *Cell) Connect2Pre(pre *Cell, synID int, delay, weight float64) (*sim.NetCon, error) {
	if synID < 0 || synID >= len(cl.Synapses) {
		return nil, &IndexError{Cell: cl.Soma.Name, Index: synID, Len: len(cl.Synapses)}
	}
	nc, err := cl.ctx.NewNetCon(pre.Soma.At(0.5), cl.Synapses[synID], delay, weight)
	if err != nil {
		return nil, err
	}
	cl.Conns = append(cl.Conns, nc)
	return nc, nil
}

// Connect2PreDefault uses the Params.Syn delay and weight.
func (cl *Cell) Connect2PreDefault(pre *Cell, synID int) (*sim.NetCon, error) {
	return cl.Connect2Pre(pre, synID, cl.Params.Syn.Delay, cl.Params.Syn.Weight)
}

// SetPosition places the cell on the network canvas.
func (cl *Cell) SetPosition(x, y float64) {
	cl.X = x
	cl.Y = y
}

// SomaSpikes returns the times the recorded soma potential crossed thr
// upward in the last run.
func (cl *Cell) SomaSpikes(thr float64) []float64 {
	if cl.SomaV == nil || cl.T == nil {
		return nil
	}
	return cl.SomaV.Crossings(cl.T, thr)
}

func values(vc *sim.Vector) []float64 {
	if vc == nil {
		return nil
	}
	return vc.Values
}

// PlotVoltage plots the recorded soma (black) and dendrite (red) traces.
// Without recordings the plot is empty. A zero ylim autoscales.
func (cl *Cell) PlotVoltage(title string, ylim plots.Range) (*plot.Plot, error) {
	return plots.Voltage(title, values(cl.T), ylim,
		plots.Trace{Label: cl.Soma.At(0.5).String(), Color: color.Black, Y: values(cl.SomaV)},
		plots.Trace{Label: cl.Dend.At(0.5).String(), Color: color.RGBA{R: 255, A: 255}, Y: values(cl.DendV)},
	)
}
