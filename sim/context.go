// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package sim is a small compartmental simulator for the tutorial models:
sections discretized into compartments, Hodgkin-Huxley and passive
membranes, current clamps, exponential synapses, and threshold-triggered
connections with delays.

All state lives in a Context: create one, build sections and point
processes in it, then Run it to a stop time. Units follow the NEURON
conventions: um, ms, mV, nA, uS, S/cm^2, uF/cm^2 and Ohm*cm.
*/
package sim

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrClosed is returned by every operation on a closed context.
	ErrClosed = errors.New("sim: context closed")

	// ErrNotInit is returned by Advance when the model changed since the last Init.
	ErrNotInit = errors.New("sim: context not initialized")

	// ErrForeign is returned when an object from another context is passed in.
	ErrForeign = errors.New("sim: object belongs to a different context")
)

// Options are the global integration settings of a Context.
type Options struct {

	// Dt is the fixed time step in ms
	Dt float64 `def:"0.025"`

	// VInit is the initial membrane potential in mV
	VInit float64 `def:"-65"`

	// Celsius is the temperature, which scales the HH rates by 3^((Celsius - 6.3) / 10)
	Celsius float64 `def:"6.3"`

	// Threshold is the default crossing potential for new connections and
	// subscriptions, in mV
	Threshold float64 `def:"0"`
}

func (op *Options) Defaults() {
	op.Dt = 0.025
	op.VInit = -65
	op.Celsius = 6.3
	op.Threshold = 0
}

func (op *Options) Validate() error {
	if op.Dt <= 0 || math.IsNaN(op.Dt) {
		return fmt.Errorf("sim: dt=%g must be > 0", op.Dt)
	}
	return nil
}

// Context owns all sections, point processes, connections and recordings
// of one simulation, and the simulation clock.
type Context struct {

	// Opts are the integration settings, read on every Init
	Opts Options

	// T is the current time in ms
	T float64

	// Steps is the number of steps taken since Init
	Steps int

	sections  []*Section
	stims     []*IClamp
	syns      []*ExpSyn
	netcons   []*NetCon
	subs      []*Subscription
	vectors   []*Vector
	initHooks []func()

	trees  []*tree
	queue  eventQueue
	seq    int
	q10    float64
	inited bool
	closed bool
}

// NewContext returns an empty context; nil opts means defaults.
func NewContext(opts *Options) *Context {
	ctx := &Context{}
	if opts != nil {
		ctx.Opts = *opts
	} else {
		ctx.Opts.Defaults()
	}
	return ctx
}

// Close releases everything the context owns. Any further use returns ErrClosed.
func (ctx *Context) Close() {
	for _, sc := range ctx.sections {
		sc.nodes = nil
		sc.children = nil
		sc.parent = nil
	}
	ctx.sections = nil
	ctx.stims = nil
	ctx.syns = nil
	ctx.netcons = nil
	ctx.subs = nil
	ctx.vectors = nil
	ctx.initHooks = nil
	ctx.trees = nil
	ctx.queue = nil
	ctx.inited = false
	ctx.closed = true
}

// Closed reports whether Close has been called.
func (ctx *Context) Closed() bool { return ctx.closed }

// changed marks the model as needing a new Init before Advance.
func (ctx *Context) changed() {
	ctx.inited = false
}

func (ctx *Context) owns(loc Location) error {
	if loc.Sec == nil {
		return fmt.Errorf("sim: nil section in location")
	}
	if loc.Sec.ctx != ctx {
		return fmt.Errorf("%v: %w", loc, ErrForeign)
	}
	if loc.X < 0 || loc.X > 1 {
		return fmt.Errorf("sim: %v: position outside [0, 1]", loc)
	}
	return nil
}

// NewSection allocates a section with default properties.
func (ctx *Context) NewSection(name string) (*Section, error) {
	if ctx.closed {
		return nil, ErrClosed
	}
	sc := &Section{Name: name, ctx: ctx}
	sc.Defaults()
	ctx.sections = append(ctx.sections, sc)
	ctx.changed()
	return sc, nil
}

// Sections returns all sections in creation order.
func (ctx *Context) Sections() []*Section { return ctx.sections }

// NewIClamp adds a current clamp at loc with zero amplitude.
func (ctx *Context) NewIClamp(loc Location) (*IClamp, error) {
	if ctx.closed {
		return nil, ErrClosed
	}
	if err := ctx.owns(loc); err != nil {
		return nil, err
	}
	ic := &IClamp{Loc: loc}
	ctx.stims = append(ctx.stims, ic)
	ctx.changed()
	return ic, nil
}

// RemoveIClamp detaches a current clamp; it is a no-op if ic is not present.
func (ctx *Context) RemoveIClamp(ic *IClamp) {
	for i, s := range ctx.stims {
		if s == ic {
			ctx.stims = append(ctx.stims[:i], ctx.stims[i+1:]...)
			ctx.changed()
			return
		}
	}
}

// NewExpSyn adds an exponential synapse at loc with tau 0.1 ms and E 0 mV.
func (ctx *Context) NewExpSyn(loc Location) (*ExpSyn, error) {
	if ctx.closed {
		return nil, ErrClosed
	}
	if err := ctx.owns(loc); err != nil {
		return nil, err
	}
	es := &ExpSyn{Loc: loc, Tau: 0.1}
	ctx.syns = append(ctx.syns, es)
	ctx.changed()
	return es, nil
}

func (ctx *Context) hasSyn(es *ExpSyn) bool {
	for _, s := range ctx.syns {
		if s == es {
			return true
		}
	}
	return false
}

// NewNetCon connects threshold crossings at src to target.
func (ctx *Context) NewNetCon(src Location, target *ExpSyn, delay, weight float64) (*NetCon, error) {
	if ctx.closed {
		return nil, ErrClosed
	}
	if err := ctx.owns(src); err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("sim: NetCon from %v: nil target, use Subscribe to only watch crossings", src)
	}
	if !ctx.hasSyn(target) {
		return nil, fmt.Errorf("sim: NetCon target at %v: %w", target.Loc, ErrForeign)
	}
	nc := &NetCon{Source: src, Target: target, Delay: delay, Weight: weight, Threshold: ctx.Opts.Threshold}
	if err := nc.Validate(); err != nil {
		return nil, err
	}
	ctx.netcons = append(ctx.netcons, nc)
	ctx.changed()
	return nc, nil
}

// NetCons returns all connections in creation order.
func (ctx *Context) NetCons() []*NetCon { return ctx.netcons }

// Subscribe calls fn for every upward crossing of Opts.Threshold at src.
// Subscriptions survive Init; Cancel removes them.
func (ctx *Context) Subscribe(src Location, fn func(ev SpikeEvent)) (*Subscription, error) {
	if ctx.closed {
		return nil, ErrClosed
	}
	if err := ctx.owns(src); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("sim: Subscribe at %v: nil callback", src)
	}
	sb := &Subscription{Fn: fn, ctx: ctx, det: detector{src: src, thr: ctx.Opts.Threshold}}
	sb.det.init()
	ctx.subs = append(ctx.subs, sb)
	return sb, nil
}

// RecordV records the membrane potential at loc.
func (ctx *Context) RecordV(loc Location) (*Vector, error) {
	if ctx.closed {
		return nil, ErrClosed
	}
	if err := ctx.owns(loc); err != nil {
		return nil, err
	}
	vc := &Vector{Name: loc.String() + ".v", probe: loc.V}
	ctx.vectors = append(ctx.vectors, vc)
	return vc, nil
}

// RecordT records the simulation time.
func (ctx *Context) RecordT() (*Vector, error) {
	if ctx.closed {
		return nil, ErrClosed
	}
	vc := &Vector{Name: "t", probe: func() float64 { return ctx.T }}
	ctx.vectors = append(ctx.vectors, vc)
	return vc, nil
}

// OnInit registers fn to be called at the end of every Init.
func (ctx *Context) OnInit(fn func()) {
	ctx.initHooks = append(ctx.initHooks, fn)
}

// Init validates the model, discretizes it, sets every compartment to
// Opts.VInit with gates at steady state, clears synaptic conductances and
// pending events, and starts all recordings afresh at t = 0.
func (ctx *Context) Init() error {
	if ctx.closed {
		return ErrClosed
	}
	if err := ctx.validate(); err != nil {
		return err
	}
	dt := ctx.Opts.Dt
	ctx.q10 = math.Pow(3, (ctx.Opts.Celsius-6.3)/10)
	ctx.trees = ctx.trees[:0]
	for _, sc := range ctx.sections {
		if sc.parent == nil {
			ctx.trees = append(ctx.trees, buildTree(sc))
		}
	}
	for _, tr := range ctx.trees {
		for _, nd := range tr.nodes {
			nd.v = ctx.Opts.VInit
			if nd.sec.Mech != nil {
				nd.sec.Mech.Init(&nd.st, nd.v)
			}
		}
	}
	for _, es := range ctx.syns {
		es.init(dt)
	}
	ctx.queue = ctx.queue[:0]
	ctx.seq = 0
	ctx.T = 0
	ctx.Steps = 0
	for _, nc := range ctx.netcons {
		nc.det = detector{src: nc.Source, thr: nc.Threshold}
		nc.det.init()
	}
	for _, sb := range ctx.subs {
		sb.det.init()
	}
	for _, vc := range ctx.vectors {
		vc.reset()
		vc.sample()
	}
	ctx.inited = true
	for _, fn := range ctx.initHooks {
		fn()
	}
	return nil
}

func (ctx *Context) validate() error {
	if err := ctx.Opts.Validate(); err != nil {
		return err
	}
	for _, sc := range ctx.sections {
		if err := sc.Validate(); err != nil {
			return err
		}
	}
	for _, ic := range ctx.stims {
		if err := ic.Validate(); err != nil {
			return err
		}
	}
	for _, es := range ctx.syns {
		if err := es.Validate(); err != nil {
			return err
		}
	}
	for _, nc := range ctx.netcons {
		if err := nc.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Advance takes one time step: deliver due events, solve the cable
// equations, update gates and synapses, detect crossings, and record.
func (ctx *Context) Advance() error {
	if ctx.closed {
		return ErrClosed
	}
	if !ctx.inited {
		return ErrNotInit
	}
	dt := ctx.Opts.Dt
	tmid := ctx.T + dt/2
	ctx.queue.deliverUntil(tmid)

	for _, tr := range ctx.trees {
		for _, nd := range tr.nodes {
			nd.gsrc = 0
			nd.isrc = 0
		}
	}
	for _, ic := range ctx.stims {
		ic.Loc.node().isrc += ic.I(tmid)
	}
	for _, es := range ctx.syns {
		nd := es.Loc.node()
		nd.gsrc += es.G
		nd.isrc += es.G * es.E
	}
	for _, tr := range ctx.trees {
		if err := tr.solve(dt); err != nil {
			return fmt.Errorf("t=%g: %w", ctx.T, err)
		}
		tr.stepGates(dt, ctx.q10)
	}
	for _, es := range ctx.syns {
		es.G *= es.decay
	}
	ctx.Steps++
	ctx.T = float64(ctx.Steps) * dt

	for _, nc := range ctx.netcons {
		if nc.det.check() {
			ctx.queue.schedule(event{t: ctx.T + nc.Delay, seq: ctx.seq, target: nc.Target, weight: nc.Weight})
			ctx.seq++
		}
	}
	for _, sb := range ctx.subs {
		if sb.det.check() {
			sb.Fn(SpikeEvent{Time: ctx.T, Source: sb.det.src})
		}
	}
	for _, vc := range ctx.vectors {
		vc.sample()
	}
	return nil
}

// Run initializes the context and advances it until T reaches tstop.
// It blocks until done and cannot be interrupted.
func (ctx *Context) Run(tstop float64) error {
	if err := ctx.Init(); err != nil {
		return err
	}
	return ctx.Continue(tstop)
}

// Continue advances from the current time until T reaches tstop, without Init.
func (ctx *Context) Continue(tstop float64) error {
	half := ctx.Opts.Dt / 2
	for ctx.T < tstop-half {
		if err := ctx.Advance(); err != nil {
			return err
		}
	}
	return nil
}
