// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrAlreadyConnected is returned when a section that already has a
	// parent is connected again. Sections are never re-parented.
	ErrAlreadyConnected = errors.New("sim: section already connected")

	// ErrBadGeometry is returned by Validate for non-positive geometry.
	ErrBadGeometry = errors.New("sim: invalid section geometry")
)

// Section is an unbranched cylinder of membrane with uniform properties,
// split into Nseg compartments of equal length.
type Section struct {

	// Name identifies the section in logs and errors
	Name string

	// L is the length in microns
	L float64

	// Diam is the diameter in microns
	Diam float64

	// Nseg is the number of compartments the section is discretized into
	Nseg int

	// Ra is the axial resistivity in Ohm * cm
	Ra float64

	// Cm is the specific membrane capacitance in uF / cm^2
	Cm float64

	// Mech is the membrane mechanism; nil means a bare capacitor
	Mech Mechanism

	ctx      *Context
	parent   *Section
	parentX  float64
	childX   float64
	children []*Section

	// nodes are rebuilt on every Init
	nodes []*node
}

// Defaults sets the NEURON-style defaults for a freshly allocated section.
func (sc *Section) Defaults() {
	sc.L = 100
	sc.Diam = 500
	sc.Nseg = 1
	sc.Ra = 35.4
	sc.Cm = 1
}

// Validate checks that geometry and passive cable properties are usable.
func (sc *Section) Validate() error {
	switch {
	case sc.L <= 0, sc.Diam <= 0, sc.Nseg < 1:
		return fmt.Errorf("%s: L=%g diam=%g nseg=%d: %w", sc.Name, sc.L, sc.Diam, sc.Nseg, ErrBadGeometry)
	case sc.Ra <= 0, sc.Cm <= 0:
		return fmt.Errorf("%s: Ra=%g cm=%g: %w", sc.Name, sc.Ra, sc.Cm, ErrBadGeometry)
	}
	if sc.Mech != nil {
		if err := sc.Mech.Validate(); err != nil {
			return fmt.Errorf("%s: %w", sc.Name, err)
		}
	}
	return nil
}

// Insert installs the given mechanism, replacing any previous one:
// a section carries exactly one mechanism kind.
func (sc *Section) Insert(m Mechanism) {
	sc.Mech = m
}

// HH returns the Hodgkin-Huxley parameters if that is the inserted mechanism.
func (sc *Section) HH() (*HHParams, bool) {
	hh, ok := sc.Mech.(*HHParams)
	return hh, ok
}

// Pas returns the passive parameters if that is the inserted mechanism.
func (sc *Section) Pas() (*PasParams, bool) {
	ps, ok := sc.Mech.(*PasParams)
	return ps, ok
}

// Connect attaches the childX end (0 or 1) of this section to position
// parentX of the parent. A section can be connected only once.
func (sc *Section) Connect(parent *Section, parentX, childX float64) error {
	if sc.ctx.closed {
		return ErrClosed
	}
	if sc.parent != nil {
		return fmt.Errorf("%s -> %s: %w", sc.Name, parent.Name, ErrAlreadyConnected)
	}
	if parent == sc {
		return fmt.Errorf("sim: cannot connect %s to itself", sc.Name)
	}
	if parent.ctx != sc.ctx {
		return fmt.Errorf("sim: %s and %s belong to different contexts", sc.Name, parent.Name)
	}
	if childX != 0 && childX != 1 {
		return fmt.Errorf("sim: %s: child end must be 0 or 1, got %g", sc.Name, childX)
	}
	if parentX < 0 || parentX > 1 {
		return fmt.Errorf("sim: %s: parent position %g outside [0, 1]", parent.Name, parentX)
	}
	for anc := parent; anc != nil; anc = anc.parent {
		if anc == sc {
			return fmt.Errorf("sim: connecting %s to %s would form a loop", sc.Name, parent.Name)
		}
	}
	sc.parent = parent
	sc.parentX = parentX
	sc.childX = childX
	parent.children = append(parent.children, sc)
	sc.ctx.changed()
	return nil
}

// Parent returns the section this one is attached to, if any.
func (sc *Section) Parent() *Section { return sc.parent }

// ParentX returns the position on the parent where this section attaches.
func (sc *Section) ParentX() float64 { return sc.parentX }

// ChildX returns which end (0 or 1) of this section is attached.
func (sc *Section) ChildX() float64 { return sc.childX }

// Children returns the sections attached to this one, in connection order.
func (sc *Section) Children() []*Section { return sc.children }

// At returns the location at fractional position x along the section.
func (sc *Section) At(x float64) Location {
	return Location{Sec: sc, X: x}
}

// SegIndex returns the compartment index that contains position x.
func (sc *Section) SegIndex(x float64) int {
	idx := int(math.Floor(x * float64(sc.Nseg)))
	if idx < 0 {
		return 0
	}
	if idx >= sc.Nseg {
		return sc.Nseg - 1
	}
	return idx
}

// SegArea returns the lateral membrane area of one compartment in um^2.
func (sc *Section) SegArea() float64 {
	return math.Pi * sc.Diam * sc.L / float64(sc.Nseg)
}

// halfRi is the axial resistance in megohms over half a compartment.
func (sc *Section) halfRi() float64 {
	dx := sc.L / float64(sc.Nseg)
	return sc.Ra * (dx / 2) / (math.Pi * sc.Diam * sc.Diam / 4) * 0.01
}

// Location is a fractional position along a section, like soma(0.5).
type Location struct {
	Sec *Section
	X   float64
}

func (lc Location) String() string {
	if lc.Sec == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%g)", lc.Sec.Name, lc.X)
}

// V returns the membrane potential at the location, or the context's
// initial potential before the first Init.
func (lc Location) V() float64 {
	if nd := lc.node(); nd != nil {
		return nd.v
	}
	return lc.Sec.ctx.Opts.VInit
}

func (lc Location) node() *node {
	if lc.Sec == nil || len(lc.Sec.nodes) == 0 {
		return nil
	}
	return lc.Sec.nodes[lc.Sec.SegIndex(lc.X)]
}
