// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/goki/ki/kit"
)

// ErrBadMechanism is returned by Validate for unusable channel parameters.
var ErrBadMechanism = errors.New("sim: invalid mechanism parameters")

// MechType enumerates the membrane mechanisms a section can carry.
type MechType int32

//go:generate stringer -type=MechType

var KiT_MechType = kit.Enums.AddEnum(MechTypeN, kit.NotBitFlag, nil)

func (ev MechType) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *MechType) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// NoMech is a bare membrane capacitance with no ionic current
	NoMech MechType = iota

	// HH is the Hodgkin-Huxley squid axon sodium, potassium and leak set
	HH

	// Pas is a constant passive leak conductance
	Pas

	MechTypeN
)

// Mechanism is a set of membrane conductances inserted into a section.
// The conductances are linear in voltage for fixed gate states, so each
// mechanism reports the total conductance and the conductance-weighted
// reversal potential for a compartment.
type Mechanism interface {
	// Type returns which kind of mechanism this is
	Type() MechType

	// Validate checks the parameters
	Validate() error

	// Init sets gate states to steady state at v
	Init(st *gates, v float64)

	// Cond returns the specific conductance (S/cm^2) and the sum of
	// conductance times reversal potential (S/cm^2 * mV) for gate state st
	Cond(st *gates) (g, ge float64)

	// Step integrates gate states over dt ms at potential v
	Step(st *gates, v, dt, q10 float64)
}

// gates holds per-compartment gating state.
type gates struct {
	M, H, N float64
}

// HHParams are the Hodgkin-Huxley channel densities and reversal
// potentials, following the classic squid axon model at 6.3 C.
type HHParams struct {

	// GnaBar is the maximal sodium conductance in S/cm^2
	GnaBar float64 `def:"0.12"`

	// GkBar is the maximal potassium conductance in S/cm^2
	GkBar float64 `def:"0.036"`

	// Gl is the leak conductance in S/cm^2
	Gl float64 `def:"0.0003"`

	// El is the leak reversal potential in mV
	El float64 `def:"-54.3"`

	// ENa is the sodium reversal potential in mV
	ENa float64 `def:"50"`

	// EK is the potassium reversal potential in mV
	EK float64 `def:"-77"`
}

func (hh *HHParams) Defaults() {
	hh.GnaBar = 0.12
	hh.GkBar = 0.036
	hh.Gl = 0.0003
	hh.El = -54.3
	hh.ENa = 50
	hh.EK = -77
}

func (hh *HHParams) Type() MechType { return HH }

func (hh *HHParams) Validate() error {
	if hh.GnaBar < 0 || hh.GkBar < 0 || hh.Gl < 0 {
		return fmt.Errorf("hh: gnabar=%g gkbar=%g gl=%g: %w", hh.GnaBar, hh.GkBar, hh.Gl, ErrBadMechanism)
	}
	return nil
}

func (hh *HHParams) Init(st *gates, v float64) {
	am, bm, ah, bh, an, bn := HHRates(v)
	st.M = am / (am + bm)
	st.H = ah / (ah + bh)
	st.N = an / (an + bn)
}

func (hh *HHParams) Cond(st *gates) (g, ge float64) {
	gna := hh.GnaBar * st.M * st.M * st.M * st.H
	n2 := st.N * st.N
	gk := hh.GkBar * n2 * n2
	g = gna + gk + hh.Gl
	ge = gna*hh.ENa + gk*hh.EK + hh.Gl*hh.El
	return
}

// Step uses the exponential Euler update, exact for fixed v.
func (hh *HHParams) Step(st *gates, v, dt, q10 float64) {
	am, bm, ah, bh, an, bn := HHRates(v)
	st.M = expEuler(st.M, am*q10, bm*q10, dt)
	st.H = expEuler(st.H, ah*q10, bh*q10, dt)
	st.N = expEuler(st.N, an*q10, bn*q10, dt)
}

func expEuler(x, alpha, beta, dt float64) float64 {
	sum := alpha + beta
	inf := alpha / sum
	return x + (1-math.Exp(-dt*sum))*(inf-x)
}

// HHRates returns the forward and backward rate constants (1/ms) of the
// m, h and n gates at membrane potential v (mV).
func HHRates(v float64) (am, bm, ah, bh, an, bn float64) {
	am = 0.1 * vtrap(-(v + 40), 10)
	bm = 4 * math.Exp(-(v+65)/18)
	ah = 0.07 * math.Exp(-(v+65)/20)
	bh = 1 / (math.Exp(-(v+35)/10) + 1)
	an = 0.01 * vtrap(-(v + 55), 10)
	bn = 0.125 * math.Exp(-(v+65)/80)
	return
}

// vtrap computes x / (exp(x/y) - 1), using the Taylor limit near x = 0.
func vtrap(x, y float64) float64 {
	if math.Abs(x/y) < 1e-6 {
		return y * (1 - x/y/2)
	}
	return x / (math.Exp(x/y) - 1)
}

// PasParams is a constant leak conductance.
type PasParams struct {

	// G is the leak conductance in S/cm^2
	G float64 `def:"0.001"`

	// E is the leak reversal potential in mV
	E float64 `def:"-70"`
}

func (ps *PasParams) Defaults() {
	ps.G = 0.001
	ps.E = -70
}

func (ps *PasParams) Type() MechType { return Pas }

func (ps *PasParams) Validate() error {
	if ps.G < 0 {
		return fmt.Errorf("pas: g=%g: %w", ps.G, ErrBadMechanism)
	}
	return nil
}

func (ps *PasParams) Init(st *gates, v float64) {}

func (ps *PasParams) Cond(st *gates) (g, ge float64) {
	return ps.G, ps.G * ps.E
}

func (ps *PasParams) Step(st *gates, v, dt, q10 float64) {}

// MechTypeOf returns the type of m, or NoMech for nil.
func MechTypeOf(m Mechanism) MechType {
	if m == nil {
		return NoMech
	}
	return m.Type()
}
