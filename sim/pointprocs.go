// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"fmt"
	"math"
)

// IClamp injects a square current pulse at a location.
type IClamp struct {

	// Loc is where the current is injected
	Loc Location

	// Delay is the onset time in ms
	Delay float64

	// Dur is the pulse duration in ms
	Dur float64

	// Amp is the injected current in nA, positive depolarizing
	Amp float64
}

// ActiveAt reports whether the pulse is on at time t.
func (ic *IClamp) ActiveAt(t float64) bool {
	return t >= ic.Delay && t < ic.Delay+ic.Dur
}

// I returns the injected current at time t.
func (ic *IClamp) I(t float64) float64 {
	if ic.ActiveAt(t) {
		return ic.Amp
	}
	return 0
}

func (ic *IClamp) Validate() error {
	if ic.Delay < 0 || ic.Dur < 0 {
		return fmt.Errorf("sim: IClamp at %v: delay=%g dur=%g must be >= 0", ic.Loc, ic.Delay, ic.Dur)
	}
	return nil
}

// ExpSyn is a synaptic conductance that jumps by the connection weight
// on each delivered event and decays exponentially with time constant Tau.
// The synaptic current is G * (v - E).
type ExpSyn struct {

	// Loc is the postsynaptic location
	Loc Location

	// Tau is the decay time constant in ms
	Tau float64 `def:"0.1"`

	// E is the reversal potential in mV
	E float64 `def:"0"`

	// G is the current conductance in uS
	G float64 `inactive:"+"`

	// decay is exp(-dt / Tau), set on Init
	decay float64
}

// I returns the synaptic current in nA at potential v.
func (es *ExpSyn) I(v float64) float64 {
	return es.G * (v - es.E)
}

func (es *ExpSyn) Validate() error {
	if es.Tau <= 0 {
		return fmt.Errorf("sim: ExpSyn at %v: tau=%g must be > 0", es.Loc, es.Tau)
	}
	return nil
}

func (es *ExpSyn) init(dt float64) {
	es.G = 0
	es.decay = math.Exp(-dt / es.Tau)
}

func (es *ExpSyn) receive(weight float64) {
	es.G += weight
}
