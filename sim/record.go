// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Vector is an append-only recording of one probe, sampled after Init and
// after every Advance. Init discards the samples of the previous run.
type Vector struct {

	// Name describes what is recorded, e.g. "soma(0.5).v"
	Name string

	// Values are the samples in time order
	Values []float64

	probe func() float64
}

// Len returns the number of samples.
func (vc *Vector) Len() int { return len(vc.Values) }

// Max returns the largest sample, or -Inf when empty.
func (vc *Vector) Max() float64 {
	if len(vc.Values) == 0 {
		return math.Inf(-1)
	}
	return floats.Max(vc.Values)
}

// Min returns the smallest sample, or +Inf when empty.
func (vc *Vector) Min() float64 {
	if len(vc.Values) == 0 {
		return math.Inf(1)
	}
	return floats.Min(vc.Values)
}

// Crossings returns the times in t at which the samples cross thr upward.
// t must be the time vector recorded alongside.
func (vc *Vector) Crossings(t *Vector, thr float64) []float64 {
	var cross []float64
	n := min(len(vc.Values), len(t.Values))
	for i := 1; i < n; i++ {
		if vc.Values[i-1] < thr && vc.Values[i] >= thr {
			cross = append(cross, t.Values[i])
		}
	}
	return cross
}

func (vc *Vector) reset() {
	vc.Values = vc.Values[:0]
}

func (vc *Vector) sample() {
	vc.Values = append(vc.Values, vc.probe())
}
