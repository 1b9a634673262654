// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// difTol is the tolerance for values that should be numerically identical
const difTol = 1.0e-9

// newSoma makes a single-compartment HH soma, as in the tutorial cell.
func newSoma(t *testing.T, ctx *Context, name string) *Section {
	sc, err := ctx.NewSection(name)
	require.NoError(t, err)
	sc.L, sc.Diam, sc.Nseg = 12.6157, 12.6157, 1
	sc.Ra, sc.Cm = 100, 1
	hh := &HHParams{}
	hh.Defaults()
	sc.Insert(hh)
	return sc
}

func newDend(t *testing.T, ctx *Context, name string, nseg int) *Section {
	sc, err := ctx.NewSection(name)
	require.NoError(t, err)
	sc.L, sc.Diam, sc.Nseg = 200, 1, nseg
	sc.Ra, sc.Cm = 100, 1
	sc.Insert(&PasParams{G: 0.001, E: -65})
	return sc
}

func TestInitSteadyState(t *testing.T) {
	ctx := NewContext(nil)
	soma := newSoma(t, ctx, "soma")
	require.NoError(t, ctx.Init())

	st := soma.nodes[0].st
	assert.InDelta(t, 0.0529325, st.M, 1e-6)
	assert.InDelta(t, 0.5961208, st.H, 1e-6)
	assert.InDelta(t, 0.3176769, st.N, 1e-6)
	assert.Equal(t, -65.0, soma.At(0.5).V())
	assert.Equal(t, 0.0, ctx.T)
}

func TestRestIsStable(t *testing.T) {
	ctx := NewContext(nil)
	soma := newSoma(t, ctx, "soma")
	dend := newDend(t, ctx, "dend", 9)
	require.NoError(t, dend.Connect(soma, 1, 0))
	vs, err := ctx.RecordV(soma.At(0.5))
	require.NoError(t, err)
	require.NoError(t, ctx.Run(20))

	assert.InDelta(t, -65, vs.Max(), 0.5)
	assert.InDelta(t, -65, vs.Min(), 0.5)
}

func TestPassiveRelaxation(t *testing.T) {
	ctx := NewContext(nil)
	sc, err := ctx.NewSection("cyl")
	require.NoError(t, err)
	sc.L, sc.Diam = 10, 10
	sc.Insert(&PasParams{G: 0.001, E: -70})
	v, err := ctx.RecordV(sc.At(0.5))
	require.NoError(t, err)
	require.NoError(t, ctx.Run(20))

	// tau = cm / g = 1 ms, so 20 ms is far past relaxation
	assert.InDelta(t, -70, v.Values[v.Len()-1], 1e-6)
	for i := 1; i < v.Len(); i++ {
		assert.LessOrEqual(t, v.Values[i], v.Values[i-1]+difTol)
	}
}

func TestRunSampleCount(t *testing.T) {
	ctx := NewContext(nil)
	soma := newSoma(t, ctx, "soma")
	tv, err := ctx.RecordT()
	require.NoError(t, err)
	vv, err := ctx.RecordV(soma.At(0.5))
	require.NoError(t, err)
	require.NoError(t, ctx.Run(30))

	assert.Equal(t, 1201, tv.Len())
	assert.Equal(t, 1201, vv.Len())
	assert.InDelta(t, 30, tv.Values[tv.Len()-1], difTol)
	assert.Equal(t, 1200, ctx.Steps)

	// a second run starts the recording over
	require.NoError(t, ctx.Run(10))
	assert.Equal(t, 401, tv.Len())
}

func TestIClampSpike(t *testing.T) {
	ctx := NewContext(nil)
	soma := newSoma(t, ctx, "soma")
	ic, err := ctx.NewIClamp(soma.At(0.5))
	require.NoError(t, err)
	ic.Delay, ic.Dur, ic.Amp = 5, 1, 0.3

	tv, _ := ctx.RecordT()
	vv, _ := ctx.RecordV(soma.At(0.5))
	var spikes []float64
	_, err = ctx.Subscribe(soma.At(0.5), func(ev SpikeEvent) {
		spikes = append(spikes, ev.Time)
	})
	require.NoError(t, err)
	require.NoError(t, ctx.Run(20))

	require.Len(t, spikes, 1)
	assert.Greater(t, spikes[0], 5.0)
	assert.Less(t, spikes[0], 10.0)
	assert.Equal(t, spikes, vv.Crossings(tv, 0))
	assert.Greater(t, vv.Max(), 20.0)
}

func TestIClampWindow(t *testing.T) {
	ic := &IClamp{Delay: 10, Dur: 1, Amp: 0.3}
	assert.False(t, ic.ActiveAt(9.99))
	assert.True(t, ic.ActiveAt(10))
	assert.True(t, ic.ActiveAt(10.99))
	assert.False(t, ic.ActiveAt(11))
	assert.Equal(t, 0.3, ic.I(10.5))
	assert.Equal(t, 0.0, ic.I(12))
}

func TestConnectOnce(t *testing.T) {
	ctx := NewContext(nil)
	soma := newSoma(t, ctx, "soma")
	dend := newDend(t, ctx, "dend", 9)
	require.NoError(t, dend.Connect(soma, 1, 0))
	assert.Same(t, soma, dend.Parent())
	assert.Equal(t, 1.0, dend.ParentX())
	assert.Equal(t, []*Section{dend}, soma.Children())

	err := dend.Connect(soma, 1, 0)
	assert.ErrorIs(t, err, ErrAlreadyConnected)
	assert.Len(t, soma.Children(), 1)

	assert.Error(t, soma.Connect(dend, 1, 0), "loops are rejected")
	assert.Error(t, soma.Connect(soma, 0.5, 0))
}

func TestConnectForeign(t *testing.T) {
	c1, c2 := NewContext(nil), NewContext(nil)
	a := newSoma(t, c1, "a")
	b := newSoma(t, c2, "b")
	assert.Error(t, b.Connect(a, 1, 0))
	_, err := c1.NewExpSyn(b.At(0.5))
	assert.ErrorIs(t, err, ErrForeign)
}

func TestAdvanceNeedsInit(t *testing.T) {
	ctx := NewContext(nil)
	newSoma(t, ctx, "soma")
	assert.ErrorIs(t, ctx.Advance(), ErrNotInit)
	require.NoError(t, ctx.Init())
	require.NoError(t, ctx.Advance())
	newSoma(t, ctx, "soma2")
	assert.ErrorIs(t, ctx.Advance(), ErrNotInit)
}

func TestClose(t *testing.T) {
	ctx := NewContext(nil)
	soma := newSoma(t, ctx, "soma")
	ctx.Close()
	assert.True(t, ctx.Closed())
	_, err := ctx.NewSection("x")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = ctx.NewIClamp(soma.At(0.5))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, ctx.Run(10), ErrClosed)
	assert.Empty(t, ctx.Sections())
}

func TestValidateGeometry(t *testing.T) {
	ctx := NewContext(nil)
	soma := newSoma(t, ctx, "soma")
	soma.Nseg = 0
	assert.ErrorIs(t, ctx.Init(), ErrBadGeometry)
	soma.Nseg = 1
	soma.Insert(&PasParams{G: -1})
	assert.ErrorIs(t, ctx.Init(), ErrBadMechanism)
}

// TestBranchedSymmetry checks the general solver: two identical dendrites
// on one soma must stay identical.
func TestBranchedSymmetry(t *testing.T) {
	ctx := NewContext(nil)
	soma := newSoma(t, ctx, "soma")
	d1 := newDend(t, ctx, "d1", 5)
	d2 := newDend(t, ctx, "d2", 5)
	require.NoError(t, d1.Connect(soma, 1, 0))
	require.NoError(t, d2.Connect(soma, 1, 0))
	ic, _ := ctx.NewIClamp(soma.At(0.5))
	ic.Delay, ic.Dur, ic.Amp = 1, 1, 0.5
	v1, _ := ctx.RecordV(d1.At(0.9))
	v2, _ := ctx.RecordV(d2.At(0.9))
	require.NoError(t, ctx.Run(15))

	require.Len(t, ctx.trees, 1)
	assert.False(t, ctx.trees[0].chain)
	for i := range v1.Values {
		assert.InDelta(t, v1.Values[i], v2.Values[i], difTol)
	}
	assert.Greater(t, v1.Max(), -60.0)
}

// TestChainMatchesDense solves the same unbranched cell with the
// tridiagonal and the dense path.
func TestChainMatchesDense(t *testing.T) {
	build := func() (*Context, *Vector) {
		ctx := NewContext(nil)
		soma := newSoma(t, ctx, "soma")
		dend := newDend(t, ctx, "dend", 9)
		require.NoError(t, dend.Connect(soma, 1, 0))
		ic, _ := ctx.NewIClamp(dend.At(1))
		ic.Delay, ic.Dur, ic.Amp = 1, 1, 0.3
		v, _ := ctx.RecordV(soma.At(0.5))
		require.NoError(t, ctx.Init())
		return ctx, v
	}
	c1, v1 := build()
	c2, v2 := build()
	require.True(t, c2.trees[0].chain)
	n := len(c2.trees[0].nodes)
	c2.trees[0].chain = false
	c2.trees[0].dense = mat.NewDense(n, n, nil)
	require.NoError(t, c1.Continue(20))
	require.NoError(t, c2.Continue(20))
	for i := range v1.Values {
		assert.InDelta(t, v1.Values[i], v2.Values[i], 1e-7)
	}
	assert.Greater(t, v1.Max(), 0.0, "dendritic stimulus spikes the soma")
}

func TestTemperatureScaling(t *testing.T) {
	opts := &Options{}
	opts.Defaults()
	opts.Celsius = 16.3
	ctx := NewContext(opts)
	newSoma(t, ctx, "soma")
	require.NoError(t, ctx.Init())
	assert.InDelta(t, 3.0, ctx.q10, difTol)

	opts.Dt = 0
	assert.Error(t, NewContext(opts).Init())
}

func TestHHRatesSingularity(t *testing.T) {
	// am and an have removable singularities at -40 and -55 mV
	am, _, _, _, an, _ := HHRates(-40)
	assert.InDelta(t, 1.0, am, 1e-9)
	_, _, _, _, an, _ = HHRates(-55)
	assert.InDelta(t, 0.1, an, 1e-9)
	for _, v := range []float64{-100, -40.0000001, 0, 60} {
		am, bm, ah, bh, an, bn := HHRates(v)
		for _, r := range []float64{am, bm, ah, bh, an, bn} {
			assert.False(t, math.IsNaN(r))
			assert.Greater(t, r, 0.0)
		}
	}
}
