// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"container/heap"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetConDelivery(t *testing.T) {
	ctx := NewContext(nil)
	pre := newSoma(t, ctx, "pre")
	ic, err := ctx.NewIClamp(pre.At(0.5))
	require.NoError(t, err)
	ic.Delay, ic.Dur, ic.Amp = 2, 1, 0.3

	post := newDend(t, ctx, "post", 1)
	syn, err := ctx.NewExpSyn(post.At(0.5))
	require.NoError(t, err)
	syn.Tau, syn.E = 2, 0

	nc, err := ctx.NewNetCon(pre.At(0.5), syn, 1, 0.01)
	require.NoError(t, err)
	assert.Equal(t, 0.0, nc.Threshold)

	var cross []float64
	_, err = ctx.Subscribe(pre.At(0.5), func(ev SpikeEvent) {
		cross = append(cross, ev.Time)
		assert.Equal(t, pre, ev.Source.Sec)
	})
	require.NoError(t, err)

	tv, _ := ctx.RecordT()
	pv, _ := ctx.RecordV(post.At(0.5))
	require.NoError(t, ctx.Run(15))
	require.Len(t, cross, 1)

	arrive := cross[0] + nc.Delay
	dt := ctx.Opts.Dt
	for i, tm := range tv.Values {
		switch {
		case tm <= arrive+dt/4:
			assert.InDelta(t, -65, pv.Values[i], difTol, "t=%g before arrival", tm)
		case tm >= arrive+dt*3/4 && tm < arrive+2:
			assert.Greater(t, pv.Values[i], -65+1e-6, "t=%g after arrival", tm)
		}
	}
	assert.Empty(t, ctx.queue)
}

func TestNetConValidate(t *testing.T) {
	ctx := NewContext(nil)
	pre := newSoma(t, ctx, "pre")
	post := newDend(t, ctx, "post", 1)
	syn, err := ctx.NewExpSyn(post.At(0.5))
	require.NoError(t, err)

	_, err = ctx.NewNetCon(pre.At(0.5), nil, 1, 1)
	assert.Error(t, err)
	_, err = ctx.NewNetCon(pre.At(0.5), syn, -1, 1)
	assert.Error(t, err)
	_, err = ctx.NewNetCon(pre.At(0.5), &ExpSyn{Loc: post.At(0.5), Tau: 2}, 1, 1)
	assert.ErrorIs(t, err, ErrForeign)

	syn.Tau = 0
	assert.Error(t, ctx.Init())
}

func TestSubscriptionCancel(t *testing.T) {
	ctx := NewContext(nil)
	pre := newSoma(t, ctx, "pre")
	ic, _ := ctx.NewIClamp(pre.At(0.5))
	ic.Delay, ic.Dur, ic.Amp = 1, 1, 0.3
	n := 0
	sb, err := ctx.Subscribe(pre.At(0.5), func(ev SpikeEvent) { n++ })
	require.NoError(t, err)
	require.NoError(t, ctx.Run(10))
	assert.Equal(t, 1, n)

	sb.Cancel()
	require.NoError(t, ctx.Run(10))
	assert.Equal(t, 1, n)
	assert.Empty(t, ctx.subs)
}

func TestSynapseDecay(t *testing.T) {
	ctx := NewContext(nil)
	post := newDend(t, ctx, "post", 1)
	syn, _ := ctx.NewExpSyn(post.At(0.5))
	syn.Tau = 2
	require.NoError(t, ctx.Init())
	syn.receive(0.01)
	for i := 0; i < 80; i++ {
		require.NoError(t, ctx.Advance())
	}
	// 80 steps of 0.025 ms = 2 ms = one time constant
	assert.InDelta(t, 0.01*math.Exp(-1), syn.G, 1e-12)
}

func TestEventQueueOrder(t *testing.T) {
	var eq eventQueue
	a, b := &ExpSyn{}, &ExpSyn{}
	eq.schedule(event{t: 3, seq: 0, target: a, weight: 1})
	eq.schedule(event{t: 1, seq: 1, target: b, weight: 2})
	eq.schedule(event{t: 1, seq: 2, target: a, weight: 4})
	assert.Equal(t, 1.0, eq[0].t)

	assert.Equal(t, 2, eq.deliverUntil(2))
	assert.Equal(t, 4.0, a.G)
	assert.Equal(t, 2.0, b.G)
	assert.Equal(t, 1, eq.Len())
	ev := heap.Pop(&eq).(event)
	assert.Equal(t, 3.0, ev.t)
}
