// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"container/heap"
	"fmt"
)

// detector watches the potential at a location for upward threshold crossings.
type detector struct {
	src   Location
	thr   float64
	above bool
}

func (dc *detector) init() {
	dc.above = dc.src.V() >= dc.thr
}

// check returns true exactly once per upward crossing.
func (dc *detector) check() bool {
	above := dc.src.V() >= dc.thr
	fired := above && !dc.above
	dc.above = above
	return fired
}

// NetCon is a directed connection from a threshold crossing at Source to
// a synapse, delivering Weight after Delay ms.
type NetCon struct {

	// Source is the watched location, typically soma(0.5) of the presynaptic cell
	Source Location

	// Target receives the events; never nil
	Target *ExpSyn

	// Delay is the conduction delay in ms
	Delay float64 `def:"1"`

	// Weight is added to the target conductance in uS
	Weight float64

	// Threshold is the crossing potential in mV
	Threshold float64

	det detector
}

func (nc *NetCon) Validate() error {
	if nc.Target == nil {
		return fmt.Errorf("sim: NetCon from %v has no target", nc.Source)
	}
	if nc.Delay < 0 {
		return fmt.Errorf("sim: NetCon %v -> %v: delay=%g must be >= 0", nc.Source, nc.Target.Loc, nc.Delay)
	}
	return nil
}

// SpikeEvent is a threshold crossing reported to subscribers.
type SpikeEvent struct {

	// Time of the crossing in ms
	Time float64

	// Source is the location that crossed
	Source Location
}

// Subscription delivers the crossings of one location to a callback.
type Subscription struct {
	Fn  func(ev SpikeEvent)
	det detector
	ctx *Context
}

// Cancel stops delivery to this subscription.
func (sb *Subscription) Cancel() {
	ctx := sb.ctx
	if ctx == nil {
		return
	}
	for i, s := range ctx.subs {
		if s == sb {
			ctx.subs = append(ctx.subs[:i], ctx.subs[i+1:]...)
			break
		}
	}
	sb.ctx = nil
}

// event is a weight scheduled for delivery to a synapse.
type event struct {
	t      float64
	seq    int
	target *ExpSyn
	weight float64
}

// eventQueue is a min-heap on delivery time, ties broken by scheduling order.
type eventQueue []event

func (eq eventQueue) Len() int { return len(eq) }

func (eq eventQueue) Less(i, j int) bool {
	if eq[i].t != eq[j].t {
		return eq[i].t < eq[j].t
	}
	return eq[i].seq < eq[j].seq
}

func (eq eventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *eventQueue) Push(x any) { *eq = append(*eq, x.(event)) }

func (eq *eventQueue) Pop() any {
	old := *eq
	n := len(old)
	ev := old[n-1]
	*eq = old[:n-1]
	return ev
}

func (eq *eventQueue) schedule(ev event) {
	heap.Push(eq, ev)
}

// deliverUntil hands every event due at or before t to its target.
func (eq *eventQueue) deliverUntil(t float64) int {
	n := 0
	for eq.Len() > 0 && (*eq)[0].t <= t {
		ev := heap.Pop(eq).(event)
		ev.target.receive(ev.weight)
		n++
	}
	return n
}
