// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// node is one compartment: the center of a segment of a section.
type node struct {
	sec  *Section
	idx  int     // position in the tree
	area float64 // membrane area in um^2
	cap  float64 // capacitance in nF

	parent int     // tree index of the parent node, -1 for the root
	gPar   float64 // axial conductance to the parent in uS

	v  float64 // membrane potential in mV
	st gates

	// point process contributions for the current step
	gsrc float64 // uS
	isrc float64 // nA
}

// tree is the set of compartments of one connected group of sections,
// ordered so that every parent precedes its children.
type tree struct {
	nodes []*node
	chain bool

	d, dl, du, rhs []float64

	tri   *mat.Tridiag
	dense *mat.Dense
	b, x  *mat.VecDense
}

func buildTree(root *Section) *tree {
	tr := &tree{}
	tr.addSection(root, -1)
	n := len(tr.nodes)
	tr.chain = true
	for k := 1; k < n; k++ {
		if tr.nodes[k].parent != k-1 {
			tr.chain = false
			break
		}
	}
	tr.d = make([]float64, n)
	tr.rhs = make([]float64, n)
	tr.b = mat.NewVecDense(n, tr.rhs)
	tr.x = mat.NewVecDense(n, nil)
	if n > 1 {
		if tr.chain {
			tr.dl = make([]float64, n-1)
			tr.du = make([]float64, n-1)
			tr.tri = mat.NewTridiag(n, tr.dl, tr.d, tr.du)
		} else {
			tr.dense = mat.NewDense(n, n, nil)
		}
	}
	return tr
}

// addSection lays out the segments of sc starting from its attached end,
// then recurses into the children.
func (tr *tree) addSection(sc *Section, parentIdx int) {
	nseg := sc.Nseg
	sc.nodes = make([]*node, nseg)
	area := sc.SegArea()
	hri := sc.halfRi()
	prev := parentIdx
	for k := 0; k < nseg; k++ {
		seg := k
		if sc.childX == 1 {
			seg = nseg - 1 - k
		}
		nd := &node{sec: sc, idx: len(tr.nodes), area: area, parent: prev}
		nd.cap = sc.Cm * area * 1e-5
		switch {
		case prev < 0:
		case k == 0:
			nd.gPar = 1 / (hri + tr.nodes[prev].sec.halfRi())
		default:
			nd.gPar = 1 / (2 * hri)
		}
		sc.nodes[seg] = nd
		tr.nodes = append(tr.nodes, nd)
		prev = nd.idx
	}
	for _, ch := range sc.children {
		tr.addSection(ch, sc.nodes[sc.SegIndex(ch.parentX)].idx)
	}
}

// solve advances all potentials by dt with implicit Euler. Ionic and
// synaptic currents are linear in v for fixed gates, so the step is one
// linear solve of the cable system.
func (tr *tree) solve(dt float64) error {
	for k, nd := range tr.nodes {
		g, ge := 0.0, 0.0
		if nd.sec.Mech != nil {
			g, ge = nd.sec.Mech.Cond(&nd.st)
		}
		ar := nd.area * 1e-2 // S/cm^2 * um^2 -> uS
		cdt := nd.cap / dt
		tr.d[k] = cdt + g*ar + nd.gsrc
		tr.rhs[k] = cdt*nd.v + ge*ar + nd.isrc
	}
	n := len(tr.nodes)
	if n == 1 {
		tr.nodes[0].v = tr.rhs[0] / tr.d[0]
		return nil
	}
	if tr.chain {
		for k := 1; k < n; k++ {
			g := tr.nodes[k].gPar
			tr.d[k] += g
			tr.d[k-1] += g
			tr.dl[k-1] = -g
			tr.du[k-1] = -g
		}
		if err := tr.tri.SolveVecTo(tr.x, false, tr.b); err != nil {
			return fmt.Errorf("sim: cable solve: %w", err)
		}
	} else {
		tr.dense.Zero()
		for k := 1; k < n; k++ {
			nd := tr.nodes[k]
			tr.d[k] += nd.gPar
			tr.d[nd.parent] += nd.gPar
			tr.dense.Set(k, nd.parent, -nd.gPar)
			tr.dense.Set(nd.parent, k, -nd.gPar)
		}
		for k := 0; k < n; k++ {
			tr.dense.Set(k, k, tr.d[k])
		}
		if err := tr.x.SolveVec(tr.dense, tr.b); err != nil {
			return fmt.Errorf("sim: cable solve: %w", err)
		}
	}
	for k, nd := range tr.nodes {
		nd.v = tr.x.AtVec(k)
	}
	return nil
}

// stepGates integrates the channel gates at the new potentials.
func (tr *tree) stepGates(dt, q10 float64) {
	for _, nd := range tr.nodes {
		if nd.sec.Mech != nil {
			nd.sec.Mech.Step(&nd.st, nd.v, dt, q10)
		}
	}
}
