// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synpair

import (
	"encoding/json"
	"testing"

	"github.com/CompCogNeuro/neurotut/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runMode(t *testing.T, mode Mode, sheets ...string) *Net {
	cfg := NewConfig()
	require.NoError(t, ParamSets.Apply(cfg, sheets...))
	cfg.Mode = mode
	nt, err := Build(sim.NewContext(nil), cfg)
	require.NoError(t, err)
	require.NoError(t, nt.Run())
	return nt
}

func TestExcitationFires(t *testing.T) {
	nt := runMode(t, Excite)
	require.Len(t, nt.Post.Synapses, 1)
	assert.Equal(t, 0.0, nt.Post.Synapses[0].E)
	assert.Equal(t, 0.005, nt.Post.Conns[0].Weight)

	pre := nt.Pre1.SomaSpikes(0)
	require.Len(t, pre, 1)
	assert.InDelta(t, 12.3, pre[0], 0.5)
	require.True(t, nt.PostSpiked())
	post := nt.PostSpikes()
	// pre spike + 1 ms delay + EPSP rise
	assert.Greater(t, post[0], pre[0]+1)
	assert.Less(t, post[0], 20.0)
}

func TestInhibitionSilent(t *testing.T) {
	nt := runMode(t, Inhibit)
	require.Len(t, nt.Post.Synapses, 1)
	assert.Equal(t, -80.0, nt.Post.Synapses[0].E)
	assert.Equal(t, 0.01, nt.Post.Conns[0].Weight)
	assert.Len(t, nt.Pre2.SomaSpikes(0), 1)
	assert.False(t, nt.PostSpiked())
	assert.Less(t, nt.Post.SomaV.Max(), 0.0)
}

func TestBaseAndSmallEPSP(t *testing.T) {
	nt := runMode(t, Both)
	assert.Len(t, nt.Post.Synapses, 2)
	assert.False(t, nt.PostSpiked())

	nt = runMode(t, Excite, "SmallEPSP")
	assert.Equal(t, 0.002, nt.Post.Conns[0].Weight)
	assert.False(t, nt.PostSpiked())
	// a visible but subthreshold EPSP
	assert.Greater(t, nt.Post.SomaV.Max(), -64.0)
}

func TestSheets(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, ParamSets.Apply(cfg, "TwoEPSP"))
	assert.Equal(t, TwoExcite, cfg.Mode)
	assert.Equal(t, 0.002, cfg.Exc.Weight)
	assert.Error(t, ParamSets.Apply(cfg, "NoSuch"))
	assert.Equal(t, []string{"Base", "SmallEPSP", "TwoEPSP"}, ParamSets.Names())

	nt, err := Build(sim.NewContext(nil), cfg)
	require.NoError(t, err)
	require.Len(t, nt.Post.Synapses, 2)
	assert.Same(t, nt.Pre2.Soma, nt.Post.Conns[1].Source.Sec)
	assert.Equal(t, 0.0, nt.Post.Synapses[1].E)
}

func TestConfigValidate(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())
	cfg.Exc.Tau = 0
	assert.Error(t, cfg.Validate())
	cfg = NewConfig()
	cfg.Mode = ModeN
	_, err := Build(sim.NewContext(nil), cfg)
	assert.Error(t, err)
}

func TestModeText(t *testing.T) {
	var md Mode
	require.NoError(t, md.UnmarshalText([]byte("Inhibit")))
	assert.Equal(t, Inhibit, md)
	assert.Error(t, md.UnmarshalText([]byte("Sideways")))
	b, err := json.Marshal(TwoExcite)
	require.NoError(t, err)
	assert.Equal(t, `"TwoExcite"`, string(b))
}

func TestPlotPost(t *testing.T) {
	nt := runMode(t, Excite)
	p, err := nt.PlotPost()
	require.NoError(t, err)
	assert.Equal(t, -80.0, p.Y.Min)
	assert.Equal(t, 30.0, p.Y.Max)
}
