// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package plots

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestXY(t *testing.T) {
	xys := XY([]float64{0, 1, 2}, []float64{5, 6})
	require.Len(t, xys, 2)
	assert.Equal(t, 1.0, xys[1].X)
	assert.Equal(t, 6.0, xys[1].Y)
	assert.Empty(t, XY(nil, []float64{1}))
}

func TestVoltage(t *testing.T) {
	tm := []float64{0, 0.025, 0.05}
	p, err := Voltage("cell", tm, Range{Min: -80, Max: 40},
		Trace{Label: "soma(0.5)", Color: color.Black, Y: []float64{-65, -64, -60}},
		Trace{Label: "dend(0.5)", Color: color.RGBA{R: 255, A: 255}, Y: nil},
	)
	require.NoError(t, err)
	assert.Equal(t, "time (ms)", p.X.Label.Text)
	assert.Equal(t, "mV", p.Y.Label.Text)
	assert.Equal(t, -80.0, p.Y.Min)

	b, err := PNG(p, TraceWidth, TraceHeight)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))
}

func TestRange(t *testing.T) {
	assert.True(t, Range{}.IsZero())
	assert.False(t, Range{Max: 1}.IsZero())
}

func TestNetAndRaster(t *testing.T) {
	p := Canvas("net", 100, 100)
	require.NoError(t, AddPositions(p, "exc", 0, []float64{10, 50}, []float64{20, 90}))
	require.NoError(t, AddPositions(p, "inh", 1, []float64{70}, []float64{5}))
	assert.Equal(t, 100.0, p.X.Max)
	assert.Equal(t, 0.0, p.Y.Min)

	r, err := Raster("Network raster", []float64{12.3, 15.1}, []float64{0, 3}, color.RGBA{B: 255, A: 255})
	require.NoError(t, err)
	assert.Equal(t, "Network raster", r.Title.Text)

	empty, err := Raster("Network raster", nil, nil, color.Black)
	require.NoError(t, err)

	fn := filepath.Join(t.TempDir(), "raster.png")
	require.NoError(t, Save(r, fn, Width, Height))
	b, err := os.ReadFile(fn)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))

	b, err = PNG(p, Width, Height)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))
	b, err = PNG(empty, Width, Height)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))
}
