// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package plots renders the tutorial figures: voltage traces, cell
// positions on the network canvas, and spike rasters.
package plots

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Standard figure sizes
const (
	TraceWidth  = 8 * vg.Inch
	TraceHeight = 4 * vg.Inch
	Width       = 6 * vg.Inch
	Height      = 6 * vg.Inch
)

// Range is a fixed axis range; the zero Range means autoscale.
type Range struct {
	Min float64
	Max float64
}

func (rg Range) IsZero() bool { return rg.Min == 0 && rg.Max == 0 }

// set fixes the axis to the range, if not zero.
func (rg Range) set(ax *plot.Axis) {
	if rg.IsZero() {
		return
	}
	ax.Min = rg.Min
	ax.Max = rg.Max
}

// XY pairs up x and y, truncating to the shorter of the two.
func XY(x, y []float64) plotter.XYs {
	n := min(len(x), len(y))
	xys := make(plotter.XYs, n)
	for i := range xys {
		xys[i].X = x[i]
		xys[i].Y = y[i]
	}
	return xys
}

// Trace is one named series of a line plot.
type Trace struct {
	Label string
	Color color.Color
	Y     []float64
}

// Voltage plots membrane potential traces against time. Empty traces are
// drawn as nothing rather than treated as an error.
func Voltage(title string, t []float64, ylim Range, traces ...Trace) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (ms)"
	p.Y.Label.Text = "mV"
	p.Legend.Top = true
	for _, tr := range traces {
		xys := XY(t, tr.Y)
		ln, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("plots: %s: %w", tr.Label, err)
		}
		ln.LineStyle.Color = tr.Color
		ln.LineStyle.Width = vg.Points(1)
		p.Legend.Add(tr.Label, ln)
		if len(xys) > 0 {
			p.Add(ln)
		}
	}
	ylim.set(&p.Y)
	return p, nil
}

// Canvas returns an empty plot with axes fixed to [0, width] x [0, height].
func Canvas(title string, width, height float64) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Min, p.X.Max = 0, width
	p.Y.Min, p.Y.Max = 0, height
	return p
}

// AddPositions scatters cell positions onto a canvas, with the idx-th
// default color.
func AddPositions(p *plot.Plot, label string, idx int, xs, ys []float64) error {
	sc, err := plotter.NewScatter(XY(xs, ys))
	if err != nil {
		return fmt.Errorf("plots: positions %s: %w", label, err)
	}
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Radius = vg.Points(3.5)
	sc.GlyphStyle.Color = plotutil.Color(idx)
	p.Add(sc)
	if label != "" {
		p.Legend.Add(label, sc)
	}
	return nil
}

// Raster plots spike times against the id of the cell that fired.
func Raster(title string, times, ids []float64, clr color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (ms)"
	p.Y.Label.Text = "cell id"
	xys := XY(times, ids)
	if len(xys) == 0 {
		return p, nil
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("plots: raster: %w", err)
	}
	sc.GlyphStyle.Shape = BarGlyph{}
	sc.GlyphStyle.Radius = vg.Points(5)
	sc.GlyphStyle.Color = clr
	p.Add(sc)
	return p, nil
}

// BarGlyph is a vertical tick, the usual raster mark.
type BarGlyph struct{}

func (BarGlyph) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	c.SetLineStyle(draw.LineStyle{Color: sty.Color, Width: vg.Points(1)})
	var pa vg.Path
	pa.Move(vg.Point{X: pt.X, Y: pt.Y - sty.Radius})
	pa.Line(vg.Point{X: pt.X, Y: pt.Y + sty.Radius})
	c.Stroke(pa)
}

// Save writes p to path; the format follows the extension (png, svg, pdf, ...).
func Save(p *plot.Plot, path string, w, h vg.Length) error {
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("plots: saving %s: %w", path, err)
	}
	return nil
}

// PNG renders p to PNG bytes.
func PNG(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
