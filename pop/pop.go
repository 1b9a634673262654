// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package pop creates populations of tutorial cells scattered over a
100 x 100 canvas and logs the spikes of every cell, by creation index,
into one table per population.
*/
package pop

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"strconv"

	"github.com/CompCogNeuro/neurotut/hhcell"
	"github.com/CompCogNeuro/neurotut/plots"
	"github.com/CompCogNeuro/neurotut/sim"
	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
)

// Width and Height are the canvas size that normalized ranges refer to.
const (
	Width  = 100
	Height = 100
)

// DefaultSeed is the seed of the position source when none is shared.
const DefaultSeed = 111

// Config has the parameters of one population
type Config struct {

	// name used for section names, logs and legends
	Name string `toml:"name" yaml:"name"`

	// number of cells
	NumCells int `toml:"num_cells" yaml:"num_cells"`

	// x positions are drawn from this fraction of the canvas width
	XNormRange [2]float64 `toml:"x_norm_range" yaml:"x_norm_range"`

	// y positions are drawn from this fraction of the canvas height
	YNormRange [2]float64 `toml:"y_norm_range" yaml:"y_norm_range"`

	// seed of the position source, used when Src is nil
	Seed uint64 `toml:"seed" yaml:"seed" def:"111"`

	// shared position source, so that successive populations continue
	// one random sequence
	Src rand.Source `toml:"-" yaml:"-"`

	// cell parameters
	Cell hhcell.Params `toml:"-" yaml:"-"`
}

func (cfg *Config) Defaults() {
	cfg.Name = "pop"
	cfg.NumCells = 100
	cfg.XNormRange = [2]float64{0, 1}
	cfg.YNormRange = [2]float64{0, 1}
	cfg.Seed = DefaultSeed
	cfg.Cell.Defaults()
}

// NewConfig returns a Config with defaults.
func NewConfig() *Config {
	cfg := &Config{}
	cfg.Defaults()
	return cfg
}

func validRange(nm string, rg [2]float64) error {
	if rg[0] < 0 || rg[1] > 1 || rg[0] > rg[1] {
		return fmt.Errorf("pop: %s range [%g, %g] must be ordered within [0, 1]", nm, rg[0], rg[1])
	}
	return nil
}

func (cfg *Config) Validate() error {
	if cfg.NumCells < 0 {
		return fmt.Errorf("pop: %s: NumCells=%d must be >= 0", cfg.Name, cfg.NumCells)
	}
	if err := validRange("x", cfg.XNormRange); err != nil {
		return err
	}
	if err := validRange("y", cfg.YNormRange); err != nil {
		return err
	}
	return cfg.Cell.Validate()
}

// Population is a set of cells with a shared spike log.
type Population struct {
	Config Config

	// Cells in creation order; a cell's id is its index
	Cells []*hhcell.Cell

	// Subs are the spike subscriptions, one per cell
	Subs []*sim.Subscription

	ctx    *sim.Context
	spikes *etable.Table
}

// New creates cfg.NumCells cells in ctx. All x positions are drawn before
// all y positions. Each cell records its potentials, gets one default
// synapse and reports its spikes to the population log. nil cfg means
// defaults.
func New(ctx *sim.Context, cfg *Config) (*Population, error) {
	pp := &Population{ctx: ctx}
	if cfg != nil {
		pp.Config = *cfg
	} else {
		pp.Config.Defaults()
	}
	pc := &pp.Config
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	src := pc.Src
	if src == nil {
		src = rand.NewSource(pc.Seed)
	}
	xs := draw(src, pc.XNormRange, Width, pc.NumCells)
	ys := draw(src, pc.YNormRange, Height, pc.NumCells)

	pp.spikes = newSpikeTable(pc.Name)
	for i := 0; i < pc.NumCells; i++ {
		cl, err := hhcell.New(ctx, pc.Name+"["+strconv.Itoa(i)+"]", &pc.Cell)
		if err != nil {
			return nil, err
		}
		if err := cl.SetRecording(); err != nil {
			return nil, err
		}
		if _, err := cl.CreateDefaultSynapse(); err != nil {
			return nil, err
		}
		cl.SetPosition(xs[i], ys[i])
		id := float64(i)
		sb, err := ctx.Subscribe(cl.Soma.At(0.5), func(ev sim.SpikeEvent) {
			pp.logSpike(ev.Time, id)
		})
		if err != nil {
			return nil, err
		}
		pp.Cells = append(pp.Cells, cl)
		pp.Subs = append(pp.Subs, sb)
		slog.Debug("created cell", "pop", pc.Name, "id", i, "x", xs[i], "y", ys[i])
	}
	ctx.OnInit(func() { pp.spikes.SetNumRows(0) })
	return pp, nil
}

// draw returns n uniform values in the normalized range scaled by size.
func draw(src rand.Source, rg [2]float64, size float64, n int) []float64 {
	un := distuv.Uniform{Min: size * rg[0], Max: size * rg[1], Src: src}
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = un.Rand()
	}
	return vals
}

func newSpikeTable(name string) *etable.Table {
	dt := &etable.Table{}
	dt.SetMetaData("name", name+"Spikes")
	dt.SetMetaData("desc", "Spike times and ids of the cells that fired")
	dt.SetMetaData("read-only", "true")
	dt.SetMetaData("precision", strconv.Itoa(hhcell.LogPrec))
	sch := etable.Schema{
		{"Time", etensor.FLOAT64, nil, nil},
		{"Id", etensor.FLOAT64, nil, nil},
	}
	dt.SetFromSchema(sch, 0)
	return dt
}

func (pp *Population) logSpike(t, id float64) {
	dt := pp.spikes
	row := dt.Rows
	dt.SetNumRows(row + 1)
	dt.SetCellFloat("Time", row, t)
	dt.SetCellFloat("Id", row, id)
}

// Context returns the context the cells live in.
func (pp *Population) Context() *sim.Context { return pp.ctx }

// Positions returns the x and y coordinates of all cells, by id.
func (pp *Population) Positions() (xs, ys []float64) {
	xs = make([]float64, len(pp.Cells))
	ys = make([]float64, len(pp.Cells))
	for i, cl := range pp.Cells {
		xs[i], ys[i] = cl.X, cl.Y
	}
	return
}

// Spikes returns the spike log of the last run, in time order, with
// Time and Id columns.
func (pp *Population) Spikes() *etable.Table { return pp.spikes }

// SpikeTimes returns the logged times and ids as plain slices.
func (pp *Population) SpikeTimes() (times, ids []float64) {
	dt := pp.spikes
	times = make([]float64, dt.Rows)
	ids = make([]float64, dt.Rows)
	for row := 0; row < dt.Rows; row++ {
		times[row] = dt.CellFloat("Time", row)
		ids[row] = dt.CellFloat("Id", row)
	}
	return
}

// WriteSpikesCSV writes the spike log as comma-separated values with a header row.
func (pp *Population) WriteSpikesCSV(w io.Writer) error {
	return pp.spikes.WriteCSV(w, etable.Comma, etable.Headers)
}

// AddToNetPlot scatters this population onto a network canvas, in the
// idx-th default color.
func (pp *Population) AddToNetPlot(p *plot.Plot, idx int) error {
	xs, ys := pp.Positions()
	return plots.AddPositions(p, pp.Config.Name, idx, xs, ys)
}

// PlotNet returns a network canvas with only this population on it.
func (pp *Population) PlotNet() (*plot.Plot, error) {
	p := NetCanvas()
	if err := pp.AddToNetPlot(p, 0); err != nil {
		return nil, err
	}
	return p, nil
}

// NetCanvas returns an empty canvas for AddToNetPlot.
func NetCanvas() *plot.Plot {
	return plots.Canvas("Network", Width, Height)
}

// PlotRaster plots the spikes of the last run; nil clr means blue.
func (pp *Population) PlotRaster(clr color.Color) (*plot.Plot, error) {
	if clr == nil {
		clr = color.RGBA{B: 255, A: 255}
	}
	times, ids := pp.SpikeTimes()
	return plots.Raster("Network raster", times, ids, clr)
}
