// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"log/slog"
	"os"

	"github.com/CompCogNeuro/neurotut/plots"
	"github.com/CompCogNeuro/neurotut/pop"
	"github.com/CompCogNeuro/neurotut/sim"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
)

func newPopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pop",
		Short: "Scatter an excitatory and an inhibitory population and log their spikes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			pc := cfg.Pop
			if cmd.Flags().Changed("seed") {
				pc.Seed, _ = cmd.Flags().GetUint64("seed")
			}

			// one source for both, so inh positions continue the exc sequence
			src := rand.NewSource(pc.Seed)
			pc.Exc.Src = src
			pc.Inh.Src = src

			ctx := sim.NewContext(&cfg.Sim)
			defer ctx.Close()
			exc, err := pop.New(ctx, &pc.Exc)
			if err != nil {
				return err
			}
			inh, err := pop.New(ctx, &pc.Inh)
			if err != nil {
				return err
			}

			net := pop.NetCanvas()
			for i, pp := range []*pop.Population{exc, inh} {
				if err := pp.AddToNetPlot(net, i); err != nil {
					return err
				}
			}
			if err := savePlot(cfg, net, "network.png", plots.Width, plots.Height); err != nil {
				return err
			}

			if err := ctx.Run(pc.TStop); err != nil {
				return err
			}
			slog.Info("pop run done", "tstop", pc.TStop,
				exc.Config.Name+"_spikes", exc.Spikes().Rows, inh.Config.Name+"_spikes", inh.Spikes().Rows)

			for _, pp := range []*pop.Population{exc, inh} {
				r, err := pp.PlotRaster(nil)
				if err != nil {
					return err
				}
				if err := savePlot(cfg, r, pp.Config.Name+"_raster.png", plots.Width, plots.Height); err != nil {
					return err
				}
				if err := saveCSV(cfg, pp.Config.Name+"_spikes.csv", func(f *os.File) error { return pp.WriteSpikesCSV(f) }); err != nil {
					return err
				}
			}
			if len(exc.Cells) > 0 {
				p, err := exc.Cells[0].PlotVoltage("Cell voltage", plots.Range{})
				if err != nil {
					return err
				}
				return savePlot(cfg, p, exc.Config.Name+"0_voltage.png", plots.TraceWidth, plots.TraceHeight)
			}
			return nil
		},
	}
	cmd.Flags().Uint64("seed", pop.DefaultSeed, "Seed of the position source (overrides config)")
	return cmd
}
