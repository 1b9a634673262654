// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"log/slog"
	"os"

	"github.com/CompCogNeuro/neurotut/hhcell"
	"github.com/CompCogNeuro/neurotut/plots"
	"github.com/CompCogNeuro/neurotut/sim"
	"github.com/spf13/cobra"
)

func newCellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cell",
		Short: "Stimulate a single two-compartment cell at the dendrite tip",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("delay") {
				cfg.Cell.StimDelay, _ = cmd.Flags().GetFloat64("delay")
			}

			ctx := sim.NewContext(&cfg.Sim)
			defer ctx.Close()
			pars := &hhcell.Params{}
			pars.Defaults()
			pars.Geom.DendNseg = cfg.Cell.DendNseg
			cl, err := hhcell.New(ctx, "", pars)
			if err != nil {
				return err
			}
			if err := cl.AddCurrentStim(cfg.Cell.StimDelay); err != nil {
				return err
			}
			if err := cl.SetRecording(); err != nil {
				return err
			}
			if err := ctx.Run(cfg.Cell.TStop); err != nil {
				return err
			}
			slog.Info("cell run done", "tstop", cfg.Cell.TStop, "spikes", cl.SomaSpikes(cfg.Sim.Threshold))

			p, err := cl.PlotVoltage("Cell voltage", plots.Range{})
			if err != nil {
				return err
			}
			if err := savePlot(cfg, p, "cell_voltage.png", plots.TraceWidth, plots.TraceHeight); err != nil {
				return err
			}
			return saveCSV(cfg, "cell_voltage.csv", func(f *os.File) error { return cl.WriteCSV(f) })
		},
	}
	cmd.Flags().Float64("delay", 10, "Stimulus onset in ms (overrides config)")
	return cmd
}
