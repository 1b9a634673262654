// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/CompCogNeuro/neurotut/hhcell"
	"github.com/CompCogNeuro/neurotut/plots"
	"github.com/CompCogNeuro/neurotut/sim"
	"github.com/CompCogNeuro/neurotut/synpair"
	"github.com/spf13/cobra"
)

func newSynPairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synpair",
		Short: "Drive one cell from two stimulated cells through synapses",
		Long: `synpair builds two presynaptic cells, each stimulated at the same
time, and one postsynaptic cell. The mode picks the wiring: Excite,
Inhibit, Both (default) or TwoExcite. Param sheets (Base, SmallEPSP,
TwoEPSP) are applied over the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			spc := cfg.SynPair.Config
			sheets := cfg.SynPair.Sheets
			if cmd.Flags().Changed("sheet") {
				sheets, _ = cmd.Flags().GetStringSlice("sheet")
			}
			if len(sheets) > 0 {
				if err := synpair.ParamSets.Apply(&spc, sheets...); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("mode") {
				md, _ := cmd.Flags().GetString("mode")
				if err := spc.Mode.FromString(md); err != nil {
					return fmt.Errorf("invalid --mode: %w", err)
				}
			}

			ctx := sim.NewContext(&cfg.Sim)
			defer ctx.Close()
			nt, err := synpair.Build(ctx, &spc)
			if err != nil {
				return err
			}
			if err := nt.Run(); err != nil {
				return err
			}
			slog.Info("synpair run done", "mode", spc.Mode, "post_spiked", nt.PostSpiked(), "post_spikes", nt.PostSpikes())

			p, err := nt.PlotPost()
			if err != nil {
				return err
			}
			if err := savePlot(cfg, p, "post_voltage.png", plots.TraceWidth, plots.TraceHeight); err != nil {
				return err
			}
			for _, cl := range []*hhcell.Cell{nt.Pre1, nt.Pre2} {
				p, err := cl.PlotVoltage(cl.Name+" voltage", plots.Range{})
				if err != nil {
					return err
				}
				if err := savePlot(cfg, p, cl.Name+"_voltage.png", plots.TraceWidth, plots.TraceHeight); err != nil {
					return err
				}
			}
			return saveCSV(cfg, "post_voltage.csv", func(f *os.File) error { return nt.Post.WriteCSV(f) })
		},
	}
	cmd.Flags().String("mode", "", "Wiring mode: Excite, Inhibit, Both or TwoExcite (overrides config)")
	cmd.Flags().StringSlice("sheet", nil, "Param sheets to apply after Base (overrides config)")
	return cmd
}
