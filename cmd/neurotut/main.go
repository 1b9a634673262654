// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// neurotut runs the tutorial models and writes their figures and logs.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/CompCogNeuro/neurotut/config"
	"github.com/CompCogNeuro/neurotut/plots"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("neurotut failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "neurotut",
		Short: "Two-compartment Hodgkin-Huxley cells, synapses and spiking populations",
		Long: `neurotut builds the tutorial models, runs them, and writes
voltage traces, network plots and spike rasters as PNG files, plus the
recorded data as CSV, into the output directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "TOML or YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info or debug (overrides config)")
	rootCmd.PersistentFlags().String("out", "", "Output directory (overrides config)")

	rootCmd.AddCommand(
		newCellCmd(),
		newSynPairCmd(),
		newPopCmd(),
	)
	return rootCmd
}

// loadConfig reads the config file if any, applies the global flag
// overrides, installs the logger and creates the output directory.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	if fn, _ := cmd.Flags().GetString("config"); fn != "" {
		var err error
		if cfg, err = config.Open(fn); err != nil {
			return nil, err
		}
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		cfg.Out = out
	}
	slog.SetDefault(config.NewLogger(cfg.Log.Level, cmd.ErrOrStderr()))
	if err := os.MkdirAll(cfg.Out, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return cfg, nil
}

func savePlot(cfg *config.Config, p *plot.Plot, name string, w, h vg.Length) error {
	fn := filepath.Join(cfg.Out, name)
	if err := plots.Save(p, fn, w, h); err != nil {
		return err
	}
	slog.Info("wrote figure", "file", fn)
	return nil
}

// saveCSV creates the named file in the output directory and fills it with write.
func saveCSV(cfg *config.Config, name string, write func(f *os.File) error) error {
	fn := filepath.Join(cfg.Out, name)
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", fn, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("wrote log", "file", fn)
	return nil
}
