// whdprep
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of whdprep.
//
// whdprep is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// whdprep is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with whdprep.  If not, see <http://www.gnu.org/licenses/>.

// Package cli builds the whdprep command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/whdprep/pkg/config"
	"github.com/ZaparooProject/whdprep/pkg/helpers"
	"github.com/ZaparooProject/whdprep/pkg/helpers/command"
	"github.com/ZaparooProject/whdprep/pkg/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Flags holds the parsed command line.
type Flags struct {
	BaseDir    string
	ConfigPath string
	Debug      bool
}

// Deps are the outside-world dependencies of a run.
type Deps struct {
	Fs    afero.Fs
	Exec  command.Executor
	Clock clockwork.Clock
	// LogWriters receive log output in addition to the log file.
	LogWriters []io.Writer
}

// DefaultDeps uses the real filesystem, processes and clock.
func DefaultDeps(writers []io.Writer) Deps {
	return Deps{
		Fs:         afero.NewOsFs(),
		Exec:       &command.RealExecutor{},
		Clock:      clockwork.NewRealClock(),
		LogWriters: writers,
	}
}

// NewRootCmd builds the root command. It runs one conversion and fails only
// when the conversion as a whole fails.
func NewRootCmd(deps Deps) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Convert WHDLoad archives and disk images into an emulator ROM tree",
		Long: "Expands WHDLoad archives, catalogs them with the slave analyzer, and writes\n" +
			"per-game .uae descriptors for the baseline, AGA and CD32 targets.",
		Version:       config.AppVersion,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := Setup(deps, flags)
			if err != nil {
				return err
			}
			return Run(cmd.Context(), deps, cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&flags.BaseDir, "base-dir", "b", ".", "directory holding inputs, outputs and config")
	cmd.Flags().StringVarP(&flags.ConfigPath, "config", "c", "", "config file path (default <base-dir>/"+config.CfgFile+")")
	cmd.Flags().BoolVarP(&flags.Debug, "debug", "d", false, "enable debug logging")
	cmd.SetVersionTemplate(fmt.Sprintf("%s v{{.Version}}\n", config.AppName))

	return cmd
}

// Setup starts logging in the base directory and loads the config. An
// explicit config path beats the environment, which beats the default.
func Setup(deps Deps, flags *Flags) (*config.Instance, error) {
	baseDir, err := filepath.Abs(flags.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	if err := helpers.InitLogging(baseDir, deps.LogWriters); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	var cfg *config.Instance
	if flags.ConfigPath != "" {
		cfg, err = config.NewConfigAt(deps.Fs, baseDir, flags.ConfigPath, config.BaseDefaults)
	} else {
		cfg, err = config.NewConfig(deps.Fs, baseDir, config.BaseDefaults)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if flags.Debug {
		cfg.SetDebugLogging(true)
	}
	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Info().
		Str("version", config.AppVersion).
		Str("base_dir", baseDir).
		Msg("starting conversion")
	return cfg, nil
}

// Run performs the conversion and prints a short summary to out.
func Run(ctx context.Context, deps Deps, cfg *config.Instance, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	sum, err := pipeline.New(deps.Fs, deps.Exec, deps.Clock, cfg).Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("conversion failed")
		return fmt.Errorf("conversion failed: %w", err)
	}

	_, _ = fmt.Fprintf(out,
		"installed %d, floppy %d, optical %d, skipped %d, unmatched %d, unused overrides %d in %s\n",
		sum.Installed, sum.Floppies, sum.Optical, sum.Skipped, sum.Orphans, sum.UnusedOverrides,
		sum.Elapsed.Round(time.Millisecond),
	)
	return nil
}

// Main runs the root command against the real environment and returns the
// process exit code.
func Main(args []string, writers []io.Writer) int {
	cmd := NewRootCmd(DefaultDeps(writers))
	cmd.SetArgs(args)

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}
