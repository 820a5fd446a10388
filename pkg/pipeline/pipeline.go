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

// Package pipeline runs a full conversion: expand archives, catalog them,
// classify every game and write the ROM tree.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/whdprep/pkg/catalog"
	"github.com/ZaparooProject/whdprep/pkg/classifier"
	"github.com/ZaparooProject/whdprep/pkg/config"
	"github.com/ZaparooProject/whdprep/pkg/expander"
	"github.com/ZaparooProject/whdprep/pkg/frontend"
	"github.com/ZaparooProject/whdprep/pkg/helpers"
	"github.com/ZaparooProject/whdprep/pkg/helpers/command"
	"github.com/ZaparooProject/whdprep/pkg/materializer"
	"github.com/ZaparooProject/whdprep/pkg/overrides"
	"github.com/ZaparooProject/whdprep/pkg/profiles"
	"github.com/ZaparooProject/whdprep/pkg/rawassets"
	"github.com/ZaparooProject/whdprep/pkg/reconcile"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Summary counts what a run did.
type Summary struct {
	Expanded        int
	Catalogued      int
	Installed       int
	Floppies        int
	Optical         int
	Skipped         int
	FrontendConfigs int
	Orphans         int
	UnusedOverrides int
	Elapsed         time.Duration
}

// Pipeline runs one full conversion from archives and raw images to the
// ROM tree.
type Pipeline struct {
	fs    afero.Fs
	exec  command.Executor
	clock clockwork.Clock
	cfg   *config.Instance

	engine       *classifier.Engine
	materializer *materializer.Materializer

	// inputs holds every archive and image name seen this run.
	inputs map[string]struct{}
}

// New builds a pipeline from cfg. Processes run through exec and elapsed
// time is measured with clock.
func New(fs afero.Fs, exec command.Executor, clock clockwork.Clock, cfg *config.Instance) *Pipeline {
	return &Pipeline{
		fs:     fs,
		exec:   exec,
		clock:  clock,
		cfg:    cfg,
		engine: classifier.NewEngine(cfg.Profiles(), cfg.RomsDir(), cfg.RomsMount()),
		materializer: materializer.NewMaterializer(fs, materializer.Options{
			SystemBaseDir: cfg.SystemBaseDir(),
			KickstartsDir: cfg.KickstartsDir(),
		}),
	}
}

// Run performs one conversion. Only a failure to prepare the output tree or
// to produce the catalog is returned as an error; problems with individual
// games are logged and counted as skipped.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := p.clock.Now()
	var sum Summary
	p.inputs = make(map[string]struct{})

	if err := p.prepare(); err != nil {
		return sum, err
	}

	staged, err := expander.NewExpander(p.fs, p.exec, expander.Options{
		ArchivesDir: p.cfg.ArchivesDir(),
		StagingDir:  p.cfg.StagingDir(),
		Command:     p.cfg.ExtractCommand(),
	}).Expand(ctx)
	if err != nil {
		return sum, fmt.Errorf("failed to expand archives: %w", err)
	}
	sum.Expanded = len(staged)
	for _, archive := range staged {
		p.inputs[archive] = struct{}{}
	}

	table, err := overrides.Load(p.fs, p.cfg.OverridesFile())
	if err != nil {
		log.Error().Err(err).Msg("failed to load game overrides, continuing without")
		table = overrides.Table{}
	}

	loader := catalog.NewLoader(p.fs, p.exec, catalog.Options{
		Command:   p.cfg.AnalyzerCommand(),
		Env:       p.cfg.AnalyzerEnv(),
		WorkDir:   p.cfg.BaseDir(),
		InputDir:  p.cfg.StagingDir(),
		OutputDir: p.cfg.CatalogDir(),
		File:      filepath.Base(p.cfg.CatalogFile()),
	})
	if _, err := loader.Generate(ctx); err != nil {
		return sum, fmt.Errorf("failed to generate catalog: %w", err)
	}
	entries, err := loader.Load()
	if err != nil {
		return sum, fmt.Errorf("%w: %w", catalog.ErrAnalyzerFailed, err)
	}
	sum.Catalogued = len(entries)

	consumed := p.processCatalog(entries, staged, table, &sum)
	p.processFloppies(table, &sum)
	p.processOptical(table, &sum)

	sum.FrontendConfigs = frontend.NewWriter(
		p.fs,
		p.cfg.FrontendConfigDir(),
		p.cfg.DefaultEmulator(),
	).Write(table)

	sum.Orphans = reconcile.Report(staged, consumed)
	sum.UnusedOverrides = reconcile.ReportOverrides(table, p.inputs)
	sum.Elapsed = p.clock.Since(start)

	log.Info().
		Int("installed", sum.Installed).
		Int("floppies", sum.Floppies).
		Int("optical", sum.Optical).
		Int("skipped", sum.Skipped).
		Int("orphans", sum.Orphans).
		Int("unused_overrides", sum.UnusedOverrides).
		Dur("elapsed", sum.Elapsed).
		Msg("conversion finished")
	return sum, nil
}

// prepare empties every generated directory and recreates the profile
// output directories, so each run starts from scratch.
func (p *Pipeline) prepare() error {
	for _, dir := range []string{
		p.cfg.CatalogDir(),
		p.cfg.StagingDir(),
		p.cfg.RomsDir(),
		p.cfg.FrontendConfigDir(),
	} {
		if err := helpers.ClearDir(p.fs, dir); err != nil {
			return fmt.Errorf("failed to clear output directory: %w", err)
		}
	}
	for _, id := range profiles.All {
		dir := p.engine.OutputDir(id)
		if err := p.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", id, err)
		}
	}
	log.Debug().Msg("output directories cleared and recreated")
	return nil
}

func (p *Pipeline) lookup(table overrides.Table, name string) overrides.Bundle {
	p.inputs[name] = struct{}{}
	return table.Lookup(name)
}

func (p *Pipeline) materialize(req *classifier.Request, sum *Summary) bool {
	d := p.engine.Classify(req)
	log.Debug().
		Str("game", req.Identifier).
		Stringer("profile", req.Profile).
		Stringer("format", req.Format).
		Str("kickstart", d.Kickstart).
		Msg("classified game")

	if err := p.materializer.Materialize(&d); err != nil {
		log.Error().Err(err).Str("game", req.Identifier).Msg("skipping game")
		sum.Skipped++
		return false
	}
	return true
}

// processCatalog handles every installed-loader game the analyzer found and
// returns the staging directory names it consumed.
func (p *Pipeline) processCatalog(
	entries []catalog.Entry,
	staged expander.Map,
	table overrides.Table,
	sum *Summary,
) map[string]struct{} {
	consumed := make(map[string]struct{})
	seen := make(map[string]struct{})

	for i := range entries {
		entry := &entries[i]
		if !entry.HasGameDir() {
			log.Warn().Str("path", entry.Path).Msg("skipping catalog entry outside a game directory")
			sum.Skipped++
			continue
		}
		src := filepath.Join(p.cfg.StagingDir(), entry.GameDir())
		if _, ok := seen[src]; ok {
			log.Debug().Str("path", entry.Path).Msg("game directory already processed")
			continue
		}
		seen[src] = struct{}{}

		info, err := p.fs.Stat(src)
		if err != nil {
			log.Warn().Str("path", src).Msg("skipping missing game directory")
			sum.Skipped++
			continue
		}

		id := entry.Identifier()
		archive, known := staged[id]
		hidden := helpers.HiddenName(id)
		if known {
			hidden = helpers.HiddenName(helpers.Stem(archive))
		}

		req := &classifier.Request{
			Profile:     classifier.SelectProfile(id, entry.Flags),
			Format:      profiles.InstalledLoader,
			Identifier:  id,
			HiddenDir:   hidden,
			DefaultName: id,
			KickHint:    entry.KickName,
			Source:      src,
			SourceIsDir: info.IsDir(),
			Overrides:   table.Lookup(archive),
		}
		if p.materialize(req, sum) {
			consumed[id] = struct{}{}
			sum.Installed++
		}
	}
	return consumed
}

func (p *Pipeline) processFloppies(table overrides.Table, sum *Summary) {
	games, err := rawassets.ScanFloppies(p.fs, p.cfg.FloppiesDir())
	if err != nil {
		log.Error().Err(err).Msg("failed to scan floppy games")
		return
	}

	for i := range games {
		g := &games[i]
		id := g.Identifier()
		req := &classifier.Request{
			Profile:      classifier.SelectRawProfile(id, g.Name()),
			Format:       profiles.FloppyImageSet,
			Identifier:   id,
			HiddenDir:    helpers.HiddenName(id),
			DefaultName:  id,
			FloppyImages: g.Images,
			Source:       g.Path,
			SourceIsDir:  g.IsDir,
			Overrides:    p.lookup(table, g.OverrideKey()),
		}
		if p.materialize(req, sum) {
			sum.Floppies++
		}
	}
}

func (p *Pipeline) processOptical(table overrides.Table, sum *Summary) {
	games, errs := rawassets.ScanOptical(p.fs, p.cfg.OpticalDir())
	sum.Skipped += len(errs)

	for i := range games {
		g := &games[i]
		id := g.Identifier()
		req := &classifier.Request{
			Profile:     profiles.OpticalDisc,
			Format:      profiles.OpticalImage,
			Identifier:  id,
			HiddenDir:   helpers.HiddenName(id),
			DefaultName: id,
			DiscFile:    g.DiscFile,
			Source:      g.Path,
			SourceIsDir: true,
			Overrides:   p.lookup(table, g.OverrideKey()),
		}
		if p.materialize(req, sum) {
			sum.Optical++
		}
	}
}
