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

// Package materializer writes a classified game to the ROM tree: the hidden
// asset directory and the visible descriptor files next to it.
package materializer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/whdprep/pkg/classifier"
	"github.com/ZaparooProject/whdprep/pkg/helpers"
	"github.com/ZaparooProject/whdprep/pkg/profiles"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrUnsafeAssetDir is returned when a decision's hidden directory would
// not be a child of its profile output directory.
var ErrUnsafeAssetDir = errors.New("asset directory outside profile directory")

// KickstartsSubdir is where WHDLoad looks for kickstart images inside a game.
var KickstartsSubdir = filepath.Join("Devs", "Kickstarts")

// Options locates the shared files copied into games.
type Options struct {
	// SystemBaseDir is overlaid onto every installed-loader game.
	SystemBaseDir string
	// KickstartsDir holds kick<ID> images and their .RTB files.
	KickstartsDir string
}

// Materializer writes decisions to the filesystem.
type Materializer struct {
	fs   afero.Fs
	opts Options
}

// NewMaterializer returns a Materializer writing through fs.
func NewMaterializer(fs afero.Fs, opts Options) *Materializer {
	return &Materializer{fs: fs, opts: opts}
}

// Materialize lays out one game. Payload errors are returned and leave the
// game incomplete; descriptor write errors and missing kickstart files are
// only logged.
func (m *Materializer) Materialize(d *classifier.Decision) error {
	hidden := d.HiddenPath()
	if !insideDir(d.OutputDir, hidden) {
		return fmt.Errorf("%w: %s", ErrUnsafeAssetDir, hidden)
	}
	if err := m.fs.RemoveAll(hidden); err != nil {
		return fmt.Errorf("failed to remove old asset directory: %w", err)
	}
	if err := m.fs.MkdirAll(hidden, 0o755); err != nil {
		return fmt.Errorf("failed to create asset directory: %w", err)
	}

	if err := m.copyPayload(d, hidden); err != nil {
		return err
	}

	if d.Format == profiles.InstalledLoader {
		if err := helpers.OverlayDir(m.fs, m.opts.SystemBaseDir, hidden); err != nil {
			return fmt.Errorf("failed to overlay system base: %w", err)
		}
		if d.Kickstart != "" {
			m.copyKickstart(d.Kickstart, hidden)
		}
	}

	m.writeDescriptors(d)
	return nil
}

// insideDir reports whether path is strictly below dir.
func insideDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != "." && filepath.IsLocal(rel)
}

func (m *Materializer) copyPayload(d *classifier.Decision, hidden string) error {
	var err error
	switch {
	case d.Format == profiles.FloppyImageSet:
		srcDir := d.Source
		if !d.SourceIsDir {
			srcDir = filepath.Dir(d.Source)
		}
		for _, img := range d.FloppyImages {
			if err = helpers.CopyFile(m.fs, filepath.Join(srcDir, img), filepath.Join(hidden, img)); err != nil {
				break
			}
		}
	case d.SourceIsDir:
		err = helpers.CopyTree(m.fs, d.Source, hidden)
	default:
		err = helpers.CopyFile(m.fs, d.Source, filepath.Join(hidden, filepath.Base(d.Source)))
	}
	if err != nil {
		return fmt.Errorf("failed to copy game payload: %w", err)
	}
	return nil
}

func (m *Materializer) copyKickstart(kick, hidden string) {
	dst := filepath.Join(hidden, KickstartsSubdir)
	if err := m.fs.MkdirAll(dst, 0o755); err != nil {
		log.Warn().Err(err).Str("path", dst).Msg("failed to create kickstart directory")
		return
	}

	for _, name := range []string{classifier.KickstartFile(kick), classifier.KickstartTimingFile(kick)} {
		src := filepath.Join(m.opts.KickstartsDir, name)
		err := helpers.CopyFile(m.fs, src, filepath.Join(dst, name))
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Warn().Str("kickstart", kick).Str("path", src).Msg("kickstart file not found")
		case err != nil:
			log.Warn().Err(err).Str("kickstart", kick).Msg("failed to copy kickstart file")
		default:
			log.Debug().Str("file", name).Str("game", filepath.Base(hidden)).Msg("copied kickstart")
		}
	}
}

func (m *Materializer) writeDescriptors(d *classifier.Decision) {
	p := d.DescriptorPath()
	if err := afero.WriteFile(m.fs, p, []byte(d.Config.Render()), 0o644); err != nil {
		log.Error().Err(err).Str("path", p).Msg("failed to write descriptor")
	} else {
		log.Info().Str("path", p).Msg("wrote descriptor")
	}

	if d.Companion.Empty() {
		return
	}
	p = d.CompanionPath()
	if err := afero.WriteFile(m.fs, p, []byte(d.Companion.RenderQuoted()), 0o644); err != nil {
		log.Error().Err(err).Str("path", p).Msg("failed to write companion config")
	}
}
