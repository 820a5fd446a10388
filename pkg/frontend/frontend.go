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

// Package frontend writes per-game RetroArch core option overrides.
package frontend

import (
	"path/filepath"

	"github.com/ZaparooProject/whdprep/pkg/helpers"
	"github.com/ZaparooProject/whdprep/pkg/overrides"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const ConfigExtension = ".cfg"

// Writer writes per-game RetroArch override files.
type Writer struct {
	fs              afero.Fs
	dir             string
	defaultEmulator string
}

// NewWriter creates a writer placing files under dir, grouped by emulator.
// Bundles with no emulator choice go under defaultEmulator.
func NewWriter(fs afero.Fs, dir, defaultEmulator string) *Writer {
	return &Writer{fs: fs, dir: dir, defaultEmulator: defaultEmulator}
}

// Path is where the override file for an archive name and bundle goes.
func (w *Writer) Path(name string, b *overrides.Bundle) string {
	emulator := b.EmulatorChoice
	if emulator == "" {
		emulator = w.defaultEmulator
	}
	game := b.DisplayName
	if game == "" {
		game = helpers.Stem(name)
	}
	return filepath.Join(
		w.dir,
		helpers.SafeFileName(emulator),
		helpers.SafeFileName(game)+ConfigExtension,
	)
}

// Write emits one file per bundle with frontend options and returns how
// many were written. Failures are logged and skipped.
func (w *Writer) Write(table overrides.Table) int {
	written := 0
	for _, name := range table.Names() {
		b := table[name]
		if b.Frontend.Empty() {
			continue
		}

		p := w.Path(name, &b)
		if err := w.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			log.Error().Err(err).Str("path", p).Msg("failed to create frontend config directory")
			continue
		}
		if err := afero.WriteFile(w.fs, p, []byte(b.Frontend.RenderQuoted()), 0o644); err != nil {
			log.Error().Err(err).Str("path", p).Msg("failed to write frontend config")
			continue
		}
		log.Debug().Str("path", p).Msg("wrote frontend config")
		written++
	}
	return written
}
