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

// Package rawassets discovers floppy and optical games that ship as plain
// image files rather than installer archives.
package rawassets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ZaparooProject/whdprep/pkg/helpers"
	"github.com/ZaparooProject/whdprep/pkg/profiles"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrDiscDescriptorCount is reported for an optical game directory that
// does not hold exactly one .cue file.
var ErrDiscDescriptorCount = errors.New("expected exactly one disc descriptor")

// FloppyGame is one game found under the floppy root: either a single image
// file or a directory of images.
type FloppyGame struct {
	// Path is the top-level entry, file or directory.
	Path string
	// Images are the image file names, sorted.
	Images []string
	IsDir  bool
}

// Name is the top-level entry name.
func (g *FloppyGame) Name() string {
	return filepath.Base(g.Path)
}

// Identifier is the logical game name: the stem of the first image.
func (g *FloppyGame) Identifier() string {
	return helpers.Stem(g.Images[0])
}

// OverrideKey is the file name overrides are looked up by.
func (g *FloppyGame) OverrideKey() string {
	return g.Images[0]
}

// OpticalGame is one subdirectory under the optical root holding exactly one
// disc descriptor.
type OpticalGame struct {
	Path     string
	DiscFile string
}

// Identifier is the stem of the disc descriptor.
func (g *OpticalGame) Identifier() string {
	return helpers.Stem(g.DiscFile)
}

// OverrideKey is the file name overrides are looked up by.
func (g *OpticalGame) OverrideKey() string {
	return g.DiscFile
}

func readDir(fs afero.Fs, root string) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

// ScanFloppies lists floppy games under root. A missing root yields no
// games. Entries that are neither image files nor directories holding
// images are logged and skipped.
func ScanFloppies(fs afero.Fs, root string) ([]FloppyGame, error) {
	if ok, _ := afero.DirExists(fs, root); !ok {
		log.Warn().Str("path", root).Msg("floppy directory not found, skipping")
		return nil, nil
	}

	entries, err := readDir(fs, root)
	if err != nil {
		return nil, err
	}

	games := make([]FloppyGame, 0, len(entries))
	for _, e := range entries {
		p := filepath.Join(root, e.Name())
		switch {
		case e.IsDir():
			images, err := floppyImages(fs, p)
			if err != nil {
				log.Error().Err(err).Str("path", p).Msg("error reading floppy directory")
				continue
			}
			if len(images) == 0 {
				log.Warn().Str("path", p).Msg("no floppy images found in directory")
				continue
			}
			games = append(games, FloppyGame{Path: p, Images: images, IsDir: true})
		case profiles.IsFloppyImage(e.Name()):
			games = append(games, FloppyGame{Path: p, Images: []string{e.Name()}})
		default:
			log.Warn().Str("path", p).Msg("skipping non-image entry in floppy directory")
		}
	}
	return games, nil
}

func floppyImages(fs afero.Fs, dir string) ([]string, error) {
	entries, err := readDir(fs, dir)
	if err != nil {
		return nil, err
	}
	var images []string
	for _, e := range entries {
		if !e.IsDir() && profiles.IsFloppyImage(e.Name()) {
			images = append(images, e.Name())
		}
	}
	return images, nil
}

// ScanOptical lists optical games under root. Each subdirectory must hold
// exactly one disc descriptor; others produce one diagnostic each and are
// skipped. A missing root yields no games and no diagnostics.
func ScanOptical(fs afero.Fs, root string) ([]OpticalGame, []error) {
	if ok, _ := afero.DirExists(fs, root); !ok {
		log.Warn().Str("path", root).Msg("optical directory not found, skipping")
		return nil, nil
	}

	entries, err := readDir(fs, root)
	if err != nil {
		return nil, []error{err}
	}

	var games []OpticalGame
	var errs []error
	for _, e := range entries {
		p := filepath.Join(root, e.Name())
		if !e.IsDir() {
			log.Warn().Str("path", p).Msg("skipping non-directory entry in optical directory")
			continue
		}

		files, err := readDir(fs, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		var descriptors []string
		for _, f := range files {
			if !f.IsDir() && profiles.IsDiscDescriptor(f.Name()) {
				descriptors = append(descriptors, f.Name())
			}
		}
		if len(descriptors) != 1 {
			errs = append(errs, fmt.Errorf("%s: %w, found %d", p, ErrDiscDescriptorCount, len(descriptors)))
			continue
		}
		games = append(games, OpticalGame{Path: p, DiscFile: descriptors[0]})
	}

	for _, err := range errs {
		log.Error().Err(err).Msg("skipping optical game")
	}
	return games, errs
}
