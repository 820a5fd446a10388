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

// Package expander unpacks WHDLoad archives into the shared staging area.
package expander

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZaparooProject/whdprep/pkg/helpers/command"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ArchiveExtension is the archive type picked up from the archive directory.
const ArchiveExtension = ".lha"

// ErrUnexpectedLayout is returned when an archive does not unpack to exactly
// one top-level directory.
var ErrUnexpectedLayout = errors.New("expected exactly one expanded directory")

// Map records which archive each staging directory came from.
type Map map[string]string

// Names returns the staging directory names in sorted order.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Options configures an Expander.
type Options struct {
	ArchivesDir string
	StagingDir  string
	// Command is the extraction program and leading arguments. The archive
	// path is appended and the command runs inside a scratch directory.
	Command []string
}

// Expander unpacks archives into the staging directory.
type Expander struct {
	fs    afero.Fs
	exec  command.Executor
	newID func() string
	opts  Options
}

func NewExpander(fs afero.Fs, exec command.Executor, opts Options) *Expander {
	return &Expander{
		fs:    fs,
		exec:  exec,
		opts:  opts,
		newID: uuid.NewString,
	}
}

// IsArchive reports whether name has the archive extension.
func IsArchive(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ArchiveExtension)
}

// Expand unpacks every archive in the archive directory, in name order. A
// bad archive is logged and skipped. When two archives unpack to the same
// directory name the later one replaces the earlier.
func (e *Expander) Expand(ctx context.Context) (Map, error) {
	staged := Map{}

	if err := e.fs.MkdirAll(e.opts.StagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	exists, err := afero.DirExists(e.fs, e.opts.ArchivesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to check archive directory: %w", err)
	}
	if !exists {
		log.Warn().Str("path", e.opts.ArchivesDir).Msg("archive directory not found")
		return staged, nil
	}

	entries, err := afero.ReadDir(e.fs, e.opts.ArchivesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive directory: %w", err)
	}

	total := 0
	for _, entry := range entries {
		if entry.IsDir() || !IsArchive(entry.Name()) {
			continue
		}
		total++

		name, err := e.expandOne(ctx, entry.Name())
		if err != nil {
			log.Error().Err(err).Str("archive", entry.Name()).Msg("skipping archive")
			continue
		}

		if prev, ok := staged[name]; ok {
			log.Warn().
				Str("archive", entry.Name()).
				Str("previous", prev).
				Str("dir", name).
				Msg("archive replaces staging directory of an earlier archive")
		}
		staged[name] = entry.Name()
	}

	log.Info().Msgf("successfully expanded %d out of %d archives", len(staged), total)
	return staged, nil
}

func (e *Expander) expandOne(ctx context.Context, archive string) (string, error) {
	if len(e.opts.Command) == 0 {
		return "", errors.New("no extraction command configured")
	}

	scratch := filepath.Join(e.opts.StagingDir, ".scratch-"+e.newID())
	if err := e.fs.MkdirAll(scratch, 0o755); err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if err := e.fs.RemoveAll(scratch); err != nil {
			log.Warn().Err(err).Str("path", scratch).Msg("failed to remove scratch directory")
		}
	}()

	archivePath := filepath.Join(e.opts.ArchivesDir, archive)
	args := append(append([]string(nil), e.opts.Command[1:]...), archivePath)
	err := e.exec.Run(ctx, command.Options{Dir: scratch}, e.opts.Command[0], args...)
	if err != nil {
		return "", fmt.Errorf("extraction failed: %w", err)
	}

	entries, err := afero.ReadDir(e.fs, scratch)
	if err != nil {
		return "", fmt.Errorf("failed to read scratch directory: %w", err)
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	if len(dirs) != 1 {
		return "", fmt.Errorf("%w, found %d", ErrUnexpectedLayout, len(dirs))
	}

	name := dirs[0]
	dest := filepath.Join(e.opts.StagingDir, name)
	if err := e.fs.RemoveAll(dest); err != nil {
		return "", fmt.Errorf("failed to remove existing staging directory: %w", err)
	}
	if err := e.fs.Rename(filepath.Join(scratch, name), dest); err != nil {
		return "", fmt.Errorf("failed to move expanded directory: %w", err)
	}
	return name, nil
}
