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

// Package catalog runs the WHDLoad slave analyzer over the staging area and
// reads back its per-slave hardware database.
package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ZaparooProject/whdprep/pkg/helpers/command"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrAnalyzerFailed is returned when the analyzer process cannot be run or
// exits non-zero. There is no partial catalog to fall back to.
var ErrAnalyzerFailed = errors.New("slave analyzer failed")

// Flags is the set of hardware flags reported for a slave.
type Flags map[string]struct{}

// Has reports whether flag is set.
func (f Flags) Has(flag string) bool {
	_, ok := f[flag]
	return ok
}

// Sorted returns the flags in sorted order.
func (f Flags) Sorted() []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var flagTokenRe = regexp.MustCompile(`^[A-Za-z0-9_+-]+$`)

// ParseFlags reads a comma-joined flag list. A list containing any token
// that is not a plain word is treated as empty.
func ParseFlags(s string) Flags {
	flags := Flags{}
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if !flagTokenRe.MatchString(tok) {
			log.Debug().Str("flags", s).Msg("malformed flag list, ignoring flags")
			return Flags{}
		}
		flags[tok] = struct{}{}
	}
	return flags
}

// Entry is one analyzed slave.
type Entry struct {
	Flags    Flags  `csv:"-"`
	Path     string `csv:"path"`
	RawFlags string `csv:"flags"`
	KickName string `csv:"kick_name"`
}

// GameDir is the slave's directory relative to the staging root.
func (e *Entry) GameDir() string {
	return filepath.Dir(filepath.FromSlash(e.Path))
}

// HasGameDir reports whether the slave sits in a directory strictly inside
// the staging root. Slaves at the root itself, absolute paths and paths
// climbing out with ".." do not.
func (e *Entry) HasGameDir() bool {
	dir := e.GameDir()
	return dir != "." && filepath.IsLocal(dir)
}

// Identifier is the logical game name: the base name of the slave's
// directory.
func (e *Entry) Identifier() string {
	return filepath.Base(e.GameDir())
}

// Parse reads the analyzer's semicolon delimited table.
func Parse(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Entry{}, nil
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	entries := make([]Entry, 0)
	if err := gocsv.UnmarshalCSV(reader, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog CSV: %w", err)
	}

	out := entries[:0]
	for i := range entries {
		e := entries[i]
		e.Path = strings.TrimSpace(e.Path)
		if e.Path == "" {
			log.Warn().Int("row", i+1).Msg("catalog row without path, skipping")
			continue
		}
		e.KickName = strings.TrimSpace(e.KickName)
		e.Flags = ParseFlags(e.RawFlags)
		out = append(out, e)
	}
	return out, nil
}

// Options configures a Loader.
type Options struct {
	// Command is the analyzer program and leading arguments. The staging
	// and output directories are appended.
	Command []string
	// Env is extra environment for the analyzer.
	Env []string
	// WorkDir is where the analyzer runs, so relative script paths resolve.
	WorkDir string
	// InputDir is the staging root to analyze.
	InputDir string
	// OutputDir is where the analyzer writes its table.
	OutputDir string
	// File is the table the analyzer writes inside OutputDir.
	File string
}

// Loader runs the slave analyzer and reads the catalog it writes.
type Loader struct {
	fs   afero.Fs
	exec command.Executor
	opts Options
}

// NewLoader returns a Loader reading and writing through fs.
func NewLoader(fs afero.Fs, exec command.Executor, opts Options) *Loader {
	return &Loader{
		fs:   fs,
		exec: exec,
		opts: opts,
	}
}

// Generate runs the analyzer once over the whole staging root. It returns the
// number of slave files the analyzer reported.
func (l *Loader) Generate(ctx context.Context) (int, error) {
	if len(l.opts.Command) == 0 {
		return 0, fmt.Errorf("%w: no analyzer command configured", ErrAnalyzerFailed)
	}

	if err := l.fs.MkdirAll(l.opts.OutputDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	args := append(append([]string(nil), l.opts.Command[1:]...), l.opts.InputDir, l.opts.OutputDir)
	stdout, stderr, err := l.exec.Output(
		ctx,
		command.Options{Dir: l.opts.WorkDir, Env: l.opts.Env},
		l.opts.Command[0],
		args...,
	)
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		log.Debug().Str("stderr", msg).Msg("analyzer diagnostics")
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrAnalyzerFailed, err)
	}

	analyzed := bytes.Count(stdout, []byte(".slave")) + bytes.Count(stdout, []byte(".Slave"))
	log.Info().Int("count", analyzed).Msg("analyzed slave files")
	return analyzed, nil
}

// Path is the location of the generated table.
func (l *Loader) Path() string {
	return filepath.Join(l.opts.OutputDir, l.opts.File)
}

// Load reads the generated table.
func (l *Loader) Load() ([]Entry, error) {
	f, err := l.fs.Open(l.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close catalog file")
		}
	}()

	entries, err := Parse(f)
	if err != nil {
		return nil, err
	}
	log.Info().Int("count", len(entries)).Msg("loaded catalog entries")
	return entries, nil
}
