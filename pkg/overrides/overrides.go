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

// Package overrides reads the user-edited games.csv table of per-game
// customisations: display names, emulator settings, pad-to-key mappings,
// RetroArch options and the emulator to file RetroArch options under.
package overrides

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/ZaparooProject/whdprep/pkg/uaeconfig"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Row is one line of the override table as written by the user.
type Row struct {
	ArchiveName     string `csv:"Archive Name"`
	Game            string `csv:"Game"`
	WHDConfig       string `csv:"WHD Config"`
	UAEConfig       string `csv:"UAE Config"`
	P2KConfig       string `csv:"P2K Config"`
	RetroArchConfig string `csv:"RetroArch Config"`
	Emulator        string `csv:"Emulator"`
}

// Bundle is the parsed set of overrides for one archive or image file.
// Config fields are never nil.
type Bundle struct {
	// WHDLoad holds WHDLoad options; only "kick" is consumed.
	WHDLoad *uaeconfig.Config
	// Emulator is merged into the generated .uae descriptor.
	Emulator *uaeconfig.Config
	// Frontend holds RetroArch core options.
	Frontend *uaeconfig.Config
	// Companion is written as the .uae.p2k.cfg input mapping file.
	Companion      *uaeconfig.Config
	DisplayName    string
	EmulatorChoice string
}

// Empty returns a bundle with no overrides.
func Empty() Bundle {
	return Bundle{
		WHDLoad:   uaeconfig.New(),
		Emulator:  uaeconfig.New(),
		Frontend:  uaeconfig.New(),
		Companion: uaeconfig.New(),
	}
}

// IsEmpty reports whether the bundle overrides nothing.
func (b Bundle) IsEmpty() bool {
	return b.DisplayName == "" &&
		b.EmulatorChoice == "" &&
		b.WHDLoad.Empty() &&
		b.Emulator.Empty() &&
		b.Frontend.Empty() &&
		b.Companion.Empty()
}

// Table maps archive or image file names to their override bundle. Every
// stored bundle overrides at least one thing.
type Table map[string]Bundle

// Lookup returns the bundle for name, or an empty bundle on a miss.
func (t Table) Lookup(name string) Bundle {
	if b, ok := t[name]; ok {
		return b
	}
	return Empty()
}

// Names returns the table keys in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for k := range t {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Load reads the override table at path. A missing or empty file yields an
// empty table.
func Load(fs afero.Fs, path string) (Table, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to check override file: %w", err)
	}
	if !exists {
		log.Info().Str("path", path).Msg("no override file found, using defaults")
		return Table{}, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read override file: %w", err)
	}

	table, err := Parse(data)
	if err != nil {
		return nil, err
	}
	log.Info().Int("count", len(table)).Msg("loaded game overrides")
	return table, nil
}

// Parse decodes override table CSV content.
func Parse(data []byte) (Table, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if len(bytes.TrimSpace(data)) == 0 {
		return Table{}, nil
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows := make([]Row, 0)
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal override CSV: %w", err)
	}

	table := make(Table, len(rows))
	for i := range rows {
		name, bundle, ok := rows[i].Bundle()
		if !ok {
			continue
		}
		if _, dup := table[name]; dup {
			log.Debug().Str("archive", name).Msg("duplicate override row replaces earlier one")
		}
		table[name] = bundle
	}
	return table, nil
}

// Bundle converts a row into its archive name and parsed bundle. ok is false
// when the row has no archive name or overrides nothing.
func (r *Row) Bundle() (name string, bundle Bundle, ok bool) {
	name = strings.TrimSpace(r.ArchiveName)
	if name == "" {
		return "", Bundle{}, false
	}

	bundle = Bundle{
		DisplayName:    strings.TrimSpace(r.Game),
		EmulatorChoice: strings.ToLower(strings.TrimSpace(r.Emulator)),
		WHDLoad:        ParsePairs(r.WHDConfig),
		Emulator:       ParsePairs(r.UAEConfig),
		Companion:      ParsePairs(r.P2KConfig),
		Frontend:       ParseQuotedPairs(r.RetroArchConfig),
	}
	if bundle.IsEmpty() {
		return "", Bundle{}, false
	}
	return name, bundle, true
}

// ParsePairs reads key=value pairs separated by semicolons or whitespace.
// Pieces without '=' or with an empty key are dropped.
func ParsePairs(s string) *uaeconfig.Config {
	cfg := uaeconfig.New()
	for _, piece := range strings.Fields(strings.ReplaceAll(s, ";", " ")) {
		key, value, found := strings.Cut(piece, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			continue
		}
		cfg.Set(key, strings.TrimSpace(value))
	}
	return cfg
}

// ParseQuotedPairs reads RetroArch style pairs separated by semicolons or
// whitespace, where values may be wrapped in double quotes. Separators inside
// quotes do not split, so quoted values may contain spaces. Quotes around a
// value are stripped; pieces without '=', with an empty key or with a quote
// in the key are dropped.
func ParseQuotedPairs(s string) *uaeconfig.Config {
	cfg := uaeconfig.New()
	for _, piece := range splitUnquoted(s) {
		key, value, found := strings.Cut(piece, "=")
		if !found || key == "" || strings.Contains(key, `"`) {
			continue
		}
		cfg.Set(key, strings.Trim(value, `"`))
	}
	return cfg
}

// splitUnquoted splits s on semicolons and whitespace that are not inside
// double quotes. Empty pieces are dropped.
func splitUnquoted(s string) []string {
	var pieces []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			pieces = append(pieces, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case !inQuote && (r == ';' || unicode.IsSpace(r)):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return pieces
}
