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

// Package reconcile reports expanded games that never made it into the ROM
// tree.
package reconcile

import (
	"sort"

	"github.com/ZaparooProject/whdprep/pkg/expander"
	"github.com/ZaparooProject/whdprep/pkg/overrides"
	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog/log"
)

// MinSuggestionSimilarity is the Jaro-Winkler score an input name needs to
// be offered as the likely intended target of an unused override row.
const MinSuggestionSimilarity float32 = 0.85

// Orphan is a staging directory nothing consumed.
type Orphan struct {
	Dir     string
	Archive string
}

// Orphans returns staged directories missing from consumed, sorted by
// directory name.
func Orphans(staged expander.Map, consumed map[string]struct{}) []Orphan {
	var out []Orphan
	for _, dir := range staged.Names() {
		if _, ok := consumed[dir]; ok {
			continue
		}
		out = append(out, Orphan{Dir: dir, Archive: staged[dir]})
	}
	return out
}

// Report logs each orphan as a warning and returns how many there were.
func Report(staged expander.Map, consumed map[string]struct{}) int {
	orphans := Orphans(staged, consumed)
	for _, o := range orphans {
		log.Warn().
			Str("dir", o.Dir).
			Str("archive", o.Archive).
			Msg("expanded archive was not matched by any catalog entry")
	}
	if len(orphans) == 0 {
		log.Info().Msg("all expanded archives were processed")
	}
	return len(orphans)
}

// UnusedOverride is an override row whose name matched no input file.
type UnusedOverride struct {
	Name string
	// Suggestion is the closest input name, empty when nothing is close.
	Suggestion string
	Similarity float32
}

// UnusedOverrides returns override rows never looked up by any input,
// sorted by name, each with the closest input name as a suggestion.
func UnusedOverrides(table overrides.Table, inputs map[string]struct{}) []UnusedOverride {
	candidates := make([]string, 0, len(inputs))
	for name := range inputs {
		candidates = append(candidates, name)
	}
	sort.Strings(candidates)

	var out []UnusedOverride
	for _, name := range table.Names() {
		if _, ok := inputs[name]; ok {
			continue
		}
		u := UnusedOverride{Name: name}
		for _, c := range candidates {
			similarity := edlib.JaroWinklerSimilarity(name, c)
			if similarity >= MinSuggestionSimilarity && similarity > u.Similarity {
				u.Suggestion = c
				u.Similarity = similarity
			}
		}
		out = append(out, u)
	}
	return out
}

// ReportOverrides logs each unused override row as a warning and returns
// how many there were.
func ReportOverrides(table overrides.Table, inputs map[string]struct{}) int {
	unused := UnusedOverrides(table, inputs)
	for _, u := range unused {
		ev := log.Warn().Str("name", u.Name)
		if u.Suggestion != "" {
			ev = ev.Str("did_you_mean", u.Suggestion)
		}
		ev.Msg("override row matches no archive or image")
	}
	return len(unused)
}
