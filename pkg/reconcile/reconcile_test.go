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

package reconcile

import (
	"bytes"
	"testing"

	"github.com/ZaparooProject/whdprep/pkg/expander"
	"github.com/ZaparooProject/whdprep/pkg/overrides"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestOrphans(t *testing.T) {
	t.Parallel()

	staged := expander.Map{
		"Zed":     "Zed.lha",
		"FooGame": "FooGame.lha",
		"Alpha":   "Alpha_v1.lha",
	}
	consumed := map[string]struct{}{"FooGame": {}, "NotStaged": {}}

	assert.Equal(t, []Orphan{
		{Dir: "Alpha", Archive: "Alpha_v1.lha"},
		{Dir: "Zed", Archive: "Zed.lha"},
	}, Orphans(staged, consumed))
}

func TestOrphans_AllConsumed(t *testing.T) {
	t.Parallel()

	staged := expander.Map{"FooGame": "FooGame.lha"}
	assert.Empty(t, Orphans(staged, map[string]struct{}{"FooGame": {}}))
	assert.Empty(t, Orphans(expander.Map{}, nil))
}

func TestUnusedOverrides(t *testing.T) {
	t.Parallel()

	table := overrides.Table{
		"FooGame.lha":   overrides.Empty(),
		"FooGmae.lha":   overrides.Empty(),
		"Speedball.adf": overrides.Empty(),
		"Nothing.lha":   overrides.Empty(),
		"Speedbal2.adf": overrides.Empty(),
	}
	inputs := map[string]struct{}{
		"FooGame.lha":   {},
		"Speedball.adf": {},
	}

	unused := UnusedOverrides(table, inputs)

	require.Len(t, unused, 3)
	assert.Equal(t, "FooGmae.lha", unused[0].Name)
	assert.Equal(t, "FooGame.lha", unused[0].Suggestion)
	assert.Equal(t, "Nothing.lha", unused[1].Name)
	assert.Empty(t, unused[1].Suggestion)
	assert.Equal(t, "Speedbal2.adf", unused[2].Name)
	assert.Equal(t, "Speedball.adf", unused[2].Suggestion)
}

func TestUnusedOverrides_NoInputs(t *testing.T) {
	t.Parallel()

	unused := UnusedOverrides(overrides.Table{"Foo.lha": overrides.Empty()}, nil)

	require.Len(t, unused, 1)
	assert.Empty(t, unused[0].Suggestion)
	assert.Empty(t, UnusedOverrides(overrides.Table{}, nil))
}

//nolint:paralleltest // swaps the global logger
func TestReportOverrides_LogsSuggestion(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = orig })

	n := ReportOverrides(
		overrides.Table{"FooGmae.lha": overrides.Empty()},
		map[string]struct{}{"FooGame.lha": {}},
	)

	assert.Equal(t, 1, n)
	assert.Contains(t, buf.String(), `"did_you_mean":"FooGame.lha"`)
}

//nolint:paralleltest // swaps the global logger
func TestReport_LogsWarnings(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = orig })

	n := Report(expander.Map{"Orphan": "Orphan.lha"}, nil)

	assert.Equal(t, 1, n)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"dir":"Orphan"`)
}

// TestPropertyOrphansAreSetDifference checks orphans are exactly the staged
// names not consumed, in sorted order.
func TestPropertyOrphansAreSetDifference(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfDistinct(rapid.StringMatching(`[A-Za-z]{1,6}`), rapid.ID[string]).Draw(t, "names")
		staged := expander.Map{}
		consumed := map[string]struct{}{}
		for _, n := range names {
			staged[n] = n + ".lha"
			if rapid.Bool().Draw(t, "consumed "+n) {
				consumed[n] = struct{}{}
			}
		}

		orphans := Orphans(staged, consumed)
		for i, o := range orphans {
			if _, ok := consumed[o.Dir]; ok {
				t.Fatalf("consumed dir %s reported", o.Dir)
			}
			if i > 0 && orphans[i-1].Dir >= o.Dir {
				t.Fatalf("orphans not sorted: %v", orphans)
			}
		}
		if len(orphans)+len(consumed) != len(staged) {
			t.Fatalf("%d orphans + %d consumed != %d staged", len(orphans), len(consumed), len(staged))
		}
	})
}
