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

package overrides

import (
	"testing"

	"github.com/ZaparooProject/whdprep/pkg/uaeconfig"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Archive Name,Game,WHD Config,UAE Config,P2K Config,RetroArch Config,Emulator\n"

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()

	table, err := Load(fs, "/amiga/games.csv")

	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestLoad_EmptyFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/amiga/games.csv", []byte("  \n"), 0o644))

	table, err := Load(fs, "/amiga/games.csv")

	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestLoad_HeaderOnly(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/amiga/games.csv", []byte(header), 0o644))

	table, err := Load(fs, "/amiga/games.csv")

	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestParse_FullRow(t *testing.T) {
	t.Parallel()

	data := header +
		`FooGame.lha,Baz,kick=40068.a1200,chipmem_size=8;cpu_speed=max,` +
		`"button_a=space; button_b=return","video_shader=""crt""; input_player1_a=""x y""",Amiberry` + "\n"

	table, err := Parse([]byte(data))

	require.NoError(t, err)
	require.Contains(t, table, "FooGame.lha")
	b := table["FooGame.lha"]

	assert.Equal(t, "Baz", b.DisplayName)
	assert.Equal(t, "amiberry", b.EmulatorChoice)
	assert.Equal(t, []uaeconfig.Pair{{Key: "kick", Value: "40068.a1200"}}, b.WHDLoad.Pairs())
	assert.Equal(t, []uaeconfig.Pair{
		{Key: "chipmem_size", Value: "8"},
		{Key: "cpu_speed", Value: "max"},
	}, b.Emulator.Pairs())
	assert.Equal(t, []uaeconfig.Pair{
		{Key: "button_a", Value: "space"},
		{Key: "button_b", Value: "return"},
	}, b.Companion.Pairs())
	assert.Equal(t, []uaeconfig.Pair{
		{Key: "video_shader", Value: "crt"},
		{Key: "input_player1_a", Value: "x y"},
	}, b.Frontend.Pairs())
}

func TestParse_SkipRules(t *testing.T) {
	t.Parallel()

	data := header +
		",Nameless,,,,,\n" +
		"Empty.lha,,,,,,\n" +
		"Malformed.lha,,,novalue;=5,,,\n" +
		"NameOnly.lha,Name Only,,,,,\n" +
		"EmuOnly.lha,,,,,,UAE4ARM\n" +
		"P2KOnly.lha,,,,fire=ctrl,,\n"

	table, err := Parse([]byte(data))

	require.NoError(t, err)
	assert.Equal(t, []string{"EmuOnly.lha", "NameOnly.lha", "P2KOnly.lha"}, table.Names())
	assert.Equal(t, "uae4arm", table["EmuOnly.lha"].EmulatorChoice)
}

func TestParse_DuplicateRowsLastWins(t *testing.T) {
	t.Parallel()

	data := header +
		"Foo.lha,First,,,,,\n" +
		"Foo.lha,Second,,,,,\n"

	table, err := Parse([]byte(data))

	require.NoError(t, err)
	assert.Equal(t, "Second", table["Foo.lha"].DisplayName)
}

func TestParse_ToleratesBOMAndRaggedRows(t *testing.T) {
	t.Parallel()

	data := "\ufeffArchive Name,Game,UAE Config\n" +
		"Foo.lha,Foo Deluxe\n" +
		"Bar.lha,,chipmem_size=4,extra,columns\n"

	table, err := Parse([]byte(data))

	require.NoError(t, err)
	assert.Equal(t, "Foo Deluxe", table["Foo.lha"].DisplayName)
	v, ok := table["Bar.lha"].Emulator.Get("chipmem_size")
	require.True(t, ok)
	assert.Equal(t, "4", v)
}

func TestTable_Lookup(t *testing.T) {
	t.Parallel()

	table := Table{"Foo.lha": {DisplayName: "Foo", WHDLoad: uaeconfig.New(), Emulator: uaeconfig.New(),
		Frontend: uaeconfig.New(), Companion: uaeconfig.New()}}

	assert.Equal(t, "Foo", table.Lookup("Foo.lha").DisplayName)

	miss := table.Lookup("Missing.lha")
	assert.True(t, miss.IsEmpty())
	assert.NotNil(t, miss.Emulator)
	assert.NotNil(t, miss.Companion)
}

func TestParsePairs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []uaeconfig.Pair
	}{
		{name: "empty", in: "", want: nil},
		{name: "semicolons", in: "a=1;b=2", want: []uaeconfig.Pair{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}},
		{name: "whitespace", in: "a=1 b=2\tc=3", want: []uaeconfig.Pair{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}, {Key: "c", Value: "3"}}},
		{name: "value keeps later equals", in: "gfx=a=b", want: []uaeconfig.Pair{{Key: "gfx", Value: "a=b"}}},
		{name: "drops malformed", in: "junk;a=1;=2", want: []uaeconfig.Pair{{Key: "a", Value: "1"}}},
		{name: "empty value kept", in: "a=", want: []uaeconfig.Pair{{Key: "a", Value: ""}}},
		{name: "repeat keeps first position", in: "a=1;b=2;a=3", want: []uaeconfig.Pair{{Key: "a", Value: "3"}, {Key: "b", Value: "2"}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, ParsePairs(tt.in).Pairs())
		})
	}
}

func TestParseQuotedPairs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []uaeconfig.Pair
	}{
		{name: "empty", in: "", want: nil},
		{name: "quoted", in: `a="1";b="two words"`, want: []uaeconfig.Pair{{Key: "a", Value: "1"}, {Key: "b", Value: "two words"}}},
		{name: "unquoted whitespace separated", in: "a=1 b=2", want: []uaeconfig.Pair{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}},
		{name: "drops malformed", in: "junk; a=1", want: []uaeconfig.Pair{{Key: "a", Value: "1"}}},
		{name: "empty value does not swallow next pair", in: "a= b=1", want: []uaeconfig.Pair{{Key: "a", Value: ""}, {Key: "b", Value: "1"}}},
		{name: "separators inside quotes kept", in: `a="x;y z" b=2`, want: []uaeconfig.Pair{{Key: "a", Value: "x;y z"}, {Key: "b", Value: "2"}}},
		{name: "quote in key dropped", in: `x"y=1`, want: nil},
		{name: "spaced equals is malformed", in: `a = "x" b=1`, want: []uaeconfig.Pair{{Key: "b", Value: "1"}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, ParseQuotedPairs(tt.in).Pairs())
		})
	}
}
