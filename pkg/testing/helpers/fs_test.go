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

package helpers

import (
	"context"
	"testing"

	"github.com/ZaparooProject/whdprep/pkg/helpers/command"
	"github.com/ZaparooProject/whdprep/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSHelper_CreateDirectoryStructure(t *testing.T) {
	t.Parallel()

	h := NewMemoryFS()
	require.NoError(t, h.CreateDirectoryStructure("/amiga", map[string]any{
		"adf": map[string]any{
			"Speedball.adf": "S",
			"Game":          map[string]any{"a.adf": []byte("A")},
		},
		"iso": nil,
	}))

	assert.True(t, h.FileExists("/amiga/iso"))
	names, err := h.ListFiles("/amiga/adf")
	require.NoError(t, err)
	assert.Equal(t, []string{"Game", "Speedball.adf"}, names)

	snap, err := h.Snapshot("/amiga")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"/amiga/adf/Speedball.adf": "S",
		"/amiga/adf/Game/a.adf":    "A",
	}, snap)

	require.Error(t, h.CreateDirectoryStructure("/bad", map[string]any{"x": 1}))
}

func TestFSHelper_SnapshotMissingRoot(t *testing.T) {
	t.Parallel()

	snap, err := NewMemoryFS().Snapshot("/nowhere")
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestExpectExtractionAndAnalyzer(t *testing.T) {
	t.Parallel()

	h := NewMemoryFS()
	cmd := &mocks.MockCommandExecutor{}
	ExpectExtraction(cmd, h.Fs, map[string][]string{"Foo.lha": {"Foo/Foo.slave"}})
	ran := false
	ExpectAnalyzer(cmd, h.Fs, "database.csv", []string{"Foo/Foo.slave;;"}, func() { ran = true })

	err := cmd.Run(context.Background(), command.Options{Dir: "/scratch"}, "lha", "xq", "/amiga/lha/Foo.lha")
	require.NoError(t, err)
	got, err := h.ReadString("/scratch/Foo/Foo.slave")
	require.NoError(t, err)
	assert.Equal(t, "Foo.lha", got)

	stdout, _, err := cmd.Output(context.Background(), command.Options{}, "python3", "scan.py", "/in", "/db")
	require.NoError(t, err)
	assert.Equal(t, "Foo/Foo.slave;;", string(stdout))
	assert.True(t, ran)

	got, err = h.ReadString("/db/database.csv")
	require.NoError(t, err)
	assert.Equal(t, CatalogHeader+"Foo/Foo.slave;;\n", got)
}
