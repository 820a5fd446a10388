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

package classifier

import (
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/whdprep/pkg/catalog"
	"github.com/ZaparooProject/whdprep/pkg/overrides"
	"github.com/ZaparooProject/whdprep/pkg/profiles"
	"github.com/ZaparooProject/whdprep/pkg/uaeconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRoms  = "/amiga/roms"
	testMount = "/recalbox/share/roms"
)

func newTestEngine() *Engine {
	return NewEngine(profiles.NewTable("/recalbox/share/bios"), testRoms, testMount+"/")
}

func TestSelectProfile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		identifier string
		flags      catalog.Flags
		want       profiles.ID
	}{
		{name: "plain", identifier: "FooGame", flags: catalog.ParseFlags("ReqECS"), want: profiles.Baseline},
		{name: "aga flag", identifier: "FooGame", flags: catalog.ParseFlags("ReqAGA"), want: profiles.EnhancedGraphics},
		{name: "aga marker", identifier: "FooGameAga", want: profiles.EnhancedGraphics},
		{name: "cd32 marker", identifier: "BarCd32", want: profiles.OpticalDisc},
		{
			name:       "cd32 wins over aga",
			identifier: "BarAGACD32",
			flags:      catalog.ParseFlags("ReqAGA"),
			want:       profiles.OpticalDisc,
		},
		{name: "nil flags", identifier: "Plain", flags: nil, want: profiles.Baseline},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SelectProfile(tt.identifier, tt.flags))
		})
	}
}

func TestSelectRawProfile(t *testing.T) {
	t.Parallel()

	assert.Equal(t, profiles.Baseline, SelectRawProfile("Speedball"))
	assert.Equal(t, profiles.EnhancedGraphics, SelectRawProfile("Speedball (AGA)"))
	assert.Equal(t, profiles.EnhancedGraphics, SelectRawProfile("disk1", "Alien Breed aga"))
	assert.Equal(t, profiles.Baseline, SelectRawProfile())
}

func TestDefaultConfig_InstalledLoader(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	cfg := e.DefaultConfig(&Request{
		Profile:   profiles.EnhancedGraphics,
		Format:    profiles.InstalledLoader,
		HiddenDir: ".FooGame",
	})

	assert.Equal(t, []uaeconfig.Pair{
		{Key: "cpu_type", Value: "68020"},
		{Key: "chipset", Value: "aga"},
		{Key: "chipmem_size", Value: "4"},
		{Key: "fastmem_size", Value: "8"},
		{Key: "kickstart_rom_file", Value: "/recalbox/share/bios/kick40068.A1200"},
		{Key: "boot1", Value: "dh0"},
		{Key: "filesystem2", Value: "rw,DH0:GAME:/recalbox/share/roms/amiga1200/.FooGame/,0"},
	}, cfg.Pairs())
}

func TestDefaultConfig_FloppySlots(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	cfg := e.DefaultConfig(&Request{
		Profile:      profiles.Baseline,
		Format:       profiles.FloppyImageSet,
		HiddenDir:    ".Speedball",
		FloppyImages: []string{"a.adf", "b.adf", "c.adf", "d.adf", "e.adf"},
	})

	assert.Equal(t, []string{
		"cpu_type", "chipset", "chipmem_size", "fastmem_size", "kickstart_rom_file",
		"boot1", "nr_floppies", "floppy0", "floppy1", "floppy2", "floppy3",
	}, cfg.Keys())
	v, _ := cfg.Get("floppy0")
	assert.Equal(t, "/recalbox/share/roms/amiga600/.Speedball/a.adf", v)
	v, _ = cfg.Get("floppy3")
	assert.Equal(t, "/recalbox/share/roms/amiga600/.Speedball/d.adf", v)
	v, _ = cfg.Get("nr_floppies")
	assert.Equal(t, "4", v)
	v, _ = cfg.Get("boot1")
	assert.Equal(t, "df0", v)
	assert.False(t, cfg.Has("floppy4"))
}

func TestDefaultConfig_Optical(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	cfg := e.DefaultConfig(&Request{
		Profile:   profiles.OpticalDisc,
		Format:    profiles.OpticalImage,
		HiddenDir: ".Bar",
		DiscFile:  "bar.cue",
	})

	assert.Equal(t, []uaeconfig.Pair{
		{Key: "cpu_type", Value: "68020"},
		{Key: "chipset", Value: "aga"},
		{Key: "chipmem_size", Value: "2"},
		{Key: "fastmem_size", Value: "8"},
		{Key: "kickstart_rom_file", Value: "/recalbox/share/bios/kick40060.CD32"},
		{Key: "kickstart_ext_rom_file", Value: "/recalbox/share/bios/kick40060.CD32.ext"},
		{Key: "cdimage0", Value: "/recalbox/share/roms/amigacd32/.Bar/bar.cue,image"},
		{Key: "boot1", Value: "cd0"},
		{Key: "use_gui", Value: "no"},
	}, cfg.Pairs())
}

func TestClassify_NoOverrides(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	d := e.Classify(&Request{
		Profile:     profiles.EnhancedGraphics,
		Format:      profiles.InstalledLoader,
		Identifier:  "FooGame",
		HiddenDir:   ".FooGame",
		DefaultName: "FooGame",
		Source:      "/amiga/expand/FooGame",
		SourceIsDir: true,
		Overrides:   overrides.Empty(),
	})

	assert.Equal(t, filepath.Join(testRoms, "amiga1200"), d.OutputDir)
	assert.Equal(t, filepath.Join(testRoms, "amiga1200", ".FooGame"), d.HiddenPath())
	assert.Equal(t, filepath.Join(testRoms, "amiga1200", "FooGame.uae"), d.DescriptorPath())
	assert.Equal(t, filepath.Join(testRoms, "amiga1200", "FooGame.uae.p2k.cfg"), d.CompanionPath())
	assert.Equal(t, "FooGame", d.DisplayName)
	assert.Empty(t, d.Kickstart)
	assert.True(t, d.Companion.Empty())
	assert.Equal(t, 7, d.Config.Len())
}

func TestClassify_OverridesMerged(t *testing.T) {
	t.Parallel()

	b := overrides.Empty()
	b.DisplayName = "Baz"
	b.Emulator = uaeconfig.New(
		uaeconfig.Pair{Key: "chipmem_size", Value: "8"},
		uaeconfig.Pair{Key: "cpu_speed", Value: "max"},
	)
	b.Companion = uaeconfig.New(uaeconfig.Pair{Key: "button_a", Value: "space"})
	b.WHDLoad = uaeconfig.New(uaeconfig.Pair{Key: "kick", Value: "40068.a1200"})

	e := newTestEngine()
	d := e.Classify(&Request{
		Profile:     profiles.EnhancedGraphics,
		Format:      profiles.InstalledLoader,
		HiddenDir:   ".FooGame",
		DefaultName: "FooGame",
		KickHint:    "40063.a600",
		Overrides:   b,
	})

	assert.Equal(t, "Baz", d.DisplayName)
	assert.Equal(t, filepath.Join(testRoms, "amiga1200", "Baz.uae"), d.DescriptorPath())
	assert.Equal(t, []string{
		"cpu_type", "chipset", "chipmem_size", "fastmem_size", "kickstart_rom_file",
		"boot1", "filesystem2", "cpu_speed",
	}, d.Config.Keys())
	v, _ := d.Config.Get("chipmem_size")
	assert.Equal(t, "8", v)
	assert.Equal(t, "40068.a1200", d.Kickstart)

	v, ok := d.Companion.Get("button_a")
	require.True(t, ok)
	assert.Equal(t, "space", v)

	// decisions must not alias the override bundle
	d.Companion.Set("button_b", "return")
	assert.False(t, b.Companion.Has("button_b"))
}

func TestClassify_KickstartOnlyForInstalledLoader(t *testing.T) {
	t.Parallel()

	b := overrides.Empty()
	b.WHDLoad = uaeconfig.New(uaeconfig.Pair{Key: "kick", Value: "40068.a1200"})

	e := newTestEngine()
	d := e.Classify(&Request{
		Profile:      profiles.Baseline,
		Format:       profiles.FloppyImageSet,
		HiddenDir:    ".Speedball",
		DefaultName:  "Speedball",
		FloppyImages: []string{"a.adf"},
		KickHint:     "40063.a600",
		Overrides:    b,
	})

	assert.Empty(t, d.Kickstart)
}

func TestResolveKickstart(t *testing.T) {
	t.Parallel()

	withWHD := func(v string) overrides.Bundle {
		b := overrides.Empty()
		b.WHDLoad = uaeconfig.New(uaeconfig.Pair{Key: "kick", Value: v})
		return b
	}

	tests := []struct {
		name   string
		bundle overrides.Bundle
		merged *uaeconfig.Config
		hint   string
		want   string
		wantOK bool
	}{
		{name: "hint only", bundle: overrides.Empty(), hint: "40063.a600", want: "40063.a600", wantOK: true},
		{name: "no hint", bundle: overrides.Empty(), hint: "", wantOK: false},
		{name: "invalid hint", bundle: overrides.Empty(), hint: "kick13", wantOK: false},
		{name: "whd wins", bundle: withWHD("40068.A1200"), hint: "40063.a600", want: "40068.A1200", wantOK: true},
		{
			name:   "emulator config before hint",
			bundle: overrides.Empty(),
			merged: uaeconfig.New(uaeconfig.Pair{Key: "kick", Value: "37175.a500"}),
			hint:   "40063.a600",
			want:   "37175.a500",
			wantOK: true,
		},
		{
			name:   "whd before emulator config",
			bundle: withWHD("40068.a1200"),
			merged: uaeconfig.New(uaeconfig.Pair{Key: "kick", Value: "37175.a500"}),
			want:   "40068.a1200",
			wantOK: true,
		},
		{name: "empty override disables hint", bundle: withWHD(""), hint: "40063.a600", wantOK: false},
		{name: "invalid override", bundle: withWHD("1.3"), hint: "40063.a600", wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ResolveKickstart(tt.bundle, tt.merged, tt.hint)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidKickstart(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidKickstart("40068.a1200"))
	assert.True(t, ValidKickstart("40063.A600"))
	assert.True(t, ValidKickstart("34005.a"))
	assert.False(t, ValidKickstart("4006.a1200"))
	assert.False(t, ValidKickstart("40068.b1200"))
	assert.False(t, ValidKickstart("x40068.a1200"))
	assert.False(t, ValidKickstart(""))
}

func TestKickstartFiles(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "kick40068.A1200", KickstartFile("40068.a1200"))
	assert.Equal(t, "kick40068.A1200.RTB", KickstartTimingFile("40068.a1200"))
}
