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

// Package classifier decides which hardware profile a game targets and
// builds its emulator configuration: profile defaults in a fixed key order
// with user overrides merged on top.
package classifier

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZaparooProject/whdprep/pkg/helpers"
	"github.com/ZaparooProject/whdprep/pkg/overrides"
	"github.com/ZaparooProject/whdprep/pkg/profiles"
	"github.com/ZaparooProject/whdprep/pkg/uaeconfig"
)

// Descriptor keys written to .uae files.
const (
	KeyCPUType        = "cpu_type"
	KeyChipset        = "chipset"
	KeyChipMemSize    = "chipmem_size"
	KeyFastMemSize    = "fastmem_size"
	KeyKickstart      = "kickstart_rom_file"
	KeyKickstartExt   = "kickstart_ext_rom_file"
	KeyBoot           = "boot1"
	KeyFilesystem     = "filesystem2"
	KeyFloppyCount    = "nr_floppies"
	KeyFloppyPrefix   = "floppy"
	KeyCDImage        = "cdimage0"
	KeyUseGUI         = "use_gui"
	KeyKickOverride   = "kick"
	BootHardDrive     = "dh0"
	BootFloppy        = "df0"
	BootCD            = "cd0"
	MaxFloppies       = 4
	DescriptorExt     = ".uae"
	CompanionExt      = ".uae.p2k.cfg"
	cdImageKindSuffix = ",image"
)

// Request is everything the engine needs to know about one game.
type Request struct {
	Overrides overrides.Bundle
	// Identifier is the logical game name used for profile markers.
	Identifier string
	// HiddenDir is the per-game asset directory name, leading dot included.
	HiddenDir string
	// DefaultName is the display name used when no override renames it.
	DefaultName string
	// KickHint is the analyzer's kickstart suggestion, installed-loader only.
	KickHint string
	// DiscFile is the disc-description file name, optical-image only.
	DiscFile string
	// Source is the payload to copy: a directory, or for single-image
	// floppy games a file.
	Source string
	// FloppyImages are image file names in the order they are inserted.
	FloppyImages []string
	Profile      profiles.ID
	Format       profiles.Format
	SourceIsDir  bool
}

// Decision is the engine's verdict for one game, ready to materialize.
type Decision struct {
	Config    *uaeconfig.Config
	Companion *uaeconfig.Config
	// OutputDir is the profile directory under the ROM root.
	OutputDir   string
	HiddenDir   string
	DisplayName string
	// Kickstart is the validated kickstart identifier to inject, or empty.
	Kickstart    string
	Source       string
	Identifier   string
	FloppyImages []string
	Profile      profiles.Profile
	Format       profiles.Format
	SourceIsDir  bool
}

// HiddenPath is the game's asset directory on disk.
func (d *Decision) HiddenPath() string {
	return filepath.Join(d.OutputDir, d.HiddenDir)
}

// DescriptorPath is the visible .uae file next to the hidden directory.
func (d *Decision) DescriptorPath() string {
	return filepath.Join(d.OutputDir, helpers.SafeFileName(d.DisplayName)+DescriptorExt)
}

// CompanionPath is the pad-to-key mapping file for the descriptor.
func (d *Decision) CompanionPath() string {
	return filepath.Join(d.OutputDir, helpers.SafeFileName(d.DisplayName)+CompanionExt)
}

// HardwareFlags is the subset of catalog flag behaviour profile selection
// needs.
type HardwareFlags interface {
	Has(flag string) bool
}

// SelectProfile picks the profile for a catalogued game. First match wins:
// optical marker in the identifier, then the AGA flag or marker, then
// baseline.
func SelectProfile(identifier string, flags HardwareFlags) profiles.ID {
	switch {
	case profiles.HasOpticalMarker(identifier):
		return profiles.OpticalDisc
	case flags != nil && flags.Has(profiles.EnhancedFlag), profiles.HasEnhancedMarker(identifier):
		return profiles.EnhancedGraphics
	default:
		return profiles.Baseline
	}
}

// SelectRawProfile picks the profile for a raw floppy game, which has no
// hardware flags. Any of the given names carrying the AGA marker selects
// enhanced graphics.
func SelectRawProfile(names ...string) profiles.ID {
	for _, n := range names {
		if profiles.HasEnhancedMarker(n) {
			return profiles.EnhancedGraphics
		}
	}
	return profiles.Baseline
}

// Engine turns classification requests into decisions using a profile
// table and the ROM tree layout.
type Engine struct {
	profiles  profiles.Table
	romsDir   string
	romsMount string
}

// NewEngine creates an engine writing decisions under romsDir. romsMount is
// where romsDir is visible to the emulator on the target device.
func NewEngine(table profiles.Table, romsDir, romsMount string) *Engine {
	return &Engine{
		profiles:  table,
		romsDir:   romsDir,
		romsMount: strings.TrimSuffix(romsMount, "/"),
	}
}

// Profiles returns the engine's profile table.
func (e *Engine) Profiles() profiles.Table {
	return e.profiles
}

// OutputDir is the on-disk directory for a profile.
func (e *Engine) OutputDir(id profiles.ID) string {
	return filepath.Join(e.romsDir, e.profiles.Get(id).Dir)
}

// assetPath is how the emulator on the target device sees a path inside a
// game's hidden directory.
func (e *Engine) assetPath(p profiles.Profile, hiddenDir string) string {
	return e.romsMount + "/" + p.Dir + "/" + hiddenDir + "/"
}

// DefaultConfig builds the profile and format defaults in descriptor order.
func (e *Engine) DefaultConfig(req *Request) *uaeconfig.Config {
	p := e.profiles.Get(req.Profile)

	cfg := uaeconfig.New(
		uaeconfig.Pair{Key: KeyCPUType, Value: p.CPU},
		uaeconfig.Pair{Key: KeyChipset, Value: p.Chipset},
		uaeconfig.Pair{Key: KeyChipMemSize, Value: p.ChipMemSize},
		uaeconfig.Pair{Key: KeyFastMemSize, Value: p.FastMemSize},
		uaeconfig.Pair{Key: KeyKickstart, Value: p.Kickstart},
	)
	if p.KickstartExt != "" {
		cfg.Set(KeyKickstartExt, p.KickstartExt)
	}

	base := e.assetPath(p, req.HiddenDir)
	switch req.Format {
	case profiles.InstalledLoader:
		cfg.Set(KeyBoot, BootHardDrive)
		cfg.Set(KeyFilesystem, "rw,DH0:GAME:"+base+",0")
	case profiles.FloppyImageSet:
		cfg.Set(KeyBoot, BootFloppy)
		cfg.Set(KeyFloppyCount, strconv.Itoa(MaxFloppies))
		for i, img := range req.FloppyImages {
			if i >= MaxFloppies {
				break
			}
			cfg.Set(KeyFloppyPrefix+strconv.Itoa(i), base+img)
		}
	case profiles.OpticalImage:
		cfg.Set(KeyCDImage, base+req.DiscFile+cdImageKindSuffix)
		cfg.Set(KeyBoot, BootCD)
	}

	if p.SuppressGUI {
		cfg.Set(KeyUseGUI, "no")
	}
	return cfg
}

// Classify produces the full decision for a game: defaults merged with the
// emulator overrides, the resolved display name, the companion mapping and
// the kickstart to inject.
func (e *Engine) Classify(req *Request) Decision {
	cfg := e.DefaultConfig(req)
	cfg.Merge(req.Overrides.Emulator)

	d := Decision{
		OutputDir:    e.OutputDir(req.Profile),
		HiddenDir:    req.HiddenDir,
		Profile:      e.profiles.Get(req.Profile),
		Format:       req.Format,
		DisplayName:  ResolveDisplayName(req.Overrides, req.DefaultName),
		Config:       cfg,
		Companion:    uaeconfig.New(),
		Source:       req.Source,
		SourceIsDir:  req.SourceIsDir,
		Identifier:   req.Identifier,
		FloppyImages: req.FloppyImages,
	}
	if req.Overrides.Companion != nil {
		d.Companion = req.Overrides.Companion.Clone()
	}

	if req.Format == profiles.InstalledLoader {
		if kick, ok := ResolveKickstart(req.Overrides, cfg, req.KickHint); ok {
			d.Kickstart = kick
		}
	}
	return d
}

// ResolveDisplayName returns the override's display name when set,
// otherwise def.
func ResolveDisplayName(b overrides.Bundle, def string) string {
	if b.DisplayName != "" {
		return b.DisplayName
	}
	return def
}
