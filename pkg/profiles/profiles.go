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

// Package profiles defines the closed set of target hardware profiles and
// asset formats a game can be packaged for.
package profiles

import (
	"fmt"
	"path"
	"strings"
)

// ID identifies a target hardware profile.
type ID int

const (
	Baseline ID = iota
	EnhancedGraphics
	OpticalDisc
)

// All lists every profile ID in output order.
var All = []ID{Baseline, EnhancedGraphics, OpticalDisc}

func (id ID) String() string {
	switch id {
	case Baseline:
		return "baseline"
	case EnhancedGraphics:
		return "enhanced-graphics"
	case OpticalDisc:
		return "optical-disc"
	default:
		return fmt.Sprintf("profile(%d)", int(id))
	}
}

// Format identifies how a game's assets are packaged.
type Format int

const (
	InstalledLoader Format = iota
	FloppyImageSet
	OpticalImage
)

func (f Format) String() string {
	switch f {
	case InstalledLoader:
		return "installed-loader"
	case FloppyImageSet:
		return "floppy-image-set"
	case OpticalImage:
		return "optical-image"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

const (
	// OpticalMarker in a game identifier selects the optical-disc profile.
	OpticalMarker = "CD32"
	// EnhancedMarker in a game identifier selects the enhanced-graphics profile.
	EnhancedMarker = "AGA"
	// EnhancedFlag is the analyzer hardware flag requesting AGA graphics.
	EnhancedFlag = "ReqAGA"

	// FastMemSize is shared by every profile.
	FastMemSize = "8"
)

// FloppyExtensions are the raw floppy image types picked up by the floppy scan.
var FloppyExtensions = []string{".adf", ".adz", ".dms", ".ipf"}

// DiscDescriptorExtension marks the one file describing an optical image.
const DiscDescriptorExtension = ".cue"

// Profile is the emulator hardware setup for one target system.
type Profile struct {
	// Dir is the output subdirectory under the ROM root.
	Dir          string
	CPU          string
	Chipset      string
	ChipMemSize  string
	FastMemSize  string
	Kickstart    string
	KickstartExt string
	SuppressGUI  bool
	ID           ID
}

// Table maps every profile ID to its concrete settings.
type Table map[ID]Profile

// NewTable returns the stock profile table with firmware images resolved
// under biosDir.
func NewTable(biosDir string) Table {
	return Table{
		Baseline: {
			ID:          Baseline,
			Dir:         "amiga600",
			CPU:         "68000",
			Chipset:     "ecs",
			ChipMemSize: "2",
			FastMemSize: FastMemSize,
			Kickstart:   path.Join(biosDir, "kick40063.A600"),
		},
		EnhancedGraphics: {
			ID:          EnhancedGraphics,
			Dir:         "amiga1200",
			CPU:         "68020",
			Chipset:     "aga",
			ChipMemSize: "4",
			FastMemSize: FastMemSize,
			Kickstart:   path.Join(biosDir, "kick40068.A1200"),
		},
		OpticalDisc: {
			ID:           OpticalDisc,
			Dir:          "amigacd32",
			CPU:          "68020",
			Chipset:      "aga",
			ChipMemSize:  "2",
			FastMemSize:  FastMemSize,
			Kickstart:    path.Join(biosDir, "kick40060.CD32"),
			KickstartExt: path.Join(biosDir, "kick40060.CD32.ext"),
			SuppressGUI:  true,
		},
	}
}

// WithDirs returns a copy of the table with output directory names replaced
// for any profile present in dirs. Empty names are ignored.
func (t Table) WithDirs(dirs map[ID]string) Table {
	out := make(Table, len(t))
	for id, p := range t {
		if d, ok := dirs[id]; ok && d != "" {
			p.Dir = d
		}
		out[id] = p
	}
	return out
}

// Get returns the profile for id, panicking on an unknown ID since the set
// is closed.
func (t Table) Get(id ID) Profile {
	p, ok := t[id]
	if !ok {
		panic(fmt.Sprintf("profile table missing %s", id))
	}
	return p
}

// HasOpticalMarker reports whether the identifier names an optical-disc game.
func HasOpticalMarker(identifier string) bool {
	return strings.Contains(strings.ToUpper(identifier), OpticalMarker)
}

// HasEnhancedMarker reports whether the identifier names an AGA game.
func HasEnhancedMarker(identifier string) bool {
	return strings.Contains(strings.ToUpper(identifier), EnhancedMarker)
}

// IsFloppyImage reports whether name has a supported floppy image extension.
func IsFloppyImage(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range FloppyExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsDiscDescriptor reports whether name is an optical disc-description file.
func IsDiscDescriptor(name string) bool {
	return strings.EqualFold(path.Ext(name), DiscDescriptorExtension)
}
