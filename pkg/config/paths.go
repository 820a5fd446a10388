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

package config

import (
	"path/filepath"

	"github.com/ZaparooProject/whdprep/pkg/profiles"
)

// resolve anchors relative paths at the base directory.
func (c *Instance) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.baseDir, p)
}

func (c *Instance) ArchivesDir() string       { return c.resolve(c.vals.Paths.Archives) }
func (c *Instance) StagingDir() string        { return c.resolve(c.vals.Paths.Staging) }
func (c *Instance) CatalogDir() string        { return c.resolve(c.vals.Paths.Catalog) }
func (c *Instance) RomsDir() string           { return c.resolve(c.vals.Paths.Roms) }
func (c *Instance) FrontendConfigDir() string { return c.resolve(c.vals.Paths.FrontendConfig) }
func (c *Instance) FloppiesDir() string       { return c.resolve(c.vals.Paths.Floppies) }
func (c *Instance) OpticalDir() string        { return c.resolve(c.vals.Paths.Optical) }
func (c *Instance) SystemBaseDir() string     { return c.resolve(c.vals.Paths.SystemBase) }
func (c *Instance) KickstartsDir() string     { return c.resolve(c.vals.Paths.Kickstarts) }
func (c *Instance) OverridesFile() string     { return c.resolve(c.vals.Paths.Overrides) }

// CatalogFile is the analyzer's output table inside the catalog directory.
func (c *Instance) CatalogFile() string {
	return filepath.Join(c.CatalogDir(), c.vals.Paths.CatalogFile)
}

func (c *Instance) ExtractCommand() []string {
	return append([]string(nil), c.vals.Tools.Extract...)
}

func (c *Instance) AnalyzerCommand() []string {
	return append([]string(nil), c.vals.Tools.Analyzer...)
}

// AnalyzerEnv returns extra environment for the analyzer process.
func (c *Instance) AnalyzerEnv() []string {
	if c.vals.Tools.AnalyzerPythonPath == "" {
		return nil
	}
	return []string{"PYTHONPATH=" + c.resolve(c.vals.Tools.AnalyzerPythonPath)}
}

// RomsMount is where the output ROM tree lives on the target device.
func (c *Instance) RomsMount() string {
	return c.vals.Target.RomsMount
}

func (c *Instance) DefaultEmulator() string {
	return c.vals.Target.DefaultEmulator
}

// Profiles builds the profile table for the configured target.
func (c *Instance) Profiles() profiles.Table {
	dirs := c.vals.Target.ProfileDirs
	return profiles.NewTable(c.vals.Target.BiosDir).WithDirs(map[profiles.ID]string{
		profiles.Baseline:         dirs.Baseline,
		profiles.EnhancedGraphics: dirs.EnhancedGraphics,
		profiles.OpticalDisc:      dirs.OpticalDisc,
	})
}
