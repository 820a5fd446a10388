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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const SchemaVersion = 1

// ErrSchemaMismatch is returned when a config file was written for a
// different schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Values is the on-disk shape of whdprep.toml.
type Values struct {
	Tools        Tools  `toml:"tools"`
	Target       Target `toml:"target"`
	Paths        Paths  `toml:"paths"`
	ConfigSchema int    `toml:"config_schema"`
	DebugLogging bool   `toml:"debug_logging"`
}

// Paths are resolved relative to the base directory unless absolute.
type Paths struct {
	Archives       string `toml:"archives" validate:"required"`
	Staging        string `toml:"staging" validate:"required"`
	Catalog        string `toml:"catalog" validate:"required"`
	CatalogFile    string `toml:"catalog_file" validate:"required"`
	Roms           string `toml:"roms" validate:"required"`
	FrontendConfig string `toml:"frontend_config" validate:"required"`
	Floppies       string `toml:"floppies" validate:"required"`
	Optical        string `toml:"optical" validate:"required"`
	SystemBase     string `toml:"system_base" validate:"required"`
	Kickstarts     string `toml:"kickstarts" validate:"required"`
	Overrides      string `toml:"overrides" validate:"required"`
}

// Tools are the external commands a run invokes.
type Tools struct {
	AnalyzerPythonPath string   `toml:"analyzer_pythonpath,omitempty"`
	Extract            []string `toml:"extract" validate:"required,min=1,dive,required"`
	Analyzer           []string `toml:"analyzer" validate:"required,min=1,dive,required"`
}

type Target struct {
	ProfileDirs     ProfileDirs `toml:"profile_dirs"`
	RomsMount       string      `toml:"roms_mount" validate:"required"`
	BiosDir         string      `toml:"bios_dir" validate:"required"`
	DefaultEmulator string      `toml:"default_emulator" validate:"required"`
}

// ProfileDirs renames the per-profile output directories. Empty keeps the
// stock name.
type ProfileDirs struct {
	Baseline         string `toml:"baseline,omitempty"`
	EnhancedGraphics string `toml:"enhanced_graphics,omitempty"`
	OpticalDisc      string `toml:"optical_disc,omitempty"`
}

// BaseDefaults match the layout of the original conversion folder.
var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Paths: Paths{
		Archives:       "lha",
		Staging:        "expand",
		Catalog:        "db",
		CatalogFile:    "database.csv",
		Roms:           "roms",
		FrontendConfig: "config",
		Floppies:       "adf",
		Optical:        "iso",
		SystemBase:     "system_base",
		Kickstarts:     "kickstart",
		Overrides:      "games.csv",
	},
	Tools: Tools{
		Extract:            []string{"lha", "xq"},
		Analyzer:           []string{"python3", "amiga68ktools/tools/scan_slaves.py"},
		AnalyzerPythonPath: "amiga68ktools/lib",
	},
	Target: Target{
		RomsMount:       "/recalbox/share/roms",
		BiosDir:         "/recalbox/share/bios",
		DefaultEmulator: "default_emulator",
	},
}

// clone copies v so decoding into it never writes through to shared
// slices.
//
//nolint:gocritic // config struct copied for immutability
func (v Values) clone() Values {
	v.Tools.Extract = slices.Clone(v.Tools.Extract)
	v.Tools.Analyzer = slices.Clone(v.Tools.Analyzer)
	return v
}

// Instance is a loaded config bound to its file and base directory.
type Instance struct {
	fs       afero.Fs
	baseDir  string
	cfgPath  string
	vals     Values
	defaults Values
}

// NewConfig loads the config file for baseDir, writing the defaults to disk
// first if no file exists. The WHDPREP_CFG environment variable overrides
// the file location.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(fs afero.Fs, baseDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(baseDir, CfgFile)
	}

	return newInstance(fs, baseDir, cfgPath, defaults)
}

// NewConfigAt is NewConfig with an explicit config file path.
//
//nolint:gocritic // config struct copied for immutability
func NewConfigAt(fs afero.Fs, baseDir, cfgPath string, defaults Values) (*Instance, error) {
	return newInstance(fs, baseDir, cfgPath, defaults)
}

//nolint:gocritic // config struct copied for immutability
func newInstance(fs afero.Fs, baseDir, cfgPath string, defaults Values) (*Instance, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	cfg := Instance{
		fs:       fs,
		baseDir:  absBase,
		cfgPath:  cfgPath,
		vals:     defaults.clone(),
		defaults: defaults,
	}

	exists, err := afero.Exists(fs, cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to check config file: %w", err)
	}
	if !exists {
		log.Info().Str("path", cfgPath).Msg("saving new default config to disk")

		err := fs.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err = cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := afero.ReadFile(c.fs, c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	// This ensures fields not present in the file retain their default values.
	newVals := c.defaults.clone()
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return ErrSchemaMismatch
	}

	if err := Validate(&newVals); err != nil {
		return err
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	// set current schema version
	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(c.fs, c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that every required setting is present.
func Validate(vals *Values) error {
	if err := validate.Struct(vals); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: %s failed %q check", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Values returns a copy of the loaded settings.
func (c *Instance) Values() Values {
	return c.vals
}

func (c *Instance) DebugLogging() bool {
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.vals.DebugLogging = enabled
}

func (c *Instance) BaseDir() string {
	return c.baseDir
}
