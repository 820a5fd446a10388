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
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// CopyFile copies a single file, keeping its permissions and modification
// time. The destination's parent directory must exist.
func CopyFile(fs afero.Fs, sourcePath, destPath string) error {
	info, err := fs.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to stat source file %s: %w", sourcePath, err)
	}

	inputFile, err := fs.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", sourcePath, err)
	}
	defer func() {
		_ = inputFile.Close()
	}()

	outputFile, err := fs.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err = io.Copy(outputFile, inputFile); err != nil {
		_ = outputFile.Close()
		return fmt.Errorf("failed to copy file content: %w", err)
	}
	if err = outputFile.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}

	if err := fs.Chtimes(destPath, info.ModTime(), info.ModTime()); err != nil {
		log.Debug().Err(err).Str("path", destPath).Msg("failed to preserve modification time")
	}
	return nil
}

// CopyTree recursively copies the directory src into dst. Existing
// directories in dst are merged into and existing files are overwritten.
func CopyTree(fs afero.Fs, src, dst string) error {
	err := afero.Walk(fs, src, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to resolve relative path: %w", err)
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			if err := fs.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			return nil
		}
		return CopyFile(fs, path, target)
	})
	if err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return nil
}

// CopyPath copies src to dst, recursing when src is a directory.
func CopyPath(fs afero.Fs, src, dst string) error {
	info, err := fs.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if info.IsDir() {
		return CopyTree(fs, src, dst)
	}
	return CopyFile(fs, src, dst)
}

// OverlayDir copies every top-level entry of src into dst. Later entries
// win on name collisions. A missing src is not an error.
func OverlayDir(fs afero.Fs, src, dst string) error {
	exists, err := afero.DirExists(fs, src)
	if err != nil {
		return fmt.Errorf("failed to check overlay directory: %w", err)
	}
	if !exists {
		return nil
	}

	entries, err := afero.ReadDir(fs, src)
	if err != nil {
		return fmt.Errorf("failed to read overlay directory %s: %w", src, err)
	}
	for _, entry := range entries {
		if err := CopyPath(fs, filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// ClearDir removes path and everything under it, then recreates it empty.
func ClearDir(fs afero.Fs, path string) error {
	if err := fs.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	if err := fs.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	return nil
}
