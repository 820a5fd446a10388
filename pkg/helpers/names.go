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
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Stem returns the file name without its directory or final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// HiddenName returns name with a leading dot so it is hidden from a normal
// directory listing on the target frontend.
func HiddenName(name string) string {
	return "." + name
}

// SafeFileName turns a display name into something usable as a single path
// element: NFC normalised, path separators replaced and surrounding space
// trimmed.
func SafeFileName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	name = strings.NewReplacer("/", "-", "\\", "-", "\x00", "").Replace(name)
	if name == "." || name == ".." {
		return strings.Repeat("_", len(name))
	}
	return name
}
