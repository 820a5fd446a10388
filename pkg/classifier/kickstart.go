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
	"regexp"
	"strings"

	"github.com/ZaparooProject/whdprep/pkg/overrides"
	"github.com/ZaparooProject/whdprep/pkg/uaeconfig"
)

// kickNameRe matches kickstart identifiers such as "40068.a1200": five
// digits, a dot, then the Amiga model.
var kickNameRe = regexp.MustCompile(`(?i)^\d{5}\.a.*$`)

// ValidKickstart reports whether name is a usable kickstart identifier.
func ValidKickstart(name string) bool {
	return kickNameRe.MatchString(name)
}

// EffectiveKickstart picks the kickstart identifier in precedence order: a
// "kick" key in the WHDLoad overrides, then in the merged emulator config,
// then the analyzer hint. A key that is present but empty still wins and
// disables injection.
func EffectiveKickstart(b overrides.Bundle, merged *uaeconfig.Config, hint string) string {
	if b.WHDLoad != nil {
		if v, ok := b.WHDLoad.Get(KeyKickOverride); ok {
			return v
		}
	}
	if merged != nil {
		if v, ok := merged.Get(KeyKickOverride); ok {
			return v
		}
	}
	return hint
}

// ResolveKickstart returns the kickstart identifier to inject and whether
// there is a valid one.
func ResolveKickstart(b overrides.Bundle, merged *uaeconfig.Config, hint string) (string, bool) {
	kick := strings.TrimSpace(EffectiveKickstart(b, merged, hint))
	if kick == "" || !ValidKickstart(kick) {
		return "", false
	}
	return kick, true
}

// KickstartFile is the ROM file name for a kickstart identifier.
func KickstartFile(kick string) string {
	return "kick" + strings.ToUpper(kick)
}

// KickstartTimingFile is the companion relocation table for a kickstart.
func KickstartTimingFile(kick string) string {
	return KickstartFile(kick) + ".RTB"
}
