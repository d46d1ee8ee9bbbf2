// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package tokens

import (
	"fmt"
	"html"
	"unicode/utf8"
)

const (
	// AnonymousGuestName is shown for guests that did not pick a name.
	AnonymousGuestName = "Anonymous guest"

	guestNameFormat = "%s (Guest)"
	maxGuestNameLen = 64
	guestNameCut    = 56
	guestNameStep   = 5
)

// PrepareGuestName escapes a guest supplied display name and wraps it in the
// guest suffix, shortening the raw name until the result is under 64
// characters.
func PrepareGuestName(name string) string {
	if name == "" {
		return AnonymousGuestName
	}

	raw := []rune(name)
	out := formatGuestName(raw)
	for cut := guestNameCut; utf8.RuneCountInString(out) >= maxGuestNameLen && cut > 0; cut -= guestNameStep {
		out = formatGuestName(raw[:min(cut, len(raw))])
	}
	return out
}

func formatGuestName(raw []rune) string {
	return fmt.Sprintf(guestNameFormat, html.EscapeString(string(raw)))
}
