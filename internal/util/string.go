// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// UNICODE: Widths are display columns, so "µs" and CJK labels line up.

// StringWidth returns the display width of a string.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateWidth truncates a string to a maximum display width,
// ending it with "..." when it is cut.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadLeft right-aligns s in a field of width columns.
func PadLeft(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return strings.Repeat(" ", gap) + s
}

// PadRight left-aligns s in a field of width columns.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// ShortID returns the first n runes of an identifier.
func ShortID(id string, n int) string {
	runes := []rune(id)
	if n <= 0 || len(runes) <= n {
		return id
	}
	return string(runes[:n])
}
