// Package timeparse converts human-readable playback time strings into seconds.
// All parsing is tolerant: malformed input yields not-ok, never a panic.
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// tokenRegex matches a single time token: SS, MM:SS or H:MM:SS.
var tokenRegex = regexp.MustCompile(`\d+(?::[0-5]?\d){0,2}`)

// Parse converts "H:MM:SS", "MM:SS" or "SS" into a non-negative second count.
// Components after the first must stay below 60. Anything else is not a time.
func Parse(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false
	}

	total := 0
	for i, part := range parts {
		if part == "" {
			return 0, false
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, false
		}
		// Minutes and seconds in positional notation cap at 59.
		if i > 0 && (n > 59 || len(part) > 2) {
			return 0, false
		}
		total = total*60 + n
	}

	return total, true
}

// Format renders a second count the way players display it: "M:SS" below one
// hour, "H:MM:SS" above. Negative input is treated as zero. The output always
// round-trips through Parse to the same second count.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ParseCombined splits a combined "current / duration" string into its two
// second counts. The split is accepted only when the string contains exactly
// two valid time tokens with a real separator between them; any other shape is
// treated as ambiguous and both results are unknown.
func ParseCombined(s string) (current, duration int, ok bool) {
	matches := tokenRegex.FindAllStringIndex(s, -1)
	if len(matches) != 2 {
		return 0, 0, false
	}

	// A single malformed time like "1:75" tokenizes as two adjacent matches.
	// Require at least one separator character between the tokens that could
	// not itself be part of a time.
	if !separatesTokens(s[matches[0][1]:matches[1][0]]) {
		return 0, 0, false
	}

	current, ok = Parse(s[matches[0][0]:matches[0][1]])
	if !ok {
		return 0, 0, false
	}
	duration, ok = Parse(s[matches[1][0]:matches[1][1]])
	if !ok {
		return 0, 0, false
	}

	return current, duration, true
}

// separatesTokens reports whether the text between two time tokens contains a
// character that cannot belong to a time, i.e. anything but digits and colons.
func separatesTokens(between string) bool {
	for _, r := range between {
		if r != ':' && !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
