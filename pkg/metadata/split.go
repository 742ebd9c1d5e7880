// Package metadata implements heuristics over combined metadata strings, in
// particular splitting "Artist - Track" titles on a detected separator.
package metadata

import "strings"

// Separators lists the artist/track separator candidates in detection order:
// longest and most specific first, so that " -- " wins over " - " and a spaced
// dash wins over a bare colon. The ranking is a tunable policy, not a
// contract; callers with unusual corpora may prepend their own candidates.
var Separators = []string{
	" -- ",
	" — ",
	" – ",
	" - ",
	" ∙ ",
	" | ",
	" · ",
	": ",
}

// SplitArtistTrack splits a combined "Artist - Track" string on the first
// separator candidate it contains. Both sides must be non-empty after
// trimming; an absent or ambiguous separator yields no split.
func SplitArtistTrack(s string) (artist, trackTitle string, ok bool) {
	for _, sep := range Separators {
		idx := strings.Index(s, sep)
		if idx < 0 {
			continue
		}

		artist = strings.TrimSpace(s[:idx])
		trackTitle = strings.TrimSpace(s[idx+len(sep):])
		if artist == "" || trackTitle == "" {
			return "", "", false
		}
		return artist, trackTitle, true
	}

	return "", "", false
}
