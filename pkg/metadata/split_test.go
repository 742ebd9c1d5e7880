package metadata

import "testing"

func TestSplitArtistTrack(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantArtist string
		wantTrack  string
		wantOK     bool
	}{
		{"plain dash", "Artist - Song", "Artist", "Song", true},
		{"en dash", "Artist – Song", "Artist", "Song", true},
		{"em dash", "Artist — Song", "Artist", "Song", true},
		{"double dash", "Artist -- Song", "Artist", "Song", true},
		{"pipe", "Artist | Song", "Artist", "Song", true},
		{"colon", "Artist: Song", "Artist", "Song", true},
		{"suffix kept on track side", "Artist - Song (Official Video)", "Artist", "Song (Official Video)", true},
		{"first separator wins", "Artist - Song - Live", "Artist", "Song - Live", true},
		{"hyphenated name intact", "Jay-Z - Song", "Jay-Z", "Song", true},
		{"no separator", "Just A Title", "", "", false},
		{"empty", "", "", "", false},
		{"separator at start", " - Song", "", "", false},
		{"separator at end", "Artist - ", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artist, trackTitle, ok := SplitArtistTrack(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("SplitArtistTrack(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if artist != tt.wantArtist || trackTitle != tt.wantTrack {
				t.Errorf("SplitArtistTrack(%q) = (%q, %q), want (%q, %q)",
					tt.input, artist, trackTitle, tt.wantArtist, tt.wantTrack)
			}
		})
	}
}
