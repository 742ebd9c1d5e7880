package timeparse

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"0", 0, true},
		{"45", 45, true},
		{"90", 90, true},
		{"0:45", 45, true},
		{"3:05", 185, true},
		{"03:05", 185, true},
		{"1:00:00", 3600, true},
		{"1:23:45", 5025, true},
		{"10:59:59", 39599, true},
		{"  3:05  ", 185, true},
		{"", 0, false},
		{"   ", 0, false},
		{"-45", 0, false},
		{"3:-5", 0, false},
		{"3:60", 0, false},
		{"3:005", 0, false},
		{"1:2:3:4", 0, false},
		{"abc", 0, false},
		{"3:ab", 0, false},
		{"3:", 0, false},
		{":30", 0, false},
		{"1.5", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{45, "0:45"},
		{185, "3:05"},
		{3600, "1:00:00"},
		{5025, "1:23:45"},
		{-10, "0:00"},
	}

	for _, tt := range tests {
		if got := Format(tt.seconds); got != tt.want {
			t.Errorf("Format(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	// parse(format(n)) must be the identity for non-negative second counts.
	for _, seconds := range []int{0, 1, 59, 60, 61, 599, 600, 3599, 3600, 3661, 5025, 86399} {
		formatted := Format(seconds)
		parsed, ok := Parse(formatted)
		if !ok {
			t.Fatalf("Parse(Format(%d)) = Parse(%q) failed", seconds, formatted)
		}
		if parsed != seconds {
			t.Errorf("round trip of %d via %q = %d", seconds, formatted, parsed)
		}
	}
}

func TestParseCombined(t *testing.T) {
	tests := []struct {
		input        string
		wantCurrent  int
		wantDuration int
		wantOK       bool
	}{
		{"1:23 / 4:56", 83, 296, true},
		{"1:23/4:56", 83, 296, true},
		{"0:05 of 3:45", 5, 225, true},
		{"1:23 - 4:56", 83, 296, true},
		{"12 | 34", 12, 34, true},
		{"1:00:00 / 2:00:00", 3600, 7200, true},
		{"4:56", 0, 0, false},
		{"", 0, 0, false},
		{"1:23 2:34 3:45", 0, 0, false},
		{"no times here", 0, 0, false},
		// A single malformed time must not be mis-split into two tokens.
		{"1:75", 0, 0, false},
		{"3:99", 0, 0, false},
		{"90:120", 0, 0, false},
		{"1:23:45:12", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			current, duration, ok := ParseCombined(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseCombined(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if current != tt.wantCurrent || duration != tt.wantDuration {
				t.Errorf("ParseCombined(%q) = (%d, %d), want (%d, %d)",
					tt.input, current, duration, tt.wantCurrent, tt.wantDuration)
			}
		})
	}
}
