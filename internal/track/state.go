// Package track defines the canonical now-playing snapshot and the field-level
// change set computed between successive snapshots.
package track

import (
	"sort"

	"trackwatch/pkg/filter"
)

// Field names a single snapshot field. The values double as the JSON keys used
// by ingest payloads and as the label values reported in metrics. It aliases
// the filter package's field type so the constants below address transform
// chains directly.
type Field = filter.Field

const (
	FieldArtist      Field = "artist"
	FieldTrack       Field = "track"
	FieldAlbum       Field = "album"
	FieldUniqueID    Field = "uniqueId"
	FieldDuration    Field = "duration"
	FieldCurrentTime Field = "currentTime"
	FieldIsPlaying   Field = "isPlaying"
	FieldTrackArt    Field = "trackArt"
)

// AllFields lists every snapshot field in canonical order.
var AllFields = []Field{
	FieldArtist,
	FieldTrack,
	FieldAlbum,
	FieldUniqueID,
	FieldDuration,
	FieldCurrentTime,
	FieldIsPlaying,
	FieldTrackArt,
}

// State is one full now-playing snapshot. A nil pointer means the field is
// unknown, which is distinct from an empty string. IsPlaying defaults to true
// because most sources only expose an explicit "paused" indicator.
type State struct {
	Artist      *string
	Track       *string
	Album       *string
	UniqueID    *string
	Duration    *float64
	CurrentTime *float64
	IsPlaying   bool
	TrackArt    *string
}

// NewState returns a snapshot with every field at its default.
func NewState() *State {
	return &State{IsPlaying: true}
}

// Reset returns every field to its default in place.
func (s *State) Reset() {
	*s = State{IsPlaying: true}
}

// IsDefault reports whether every field holds its default value, as after a
// reset. A payload carrying any known field, even a timing-only one, is not
// default.
func (s *State) IsDefault() bool {
	return s.Artist == nil &&
		s.Track == nil &&
		s.Album == nil &&
		s.UniqueID == nil &&
		s.Duration == nil &&
		s.CurrentTime == nil &&
		s.IsPlaying &&
		s.TrackArt == nil
}

// Clone returns a deep copy; the copy shares no pointers with the receiver.
func (s *State) Clone() *State {
	c := &State{IsPlaying: s.IsPlaying}
	c.Artist = cloneString(s.Artist)
	c.Track = cloneString(s.Track)
	c.Album = cloneString(s.Album)
	c.UniqueID = cloneString(s.UniqueID)
	c.Duration = cloneFloat(s.Duration)
	c.CurrentTime = cloneFloat(s.CurrentTime)
	c.TrackArt = cloneString(s.TrackArt)
	return c
}

// Diff returns the set of fields whose value differs between s and other.
// Both snapshots are assumed to be default-substituted already: an unknown
// field is a nil pointer, never an empty string.
func (s *State) Diff(other *State) ChangeSet {
	cs := ChangeSet{}
	if !equalString(s.Artist, other.Artist) {
		cs.Add(FieldArtist)
	}
	if !equalString(s.Track, other.Track) {
		cs.Add(FieldTrack)
	}
	if !equalString(s.Album, other.Album) {
		cs.Add(FieldAlbum)
	}
	if !equalString(s.UniqueID, other.UniqueID) {
		cs.Add(FieldUniqueID)
	}
	if !equalFloat(s.Duration, other.Duration) {
		cs.Add(FieldDuration)
	}
	if !equalFloat(s.CurrentTime, other.CurrentTime) {
		cs.Add(FieldCurrentTime)
	}
	if s.IsPlaying != other.IsPlaying {
		cs.Add(FieldIsPlaying)
	}
	if !equalString(s.TrackArt, other.TrackArt) {
		cs.Add(FieldTrackArt)
	}
	return cs
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ChangeSet is the set of fields that changed during one evaluation.
type ChangeSet map[Field]struct{}

// Add inserts a field into the set.
func (cs ChangeSet) Add(f Field) {
	cs[f] = struct{}{}
}

// Has reports whether the set contains the field.
func (cs ChangeSet) Has(f Field) bool {
	_, ok := cs[f]
	return ok
}

// Empty reports whether no field changed.
func (cs ChangeSet) Empty() bool {
	return len(cs) == 0
}

// Sorted returns the fields in lexical order for deterministic reporting.
func (cs ChangeSet) Sorted() []Field {
	fields := make([]Field, 0, len(cs))
	for f := range cs {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}
