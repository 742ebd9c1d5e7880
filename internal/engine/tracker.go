// Package engine implements the change-detection core: the state tracker that
// diffs successive snapshots pulled from an Extractor, and the scheduler that
// rate-limits how often the tracker re-evaluates.
package engine

import (
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"

	"trackwatch/internal/track"
	"trackwatch/pkg/filter"
	"trackwatch/pkg/metadata"
	"trackwatch/pkg/timeparse"
)

// Reactor is the sole consumer-facing notification boundary. It is invoked
// synchronously from within an evaluation, at most once per accepted
// evaluation or reset, and must not block.
type Reactor func(state *track.State, changed []track.Field)

// Tracker owns the raw and filtered snapshots for one monitored source,
// computes diffs and decides when the reactor fires.
type Tracker struct {
	extractor Extractor
	filter    *filter.Filter
	reactor   Reactor
	logger    *zap.Logger

	mu       sync.Mutex
	raw      *track.State
	filtered *track.State
	wasReset bool
}

// NewTracker creates a tracker over the given extractor. The filter is the
// full per-instance composition (site-specific transforms extending the base
// normalization); reactor may not be nil.
func NewTracker(extractor Extractor, f *filter.Filter, reactor Reactor, logger *zap.Logger) *Tracker {
	return &Tracker{
		extractor: extractor,
		filter:    f,
		reactor:   reactor,
		logger:    logger,
		raw:       track.NewState(),
		filtered:  track.NewState(),
	}
}

// Evaluate pulls every field from the extractor, resolves fallbacks, and
// diffs the result against the previous raw snapshot. On any difference the
// changed fields are refiltered into the filtered snapshot and the reactor is
// invoked. The returned slice lists the changed fields in sorted order; nil
// means the evaluation was a no-op.
//
// Evaluate runs to completion under the tracker lock, so a signal arriving
// mid-evaluation is only observed by the next scheduling decision.
func (t *Tracker) Evaluate() []track.Field {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.resolve()
	changes := t.raw.Diff(next)
	t.raw = next

	if changes.Empty() {
		return nil
	}

	// A real state change ends the current reset episode.
	t.wasReset = false

	t.refilter(changes)
	changed := changes.Sorted()

	t.logger.Debug("State changed",
		zap.Int("fields", len(changed)),
		zap.Bool("isPlaying", t.filtered.IsPlaying))

	t.reactor(t.filtered.Clone(), changed)
	return changed
}

// Reset reinitializes both snapshots to all-default. The reactor receives the
// default payload once per reset episode; resetting an already-reset tracker
// clears state again but stays silent.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.raw.Reset()
	t.filtered.Reset()

	if t.wasReset {
		return
	}
	t.wasReset = true

	t.logger.Debug("State reset")
	t.reactor(t.filtered.Clone(), append([]track.Field(nil), track.AllFields...))
}

// PlayingState returns the playing flag of the current raw snapshot. The
// scheduler compares it against the extractor's indicator to detect
// play/pause edges without a full evaluation.
func (t *Tracker) PlayingState() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.raw.IsPlaying
}

// Filtered returns a copy of the last reported snapshot.
func (t *Tracker) Filtered() *track.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filtered.Clone()
}

// resolve builds the next raw snapshot from the extractor, consulting the
// combined accessors only where the direct ones come up empty.
func (t *Tracker) resolve() *track.State {
	next := track.NewState()

	next.Artist = normString(t.extractor.Artist())
	next.Track = normString(t.extractor.Track())
	if next.Artist == nil || next.Track == nil {
		if combined := normString(t.extractor.ArtistTrack()); combined != nil {
			if artist, title, ok := metadata.SplitArtistTrack(*combined); ok {
				if next.Artist == nil {
					next.Artist = &artist
				}
				if next.Track == nil {
					next.Track = &title
				}
			}
		}
	}

	next.Album = normString(t.extractor.Album())
	next.UniqueID = normString(t.extractor.UniqueID())
	next.TrackArt = normString(t.extractor.TrackArt())
	next.IsPlaying = t.extractor.IsPlaying()

	next.Duration = escapeBadTime(cloneFloat(t.extractor.Duration()))
	if next.Duration == nil {
		if info := normString(t.extractor.TimeInfo()); info != nil {
			if _, duration, ok := timeparse.ParseCombined(*info); ok {
				d := float64(duration)
				next.Duration = &d
			}
		}
	}

	next.CurrentTime = escapeBadTime(cloneFloat(t.extractor.CurrentTime()))
	if next.CurrentTime == nil {
		if remaining := t.extractor.RemainingTime(); remaining != nil && !math.IsNaN(*remaining) {
			// Fall back to the previously known duration when this
			// evaluation resolved none.
			base := next.Duration
			if base == nil {
				base = t.raw.Duration
			}
			if base != nil {
				current := *base - math.Abs(*remaining)
				next.CurrentTime = escapeBadTime(&current)
			}
		}
	}

	// currentTime may never exceed duration; clamp rather than report the
	// violation.
	if next.CurrentTime != nil && next.Duration != nil && *next.CurrentTime > *next.Duration {
		clamped := *next.Duration
		next.CurrentTime = &clamped
	}

	return next
}

// refilter rewrites the filtered snapshot for exactly the changed fields.
func (t *Tracker) refilter(changes track.ChangeSet) {
	if changes.Has(track.FieldArtist) {
		t.filtered.Artist = t.filter.Apply(track.FieldArtist, t.raw.Artist)
	}
	if changes.Has(track.FieldTrack) {
		t.filtered.Track = t.filter.Apply(track.FieldTrack, t.raw.Track)
	}
	if changes.Has(track.FieldAlbum) {
		t.filtered.Album = t.filter.Apply(track.FieldAlbum, t.raw.Album)
	}
	if changes.Has(track.FieldUniqueID) {
		t.filtered.UniqueID = cloneString(t.raw.UniqueID)
	}
	if changes.Has(track.FieldDuration) {
		t.filtered.Duration = escapeBadTime(cloneFloat(t.raw.Duration))
	}
	if changes.Has(track.FieldCurrentTime) {
		t.filtered.CurrentTime = escapeBadTime(cloneFloat(t.raw.CurrentTime))
	}
	if changes.Has(track.FieldIsPlaying) {
		t.filtered.IsPlaying = t.raw.IsPlaying
	}
	if changes.Has(track.FieldTrackArt) {
		art := cloneString(t.raw.TrackArt)
		if art != nil && t.extractor.IsTrackArtDefault(*art) {
			art = nil
		}
		t.filtered.TrackArt = art
	}
}

// normString trims a raw string value and maps both nil and empty to the
// field default, so "" and unknown never diverge in the diff.
func normString(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

// escapeBadTime maps negative and NaN time values to the field default.
func escapeBadTime(p *float64) *float64 {
	if p == nil || math.IsNaN(*p) || *p < 0 {
		return nil
	}
	return p
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
