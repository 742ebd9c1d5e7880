package pipeline

import (
	"context"

	"trackwatch/internal/store"
)

// ValidateStage marks a song valid once it carries both an artist and a
// track. Invalid songs flow through the remaining stages unflagged; dropping
// them is the consumer's call.
type ValidateStage struct{}

func (ValidateStage) Name() string { return "validate" }

func (ValidateStage) Process(_ context.Context, song *Song) error {
	song.Flags.IsValid = song.State.Artist != nil && song.State.Track != nil
	return nil
}

// SeenStage flags repeat tracks against the session's SeenStore and records
// first sightings. Songs without a usable identity key are left alone.
type SeenStage struct {
	Store *store.SeenStore
}

func (SeenStage) Name() string { return "seen" }

func (s SeenStage) Process(_ context.Context, song *Song) error {
	key, ok := store.KeyFor(song.State)
	if !ok {
		return nil
	}

	if s.Store.Has(key) {
		song.Flags.IsRepeat = true
		return nil
	}

	s.Store.Add(key)
	return nil
}
