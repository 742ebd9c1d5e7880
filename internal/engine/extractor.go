package engine

// Extractor is the capability a source implements to expose raw now-playing
// fields. Accessors must be cheap, must never block, and signal absence with
// a nil return rather than an error; the tracker degrades to defaults.
//
// Sources usually embed Defaults and override only the accessors their markup
// supports.
type Extractor interface {
	// Direct field accessors.
	Artist() *string
	Track() *string
	Album() *string
	UniqueID() *string
	Duration() *float64
	CurrentTime() *float64
	RemainingTime() *float64
	TrackArt() *string

	// Combined accessors consulted only when the direct ones come up empty.
	ArtistTrack() *string // "Artist - Track" in one string
	TimeInfo() *string    // "current / duration" in one string

	// IsPlaying reads the playing/paused indicator. It is called on every
	// signal, before any throttling decision, so it has to stay cheap.
	IsPlaying() bool

	// IsTrackArtDefault reports whether the art URL is a known placeholder.
	IsTrackArtDefault(url string) bool

	// IsScrobblingAllowed is false while the source shows content that must
	// not be reported at all, e.g. an ad interstitial.
	IsScrobblingAllowed() bool

	// IsStateChangeAllowed is false while the source markup is in a
	// transient state that would produce garbage fields.
	IsStateChangeAllowed() bool
}

// Defaults implements every Extractor accessor with its default value.
// Embed it and override what the source actually provides.
type Defaults struct{}

func (Defaults) Artist() *string { return nil }
func (Defaults) Track() *string { return nil }
func (Defaults) Album() *string { return nil }
func (Defaults) UniqueID() *string { return nil }
func (Defaults) Duration() *float64 { return nil }
func (Defaults) CurrentTime() *float64 { return nil }
func (Defaults) RemainingTime() *float64 { return nil }
func (Defaults) TrackArt() *string { return nil }
func (Defaults) ArtistTrack() *string { return nil }
func (Defaults) TimeInfo() *string { return nil }
func (Defaults) IsPlaying() bool { return true }
func (Defaults) IsTrackArtDefault(string) bool { return false }
func (Defaults) IsScrobblingAllowed() bool { return true }
func (Defaults) IsStateChangeAllowed() bool { return true }
