package source

// Extractor capability over the latest payload. Every accessor copies the
// value out under the read lock so the engine never aliases payload memory.

func (s *Source) Artist() *string { return s.str(func(p *Payload) *string { return p.Artist }) }
func (s *Source) Track() *string { return s.str(func(p *Payload) *string { return p.Track }) }
func (s *Source) Album() *string { return s.str(func(p *Payload) *string { return p.Album }) }
func (s *Source) UniqueID() *string { return s.str(func(p *Payload) *string { return p.UniqueID }) }
func (s *Source) ArtistTrack() *string { return s.str(func(p *Payload) *string { return p.ArtistTrack }) }
func (s *Source) TimeInfo() *string { return s.str(func(p *Payload) *string { return p.TimeInfo }) }
func (s *Source) TrackArt() *string { return s.str(func(p *Payload) *string { return p.TrackArt }) }
func (s *Source) Duration() *float64 { return s.num(func(p *Payload) *float64 { return p.Duration }) }
func (s *Source) CurrentTime() *float64 { return s.num(func(p *Payload) *float64 { return p.CurrentTime }) }
func (s *Source) RemainingTime() *float64 {
	return s.num(func(p *Payload) *float64 { return p.RemainingTime })
}

func (s *Source) IsPlaying() bool {
	return s.flag(func(p *Payload) *bool { return p.IsPlaying })
}

func (s *Source) IsScrobblingAllowed() bool {
	return s.flag(func(p *Payload) *bool { return p.ScrobblingAllowed })
}

func (s *Source) IsStateChangeAllowed() bool {
	return s.flag(func(p *Payload) *bool { return p.StateChangeAllowed })
}

func (s *Source) IsTrackArtDefault(url string) bool {
	_, ok := s.placeholders[url]
	return ok
}

func (s *Source) str(get func(*Payload) *string) *string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := get(&s.last)
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (s *Source) num(get func(*Payload) *float64) *float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := get(&s.last)
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// flag resolves an optional boolean; absent means true for every boolean
// capability the engine consumes.
func (s *Source) flag(get func(*Payload) *bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := get(&s.last)
	if p == nil {
		return true
	}
	return *p
}
