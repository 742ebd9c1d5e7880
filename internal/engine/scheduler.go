package engine

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultThrottleWindow is the fixed evaluation window. Source mutations can
// fire many times per second; one trailing evaluation per window is enough
// for everything except play/pause edges.
const DefaultThrottleWindow = 500 * time.Millisecond

// Outcome is the scheduling decision taken for one signal.
type Outcome string

const (
	// OutcomeReset means scrobbling was disallowed and the tracker reset.
	OutcomeReset Outcome = "reset"
	// OutcomeIgnored means the source state was transient and the signal
	// was dropped without evaluation or reset.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeImmediate means a play/pause edge bypassed the throttle.
	OutcomeImmediate Outcome = "immediate"
	// OutcomeThrottled means a trailing evaluation was armed.
	OutcomeThrottled Outcome = "throttled"
	// OutcomeCoalesced means a trailing evaluation was already armed.
	OutcomeCoalesced Outcome = "coalesced"
)

// Scheduler rate-limits tracker evaluations in response to high-frequency
// change signals. Play/pause transitions bypass the throttle so rapid toggle
// sequences are never merged. Each scheduler owns exactly one timer handle,
// re-armed rather than stacked, and the armed window always fires to
// completion; a Reset in between simply supersedes its effect.
type Scheduler struct {
	tracker   *Tracker
	extractor Extractor
	window    time.Duration
	logger    *zap.Logger

	onEvaluated func(changed int)

	mu      sync.Mutex
	pending bool
	timer   *time.Timer
}

// NewScheduler creates a scheduler for one tracker. A non-positive window
// falls back to DefaultThrottleWindow.
func NewScheduler(tracker *Tracker, extractor Extractor, window time.Duration, logger *zap.Logger) *Scheduler {
	if window <= 0 {
		window = DefaultThrottleWindow
	}
	return &Scheduler{
		tracker:   tracker,
		extractor: extractor,
		window:    window,
		logger:    logger,
	}
}

// OnEvaluated registers an observer invoked after every evaluation the
// scheduler drives, with the number of changed fields. Used for metrics.
func (s *Scheduler) OnEvaluated(fn func(changed int)) {
	s.onEvaluated = fn
}

// Signal handles one incoming change signal. Gate order: scrobbling
// disallowed resets and stops; an unstable source state ignores the signal
// entirely; a play/pause edge evaluates immediately; everything else
// coalesces into a single trailing evaluation per window.
func (s *Scheduler) Signal() Outcome {
	if !s.extractor.IsScrobblingAllowed() {
		s.logger.Debug("Scrobbling disallowed, resetting")
		s.tracker.Reset()
		return OutcomeReset
	}

	if !s.extractor.IsStateChangeAllowed() {
		s.logger.Debug("State change disallowed, ignoring signal")
		return OutcomeIgnored
	}

	if s.extractor.IsPlaying() != s.tracker.PlayingState() {
		s.evaluate()
		return OutcomeImmediate
	}

	return s.schedule()
}

// schedule arms the trailing evaluation unless one is already pending.
func (s *Scheduler) schedule() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending {
		// Coalesce: the armed evaluation will read fresh state anyway.
		return OutcomeCoalesced
	}
	s.pending = true

	if s.timer == nil {
		s.timer = time.AfterFunc(s.window, s.fire)
	} else {
		s.timer.Reset(s.window)
	}
	return OutcomeThrottled
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	s.pending = false
	s.mu.Unlock()

	s.evaluate()
}

func (s *Scheduler) evaluate() {
	changed := s.tracker.Evaluate()
	if s.onEvaluated != nil {
		s.onEvaluated(len(changed))
	}
}

// Pending reports whether a throttled evaluation is currently armed.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Stop disarms a pending evaluation. Only used on shutdown; a window that
// has already fired runs to completion.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = false
	if s.timer != nil {
		s.timer.Stop()
	}
}
