// Package source adapts a remote metadata source into the engine's Extractor
// capability. Sources push raw field payloads over a websocket; the adapter
// keeps only the most recent payload and fires a change signal per push.
package source

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Payload is one raw field push from a source. Absent JSON fields stay nil
// and resolve to the engine's field defaults.
type Payload struct {
	Artist             *string  `json:"artist"`
	Track              *string  `json:"track"`
	Album              *string  `json:"album"`
	UniqueID           *string  `json:"uniqueId"`
	ArtistTrack        *string  `json:"artistTrack"`
	Duration           *float64 `json:"duration"`
	CurrentTime        *float64 `json:"currentTime"`
	RemainingTime      *float64 `json:"remainingTime"`
	TimeInfo           *string  `json:"timeInfo"`
	IsPlaying          *bool    `json:"isPlaying"`
	TrackArt           *string  `json:"trackArt"`
	ScrobblingAllowed  *bool    `json:"scrobblingAllowed"`
	StateChangeAllowed *bool    `json:"stateChangeAllowed"`
}

// Source holds the latest payload of one remote source and implements the
// Extractor capability over it. All accessors are cheap reads under an
// RWMutex and never fail; missing data resolves to defaults.
type Source struct {
	logger       *zap.Logger
	placeholders map[string]struct{}

	mu   sync.RWMutex
	last Payload

	signal       func()
	onConnect    func()
	onDisconnect func()
}

// New creates a source adapter. placeholderArt lists art URLs known to be
// default placeholders; matching art is nulled out downstream.
func New(logger *zap.Logger, placeholderArt []string) *Source {
	placeholders := make(map[string]struct{}, len(placeholderArt))
	for _, u := range placeholderArt {
		placeholders[u] = struct{}{}
	}
	return &Source{
		logger:       logger,
		placeholders: placeholders,
	}
}

// OnSignal registers the change-signal callback, invoked after every stored
// payload. Must be set before the handler accepts connections.
func (s *Source) OnSignal(fn func()) {
	s.signal = fn
}

// OnConnectionChange registers hooks fired when a source connects or
// disconnects, e.g. to drive an active-sources gauge.
func (s *Source) OnConnectionChange(onConnect, onDisconnect func()) {
	s.onConnect = onConnect
	s.onDisconnect = onDisconnect
}

// Update stores a payload as the current source state and fires the change
// signal.
func (s *Source) Update(p Payload) {
	s.mu.Lock()
	s.last = p
	s.mu.Unlock()

	if s.signal != nil {
		s.signal()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true // Sources connect from arbitrary origins.
	},
}

// Handler returns the websocket ingest endpoint. Each JSON message on the
// connection becomes one Update; malformed messages close the connection.
func (s *Source) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Error("WebSocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		s.logger.Info("Source connected",
			zap.String("remote", conn.RemoteAddr().String()))
		if s.onConnect != nil {
			s.onConnect()
		}
		defer func() {
			s.logger.Info("Source disconnected",
				zap.String("remote", conn.RemoteAddr().String()))
			if s.onDisconnect != nil {
				s.onDisconnect()
			}
		}()

		for {
			var p Payload
			if err := conn.ReadJSON(&p); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.logger.Warn("Source read failed", zap.Error(err))
				}
				return
			}
			s.Update(p)
		}
	})
}
