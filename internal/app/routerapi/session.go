package routerapi

import (
	"sync"
	"time"

	"github.com/h44z/wg-portal-routeros/internal/domain"
)

// Session holds the connection state observed by the rest of the application.
// Only connection tests change it, concurrent tests follow last-writer-wins.
type Session struct {
	mux   sync.RWMutex
	state domain.ConnectionState
}

func NewSession() *Session {
	return &Session{}
}

// IsConnected returns the result of the most recent connection test, false if none was run yet.
func (s *Session) IsConnected() bool {
	s.mux.RLock()
	defer s.mux.RUnlock()

	return s.state.Connected
}

// State returns the last recorded connection state.
func (s *Session) State() domain.ConnectionState {
	s.mux.RLock()
	defer s.mux.RUnlock()

	return s.state
}

// record stores the outcome of a connection test and reports whether the connected flag changed.
func (s *Session) record(outcome domain.Outcome) (domain.ConnectionState, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()

	previous := s.state.Connected
	s.state = domain.ConnectionState{
		Connected: outcome.Success(),
		Outcome:   outcome,
		CheckedAt: time.Now(),
	}

	return s.state, previous != s.state.Connected
}
