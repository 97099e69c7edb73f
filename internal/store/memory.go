// internal/store/memory.go
//
// In-memory session store.
// Each browser gets one Session holding its game state; nothing survives
// a restart.
//
// Characteristics:
//   - Sessions keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Values are copied in and out, so callers never share a Session.
//   - Sweep drops sessions that have been idle too long.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/npsguess/internal/game"
)

// ErrNotFound is returned by Get for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Session is one player's game plus the outcome of their latest guess.
type Session struct {
	ID          string
	Game        game.State
	Last        *game.Result // most recent guess; cleared on new game
	Notice      string       // one-shot message for the next page render
	Daily       bool         // current game is the daily park
	DailyPlayed string       // daily.DateKey of the last daily game started
	UpdatedAt   time.Time
}

// Store defines the persistence interface for sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, s Session) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (Session, error)

	// Sweep removes sessions last updated before the cutoff and
	// returns how many were removed.
	Sweep(ctx context.Context, before time.Time) int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex       // guards sessions
	sessions map[string]Session // keyed by Session.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]Session)}
}

func (m *memory) Save(ctx context.Context, s Session) error {
	if s.ID == "" {
		return errors.New("session id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return Session{}, ErrNotFound
}

func (m *memory) Sweep(ctx context.Context, before time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(before) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
