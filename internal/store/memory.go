// internal/store/memory.go
//
// In-memory session store for live Number Game sessions.
// Sessions are ephemeral: a restart drops every open game, while finished
// results live in SQLite (records and daily packages).
//
// Characteristics:
//   - Sessions keyed by ID in a map guarded by an RWMutex.
//   - Each Session carries its own mutex; handlers hold it while they drive
//     the grid engine so one request at a time mutates a game.
//   - Get returns ErrNotFound for unknown IDs.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/numbergame/internal/grid"
)

// ErrNotFound is returned by Get for unknown session IDs.
var ErrNotFound = errors.New("store: session not found")

// Mode distinguishes free play from the daily challenge.
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeDaily   Mode = "daily"
)

// Session is one player's live game plus who owns it.
type Session struct {
	mu sync.Mutex

	ID        string
	OwnerID   string // user ID or anonymous cookie ID
	Mode      Mode
	Date      string    // daily only: YYYY-MM-DD
	RoundID   string    // games row of the current round
	StartedAt time.Time // start of the current round
	Game      *grid.Game
}

// Lock serializes access to the session's game.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases Lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Store defines persistence for live sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by ID or returns ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete drops a session; unknown IDs are not an error.
	Delete(ctx context.Context, id string) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session)}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
