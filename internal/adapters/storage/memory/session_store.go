package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ffaguiar/verbo/internal/domain"
)

// SessionStore keeps conversation history in process memory with a
// per-session expiry. Meant for development and tests; state is lost
// on restart.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[domain.SessionID]*entry
	ttl      time.Duration
	now      func() time.Time
}

type entry struct {
	turns     []domain.Turn
	expiresAt time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return NewSessionStoreWithClock(ttl, time.Now)
}

// NewSessionStoreWithClock allows tests to control expiry.
func NewSessionStoreWithClock(ttl time.Duration, now func() time.Time) *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.SessionID]*entry),
		ttl:      ttl,
		now:      now,
	}
}

func (s *SessionStore) GetTurns(ctx context.Context, id domain.SessionID) ([]domain.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.live(id)
	if e == nil {
		return nil, nil
	}
	return slices.Clone(e.turns), nil
}

func (s *SessionStore) AppendTurn(ctx context.Context, id domain.SessionID, turn domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.live(id)
	if e == nil {
		e = &entry{}
		s.sessions[id] = e
	}
	e.turns = append(e.turns, turn)
	e.expiresAt = s.now().Add(s.ttl)
	return nil
}

func (s *SessionStore) Touch(ctx context.Context, id domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.live(id); e != nil {
		e.expiresAt = s.now().Add(s.ttl)
	}
	return nil
}

// live returns the entry for id, dropping it first if it has expired.
// Callers must hold the write lock.
func (s *SessionStore) live(id domain.SessionID) *entry {
	e, ok := s.sessions[id]
	if !ok {
		return nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.sessions, id)
		return nil
	}
	return e
}
