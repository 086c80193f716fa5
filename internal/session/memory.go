package session

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"

	"chatdash.app/api/internal/model"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	clock    clockwork.Clock
}

// NewMemoryStore is used when no Redis is configured. Sessions do not
// survive a restart.
func NewMemoryStore(clock clockwork.Clock) Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &memoryStore{sessions: make(map[string]model.Session), clock: clock}
}

func (s *memoryStore) Get(_ context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if sess.IsExpired(s.clock.Now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *memoryStore) Set(_ context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *memoryStore) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
