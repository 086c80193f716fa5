package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"chatdash.app/api/internal/model"
)

type memoryClientStore struct {
	mu      sync.RWMutex
	clients map[int64]model.Client
	now     func() time.Time
}

func NewMemoryClientStore() ClientStore {
	return &memoryClientStore{clients: make(map[int64]model.Client), now: time.Now}
}

func (s *memoryClientStore) Create(_ context.Context, c *model.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.CreatedAt = s.now()
	c.Agents = nonNil(c.Agents)
	c.Phones = nonNil(c.Phones)
	s.clients[c.ID] = *c
	return nil
}

func (s *memoryClientStore) List(_ context.Context) ([]model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]model.Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		if !clients[i].CreatedAt.Equal(clients[j].CreatedAt) {
			return clients[i].CreatedAt.After(clients[j].CreatedAt)
		}
		return clients[i].ID > clients[j].ID
	})
	return clients, nil
}

func (s *memoryClientStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[id]; !ok {
		return ErrNotFound
	}
	delete(s.clients, id)
	return nil
}
