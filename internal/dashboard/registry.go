package dashboard

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type entry struct {
	board    *Dashboard
	lastSeen time.Time
}

type RegistryOption func(*Registry)

func WithRegistryClock(clock clockwork.Clock) RegistryOption {
	return func(r *Registry) { r.clock = clock }
}

// Registry keeps one Dashboard per key, typically a session id.
type Registry struct {
	mu     sync.Mutex
	boards map[string]*entry
	build  func() *Dashboard
	clock  clockwork.Clock
}

func NewRegistry(build func() *Dashboard, opts ...RegistryOption) *Registry {
	r := &Registry{
		boards: make(map[string]*entry),
		build:  build,
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// For returns the dashboard for key, creating it on first use. Every call
// counts as activity for EvictIdle.
func (r *Registry) For(key string) *Dashboard {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	if e, ok := r.boards[key]; ok {
		e.lastSeen = now
		return e.board
	}
	e := &entry{board: r.build(), lastSeen: now}
	r.boards[key] = e
	return e.board
}

func (r *Registry) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.boards, key)
}

// Each calls fn for a snapshot of the registered dashboards. fn runs without
// the registry lock held, so it may call Drop.
func (r *Registry) Each(fn func(key string, d *Dashboard)) {
	r.mu.Lock()
	keys := make([]string, 0, len(r.boards))
	boards := make([]*Dashboard, 0, len(r.boards))
	for k, e := range r.boards {
		keys = append(keys, k)
		boards = append(boards, e.board)
	}
	r.mu.Unlock()

	for i, k := range keys {
		fn(k, boards[i])
	}
}

// EvictIdle drops dashboards not requested through For within maxIdle and
// returns how many were dropped.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.clock.Now().Add(-maxIdle)
	evicted := 0
	for k, e := range r.boards {
		if e.lastSeen.Before(cutoff) {
			delete(r.boards, k)
			evicted++
		}
	}
	return evicted
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}
