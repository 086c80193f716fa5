// Package dashboard owns the loaded conversation set behind one dashboard
// view and the loading/ready/error state of its refreshes.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"chatdash.app/api/common/logger"
	"chatdash.app/api/internal/analytics"
	"chatdash.app/api/internal/model"
	"chatdash.app/api/internal/source"
)

var (
	// ErrStale is returned by a refresh superseded by a newer one. Its
	// result was discarded.
	ErrStale     = errors.New("refresh superseded by a newer request")
	ErrThrottled = errors.New("refresh rate exceeded")
)

const defaultErrorMessage = "Error al cargar las conversaciones"

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// State is a snapshot of the view state.
type State struct {
	Status        Status     `json:"status"`
	Error         string     `json:"error,omitempty"`
	FetchedAt     *time.Time `json:"fetchedAt,omitempty"`
	Token         uint64     `json:"token"`
	Conversations int        `json:"conversations"`
}

type Option func(*Dashboard)

func WithClock(clock clockwork.Clock) Option {
	return func(d *Dashboard) { d.clock = clock }
}

// WithRateLimit allows perMinute refreshes per minute with the given burst.
// Zero disables throttling.
func WithRateLimit(perMinute, burst int) Option {
	return func(d *Dashboard) {
		if perMinute <= 0 {
			d.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
	}
}

// Dashboard is safe for concurrent use. Refreshes are ordered by a
// monotonically increasing token and only the latest one commits.
type Dashboard struct {
	source      source.ChatSource
	transformer *analytics.Transformer
	clock       clockwork.Clock
	limiter     *rate.Limiter

	seq   atomic.Uint64
	loads singleflight.Group

	mu    sync.RWMutex
	state State
	convs []model.Conversation
	// settled is open while the latest refresh is in flight.
	settled chan struct{}
}

func New(src source.ChatSource, transformer *analytics.Transformer, opts ...Option) *Dashboard {
	d := &Dashboard{
		source:      src,
		transformer: transformer,
		clock:       clockwork.NewRealClock(),
		state:       State{Status: StatusIdle},
		convs:       []model.Conversation{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Refresh fetches and transforms the current conversations. A failure moves
// the view to StatusError; calling Refresh again is the retry.
func (d *Dashboard) Refresh(ctx context.Context) ([]model.Conversation, error) {
	if d.limiter != nil && !d.limiter.Allow() {
		return nil, ErrThrottled
	}

	d.mu.Lock()
	token := d.seq.Add(1)
	d.state.Status = StatusLoading
	d.state.Error = ""
	d.state.Token = token
	if d.settled == nil {
		d.settled = make(chan struct{})
	}
	d.mu.Unlock()

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RequestToken: logger.Ptr(token),
		Component:    "chatdash.dashboard",
	})

	sc := logger.StartSpan(ctx, "dashboard.refresh")
	defer sc.End()
	ctx = sc.Context()
	sc.Span().SetAttributes(attribute.Int64("dashboard.token", int64(token)))

	start := d.clock.Now()
	raws, err := d.source.FetchAll(ctx)
	if err != nil {
		sc.RecordError(err)
		if !d.fail(token, source.Message(err, defaultErrorMessage)) {
			return nil, ErrStale
		}
		slog.WarnContext(ctx, "refresh failed", "error", err)
		return nil, fmt.Errorf("fetching conversations: %w", err)
	}

	convs := d.transformer.Transform(ctx, raws)
	sc.Span().SetAttributes(
		attribute.Int("dashboard.raw_count", len(raws)),
		attribute.Int("dashboard.conversation_count", len(convs)),
	)

	d.mu.Lock()
	defer d.mu.Unlock()

	if token != d.seq.Load() {
		slog.DebugContext(ctx, "discarding stale refresh", "latest_token", d.seq.Load())
		return nil, ErrStale
	}

	now := d.clock.Now()
	d.settle()
	d.convs = convs
	d.state = State{
		Status:        StatusReady,
		FetchedAt:     &now,
		Token:         token,
		Conversations: len(convs),
	}

	slog.InfoContext(ctx, "dashboard refreshed",
		"raw_count", len(raws),
		"conversation_count", len(convs),
		"duration_ms", now.Sub(start).Milliseconds())

	return convs, nil
}

// fail records the error when token is still the latest request.
func (d *Dashboard) fail(token uint64, message string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if token != d.seq.Load() {
		return false
	}
	d.state.Status = StatusError
	d.state.Error = message
	d.settle()
	return true
}

// settle releases Wait callers. d.mu must be held.
func (d *Dashboard) settle() {
	if d.settled != nil {
		close(d.settled)
		d.settled = nil
	}
}

// Wait blocks until the latest refresh has committed or failed.
func (d *Dashboard) Wait(ctx context.Context) error {
	d.mu.RLock()
	ch := d.settled
	d.mu.RUnlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Load returns the committed set, refreshing first when nothing has been
// loaded yet. Concurrent cold loads share one refresh, and a load that loses
// to a newer refresh waits for that one instead of failing.
func (d *Dashboard) Load(ctx context.Context) ([]model.Conversation, error) {
	if d.Loaded() {
		return d.Conversations(), nil
	}

	_, err, _ := d.loads.Do("load", func() (any, error) {
		if d.Loaded() {
			return nil, nil
		}
		_, err := d.Refresh(ctx)
		return nil, err
	})
	if errors.Is(err, ErrStale) {
		if werr := d.Wait(ctx); werr != nil {
			return nil, werr
		}
		err = nil
	}

	if d.Loaded() {
		return d.Conversations(), nil
	}
	if err != nil {
		return nil, err
	}
	return nil, &source.Error{Message: d.State().Error}
}

func (d *Dashboard) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Conversations returns the last committed set. Callers must not modify it.
func (d *Dashboard) Conversations() []model.Conversation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.convs
}

// Loaded reports whether a refresh has ever committed.
func (d *Dashboard) Loaded() bool {
	return d.State().FetchedAt != nil
}
