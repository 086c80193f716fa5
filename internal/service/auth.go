package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"chatdash.app/api/internal/dashboard"
	"chatdash.app/api/internal/model"
	"chatdash.app/api/internal/session"
	"chatdash.app/api/internal/source"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrProfileUnavailable = errors.New("profile lookup not configured")
)

// Authenticator exchanges user credentials for an upstream API token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// UserLookup resolves an upstream account with the token bound to ctx.
type UserLookup interface {
	UserByUsername(ctx context.Context, username string) (*model.User, error)
}

// CacheInvalidator drops cached upstream data for the token bound to ctx.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
	Current(ctx context.Context, sessionID string) (*model.Session, error)
	Profile(ctx context.Context, sess *model.Session) (*model.User, error)
}

type authService struct {
	authenticator Authenticator
	users         UserLookup
	sessions      session.Store
	dashboards    *dashboard.Registry
	ttl           time.Duration
	clock         clockwork.Clock
	cache         CacheInvalidator
}

func NewAuthService(
	authenticator Authenticator,
	users UserLookup,
	sessions session.Store,
	dashboards *dashboard.Registry,
	ttl time.Duration,
	clock clockwork.Clock,
	cache CacheInvalidator,
) AuthService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &authService{
		authenticator: authenticator,
		users:         users,
		sessions:      sessions,
		dashboards:    dashboards,
		ttl:           ttl,
		clock:         clock,
		cache:         cache,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*model.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	token, err := s.authenticator.Login(ctx, username, password)
	if err != nil {
		var upstreamErr *source.Error
		if errors.As(err, &upstreamErr) && upstreamErr.StatusCode >= http.StatusBadRequest && upstreamErr.StatusCode < http.StatusInternalServerError {
			slog.InfoContext(ctx, "login rejected", "username", username, "status", upstreamErr.StatusCode)
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("authenticating upstream: %w", err)
	}

	now := s.clock.Now()
	sess := &model.Session{
		ID:        uuid.NewString(),
		Username:  username,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	slog.InfoContext(ctx, "user logged in", "username", username)
	return sess, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if s.cache != nil {
		if sess, err := s.sessions.Get(ctx, sessionID); err == nil {
			if err := s.cache.Invalidate(source.WithToken(ctx, sess.Token)); err != nil {
				slog.WarnContext(ctx, "failed to drop cached conversations", "error", err)
			}
		}
	}
	s.dropDashboard(sessionID)
	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

func (s *authService) Current(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, ErrSessionExpired
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			s.dropDashboard(sessionID)
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if sess.IsExpired(s.clock.Now()) {
		s.dropDashboard(sessionID)
		_ = s.sessions.Clear(ctx, sessionID)
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Profile returns the upstream account of the session user. The first lookup
// is stored with the session so later calls skip the upstream.
func (s *authService) Profile(ctx context.Context, sess *model.Session) (*model.User, error) {
	if sess.User != nil {
		return sess.User, nil
	}
	if s.users == nil {
		return nil, ErrProfileUnavailable
	}

	user, err := s.users.UserByUsername(source.WithToken(ctx, sess.Token), sess.Username)
	if err != nil {
		return nil, fmt.Errorf("looking up upstream user: %w", err)
	}

	sess.User = user
	if err := s.sessions.Set(ctx, sess); err != nil {
		slog.WarnContext(ctx, "failed to store profile with the session", "error", err)
	}
	return user, nil
}

func (s *authService) dropDashboard(sessionID string) {
	if s.dashboards != nil {
		s.dashboards.Drop(sessionID)
	}
}
