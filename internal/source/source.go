// Package source fetches raw conversations from the upstream chat platform.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"chatdash.app/api/internal/model"
)

var (
	ErrUpstream     = errors.New("upstream request failed")
	ErrUnauthorized = errors.New("upstream rejected credentials")
	ErrUserNotFound = errors.New("upstream user not found")
)

// ChatSource returns every raw conversation visible to the caller.
type ChatSource interface {
	FetchAll(ctx context.Context) ([]model.RawConversation, error)
}

// Error carries the upstream status and a message fit for display. Err is
// the transport cause when the request never got a response.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() []error {
	sentinel := ErrUpstream
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		sentinel = ErrUnauthorized
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// Message returns the display message of err, or fallback for foreign errors.
func Message(err error, fallback string) string {
	var upstreamErr *Error
	if errors.As(err, &upstreamErr) && upstreamErr.Message != "" {
		return upstreamErr.Message
	}
	return fallback
}

type ctxKey string

const (
	tokenKey     ctxKey = "upstream_token"
	skipCacheKey ctxKey = "skip_cache"
)

// WithToken binds a user's upstream token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// SkipCache makes Cached bypass its stored payload for this call.
func SkipCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipCacheKey, true)
}

// CacheSkipped reports whether SkipCache was applied to ctx.
func CacheSkipped(ctx context.Context) bool {
	skip, _ := ctx.Value(skipCacheKey).(bool)
	return skip
}
