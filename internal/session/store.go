// Package session keeps dashboard logins and the upstream tokens they hold.
package session

import (
	"context"
	"errors"

	"chatdash.app/api/internal/model"
)

var ErrNotFound = errors.New("session not found")

// Store persists sessions for the lifetime of the application. Expired
// sessions read as ErrNotFound.
type Store interface {
	Get(ctx context.Context, id string) (*model.Session, error)
	Set(ctx context.Context, s *model.Session) error
	Clear(ctx context.Context, id string) error
}
