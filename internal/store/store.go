// Package store persists the client registry in Postgres.
package store

import (
	"context"
	"errors"

	"chatdash.app/api/core/db/sqlc"
	"chatdash.app/api/internal/model"
)

var ErrNotFound = errors.New("not found")

type ClientStore interface {
	Create(ctx context.Context, client *model.Client) error
	List(ctx context.Context) ([]model.Client, error)
	Delete(ctx context.Context, id int64) error
}

// Stores groups every store behind one handle.
type Stores struct {
	clients ClientStore
}

func NewStores(queries *sqlc.Queries) *Stores {
	return &Stores{clients: NewClientStore(queries)}
}

// NewMemoryStores is used when no DATABASE_URL is configured.
func NewMemoryStores() *Stores {
	return &Stores{clients: NewMemoryClientStore()}
}

func (s *Stores) Clients() ClientStore {
	return s.clients
}
