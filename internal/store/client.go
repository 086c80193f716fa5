package store

import (
	"context"
	"fmt"

	"chatdash.app/api/core/db/sqlc"
	"chatdash.app/api/internal/model"
)

type clientStore struct {
	queries *sqlc.Queries
}

func NewClientStore(queries *sqlc.Queries) ClientStore {
	return &clientStore{queries: queries}
}

func (s *clientStore) Create(ctx context.Context, c *model.Client) error {
	row, err := s.queries.CreateClient(ctx, sqlc.CreateClientParams{
		ID:          c.ID,
		CompanyName: c.CompanyName,
		Address:     c.Address,
		Phone:       c.Phone,
		Agents:      nonNil(c.Agents),
		Phones:      nonNil(c.Phones),
	})
	if err != nil {
		return fmt.Errorf("inserting client: %w", err)
	}
	*c = toClientModel(row)
	return nil
}

func (s *clientStore) List(ctx context.Context) ([]model.Client, error) {
	rows, err := s.queries.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}

	clients := make([]model.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, toClientModel(row))
	}
	return clients, nil
}

func (s *clientStore) Delete(ctx context.Context, id int64) error {
	affected, err := s.queries.DeleteClient(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func toClientModel(row sqlc.Client) model.Client {
	return model.Client{
		ID:          row.ID,
		CompanyName: row.CompanyName,
		Address:     row.Address,
		Phone:       row.Phone,
		Agents:      nonNil(row.Agents),
		Phones:      nonNil(row.Phones),
		CreatedAt:   row.CreatedAt.Time,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
