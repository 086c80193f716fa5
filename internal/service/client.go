package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"chatdash.app/api/common/id"
	"chatdash.app/api/internal/model"
	"chatdash.app/api/internal/store"
	"chatdash.app/api/internal/table"
)

var ErrInvalidClient = errors.New("invalid client")

type CreateClientInput struct {
	CompanyName string
	Address     string
	Phone       string
	Agents      []string
	Phones      []string
}

type ClientService interface {
	Create(ctx context.Context, in CreateClientInput) (*model.Client, error)
	List(ctx context.Context, q TableQuery) (table.Page[model.Client], error)
	Delete(ctx context.Context, id int64) error
}

type clientService struct {
	clients  store.ClientStore
	pageSize int
}

func NewClientService(clients store.ClientStore, pageSize int) ClientService {
	if pageSize <= 0 {
		pageSize = table.DefaultPageSize
	}
	return &clientService{clients: clients, pageSize: pageSize}
}

var ClientColumns = []table.Column[model.Client]{
	{Key: "companyName", Header: "Empresa", Sortable: true},
	{Key: "address", Header: "Dirección", Sortable: true},
	{Key: "phone", Header: "Teléfono", Sortable: true},
	{Key: "createdAt", Header: "Creado", Sortable: true, Align: table.AlignRight},
}

var clientSearchKeys = []string{"companyName", "address", "phone"}

func (s *clientService) Create(ctx context.Context, in CreateClientInput) (*model.Client, error) {
	client := &model.Client{
		CompanyName: strings.TrimSpace(in.CompanyName),
		Address:     strings.TrimSpace(in.Address),
		Phone:       NormalizePhone(in.Phone),
		Agents:      distinct(in.Agents, strings.TrimSpace),
		Phones:      distinct(in.Phones, NormalizePhone),
	}

	if client.CompanyName == "" {
		return nil, fmt.Errorf("%w: company name is required", ErrInvalidClient)
	}
	if client.Phone == "" && len(client.Phones) == 0 {
		return nil, fmt.Errorf("%w: at least one phone is required", ErrInvalidClient)
	}

	client.ID = id.New()
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	slog.InfoContext(ctx, "client created", "client_id", client.ID, "company", client.CompanyName)
	return client, nil
}

func (s *clientService) List(ctx context.Context, q TableQuery) (table.Page[model.Client], error) {
	clients, err := s.clients.List(ctx)
	if err != nil {
		return table.Page[model.Client]{}, fmt.Errorf("listing clients: %w", err)
	}
	t := table.New(clients, table.Options[model.Client]{
		Columns:    ClientColumns,
		PageSize:   pageSizeOr(q.PageSize, s.pageSize),
		SearchKeys: clientSearchKeys,
	})
	return applyTableQuery(t, q), nil
}

func (s *clientService) Delete(ctx context.Context, clientID int64) error {
	if err := s.clients.Delete(ctx, clientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("deleting client: %w", err)
	}
	slog.InfoContext(ctx, "client deleted", "client_id", clientID)
	return nil
}

// NormalizePhone keeps digits and '+'.
func NormalizePhone(phone string) string {
	var sb strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || r == '+' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func distinct(values []string, normalize func(string) string) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = normalize(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
