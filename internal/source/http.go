package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"chatdash.app/api/common/logger"
	"chatdash.app/api/core/config"
	"chatdash.app/api/internal/model"
)

const (
	chatsPath     = "/chats/"
	usersPath     = "/users/"
	tokenAuthPath = "/api-token-auth/"

	defaultLoginError = "Error al iniciar sesión"
	defaultUsersError = "Error al obtener usuarios"
	maxErrorBody      = 64 << 10
)

// HTTPSource talks to the upstream REST API using token authentication.
type HTTPSource struct {
	baseURL      string
	serviceToken string
	headerName   string
	headerValue  string
	httpClient   *http.Client
}

func NewHTTPSource(cfg config.UpstreamConfig) *HTTPSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s := &HTTPSource{
		baseURL:      cfg.BaseURL,
		serviceToken: cfg.APIToken,
		httpClient:   &http.Client{Timeout: timeout},
	}
	if name, value, ok := cfg.ExtraHeader(); ok {
		s.headerName, s.headerValue = name, value
	}
	return s
}

// FetchAll uses the token bound to ctx, falling back to the service token.
func (s *HTTPSource) FetchAll(ctx context.Context) ([]model.RawConversation, error) {
	token := TokenFrom(ctx)
	if token == "" {
		token = s.serviceToken
	}

	req, err := s.newRequest(ctx, http.MethodGet, chatsPath, token, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Message: "No se pudo conectar con el servidor", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(ctx, resp, fmt.Sprintf("Error al obtener conversaciones (HTTP %d)", resp.StatusCode))
	}

	var convs []model.RawConversation
	if err := json.NewDecoder(resp.Body).Decode(&convs); err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("Respuesta inválida del servidor: %v", err)}
	}

	slog.DebugContext(ctx, "fetched conversations",
		"count", len(convs),
		"duration_ms", time.Since(start).Milliseconds())

	return convs, nil
}

// Users lists the upstream accounts visible to the token bound to ctx.
func (s *HTTPSource) Users(ctx context.Context) ([]model.User, error) {
	token := TokenFrom(ctx)
	if token == "" {
		token = s.serviceToken
	}

	req, err := s.newRequest(ctx, http.MethodGet, usersPath, token, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Message: defaultUsersError, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(ctx, resp, defaultUsersError)
	}

	var users []model.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: defaultUsersError, Err: err}
	}
	return users, nil
}

// UserByUsername finds one account in the Users listing.
func (s *HTTPSource) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
}

// Login exchanges credentials for an upstream token.
func (s *HTTPSource) Login(ctx context.Context, username, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", fmt.Errorf("encoding credentials: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPost, tokenAuthPath, "", bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "upstream login request failed", "error", err)
		return "", &Error{Message: defaultLoginError, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Token          string   `json:"token"`
		NonFieldErrors []string `json:"non_field_errors"`
	}
	_ = json.Unmarshal(raw, &payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := defaultLoginError
		if len(payload.NonFieldErrors) > 0 && payload.NonFieldErrors[0] != "" {
			msg = payload.NonFieldErrors[0]
		}
		return "", &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	if payload.Token == "" {
		return "", &Error{StatusCode: resp.StatusCode, Message: "No se recibió token"}
	}

	return payload.Token, nil
}

func (s *HTTPSource) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
		if s.headerName != "" {
			req.Header.Set(s.headerName, s.headerValue)
		}
	}
	return req, nil
}

func statusError(ctx context.Context, resp *http.Response, fallback string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	slog.DebugContext(ctx, "upstream error response",
		"status", resp.StatusCode,
		"body", logger.Truncate(string(raw), 200))

	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	msg := fallback
	if json.Unmarshal(raw, &payload) == nil {
		switch {
		case payload.Detail != "":
			msg = payload.Detail
		case payload.Message != "":
			msg = payload.Message
		}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		msg = "Sesión expirada, inicie sesión nuevamente"
	}
	return &Error{StatusCode: resp.StatusCode, Message: msg}
}
