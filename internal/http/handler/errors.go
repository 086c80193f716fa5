package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatdash.app/api/internal/dashboard"
	"chatdash.app/api/internal/service"
	"chatdash.app/api/internal/source"
	"chatdash.app/api/internal/store"
)

// respondError maps domain errors onto HTTP responses. fallback is the
// message shown for unexpected failures.
func respondError(c *gin.Context, err error, fallback string) {
	ctx := c.Request.Context()
	_ = c.Error(err)

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": source.Message(err, "Credenciales inválidas")})
	case errors.Is(err, service.ErrSessionExpired), errors.Is(err, source.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": source.Message(err, "Sesión expirada, inicie sesión nuevamente")})
	case errors.Is(err, dashboard.ErrThrottled):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many refresh requests"})
	case errors.Is(err, dashboard.ErrStale):
		c.JSON(http.StatusConflict, gin.H{"error": "superseded by a newer refresh"})
	case errors.Is(err, service.ErrInvalidClient):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConversationNotFound), errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, source.ErrUpstream):
		slog.WarnContext(ctx, "upstream failure", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": source.Message(err, fallback)})
	default:
		slog.ErrorContext(ctx, "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func badRequest(c *gin.Context, err error) {
	slog.WarnContext(c.Request.Context(), "invalid request", "error", err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
