package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chatdash.app/api/internal/http/dto"
	"chatdash.app/api/internal/http/middleware"
	"chatdash.app/api/internal/service"
)

type AuthHandler struct {
	authService  service.AuthService
	isProduction bool
}

func NewAuthHandler(authService service.AuthService, isProduction bool) *AuthHandler {
	return &AuthHandler{authService: authService, isProduction: isProduction}
}

func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		respondError(c, err, "Error al iniciar sesión")
		return
	}

	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, sess.ID, maxAge, "/", "", h.isProduction, true)

	c.JSON(http.StatusOK, dto.ToSessionResponse(sess, true))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	if sessionID := middleware.SessionID(c); sessionID != "" {
		if err := h.authService.Logout(ctx, sessionID); err != nil {
			slog.WarnContext(ctx, "failed to clear session", "error", err)
		}
	}
	middleware.ClearSessionCookie(c, h.isProduction)

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me answers with the session and, when the upstream lookup succeeds, the
// profile of its account. A failed lookup still returns the session.
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	sess := middleware.GetSession(ctx)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	resp := dto.ToSessionResponse(sess, false)
	user, err := h.authService.Profile(ctx, sess)
	switch {
	case err == nil:
		resp.User = dto.ToUserResponse(user)
	case errors.Is(err, service.ErrProfileUnavailable):
	default:
		slog.WarnContext(ctx, "profile lookup failed", "error", err)
	}
	c.JSON(http.StatusOK, resp)
}
