package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatdash.app/api/common/logger"
	"chatdash.app/api/internal/model"
	"chatdash.app/api/internal/service"
)

type contextKey string

const (
	SessionCookieName            = "chatdash_session"
	SessionIDHeader              = "X-Session-ID"
	sessionContextKey contextKey = "session"
)

// RequireSession resolves the caller's session from the cookie or the
// X-Session-ID header and aborts with 401 when it is missing or expired.
func RequireSession(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		sessionID := SessionID(c)
		if sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		sess, err := auth.Current(ctx, sessionID)
		if err != nil {
			if errors.Is(err, service.ErrSessionExpired) {
				ClearSessionCookie(c, false)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
				return
			}
			slog.ErrorContext(ctx, "failed to validate session", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to validate session"})
			return
		}

		ctx = logger.WithLogFields(ctx, logger.LogFields{
			SessionID: logger.Ptr(sess.ID),
			Username:  logger.Ptr(sess.Username),
		})
		ctx = context.WithValue(ctx, sessionContextKey, sess)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetSession returns the session attached by RequireSession, or nil.
func GetSession(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(sessionContextKey).(*model.Session)
	return sess
}

// SessionID reads the session id from the cookie, falling back to the header.
func SessionID(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	return c.GetHeader(SessionIDHeader)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
}
