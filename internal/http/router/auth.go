package router

import (
	"github.com/gin-gonic/gin"

	"chatdash.app/api/internal/http/handler"
)

func AuthRouter(rg *gin.RouterGroup, h *handler.AuthHandler, requireSession gin.HandlerFunc) {
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
	rg.GET("/me", requireSession, h.Me)
}
