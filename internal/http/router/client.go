package router

import (
	"github.com/gin-gonic/gin"

	"chatdash.app/api/internal/http/handler"
)

func ClientRouter(rg *gin.RouterGroup, h *handler.ClientHandler) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.DELETE("/:id", h.Delete)
}
