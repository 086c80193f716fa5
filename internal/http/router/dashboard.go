package router

import (
	"github.com/gin-gonic/gin"

	"chatdash.app/api/internal/http/handler"
)

func DashboardRouter(rg *gin.RouterGroup, h *handler.DashboardHandler) {
	rg.POST("/refresh", h.Refresh)
	rg.GET("/state", h.State)
	rg.GET("/filters", h.Filters)
	rg.GET("/overview", h.Overview)
	rg.GET("/series", h.Series)
	rg.GET("/products", h.Products)
	rg.GET("/hours", h.Hours)
	rg.GET("/weekdays", h.Weekdays)
	rg.GET("/clients", h.Clients)
	rg.GET("/compare", h.Compare)
}

func ConversationRouter(rg *gin.RouterGroup, h *handler.DashboardHandler) {
	rg.GET("", h.ListConversations)
	rg.GET("/:id", h.GetConversation)
}
