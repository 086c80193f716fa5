package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chatdash.app/api/internal/http/handler"
	"chatdash.app/api/internal/http/middleware"
	"chatdash.app/api/internal/service"
)

type RouterConfig struct {
	IsProduction bool
	Location     *time.Location
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireSession := middleware.RequireSession(services.Auth())

	authHandler := handler.NewAuthHandler(services.Auth(), cfg.IsProduction)
	AuthRouter(router.Group("/auth"), authHandler, requireSession)

	v1 := router.Group("/api/v1", requireSession)
	{
		dashboardHandler := handler.NewDashboardHandler(services.Dashboard(), cfg.Location)
		DashboardRouter(v1.Group("/dashboard"), dashboardHandler)
		ConversationRouter(v1.Group("/conversations"), dashboardHandler)

		clientHandler := handler.NewClientHandler(services.Clients())
		ClientRouter(v1.Group("/clients"), clientHandler)

		schemaHandler := handler.NewSchemaHandler()
		v1.GET("/schema/raw-conversation", schemaHandler.Conversations)
	}
}
