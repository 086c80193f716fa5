package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"chatdash.app/api/internal/analytics"
	"chatdash.app/api/internal/filter"
	"chatdash.app/api/internal/http/dto"
	"chatdash.app/api/internal/http/middleware"
	"chatdash.app/api/internal/model"
	"chatdash.app/api/internal/service"
)

const loadFailed = "Error al cargar las conversaciones"

type DashboardHandler struct {
	dashboardService service.DashboardService
	location         *time.Location
}

func NewDashboardHandler(dashboardService service.DashboardService, location *time.Location) *DashboardHandler {
	if location == nil {
		location = time.Local
	}
	return &DashboardHandler{dashboardService: dashboardService, location: location}
}

func (h *DashboardHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()
	force := c.Query("force") == "true"

	state, err := h.dashboardService.Refresh(ctx, middleware.GetSession(ctx), force)
	if err != nil {
		respondError(c, err, loadFailed)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *DashboardHandler) State(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, h.dashboardService.State(ctx, middleware.GetSession(ctx)))
}

func (h *DashboardHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()
	f, ok := h.filters(c)
	if !ok {
		return
	}

	overview, err := h.dashboardService.Overview(ctx, middleware.GetSession(ctx), f)
	if err != nil {
		respondError(c, err, loadFailed)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *DashboardHandler) Series(c *gin.Context) {
	ctx := c.Request.Context()
	f, ok := h.filters(c)
	if !ok {
		return
	}

	buckets, err := h.dashboardService.Series(ctx, middleware.GetSession(ctx), f, analytics.ParsePeriod(c.Query("period")))
	if err != nil {
		respondError(c, err, loadFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"buckets": buckets})
}

func (h *DashboardHandler) Products(c *gin.Context) {
	ctx := c.Request.Context()
	f, ok := h.filters(c)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}

	products, err := h.dashboardService.Products(ctx, middleware.GetSession(ctx), f, limit)
	if err != nil {
		respondError(c, err, loadFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *DashboardHandler) Hours(c *gin.Context) {
	ctx := c.Request.Context()
	f, ok := h.filters(c)
	if !ok {
		return
	}
	top, ok := intQuery(c, "top")
	if !ok {
		return
	}

	report, err := h.dashboardService.Hours(ctx, middleware.GetSession(ctx), f, top)
	if err != nil {
		respondError(c, err, loadFailed)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *DashboardHandler) Weekdays(c *gin.Context) {
	ctx := c.Request.Context()
	f, ok := h.filters(c)
	if !ok {
		return
	}

	days, err := h.dashboardService.Weekdays(ctx, middleware.GetSession(ctx), f)
	if err != nil {
		respondError(c, err, loadFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

func (h *DashboardHandler) Clients(c *gin.Context) {
	ctx := c.Request.Context()
	f, ok := h.filters(c)
	if !ok {
		return
	}

	clients, err := h.dashboardService.Clients(ctx, middleware.GetSession(ctx), f)
	if err != nil {
		respondError(c, err, loadFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

func (h *DashboardHandler) Compare(c *gin.Context) {
	ctx := c.Request.Context()
	days, ok := intQuery(c, "days")
	if !ok {
		return
	}

	comparison, err := h.dashboardService.Compare(ctx, middleware.GetSession(ctx), days)
	if err != nil {
		respondError(c, err, loadFailed)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

func (h *DashboardHandler) ListConversations(c *gin.Context) {
	ctx := c.Request.Context()
	f, ok := h.filters(c)
	if !ok {
		return
	}
	var q dto.TableQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	page, err := h.dashboardService.Conversations(ctx, middleware.GetSession(ctx), f, q.ToService())
	if err != nil {
		respondError(c, err, loadFailed)
		return
	}
	c.JSON(http.StatusOK, dto.ToPageResponse(page, service.ConversationColumns, dto.ToConversationSummary))
}

func (h *DashboardHandler) GetConversation(c *gin.Context) {
	ctx := c.Request.Context()

	conv, err := h.dashboardService.Conversation(ctx, middleware.GetSession(ctx), c.Param("id"))
	if err != nil {
		respondError(c, err, loadFailed)
		return
	}
	c.JSON(http.StatusOK, dto.ToConversationDetail(conv))
}

// Filters echoes the parsed filter set with its human-readable labels.
func (h *DashboardHandler) Filters(c *gin.Context) {
	f, ok := h.filters(c)
	if !ok {
		return
	}
	presets := make([]gin.H, len(filter.Presets))
	for i, p := range filter.Presets {
		presets[i] = gin.H{"value": p, "label": p.Label()}
	}
	c.JSON(http.StatusOK, gin.H{
		"filters":  f,
		"active":   f.HasActive(),
		"labels":   filter.Describe(f),
		"statuses": model.Statuses,
		"presets":  presets,
	})
}

func (h *DashboardHandler) filters(c *gin.Context) (filter.Filters, bool) {
	var q dto.FilterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return filter.Filters{}, false
	}
	f, err := q.ToFilters(h.location)
	if err != nil {
		badRequest(c, err)
		return filter.Filters{}, false
	}
	return f, true
}

// intQuery reads an optional integer parameter; absent means 0.
func intQuery(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": key + " must be a non-negative integer"})
		return 0, false
	}
	return n, true
}
