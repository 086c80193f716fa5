package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatdash.app/api/common/id"
	"chatdash.app/api/internal/http/dto"
	"chatdash.app/api/internal/service"
)

type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

func (h *ClientHandler) List(c *gin.Context) {
	var q dto.TableQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	page, err := h.clientService.List(c.Request.Context(), q.ToService())
	if err != nil {
		respondError(c, err, "failed to list clients")
		return
	}
	c.JSON(http.StatusOK, dto.ToPageResponse(page, service.ClientColumns, dto.ToClientResponse))
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		respondError(c, err, "failed to create client")
		return
	}
	c.JSON(http.StatusCreated, dto.ToClientResponse(*client))
}

func (h *ClientHandler) Delete(c *gin.Context) {
	clientID, err := id.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	if err := h.clientService.Delete(c.Request.Context(), clientID); err != nil {
		respondError(c, err, "failed to delete client")
		return
	}
	c.Status(http.StatusNoContent)
}
