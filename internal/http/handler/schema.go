package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"

	"chatdash.app/api/internal/model"
)

// SchemaHandler publishes the JSON schema of the upstream chat payload so
// integrators can validate what they feed the dashboard.
type SchemaHandler struct {
	schema *jsonschema.Schema
}

func NewSchemaHandler() *SchemaHandler {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect([]model.RawConversation{})
	schema.Title = "Chat history export"
	return &SchemaHandler{schema: schema}
}

func (h *SchemaHandler) Conversations(c *gin.Context) {
	c.JSON(http.StatusOK, h.schema)
}
