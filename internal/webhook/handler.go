package webhook

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealership_crm_backend/platform/httpkit"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(webhook *gin.RouterGroup) {
	webhook.POST("/leads", h.capture)
}

// capture accepts an arbitrary JSON object and extracts a lead from
// it. The channel label comes from the authenticated API key.
func (h *Handler) capture(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	source := c.GetString(contextSourceKey)
	sub := ExtractSubmission(payload, source)

	id, err := h.svc.Capture(c.Request.Context(), sub)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, gin.H{"id": id})
}
