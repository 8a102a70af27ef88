// Package handler exposes consultant management over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealership_crm_backend/internal/consultants/service"
	"dealership_crm_backend/internal/consultants/transport"
	"dealership_crm_backend/platform/httpkit"
	"dealership_crm_backend/platform/validator"
)

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
}

func New(svc *service.Service, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, validate: validate}
}

func (h *Handler) RegisterRoutes(protected, admin *gin.RouterGroup) {
	protected.GET("/consultants", h.list)
	protected.GET("/consultants/:id", h.get)
	admin.PATCH("/consultants/:id/active", h.setActive)
}

func (h *Handler) list(c *gin.Context) {
	consultants, err := h.svc.List(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"consultants": transport.FromConsultants(consultants)})
}

func (h *Handler) get(c *gin.Context) {
	consultant, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.FromConsultant(consultant))
}

func (h *Handler) setActive(c *gin.Context) {
	var req transport.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	if err := h.svc.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.NoContent(c)
}
