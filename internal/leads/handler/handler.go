// Package handler exposes the lead facade over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/internal/leads/repository"
	"dealership_crm_backend/internal/leads/service"
	"dealership_crm_backend/internal/leads/transport"
	"dealership_crm_backend/platform/httpkit"
	"dealership_crm_backend/platform/validator"
)

const msgInvalidRequest = "invalid request body"

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
}

func New(svc *service.Service, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, validate: validate}
}

// RegisterRoutes mounts the lead endpoints. Hard delete is admin-only.
func (h *Handler) RegisterRoutes(protected, admin *gin.RouterGroup) {
	leads := protected.Group("/leads")
	leads.GET("", h.list)
	leads.POST("", h.create)
	leads.GET("/:id", h.get)
	leads.PATCH("/:id", h.updateDetails)
	leads.PATCH("/:id/status", h.updateStatus)
	leads.POST("/:id/assign", h.assign)
	leads.POST("/:id/analyze", h.analyze)

	admin.DELETE("/leads/:id", h.delete)
}

// list returns the merged lead board. Consultants see their own leads;
// admins see everything and may filter with ?consultantId=.
func (h *Handler) list(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	consultantFilter := ""
	if identity.HasRole("admin") {
		consultantFilter = c.Query("consultantId")
	} else {
		consultantFilter = identity.UserID()
	}

	leads, err := h.svc.GetLeads(c.Request.Context(), consultantFilter)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"leads": transport.FromLeads(leads)})
}

func (h *Handler) get(c *gin.Context) {
	ref, ok := h.parseRef(c)
	if !ok {
		return
	}
	lead, err := h.svc.GetLead(c.Request.Context(), ref)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.FromLead(lead))
}

func (h *Handler) create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	lead, err := h.svc.CreateLead(c.Request.Context(), service.CreateLeadInput{
		Name:            req.Name,
		Phone:           req.Phone,
		VehicleInterest: req.VehicleInterest,
		TradeInVehicle:  req.TradeInVehicle,
		Region:          req.Region,
		Source:          req.Source,
		Notes:           req.Notes,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.FromLead(lead))
}

func (h *Handler) updateStatus(c *gin.Context) {
	ref, ok := h.parseRef(c)
	if !ok {
		return
	}
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	err := h.svc.UpdateStatus(c.Request.Context(), ref, domain.Status(req.Status), identity.UserID())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) updateDetails(c *gin.Context) {
	ref, ok := h.parseRef(c)
	if !ok {
		return
	}

	var req transport.UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	err := h.svc.UpdateDetails(c.Request.Context(), ref, repository.DetailPatch{
		Name:            req.Name,
		Phone:           req.Phone,
		VehicleInterest: req.VehicleInterest,
		TradeInVehicle:  req.TradeInVehicle,
		Region:          req.Region,
		Notes:           req.Notes,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) assign(c *gin.Context) {
	ref, ok := h.parseRef(c)
	if !ok {
		return
	}

	var req transport.AssignConsultantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	if err := h.svc.AssignConsultant(c.Request.Context(), ref, req.ConsultantID); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) analyze(c *gin.Context) {
	ref, ok := h.parseRef(c)
	if !ok {
		return
	}

	var req transport.AnalyzeLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	analysis, err := h.svc.AnalyzeLead(c.Request.Context(), ref, req.Conversation)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.FromAnalysis(analysis))
}

func (h *Handler) delete(c *gin.Context) {
	ref, ok := h.parseRef(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteLead(c.Request.Context(), ref); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) parseRef(c *gin.Context) (domain.Ref, bool) {
	ref, err := domain.ParseRef(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id")
		return domain.Ref{}, false
	}
	return ref, true
}
