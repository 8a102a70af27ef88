// Package handler exposes the sales flow over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/internal/sales/service"
	"dealership_crm_backend/internal/sales/transport"
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
	protected.POST("/leads/:id/close", h.closeLead)
	protected.GET("/sales", h.list)
	admin.GET("/sales/summary", h.summary)
}

func (h *Handler) closeLead(c *gin.Context) {
	ref, err := domain.ParseRef(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id")
		return
	}
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	var req transport.CloseLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	input := service.CloseInput{
		LeadRef:      ref,
		AmountCents:  req.AmountCents,
		ProfitMargin: req.ProfitMargin,
		ClosedBy:     identity.UserID(),
	}
	if req.SaleDate != nil {
		input.SaleDate = *req.SaleDate
	}

	sale, err := h.svc.CloseAsWon(c.Request.Context(), input)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.FromSale(sale))
}

// list shows the caller's own sales; admins see everything and may
// filter with ?consultantId=.
func (h *Handler) list(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	consultantID := identity.UserID()
	if identity.HasRole("admin") {
		consultantID = c.Query("consultantId")
	}

	sales, err := h.svc.List(c.Request.Context(), consultantID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"sales": transport.FromSales(sales)})
}

func (h *Handler) summary(c *gin.Context) {
	from, to, err := parsePeriod(c)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid period")
		return
	}

	summaries, err := h.svc.Summarize(c.Request.Context(), from, to)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"summary": transport.FromSummaries(summaries)})
}

// parsePeriod reads ?from= and ?to= as RFC 3339 dates, defaulting to
// the last 30 days.
func parsePeriod(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from, to := now.AddDate(0, 0, -30), now

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	return from, to, nil
}
