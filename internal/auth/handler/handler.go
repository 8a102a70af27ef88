// Package handler exposes login and registration over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealership_crm_backend/internal/auth/service"
	"dealership_crm_backend/internal/auth/transport"
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

// RegisterRoutes mounts login on the public group and registration on
// the admin group. There is no self-service signup; accounts are
// provisioned by an admin.
func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup) {
	public.POST("/auth/login", h.login)
	admin.POST("/auth/register", h.register)
}

func (h *Handler) login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	session, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.SessionResponse{
		AccessToken: session.AccessToken,
		ExpiresAt:   session.ExpiresAt,
		Consultant: transport.UserBrief{
			ID:    session.Consultant.ID,
			Name:  session.Consultant.Name,
			Email: session.Consultant.Email,
			Role:  session.Consultant.Role,
		},
	})
}

func (h *Handler) register(c *gin.Context) {
	var req transport.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	consultant, err := h.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.UserBrief{
		ID:    consultant.ID,
		Name:  consultant.Name,
		Email: consultant.Email,
		Role:  consultant.Role,
	})
}
