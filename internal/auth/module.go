// Package auth provides login and account provisioning.
package auth

import (
	"dealership_crm_backend/internal/auth/handler"
	"dealership_crm_backend/internal/auth/service"
	"dealership_crm_backend/internal/auth/token"
	apphttp "dealership_crm_backend/internal/http"
	"dealership_crm_backend/platform/config"
	"dealership_crm_backend/platform/validator"
)

type Module struct {
	Service *service.Service
	handler *handler.Handler
}

var _ apphttp.Module = (*Module)(nil)

func NewModule(cfg config.AuthServiceConfig, credentials service.Credentials, validate *validator.Validator) *Module {
	issuer := token.NewIssuer(cfg.GetJWTAccessSecret(), cfg.GetAccessTokenTTL())
	svc := service.New(credentials, issuer)
	return &Module{
		Service: svc,
		handler: handler.New(svc, validate),
	}
}

func (m *Module) Name() string { return "auth" }

func (m *Module) RegisterRoutes(rc apphttp.RouterContext) {
	m.handler.RegisterRoutes(rc.V1, rc.Admin)
}
