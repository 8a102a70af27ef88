// Package consultants manages the sales consultant registry.
package consultants

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"dealership_crm_backend/internal/consultants/handler"
	"dealership_crm_backend/internal/consultants/repository"
	"dealership_crm_backend/internal/consultants/service"
	apphttp "dealership_crm_backend/internal/http"
	"dealership_crm_backend/platform/validator"
)

type Module struct {
	Service    *service.Service
	Repository *repository.Repository
	handler    *handler.Handler
}

var _ apphttp.Module = (*Module)(nil)

func NewModule(pool *pgxpool.Pool, validate *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	return &Module{
		Service:    svc,
		Repository: repo,
		handler:    handler.New(svc, validate),
	}
}

func (m *Module) Name() string { return "consultants" }

func (m *Module) RegisterRoutes(rc apphttp.RouterContext) {
	m.handler.RegisterRoutes(rc.Protected, rc.Admin)
}
