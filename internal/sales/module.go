// Package sales records closed deals and their consultant attribution.
package sales

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"dealership_crm_backend/internal/events"
	apphttp "dealership_crm_backend/internal/http"
	"dealership_crm_backend/internal/sales/handler"
	"dealership_crm_backend/internal/sales/repository"
	"dealership_crm_backend/internal/sales/service"
	"dealership_crm_backend/platform/validator"
)

type Module struct {
	Service *service.Service
	handler *handler.Handler
}

var _ apphttp.Module = (*Module)(nil)

func NewModule(pool *pgxpool.Pool, leads service.LeadBoard, eventBus events.Bus, validate *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, leads, eventBus)
	return &Module{
		Service: svc,
		handler: handler.New(svc, validate),
	}
}

func (m *Module) Name() string { return "sales" }

func (m *Module) RegisterRoutes(rc apphttp.RouterContext) {
	m.handler.RegisterRoutes(rc.Protected, rc.Admin)
}
