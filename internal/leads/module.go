package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"dealership_crm_backend/internal/events"
	apphttp "dealership_crm_backend/internal/http"
	"dealership_crm_backend/internal/leads/agent"
	"dealership_crm_backend/internal/leads/distribution"
	"dealership_crm_backend/internal/leads/handler"
	"dealership_crm_backend/internal/leads/promotion"
	"dealership_crm_backend/internal/leads/repository"
	"dealership_crm_backend/internal/leads/service"
	"dealership_crm_backend/platform/config"
	"dealership_crm_backend/platform/logger"
	"dealership_crm_backend/platform/validator"
)

// ConsultantDirectory is everything the lead module needs from the
// consultants module.
type ConsultantDirectory interface {
	distribution.ConsultantRegistry
	service.ConsultantReader
}

// Module bundles the lead facade, engines and HTTP surface.
type Module struct {
	Service      *service.Service
	Orchestrator *Orchestrator
	handler      *handler.Handler
}

var _ apphttp.Module = (*Module)(nil)

func NewModule(
	pool *pgxpool.Pool,
	cfg *config.Config,
	consultants ConsultantDirectory,
	analyzer agent.Analyzer,
	eventBus events.Bus,
	log *logger.Logger,
	validate *validator.Validator,
) *Module {
	canonical := repository.NewCanonical(pool)
	legacy := repository.NewLegacy(pool)

	svc := service.New(canonical, legacy, consultants, analyzer, eventBus, log)

	distributor := distribution.NewEngine(
		consultants, svc, svc, cfg.GetDistributionOverrides(), eventBus, log)
	promoter := promotion.NewEngine(legacy, canonical, consultants, eventBus, log)
	orchestrator := NewOrchestrator(distributor, promoter, log)

	// The engines consume the facade as their persistence surface, so
	// these hooks close the loop after construction.
	svc.SetDistributor(distributor)
	svc.SetSweepTrigger(orchestrator)

	return &Module{
		Service:      svc,
		Orchestrator: orchestrator,
		handler:      handler.New(svc, validate),
	}
}

func (m *Module) Name() string { return "leads" }

func (m *Module) RegisterRoutes(rc apphttp.RouterContext) {
	m.handler.RegisterRoutes(rc.Protected, rc.Admin)
}
