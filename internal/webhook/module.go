package webhook

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealership_crm_backend/internal/events"
	apphttp "dealership_crm_backend/internal/http"
	"dealership_crm_backend/platform/logger"
)

type Module struct {
	Service    *Service
	Repository *Repository
	handler    *Handler
}

var _ apphttp.Module = (*Module)(nil)

func NewModule(pool *pgxpool.Pool, eventBus events.Bus, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, eventBus, log)
	return &Module{
		Service:    svc,
		Repository: repo,
		handler:    NewHandler(svc),
	}
}

// AuthMiddleware returns the API-key gate for the webhook route group.
func (m *Module) AuthMiddleware() gin.HandlerFunc {
	return APIKeyAuth(m.Repository)
}

func (m *Module) Name() string { return "webhook" }

func (m *Module) RegisterRoutes(rc apphttp.RouterContext) {
	m.handler.RegisterRoutes(rc.Webhook)
}
