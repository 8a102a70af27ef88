// Package distribution assigns incoming leads to sales consultants.
package distribution

import (
	"context"
	"strings"
	"time"

	"dealership_crm_backend/internal/events"
	"dealership_crm_backend/internal/leads/domain"
	"dealership_crm_backend/platform/config"
	"dealership_crm_backend/platform/logger"
)

// ConsultantRegistry is the consultant read/touch surface the engine
// needs.
type ConsultantRegistry interface {
	// ListActive returns active consultants ordered by
	// lastLeadAssignedAt ascending, nulls first.
	ListActive(ctx context.Context) ([]domain.Consultant, error)
	// FindByName resolves a consultant by case-insensitive substring.
	FindByName(ctx context.Context, name string) (domain.Consultant, bool, error)
	// TouchAssignment advances the consultant's assignment clock.
	TouchAssignment(ctx context.Context, consultantID string, at time.Time) error
}

// Applier persists an assignment, routing by lead provenance. It must
// be conditional: a lead already holding a consultant reports false
// and the engine leaves the consultant's clock untouched.
type Applier interface {
	ApplyAssignment(ctx context.Context, ref domain.Ref, consultant domain.Consultant) (bool, error)
}

// UnassignedLister feeds the sweep with leads awaiting a consultant.
type UnassignedLister interface {
	ListUnassignedLeads(ctx context.Context, limit int) ([]domain.Lead, error)
}

// Engine implements override-then-round-robin lead assignment.
type Engine struct {
	registry  ConsultantRegistry
	applier   Applier
	lister    UnassignedLister
	overrides []config.OverrideRule
	eventBus  events.Bus
	log       *logger.Logger
	now       func() time.Time
}

func NewEngine(
	registry ConsultantRegistry,
	applier Applier,
	lister UnassignedLister,
	overrides []config.OverrideRule,
	eventBus events.Bus,
	log *logger.Logger,
) *Engine {
	return &Engine{
		registry:  registry,
		applier:   applier,
		lister:    lister,
		overrides: overrides,
		eventBus:  eventBus,
		log:       log,
		now:       time.Now,
	}
}

// Result reports the outcome of one assignment attempt.
type Result struct {
	Consultant  domain.Consultant
	Assigned    bool
	ViaOverride bool
}

// Assign picks a consultant for the lead and persists the assignment.
// Pending outcomes (no active consultant, lead already taken) are not
// errors: Assigned stays false and the lead waits for the next pass.
func (e *Engine) Assign(ctx context.Context, lead domain.Lead) (Result, error) {
	consultant, viaOverride, found, err := e.pick(ctx, lead.Name)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{}, nil
	}

	applied, err := e.applier.ApplyAssignment(ctx, lead.Ref, consultant)
	if err != nil {
		return Result{}, err
	}
	if !applied {
		// Lost the race to a concurrent pass; the winner already
		// touched the clock.
		return Result{}, nil
	}

	if err := e.registry.TouchAssignment(ctx, consultant.ID, e.now()); err != nil {
		return Result{}, err
	}

	e.eventBus.Publish(ctx, events.LeadAssigned{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.Ref.String(),
		LeadName:       lead.Name,
		LeadPhone:      lead.Phone,
		ConsultantID:   consultant.ID,
		ConsultantName: consultant.Name,
		ViaOverride:    viaOverride,
	})

	return Result{Consultant: consultant, Assigned: true, ViaOverride: viaOverride}, nil
}

// pick chooses a consultant. Named overrides win; an override whose
// target cannot be resolved falls through to round robin instead of
// failing.
func (e *Engine) pick(ctx context.Context, leadName string) (domain.Consultant, bool, bool, error) {
	loweredName := strings.ToLower(leadName)
	for _, rule := range e.overrides {
		if !strings.Contains(loweredName, strings.ToLower(rule.LeadNameContains)) {
			continue
		}
		consultant, found, err := e.registry.FindByName(ctx, rule.ConsultantName)
		if err != nil {
			return domain.Consultant{}, false, false, err
		}
		if found && consultant.IsActive {
			return consultant, true, true, nil
		}
	}

	active, err := e.registry.ListActive(ctx)
	if err != nil {
		return domain.Consultant{}, false, false, err
	}
	if len(active) == 0 {
		return domain.Consultant{}, false, false, nil
	}
	return active[0], false, true, nil
}

// sweepBatchSize bounds one sweep pass. Leftovers wait for the next
// trigger.
const sweepBatchSize = 100

// Sweep assigns every waiting lead it can and returns how many were
// assigned. Per-lead failures are logged and skipped so one bad row
// never stalls the rest.
func (e *Engine) Sweep(ctx context.Context) (int, error) {
	pending, err := e.lister.ListUnassignedLeads(ctx, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	assigned := 0
	for _, lead := range pending {
		result, err := e.Assign(ctx, lead)
		if err != nil {
			e.log.Error("distribution sweep: assign failed",
				"lead_id", lead.Ref.String(),
				"error", err,
			)
			continue
		}
		if result.Assigned {
			assigned++
		}
	}
	return assigned, nil
}
