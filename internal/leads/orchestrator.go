// Package leads wires the lead facade, engines and background sweeps
// into one module.
package leads

import (
	"context"
	"sync"

	"dealership_crm_backend/internal/leads/distribution"
	"dealership_crm_backend/internal/leads/promotion"
	"dealership_crm_backend/platform/logger"
)

const (
	sweepDistribution = "distribution"
	sweepPromotion    = "promotion"
)

// Orchestrator runs the background distribution and promotion sweeps.
// At most one sweep of each kind is in flight per process; a trigger
// while one is running is a silent no-op, not queued.
type Orchestrator struct {
	distributor *distribution.Engine
	promoter    *promotion.Engine
	log         *logger.Logger

	runsMu     sync.Mutex
	activeRuns map[string]bool
}

func NewOrchestrator(distributor *distribution.Engine, promoter *promotion.Engine, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		distributor: distributor,
		promoter:    promoter,
		log:         log,
		activeRuns:  make(map[string]bool),
	}
}

// markRunning reserves a sweep slot. Returns false when that sweep is
// already in flight.
func (o *Orchestrator) markRunning(name string) bool {
	o.runsMu.Lock()
	defer o.runsMu.Unlock()
	if o.activeRuns[name] {
		return false
	}
	o.activeRuns[name] = true
	return true
}

func (o *Orchestrator) markComplete(name string) {
	o.runsMu.Lock()
	defer o.runsMu.Unlock()
	delete(o.activeRuns, name)
}

// TriggerSweeps kicks both sweeps fire-and-forget. Failures are logged
// and never reach the caller; the read that triggered the sweep must
// not be affected.
func (o *Orchestrator) TriggerSweeps(ctx context.Context) {
	o.triggerDistribution(ctx)
	o.triggerPromotion(ctx)
}

func (o *Orchestrator) triggerDistribution(ctx context.Context) {
	if !o.markRunning(sweepDistribution) {
		return
	}
	go func(ctx context.Context) {
		defer o.markComplete(sweepDistribution)
		assigned, err := o.distributor.Sweep(ctx)
		if err != nil {
			o.log.Error("distribution sweep failed", "error", err)
			return
		}
		if assigned > 0 {
			o.log.Info("distribution sweep done", "assigned", assigned)
		}
	}(context.WithoutCancel(ctx))
}

func (o *Orchestrator) triggerPromotion(ctx context.Context) {
	if !o.markRunning(sweepPromotion) {
		return
	}
	go func(ctx context.Context) {
		defer o.markComplete(sweepPromotion)
		migrated, err := o.promoter.SyncPending(ctx)
		if err != nil {
			o.log.Error("promotion sweep failed", "error", err)
			return
		}
		if migrated > 0 {
			o.log.Info("promotion sweep done", "migrated", migrated)
		}
	}(context.WithoutCancel(ctx))
}

// RunSweepsBlocking runs both sweeps synchronously, honoring the same
// single-flight guards. The scheduled job path uses this so failures
// surface to the worker for retry.
func (o *Orchestrator) RunSweepsBlocking(ctx context.Context) error {
	if o.markRunning(sweepDistribution) {
		_, err := o.distributor.Sweep(ctx)
		o.markComplete(sweepDistribution)
		if err != nil {
			return err
		}
	}
	if o.markRunning(sweepPromotion) {
		_, err := o.promoter.SyncPending(ctx)
		o.markComplete(sweepPromotion)
		if err != nil {
			return err
		}
	}
	return nil
}
