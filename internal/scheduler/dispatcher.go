package scheduler

import (
	"context"
	"time"

	"dealership_crm_backend/platform/config"
	"dealership_crm_backend/platform/logger"
)

// Dispatcher enqueues the periodic sweep job on a fixed interval.
type Dispatcher struct {
	client *Client
	cfg    config.SchedulerConfig
	log    *logger.Logger
}

func NewDispatcher(client *Client, cfg config.SchedulerConfig, log *logger.Logger) *Dispatcher {
	return &Dispatcher{client: client, cfg: cfg, log: log}
}

// Run enqueues a sweep immediately, then on every tick, until ctx is
// cancelled. Enqueue failures are logged and retried next tick.
func (d *Dispatcher) Run(ctx context.Context) {
	d.enqueue(ctx)

	ticker := time.NewTicker(d.cfg.GetSweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.enqueue(ctx)
		}
	}
}

func (d *Dispatcher) enqueue(ctx context.Context) {
	if err := d.client.EnqueueLeadSweeps(ctx, d.cfg); err != nil {
		d.log.Error("enqueue sweep failed", "error", err)
	}
}
