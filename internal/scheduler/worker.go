package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"dealership_crm_backend/platform/config"
	"dealership_crm_backend/platform/logger"
)

// Sweeper runs one full background pass. Implemented by the lead
// module's orchestrator.
type Sweeper interface {
	RunSweepsBlocking(ctx context.Context) error
}

// Worker consumes background jobs.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	sweeper Sweeper
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sweeper Sweeper, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: cfg.GetAsynqConcurrency(),
		Queues:      map[string]int{cfg.GetAsynqQueueName(): 1},
	})

	w := &Worker{server: server, mux: asynq.NewServeMux(), sweeper: sweeper, log: log}
	w.mux.HandleFunc(TaskLeadSweeps, w.handleLeadSweeps)
	return w, nil
}

func (w *Worker) handleLeadSweeps(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadSweepsPayload(task)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := w.sweeper.RunSweepsBlocking(ctx); err != nil {
		return fmt.Errorf("run lead sweeps: %w", err)
	}

	w.log.Info("lead sweeps completed",
		"queue_latency", start.Sub(payload.RequestedAt).String(),
		"duration", time.Since(start).String(),
	)
	return nil
}

// Run starts the worker and blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}
