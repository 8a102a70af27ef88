package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"dealership_crm_backend/internal/consultants"
	"dealership_crm_backend/internal/events"
	"dealership_crm_backend/internal/leads"
	"dealership_crm_backend/internal/scheduler"
	"dealership_crm_backend/platform/config"
	"dealership_crm_backend/platform/db"
	"dealership_crm_backend/platform/logger"
	"dealership_crm_backend/platform/validator"

	"golang.org/x/sync/errgroup"
)

// The scheduler binary owns the periodic background work: it enqueues
// the sweep task on an interval and consumes it from the asynq queue.
// Running it apart from the API keeps sweep load off request serving.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	if cfg.GetRedisURL() == "" {
		panic("REDIS_URL is required for the scheduler binary")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	consultantsModule := consultants.NewModule(pool, val)
	leadsModule := leads.NewModule(pool, cfg, consultantsModule.Repository, nil, eventBus, log, val)

	worker, err := scheduler.NewWorker(cfg, leadsModule.Orchestrator, log)
	if err != nil {
		log.Error("failed to initialize sweep worker", "error", err)
		panic("failed to initialize sweep worker: " + err.Error())
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize sweep client", "error", err)
		panic("failed to initialize sweep client: " + err.Error())
	}
	defer client.Close()

	dispatcher := scheduler.NewDispatcher(client, cfg, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		dispatcher.Run(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("scheduler stopped with error", "error", err)
		panic("scheduler stopped with error: " + err.Error())
	}
	log.Info("scheduler shut down")
}
