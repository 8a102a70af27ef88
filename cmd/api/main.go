package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dealership_crm_backend/internal/auth"
	"dealership_crm_backend/internal/consultants"
	"dealership_crm_backend/internal/email"
	"dealership_crm_backend/internal/events"
	apphttp "dealership_crm_backend/internal/http"
	"dealership_crm_backend/internal/http/router"
	"dealership_crm_backend/internal/leads"
	"dealership_crm_backend/internal/leads/agent"
	"dealership_crm_backend/internal/notification"
	"dealership_crm_backend/internal/sales"
	"dealership_crm_backend/internal/webhook"
	"dealership_crm_backend/platform/config"
	"dealership_crm_backend/platform/db"
	"dealership_crm_backend/platform/logger"
	"dealership_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(cfg.DatabaseURL, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	consultantsModule := consultants.NewModule(pool, val)

	var analyzer agent.Analyzer
	if cfg.IsAIEnabled() {
		a, err := agent.NewGeminiAnalyzer(ctx, cfg.GetGeminiAPIKey(), cfg.GetGeminiModel())
		if err != nil {
			log.Error("failed to initialize lead analyzer", "error", err)
			panic("failed to initialize lead analyzer: " + err.Error())
		}
		analyzer = a
		log.Info("lead analyzer initialized", "model", cfg.GetGeminiModel())
	} else {
		log.Warn("GEMINI_API_KEY not configured; lead analysis disabled")
	}

	leadsModule := leads.NewModule(pool, cfg, consultantsModule.Repository, analyzer, eventBus, log, val)
	authModule := auth.NewModule(cfg, consultantsModule.Repository, val)
	webhookModule := webhook.NewModule(pool, eventBus, log)
	salesModule := sales.NewModule(pool, leadsModule.Service, eventBus, val)

	// Notification module subscribes to domain events (not HTTP-facing)
	if cfg.GetEmailEnabled() {
		notification.NewModule(email.NewSMTPSender(cfg), consultantsModule.Repository, eventBus, log)
		log.Info("assignment notifications enabled", "smtpHost", cfg.GetSMTPHost())
	} else {
		log.Warn("SMTP not configured; assignment notifications disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Modules: []apphttp.Module{
			authModule,
			consultantsModule,
			leadsModule,
			salesModule,
			webhookModule,
		},
	}

	engine := router.New(cfg, log, app, webhookModule.AuthMiddleware())

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
