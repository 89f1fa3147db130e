package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agencyhub_backend/internal/contact"
	contactrepo "agencyhub_backend/internal/contact/repository"
	"agencyhub_backend/platform/events"
	"agencyhub_backend/internal/household"
	householdhandler "agencyhub_backend/internal/household/handler"
	householdrepo "agencyhub_backend/internal/household/repository"
	apphttp "agencyhub_backend/internal/http"
	"agencyhub_backend/internal/lifecycle"
	lifecyclehandler "agencyhub_backend/internal/lifecycle/handler"
	lifecyclerepo "agencyhub_backend/internal/lifecycle/repository"
	"agencyhub_backend/internal/scheduler"
	"agencyhub_backend/internal/upload"
	uploadhandler "agencyhub_backend/internal/upload/handler"
	uploadrepo "agencyhub_backend/internal/upload/repository"
	"agencyhub_backend/migrations"
	"agencyhub_backend/platform/config"
	"agencyhub_backend/platform/db"
	"agencyhub_backend/platform/logger"
	"agencyhub_backend/platform/validator"

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
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
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

	householdRepo := householdrepo.New(pool)
	contactRepo := contactrepo.New(pool)
	uploadsRepo := uploadrepo.NewUploads(pool)

	strategy := household.NewNameZipStrategy(householdRepo)
	resolver := household.NewResolver(strategy, householdRepo, log)
	registrar := contact.NewRegistrar(contactRepo, householdRepo, log)

	coordinator := upload.NewCoordinator(
		[]upload.Pipeline{
			uploadrepo.NewWinbacks(pool),
			uploadrepo.NewCancelAudits(pool),
			uploadrepo.NewRenewals(pool),
			uploadrepo.NewSales(pool),
		},
		resolver,
		registrar,
		uploadsRepo,
		uploadrepo.NewAggregates(pool),
		val,
		eventBus,
		cfg,
		log,
	)
	uploadService := upload.NewService(coordinator, log)

	enqueuer, closeEnqueuer := initUploadEnqueuer(cfg, log)
	if closeEnqueuer != nil {
		defer closeEnqueuer()
	}

	projector := lifecycle.NewProjector(lifecyclerepo.New(pool))

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	engine := apphttp.New(apphttp.Deps{
		Config:     cfg,
		Logger:     log,
		Health:     db.NewPoolAdapter(pool),
		Uploads:    uploadhandler.New(uploadService, uploadsRepo, enqueuer, log),
		Lifecycle:  lifecyclehandler.New(projector),
		Households: householdhandler.New(householdRepo),
	})

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

// initUploadEnqueuer returns a nil enqueuer when no queue is configured;
// uploads then run as in-process background jobs instead.
func initUploadEnqueuer(cfg *config.Config, log *logger.Logger) (scheduler.UploadEnqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; uploads run in-process")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize upload scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
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
