package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"agencyhub_backend/internal/contact"
	contactrepo "agencyhub_backend/internal/contact/repository"
	"agencyhub_backend/platform/events"
	"agencyhub_backend/internal/household"
	householdrepo "agencyhub_backend/internal/household/repository"
	"agencyhub_backend/internal/scheduler"
	"agencyhub_backend/internal/upload"
	uploadrepo "agencyhub_backend/internal/upload/repository"
	"agencyhub_backend/platform/config"
	"agencyhub_backend/platform/db"
	"agencyhub_backend/platform/logger"
	"agencyhub_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting upload worker", "env", cfg.Env, "queue", cfg.AsynqQueue)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	householdRepo := householdrepo.New(pool)
	contactRepo := contactrepo.New(pool)

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
		uploadrepo.NewUploads(pool),
		uploadrepo.NewAggregates(pool),
		val,
		eventBus,
		cfg,
		log,
	)

	worker, err := scheduler.NewWorker(cfg, coordinator, log)
	if err != nil {
		log.Error("failed to initialize upload worker", "error", err)
		panic("failed to initialize upload worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("upload worker stopped")
}
