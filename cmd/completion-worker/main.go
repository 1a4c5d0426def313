package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/interview-scheduling/internal/config"
	"github.com/hackgods/interview-scheduling/internal/db"
	"github.com/hackgods/interview-scheduling/internal/logging"
	"github.com/hackgods/interview-scheduling/internal/scheduling"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.StorageBackend != config.BackendPostgres {
		logger.Fatal("completion-worker needs STORAGE_BACKEND=postgres; the memory backend completes in-process")
	}

	logger.Info("completion-worker starting up",
		zap.String("env", cfg.Env),
		zap.Duration("interval", cfg.WorkerInterval),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, 4)
	cancelPg()
	if err != nil {
		logger.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	logger.Info("connected to Postgres")

	// Completion never touches slots, so no interviewer lock is needed.
	repo := scheduling.NewPgRepository(pgPool)
	booking := scheduling.NewCoordinator(repo, scheduling.NewSlotStore(repo, logger), nil, cfg, logger)

	scheduling.NewCompletionWorker(booking, cfg.WorkerInterval, logger).Run(rootCtx)
}
