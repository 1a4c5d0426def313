package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/interview-scheduling/internal/api"
	"github.com/hackgods/interview-scheduling/internal/auth"
	"github.com/hackgods/interview-scheduling/internal/config"
	"github.com/hackgods/interview-scheduling/internal/db"
	"github.com/hackgods/interview-scheduling/internal/logging"
	redisclient "github.com/hackgods/interview-scheduling/internal/redis"
	"github.com/hackgods/interview-scheduling/internal/scheduling"
)

var version = "dev"

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

	logger.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("storage", cfg.StorageBackend),
		zap.Bool("redis", cfg.RedisEnabled),
		zap.Stringer("timezone", cfg.Location),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		repo scheduling.Repository
		deps []api.Dependency
	)

	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, cfg.PostgresMaxConns)
		cancelPg()
		if err != nil {
			logger.Fatal("postgres connection error", zap.Error(err))
		}
		defer pgPool.Close()
		logger.Info("connected to Postgres")

		repo = scheduling.NewPgRepository(pgPool)
		deps = append(deps, api.Dependency{Name: "postgres", Critical: true, Check: pgPool.Ping})
	case config.BackendMemory:
		logger.Warn("using in-memory storage, data is lost on exit")
		repo = scheduling.NewMemoryRepository(time.Now)
	}

	var locker redisclient.Locker = redisclient.NewProcessLocker(cfg.LockWait)
	if cfg.RedisEnabled {
		rdb, err := redisclient.NewRedisClient(rootCtx, cfg)
		if err != nil {
			logger.Fatal("redis connection error", zap.Error(err))
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("error closing redis", zap.Error(err))
			}
		}()
		logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))

		locker = redisclient.NewRedisInterviewerLocker(rdb, cfg.LockTTL, cfg.LockWait, logger)
		deps = append(deps, api.Dependency{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}

	slots := scheduling.NewSlotStore(repo, logger)
	matcher := scheduling.NewMatcher(repo, repo, time.Now, cfg.Location, logger)
	booking := scheduling.NewCoordinator(repo, slots, locker, cfg, logger)

	handler := api.NewRouter(api.RouterConfig{
		Slots:          slots,
		Matcher:        matcher,
		Booking:        booking,
		Tokens:         auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL),
		Dependencies:   deps,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
		Env:            cfg.Env,
		Version:        version,
	})

	// Without a shared database there is no separate completion-worker.
	if cfg.StorageBackend == config.BackendMemory {
		go scheduling.NewCompletionWorker(booking, cfg.WorkerInterval, logger).Run(rootCtx)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logger.Error("http server error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	logger.Info("api-server stopped")
}
