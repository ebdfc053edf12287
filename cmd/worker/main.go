package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/caveat-labs/caveat/internal/app"
	"github.com/caveat-labs/caveat/internal/platform/db"
	"github.com/caveat-labs/caveat/internal/profiles"
	"github.com/caveat-labs/caveat/internal/rbac"
	"github.com/caveat-labs/caveat/internal/roles"
	"github.com/caveat-labs/caveat/internal/shared"
	"github.com/caveat-labs/caveat/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	catalog := roles.Default()
	profileRepo := profiles.NewRepository(pool)
	resolver := rbac.NewResolver(catalog, profileRepo, rbac.NewCache(redisClient, cfg.RoleCacheTTL), logger)
	auditLogger := shared.NewAuditLogger(pool)

	roleSync := jobs.NewRoleSyncJob(resolver, auditLogger, logger)
	driftScan := jobs.NewCatalogDriftJob(pool, catalog, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeRoleSync, Handler: roleSync.Handle},
			{Type: jobs.TaskTypeCatalogDrift, Handler: driftScan.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: jobs.NewCatalogDriftTask()},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker", slog.Any("error", err))
		os.Exit(1)
	}
}
