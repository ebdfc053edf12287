package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/caveat-labs/caveat/internal/app"
	"github.com/caveat-labs/caveat/internal/auth"
	"github.com/caveat-labs/caveat/internal/observability"
	"github.com/caveat-labs/caveat/internal/platform/cache"
	"github.com/caveat-labs/caveat/internal/platform/db"
	"github.com/caveat-labs/caveat/internal/profiles"
	"github.com/caveat-labs/caveat/internal/rbac"
	"github.com/caveat-labs/caveat/internal/roles"
	"github.com/caveat-labs/caveat/internal/shared"
	"github.com/caveat-labs/caveat/jobs"
)

type roleSyncEnqueuer struct {
	client *jobs.Client
}

func (e roleSyncEnqueuer) EnqueueRoleSync(ctx context.Context, payload jobs.RoleSyncPayload) error {
	_, err := e.client.EnqueueRoleSync(ctx, payload)
	return err
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	if err := db.Migrate(cfg.MigrationsURL, cfg.PGDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var catalogOpts []roles.Option
	if cfg.LenientRoleLookups {
		catalogOpts = append(catalogOpts, roles.WithLenientLookup())
	}
	catalog := roles.Default(catalogOpts...)

	metrics := observability.NewMetrics()
	verifier := auth.NewVerifier(cfg.TokenSecret)

	profileRepo := profiles.NewRepository(dbpool)
	resolver := rbac.NewResolver(catalog, profileRepo, rbac.NewCache(redisClient, cfg.RoleCacheTTL), logger)
	gate := rbac.NewGate(resolver, logger, metrics)
	guard := rbac.Middleware{Gate: gate, Logger: logger}

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(dbpool)
	publisher := profiles.NewPublisher(redisClient)
	profileService := profiles.NewService(profileRepo, catalog, auditLogger, publisher, roleSyncEnqueuer{client: jobsClient}, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Verifier:        verifier,
		RolesHandler:    roles.NewHandler(logger, catalog),
		AuthzHandler:    rbac.NewHandler(logger, gate),
		ProfilesHandler: profiles.NewHandler(logger, profileService, guard),
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		// Role-change events invalidate gate state so permission checks
		// pick up the new tag within one resolution cycle.
		err := profiles.SubscribeRoleChanges(groupCtx, redisClient, logger, func(ctx context.Context, ev profiles.RoleChangeEvent) {
			gate.Refresh(ctx, ev.UserID)
			logger.Info("gate refreshed", slog.String("user_id", ev.UserID.String()), slog.String("tag", ev.Tag))
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("runtime", slog.Any("error", err))
		os.Exit(1)
	}
}
