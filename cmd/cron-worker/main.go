package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/famlyhq/famly-backend/internal/cron"
	"github.com/famlyhq/famly-backend/internal/invites"
	"github.com/famlyhq/famly-backend/internal/tasks"
	"github.com/famlyhq/famly-backend/pkg/config"
	"github.com/famlyhq/famly-backend/pkg/db"
	"github.com/famlyhq/famly-backend/pkg/logger"
	"github.com/famlyhq/famly-backend/pkg/metrics"
	"github.com/famlyhq/famly-backend/pkg/migrate"
	"github.com/famlyhq/famly-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)

	inviteCleanup, err := cron.NewInviteCleanupJob(cron.InviteCleanupJobParams{
		Logger:     logg,
		Repository: invites.NewRepository(dbClient.DB()),
		Metrics:    metricsCollector,
		Retention:  cfg.Invites.PendingRetention,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create invite cleanup job", err)
		os.Exit(1)
	}

	taskRetention, err := cron.NewTaskRetentionJob(cron.TaskRetentionJobParams{
		Logger:     logg,
		Repository: tasks.NewRepository(dbClient.DB()),
		Metrics:    metricsCollector,
		Retention:  cfg.Tasks.DoneRetentionDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create task retention job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker"), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(inviteCleanup, taskRetention),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
