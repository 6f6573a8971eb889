package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/chamanbahar/cbm-sales/internal/app"
	"github.com/chamanbahar/cbm-sales/internal/catalog"
	"github.com/chamanbahar/cbm-sales/internal/descriptions"
	jobmetrics "github.com/chamanbahar/cbm-sales/internal/jobs"
	"github.com/chamanbahar/cbm-sales/internal/observability"
	"github.com/chamanbahar/cbm-sales/internal/platform/cache"
	"github.com/chamanbahar/cbm-sales/jobs"
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	descriptionService := descriptions.NewService(descriptions.Config{
		Catalog:    catalog.Default(),
		Store:      descriptions.NewRedisStore(redisClient, cfg.RedisKeyPrefix),
		Fetcher:    descriptions.NewHTTPFetcher(&http.Client{Timeout: cfg.DescriptionFetchTimeout}, cfg.DescriptionUserAgent),
		Logger:     logger,
		Registerer: metrics.Registerer(),
	})
	warmupJob := jobs.NewDescriptionsWarmupJob(descriptionService, logger, jobmetrics.NewMetrics(metrics.Registerer()))

	if cfg.WorkerMetricsAddr != "" {
		go func() {
			if err := jobs.ServeMetrics(ctx, cfg.WorkerMetricsAddr, metrics.Handler(), logger); err != nil {
				logger.Error("worker metrics server", slog.Any("error", err))
			}
		}()
	}

	warmupTask, err := jobs.NewDescriptionsWarmupTask(cfg.WarmupConcurrency)
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	var cron []jobs.CronRegistration
	if cfg.WarmupCron != "" {
		cron = append(cron, jobs.CronRegistration{
			Spec:    cfg.WarmupCron,
			Task:    warmupTask,
			Options: []asynq.Option{asynq.MaxRetry(3), asynq.Queue(jobs.QueueDefault)},
		})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDescriptionsWarmup, Handler: warmupJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("warmup_cron", cfg.WarmupCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
