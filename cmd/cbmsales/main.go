package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/chamanbahar/cbm-sales/cmd/cbmsales/cli"
	"github.com/chamanbahar/cbm-sales/internal/app"
	"github.com/chamanbahar/cbm-sales/internal/catalog"
	"github.com/chamanbahar/cbm-sales/internal/descriptions"
	"github.com/chamanbahar/cbm-sales/internal/live"
	"github.com/chamanbahar/cbm-sales/internal/observability"
	"github.com/chamanbahar/cbm-sales/internal/orders"
	"github.com/chamanbahar/cbm-sales/internal/platform/cache"
	"github.com/chamanbahar/cbm-sales/internal/platform/db"
	"github.com/chamanbahar/cbm-sales/internal/preferences"
	"github.com/chamanbahar/cbm-sales/internal/retailers"
	"github.com/chamanbahar/cbm-sales/jobs"
)

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

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		if err := runJobsCommand(ctx, cfg, os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		return
	}

	if err := run(ctx, stop, cfg, logger); err != nil {
		logger.Error("cbmsales", slog.Any("error", err))
		os.Exit(1)
	}
}

func runJobsCommand(ctx context.Context, cfg *app.Config, args []string) error {
	jobsCLI := cli.NewJobsCLI(cfg.RedisAddr, cfg.WarmupConcurrency)
	defer func() { _ = jobsCLI.Close() }()
	return jobsCLI.Run(ctx, args, os.Stdout)
}

func run(ctx context.Context, stop context.CancelFunc, cfg *app.Config, logger *slog.Logger) error {
	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: 4})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	if cfg.PGMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	var descriptionStore descriptions.Store = descriptions.NewMemoryStore()
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, descriptions cached in memory and settings disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		descriptionStore = descriptions.NewRedisStore(redisClient, cfg.RedisKeyPrefix)
	}

	metrics := observability.NewMetrics()
	broker := live.NewBroker()
	products := catalog.Default()

	retailerService := retailers.NewService(retailers.NewRepository(pool), broker, cfg.LiveGracePeriod, logger)
	orderService := orders.NewService(orders.ServiceConfig{
		Repository: orders.NewRepository(pool),
		Retailers:  retailerService,
		Catalog:    products,
		Broker:     broker,
		Grace:      cfg.LiveGracePeriod,
		Logger:     logger,
	})
	descriptionService := descriptions.NewService(descriptions.Config{
		Catalog:    products,
		Store:      descriptionStore,
		Fetcher:    descriptions.NewHTTPFetcher(&http.Client{Timeout: cfg.DescriptionFetchTimeout}, cfg.DescriptionUserAgent),
		Logger:     logger,
		Registerer: metrics.Registerer(),
	})
	params := app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		CatalogHandler:      catalog.NewHandler(logger, products),
		DescriptionsHandler: descriptions.NewHandler(logger, descriptionService),
		RetailersHandler:    retailers.NewHandler(logger, retailerService),
		OrdersHandler:       orders.NewHandler(logger, orderService),
		Metrics:             metrics,
	}
	if redisClient != nil {
		params.PreferencesHandler = preferences.NewHandler(logger, preferences.NewService(redisClient, cfg.RedisKeyPrefix))

		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		inspector := asynq.NewInspector(redisOpts)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobClient := jobs.NewClient(redisOpts)
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
		params.JobHandler = jobs.NewHandler(inspector, jobClient, cfg.WarmupConcurrency, logger)
	}
	router := app.NewRouter(params)

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	default:
		return nil
	}
}
