package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/nats-io/nats.go"

	"github.com/railyard/railyard/internal/activity"
	"github.com/railyard/railyard/internal/app"
	"github.com/railyard/railyard/internal/observability"
	"github.com/railyard/railyard/internal/platform/cache"
	"github.com/railyard/railyard/internal/shared"
	"github.com/railyard/railyard/jobs"
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
	slog.SetDefault(logger)

	stores, closeStores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		logger.Error("open stores", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStores()
	if cfg.UsesMemoryStore() {
		logger.Warn("using in-memory store, data is lost on restart")
	}

	redisClient, err := cache.New(ctx, cfg.RedisOptions())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	redisOpts := cfg.QueueRedis()
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer jobClient.Close()
	inspector := asynq.NewInspector(redisOpts)
	defer inspector.Close()

	metrics := observability.NewMetrics()
	opts := app.ServiceOptions{
		Logger:       logger,
		Metrics:      metrics,
		Cache:        activity.NewCache(redisClient, cfg.ActivityCacheTTL, logger),
		Spool:        jobs.NewActivitySpool(jobClient),
		DefaultLimit: cfg.ActivityDefaultLimit,
		MaxLimit:     cfg.ActivityMaxLimit,
	}
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("railyard-api"), nats.MaxReconnects(-1))
		if err != nil {
			logger.Warn("nats connect, activity events disabled", slog.Any("error", err))
		} else {
			defer nc.Drain()
			opts.Publisher = activity.NewNATSPublisher(nc, cfg.NATSSubjectPrefix)
		}
	}

	router := app.NewRouter(app.RouterParams{
		Logger:   logger,
		Config:   cfg,
		Sessions: shared.NewSessionStore(redisClient, cfg.SessionCookie),
		Services: app.NewServices(stores, opts),
		Metrics:  metrics,
		Jobs:     jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("store", cfg.AppStore))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
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
}
