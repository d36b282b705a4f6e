// Package main is the entry point for the cachelock-service API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"cachelock-service/internal/app/service"
	"cachelock-service/internal/config"
	"cachelock-service/internal/factory"
	"cachelock-service/internal/job"
	"cachelock-service/internal/logger"
	"cachelock-service/internal/transport/httpserver"
	"cachelock-service/internal/validator"
	"cachelock-service/pkg/connection"
	"cachelock-service/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("APP_CONFIG"))
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(
		logger.Config{
			Service: cfg.App.Name,
			Level:   cfg.Logger.Level,
			Format:  cfg.Logger.Format,
			Output:  cfg.Logger.Output,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting cachelock-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
		zap.String("discovery_mode", cfg.Discovery.Mode),
	)

	// go-redis internal messages go through zap instead of stderr
	connection.InstallRedisLogger(log.Named("redis"))

	// Metrics
	reg := metrics.NewRegistry()
	metrics.RegisterCoreMetrics(reg)

	// Discovery and credential store
	refs, closeRefs, err := buildReferences(context.Background(), cfg, log.Logger)
	if err != nil {
		log.Fatal("failed to build references", zap.Error(err))
	}
	defer closeRefs()

	// Components
	components := factory.NewDefault(log.Logger)

	cache, err := factory.CreateCache(components)
	if err != nil {
		log.Fatal("failed to create cache", zap.Error(err))
	}
	distLocker, err := factory.CreateLocker(components)
	if err != nil {
		log.Fatal("failed to create locker", zap.Error(err))
	}

	cache.Configure(cfg.ComponentParams(config.ComponentCache))
	cache.SetReferences(refs)
	distLocker.Configure(cfg.ComponentParams(config.ComponentLock))
	distLocker.SetReferences(refs)

	if err := openComponents(cfg, log.Logger, cache, distLocker); err != nil {
		log.Fatal("failed to open components", zap.Error(err))
	}

	// Services
	cacheSvc := service.NewCacheService(cache, cfg.HTTP.CacheTTL, log.Named("cache-service"))
	lockSvc := service.NewLockService(distLocker, cfg.HTTP.LockTTL, log.Named("lock-service"))

	// Create HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:      cfg.App.Port,
			BodyLimit: cfg.HTTP.BodyLimit,
		},
		cacheSvc,
		lockSvc,
		reg,
		validator.New(),
		log.Logger,
	)

	// Scheduled purge with distributed locking
	var scheduler *job.PurgeScheduler
	if cfg.Purge.Enabled {
		scheduler = job.NewPurgeScheduler(
			cacheSvc,
			job.PurgeConfig{
				Interval:  cfg.Purge.Interval,
				Timeout:   cfg.Purge.Timeout,
				OnStartup: cfg.Purge.OnStartup,
			},
			log.Named("purge"),
			distLocker,
		)
		scheduler.Start(cfg.Purge.OnStartup)
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		if scheduler != nil {
			scheduler.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		if err := server.App.ShutdownWithContext(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}

		closeComponents(ctx, log.Logger, cache, distLocker)
	}()

	// Start server
	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
	<-done
}

// openComponents opens every component within app.open_timeout.
func openComponents(cfg *config.Config, log *zap.Logger, components ...connection.Component) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.OpenTimeout)
	defer cancel()

	for _, c := range components {
		if err := c.Open(ctx, "startup"); err != nil {
			return err
		}
	}

	log.Info("components opened", zap.Int("count", len(components)))

	return nil
}

func closeComponents(ctx context.Context, log *zap.Logger, components ...connection.Component) {
	for _, c := range components {
		if err := c.Close(ctx, "shutdown"); err != nil {
			log.Error("component close error", zap.Error(err))
		}
	}
}
