// cmd/matching-service/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"forgelink/internal/api"
	"forgelink/internal/common/config"
	"forgelink/internal/common/database"
	"forgelink/internal/common/logger"
	"forgelink/internal/common/observability"
	"forgelink/internal/common/validation"
	"forgelink/internal/matching/engine"
	"forgelink/internal/stores"
)

// retryWithBackoff retries an operation with exponential backoff.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, name string) error {
	var err error
	delay := initialDelay

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = operation(); err == nil {
			if attempt > 1 {
				log.Info("Operation succeeded after retry",
					zap.String("operation", name),
					zap.Int("attempt", attempt))
			}
			return nil
		}

		if attempt < maxRetries {
			log.Warn("Operation failed, retrying",
				zap.String("operation", name),
				zap.Int("attempt", attempt),
				zap.Duration("retryIn", delay),
				zap.Error(err))
			time.Sleep(delay)
			delay *= 2
		}
	}

	return err
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zapLogger.Sync() }()
	log := logger.NewZapAdapter(zapLogger)

	zapLogger.Info("Starting matching service",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// Postgres is the system of record for orders and profiles.
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var initErr error
		pg, initErr = database.NewPostgres(cfg.Database.Postgres)
		return initErr
	}, 5, 2*time.Second, zapLogger, "postgres-connect")
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() { _ = pg.Close() }()

	orderStore := stores.NewPostgresOrderStore(pg.GetDB(), log)
	var manufacturerStore stores.ManufacturerStore = stores.NewPostgresManufacturerStore(pg.GetDB(), log)

	var engineOpts []engine.Option
	serverOpts := []api.ServerOption{
		api.WithObservability(obs),
		api.WithReadyCheck("postgres", pg.Ping),
	}

	if cfg.Matching.Cache.Enabled {
		var rc *database.RedisClient
		err = retryWithBackoff(func() error {
			var initErr error
			rc, initErr = database.NewRedis(cfg.Database.Redis)
			return initErr
		}, 5, 2*time.Second, zapLogger, "redis-connect")
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = rc.Close() }()

		resultTTL := time.Duration(cfg.Matching.Cache.TTL) * time.Second
		resultCache := engine.NewResultCache(rc.GetClient(), resultTTL, log)
		engineOpts = append(engineOpts, engine.WithResultCache(resultCache))
		manufacturerStore = stores.NewCachedManufacturerStore(
			manufacturerStore, rc.GetClient(), stores.DefaultProfileTTL, log)
		serverOpts = append(serverOpts,
			api.WithResultCache(resultCache),
			api.WithReadyCheck("redis", rc.Ping))
	}

	if cfg.Database.Elasticsearch.Enabled {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var initErr error
			es, initErr = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if initErr != nil {
				return initErr
			}
			return es.Ping()
		}, 5, 2*time.Second, zapLogger, "elasticsearch-connect")
		if err != nil {
			zapLogger.Fatal("Failed to connect to Elasticsearch", zap.Error(err))
		}

		serverOpts = append(serverOpts,
			api.WithSearchStore(stores.NewSearchStore(es.Client, cfg.Database.Elasticsearch.Index, log)),
			api.WithReadyCheck("elasticsearch", func(context.Context) error { return es.Ping() }))
	}

	if cfg.Matching.Predictor.Enabled {
		engineOpts = append(engineOpts,
			engine.WithPredictor(engine.NewHTTPPredictor(cfg.Matching.Predictor)))
	}

	eng, err := engine.New(cfg.Matching, log, engineOpts...)
	if err != nil {
		zapLogger.Fatal("Failed to build matching engine", zap.Error(err))
	}

	validator, err := validation.New()
	if err != nil {
		zapLogger.Fatal("Failed to compile request schemas", zap.Error(err))
	}

	srv := api.NewServer(cfg.App, eng, orderStore, manufacturerStore, validator, log, serverOpts...)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Routes(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLogger.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("Matching service stopped")
}
