// cmd/article-service/main.go
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

	"article-pipeline/internal/api"
	"article-pipeline/internal/audit"
	"article-pipeline/internal/common/camunda"
	"article-pipeline/internal/common/config"
	"article-pipeline/internal/common/database"
	"article-pipeline/internal/common/logger"
	"article-pipeline/internal/common/observability"
	completionclient "article-pipeline/internal/generation/completion-client"
	costestimator "article-pipeline/internal/generation/cost-estimator"
	"article-pipeline/internal/generation/orchestrator"
	"article-pipeline/internal/usage"
)

func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting article service...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(observability.Options{
		ServiceName:    cfg.Tracing.ServiceName,
		TracingEnabled: cfg.Tracing.Enabled,
	}, log)

	ctx := context.Background()

	// ==========================
	// Pipeline
	// ==========================

	completion := completionclient.New(completionclient.LoadConfig(cfg.Completion), log)
	if err := completion.Ready(); err != nil {
		zapLog.Warn("completion API key not configured; generation requests will fail", zap.Error(err))
	}

	prices, err := costestimator.PriceTableFromConfig(cfg.Pricing)
	if err != nil {
		zapLog.Fatal("invalid price table", zap.Error(err))
	}

	checks := map[string]api.HealthCheck{
		"completion": func(context.Context) error { return completion.Ready() },
	}
	var recorders []orchestrator.Recorder

	routerCfg := api.RouterConfig{
		ServiceName:  cfg.Tracing.ServiceName,
		JWTSecret:    cfg.Auth.JWTSecret,
		AllowedRoles: cfg.Auth.AllowedRoles,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Checks:       checks,
	}

	if cfg.Database.Redis.Enabled {
		rdb := database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")

		ledger := usage.NewLedger(rdb.Client, cfg.Database.Redis.RetentionDays, log)
		recorders = append(recorders, ledger)
		routerCfg.Usage = ledger
		checks["redis"] = rdb.Ping
	}

	if cfg.Database.Postgres.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")

		store := audit.NewStore(pg.DB, log)
		if err := store.Migrate(ctx); err != nil {
			zapLog.Fatal("audit migration failed", zap.Error(err))
		}
		recorders = append(recorders, store)
		routerCfg.History = store
		checks["postgres"] = pg.Ping
	}

	orchCfg := orchestrator.LoadConfig(cfg)
	orch := orchestrator.New(orchCfg, orchestrator.Deps{
		Completer:     completion,
		Estimator:     costestimator.New(prices),
		Observability: obs,
		Recorders:     recorders,
	}, log)
	routerCfg.Generator = orch

	// ==========================
	// Workflow worker
	// ==========================

	var (
		zeebe     *camunda.Client
		jobWorker *camunda.CamundaWorker
	)
	if cfg.Camunda.BrokerAddress != "" {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		handler := orchestrator.NewHandler(orch, orchCfg, log)
		jobWorker = camunda.NewWorker(zeebe.GetClient(), orchestrator.TaskType, cfg.Camunda.MaxJobsActive, handler, log)
		jobWorker.Start()
		checks["zeebe"] = zeebe.HealthCheck
	} else {
		zapLog.Info("camunda.broker_address not set; workflow worker disabled")
	}

	// ==========================
	// HTTP server
	// ==========================

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewRouter(routerCfg, log),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	zapLog.Info("Shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if jobWorker != nil {
		jobWorker.Stop(shutdownCtx)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("zeebe client close failed", zap.Error(err))
		}
	}
	obs.Shutdown(shutdownCtx)

	zapLog.Info("Article service stopped")
}
