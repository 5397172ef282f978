package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"foyer/internal/amqp"
	"foyer/internal/backend"
	"foyer/internal/cache"
	"foyer/internal/cli"
	"foyer/internal/core"
	apphttp "foyer/internal/http"
	"foyer/internal/log"
	"foyer/internal/services"
)

const exportsPerMinute = 6

func main() {
	cli.LoadEnvFile()

	bootstrap := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(bootstrap)
	logger := cli.SetupLogger(cfg.LogLevel)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendConfig)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err, log.FieldBackend, backendConfig.Type)
		os.Exit(1)
	}
	defer res.Close()

	reports := cache.NewLRUCache[core.Period, core.Report](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(reports)
	cacheManager.StartCleanup(time.Minute)

	checks := map[string]apphttp.Pinger{"backend": res.Backend}
	opts := services.BudgetOptions{
		Cache:    reports,
		Versions: res.Backend,
		Logger:   logger,
	}

	// Export requests are optional: without a broker the API still serves
	// reports and answers 503 on export.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClientWithRetry(context.Background(), cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, 3)
		if err != nil {
			logger.Warn("AMQP unavailable, report export disabled", log.FieldError, err)
		} else {
			opts.Publisher = amqpClient
			checks["amqp"] = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewBudgetService(res.Backend, opts)
	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:           logger,
		Checks:           checks,
		ExportsPerMinute: exportsPerMinute,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
		m := srv.Metrics()
		logger.Info("Server stopped", "requests_served", m.TotalRequests)
	})

	logger.Info("Starting foyer server",
		"port", cfg.Port,
		log.FieldBackend, backendConfig.Type,
		"export_enabled", opts.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
