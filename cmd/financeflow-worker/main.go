package main

import (
	"context"
	"errors"
	"os"
	"time"

	"financeflow/internal/amqp"
	"financeflow/internal/backend"
	"financeflow/internal/cli"
	"financeflow/internal/log"
	"financeflow/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(log.New(log.DefaultConfig()))
	logger := cli.SetupLogger(cfg.Level(), log.ComponentWorker)

	logger.Info("Starting financeflow-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the worker", log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	if backendCfg.Type == backend.MemoryBackend {
		logger.Warn("Memory backend is not shared with the server, alerts will only see local records")
	}
	// The worker reads records and never publishes.
	backendCfg.AMQPURL = ""

	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend)).
		CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		_ = result.Cleanup()
		os.Exit(1)
	}

	alerts := worker.NewBudgetAlertWorker(result.Service, nil, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := consumer.Close(); err != nil {
			logger.Error("AMQP close error", log.FieldError, err)
		}
	})

	if err := alerts.Run(ctx, consumer); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		_ = result.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	if err := result.Cleanup(); err != nil {
		logger.Error("Backend cleanup error", log.FieldError, err)
	}
	logger.Info("Worker stopped gracefully")
}
