package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"financeflow/internal/backend"
	"financeflow/internal/cli"
	apphttp "financeflow/internal/http"
	"financeflow/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(log.New(log.DefaultConfig()))
	logger := cli.SetupLogger(cfg.Level(), log.ComponentApp)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeConfiguration,
			"available", backend.GetBackendTypeStrings())
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend)).
		CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, result.Service,
		apphttp.WithServerLogger(logger.WithComponent(log.ComponentHTTP)),
		apphttp.WithRateLimit(cfg.RateLimitPerMinute))

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting financeflow server",
		"port", cfg.Port,
		"backend", result.Type.String(),
		"amqp_enabled", result.AMQP)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
