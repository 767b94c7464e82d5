package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hilthontt/ragtp/internal/infrastructure/configs"
	"github.com/hilthontt/ragtp/internal/infrastructure/logging"
	"github.com/hilthontt/ragtp/internal/infrastructure/tracing"
	"github.com/hilthontt/ragtp/internal/presentation/api"
	"github.com/hilthontt/ragtp/internal/presentation/handler/health"
)

const serviceName = "ragtp-api"

func main() {
	startedAt := time.Now()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(&logging.LoggerConfig{
		FilePath: cfg.Logger.FilePath,
		Encoding: cfg.Logger.Encoding,
		Level:    cfg.Logger.Level,
		Logger:   cfg.Logger.Backend,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracing.Setup(ctx, tracing.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: health.Version,
		Environment:    cfg.Tracing.Environment,
		Exporter:       cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
	})
	if err != nil {
		logger.Fatal(logging.Tracing, logging.Startup, "failed to set up tracing", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			logger.Error(logging.Tracing, logging.Shutdown, "failed to flush traces", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
	}()

	healthHandler := health.NewHandler(startedAt)
	app := api.NewApplication(*cfg, *healthHandler, logger)

	mux := app.Mount()
	if err := app.Run(ctx, mux); err != nil {
		logger.Error(logging.General, logging.Shutdown, "server exited with error", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}
