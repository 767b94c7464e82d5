package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hilthontt/ragtp/internal/infrastructure/configs"
	"github.com/hilthontt/ragtp/internal/infrastructure/logging"
	"github.com/hilthontt/ragtp/internal/presentation/web"
)

func main() {
	cfg, err := configs.Load(configs.DetermineConfigPath())
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

	srv := web.NewServer(cfg.Web, logger)
	if err := srv.Run(ctx, srv.Mount()); err != nil {
		logger.Error(logging.General, logging.Shutdown, "server exited with error", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}
