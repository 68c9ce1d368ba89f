package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"NewsLens/internal/app"
	"NewsLens/internal/config"
	"NewsLens/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		log.Fatalf("init: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logger.Error("application exited with error", "error", err)
	}
}
