package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/logging"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factory, closeFn, err := bootstrap.NewFactory(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer closeFn()

	sessions := api.NewSessions(
		func() api.Session { return factory.NewEngine() },
		api.WithIdleTimeout(cfg.HTTP.SessionIdleTimeout()),
		api.WithMaxSessions(cfg.HTTP.MaxSessions),
	)
	router := api.NewRouter(sessions, factory, logger)

	if err := bootstrap.Run(ctx, cfg.HTTP, router, logger); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}
