package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/email"
	"github.com/Domenick1991/flightbooking/internal/kafka"
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

	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.NotificationsTopic == "" {
		logger.Fatal("kafka brokers and notifications topic are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logger)
	defer consumer.Close()

	sender := email.NewSender(os.Stdout, logger)

	logger.Info("notification worker started", zap.String("topic", cfg.Kafka.NotificationsTopic))
	if err := consumer.Consume(ctx, sender.Send); err != nil {
		logger.Error("consumer stopped", zap.Error(err))
		return
	}
	logger.Info("notification worker stopped")
}
