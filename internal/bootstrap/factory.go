package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/cache"
	"github.com/Domenick1991/flightbooking/internal/credential"
	"github.com/Domenick1991/flightbooking/internal/engine"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/store"
	"go.uber.org/zap"
)

// NewFactory opens the store and the optional cache and event producer
// described by cfg. The returned close function releases all of them.
func NewFactory(ctx context.Context, cfg *config.Config, log *zap.Logger) (*engine.Factory, func(), error) {
	conn, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	factory := &engine.Factory{
		Conn:               conn,
		Hasher:             credential.NewPBKDF2(),
		ReservationTopic:   cfg.Kafka.ReservationEventsTopic,
		NotificationsTopic: cfg.Kafka.NotificationsTopic,
		Retry:              store.PolicyFromConfig(cfg.Retry),
		Logger:             log,
	}
	closers := []func(){conn.Close}

	if cfg.Redis.Addr != "" && cfg.Search.CacheTTLSeconds > 0 {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Search.CacheTTL())
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, search cache disabled", zap.Error(err))
			_ = redisCache.Close()
		} else {
			factory.Cache = redisCache
			closers = append(closers, func() { _ = redisCache.Close() })
		}
	}

	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.ReservationEventsTopic != "" {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		if err := producer.CheckConnection(ctx); err != nil {
			log.Warn("kafka check failed, events may be dropped", zap.Error(err))
		}
		factory.Producer = producer
		closers = append(closers, func() { _ = producer.Close() })
	}

	return factory, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}
