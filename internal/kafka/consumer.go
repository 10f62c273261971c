package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Consumer struct {
	reader *kafka.Reader
	log    *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume hands each reservation event to handler until ctx ends. Messages
// that do not decode are logged and skipped.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, ReservationEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		event, err := DecodeReservationEvent(msg)
		if err != nil {
			c.log.Warn("skipping message", zap.Error(err))
			continue
		}
		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}
