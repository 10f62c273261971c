package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventReservationBooked   = "reservation_booked"
	EventReservationPaid     = "reservation_paid"
	EventReservationCanceled = "reservation_canceled"
)

// ReservationEvent is emitted after a reservation change has committed.
type ReservationEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	ReservationID int64     `json:"reservation_id"`
	Username      string    `json:"username"`
	Price         int64     `json:"price"`
	Balance       *int64    `json:"balance,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
	log     *zap.Logger
}

func NewProducer(brokers []string, log *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
		log:     log,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.log.Debug("published to kafka", zap.String("topic", topic), zap.String("key", key))
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and lists its partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	p.log.Info("connected to kafka", zap.Int("partitions", len(partitions)))
	return nil
}

// DecodeReservationEvent parses a message value written by Publish.
func DecodeReservationEvent(msg kafka.Message) (ReservationEvent, error) {
	var event ReservationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return ReservationEvent{}, fmt.Errorf("decode reservation event at offset %d: %w", msg.Offset, err)
	}
	return event, nil
}
