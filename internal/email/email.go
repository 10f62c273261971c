package email

import (
	"context"
	"fmt"
	"io"

	"github.com/Domenick1991/flightbooking/internal/kafka"
	"go.uber.org/zap"
)

// Sender turns reservation events into user notifications.
type Sender struct {
	out io.Writer
	log *zap.Logger
}

func NewSender(out io.Writer, log *zap.Logger) *Sender {
	return &Sender{out: out, log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	if _, err := fmt.Fprintln(s.out, Render(event)); err != nil {
		return err
	}
	s.log.Info("notification sent",
		zap.String("username", event.Username),
		zap.String("type", event.Type),
		zap.Int64("reservation_id", event.ReservationID))
	return nil
}

func Render(event kafka.ReservationEvent) string {
	switch event.Type {
	case kafka.EventReservationBooked:
		return fmt.Sprintf("to %s: reservation %d booked, %d due", event.Username, event.ReservationID, event.Price)
	case kafka.EventReservationPaid:
		return fmt.Sprintf("to %s: reservation %d paid, remaining balance %d", event.Username, event.ReservationID, balanceOf(event))
	case kafka.EventReservationCanceled:
		return fmt.Sprintf("to %s: reservation %d canceled, balance %d", event.Username, event.ReservationID, balanceOf(event))
	default:
		return fmt.Sprintf("to %s: %s for reservation %d", event.Username, event.Type, event.ReservationID)
	}
}

func balanceOf(event kafka.ReservationEvent) int64 {
	if event.Balance == nil {
		return 0
	}
	return *event.Balance
}
