package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeReservationEvent(t *testing.T) {
	balance := int64(20)
	event := ReservationEvent{
		ID:            uuid.New(),
		Type:          EventReservationPaid,
		ReservationID: 1,
		Username:      "alice",
		Price:         80,
		Balance:       &balance,
		OccurredAt:    time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(event)
	require.NoError(t, err)

	got, err := DecodeReservationEvent(kafka.Message{Value: data})

	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, EventReservationPaid, got.Type)
	assert.Equal(t, int64(20), *got.Balance)
	assert.True(t, event.OccurredAt.Equal(got.OccurredAt))
}

func TestDecodeReservationEvent_Invalid(t *testing.T) {
	_, err := DecodeReservationEvent(kafka.Message{Value: []byte("{"), Offset: 7})

	assert.ErrorContains(t, err, "offset 7")
}
