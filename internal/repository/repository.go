package repository

import (
	"context"

	"github.com/Domenick1991/flightbooking/internal/store"
)

// Set groups the repositories bound to one transaction.
type Set struct {
	Flights      FlightRepository
	Reservations ReservationRepository
	Users        UserRepository
}

func NewSet(q store.Querier) Set {
	return Set{
		Flights:      NewFlightRepository(q),
		Reservations: NewReservationRepository(q),
		Users:        NewUserRepository(q),
	}
}

// ClearTables empties reservations and users. Flights are reference data and
// are left alone.
func ClearTables(ctx context.Context, q store.Querier) error {
	if _, err := q.Exec(ctx, `DELETE FROM reservations`); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `DELETE FROM users`)
	return err
}
