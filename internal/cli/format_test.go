package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

var (
	seaBos = domain.Flight{ID: 1, DayOfMonth: 10, Carrier: "AA", FlightNumber: "101", OriginCity: "Seattle WA", DestCity: "Boston MA", Duration: 300, Capacity: 5, Price: 500}
	bosNyc = domain.Flight{ID: 2, DayOfMonth: 10, Carrier: "AA", FlightNumber: "102", OriginCity: "Boston MA", DestCity: "New York NY", Duration: 60, Capacity: 3, Price: 120}
	seaNyc = domain.Flight{ID: 3, DayOfMonth: 10, Carrier: "DL", FlightNumber: "203", OriginCity: "Seattle WA", DestCity: "New York NY", Duration: 330, Capacity: 4, Price: 600}
)

func TestFormatSearch_Golden(t *testing.T) {
	list := []domain.Itinerary{domain.Direct(seaNyc), domain.Connecting(seaBos, bosNyc)}
	newGoldie(t).Assert(t, "search_results", []byte(formatSearch(list, nil)))
}

func TestFormatReservations_Golden(t *testing.T) {
	bosNycCopy := bosNyc
	list := []domain.Booking{
		{Reservation: domain.Reservation{ID: 1, Username: "alice", LegOneFlightID: 3, Price: 600, Paid: true}, LegOne: seaNyc},
		{Reservation: domain.Reservation{ID: 2, Username: "alice", LegOneFlightID: 1, Price: 620}, LegOne: seaBos, LegTwo: &bosNycCopy},
	}
	newGoldie(t).Assert(t, "reservations", []byte(formatReservations(list, nil)))
}

func TestFormatMessages(t *testing.T) {
	storeErr := fmt.Errorf("%w: boom", domain.ErrStoreFailure)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"create ok", formatCreate("alice", nil), "Created user alice\n"},
		{"create failed", formatCreate("alice", domain.ErrAccountAlreadyExists), "Failed to create user\n"},
		{"login ok", formatLogin("alice", nil), "Logged in as alice\n"},
		{"login twice", formatLogin("alice", domain.ErrAlreadyAuthenticated), "User already logged in\n"},
		{"login failed", formatLogin("alice", domain.ErrAuthenticationFailed), "Login failed\n"},
		{"search failed", formatSearch(nil, storeErr), "Failed to search\n"},
		{"search empty", formatSearch(nil, nil), "No flights match your selection\n"},
		{"book ok", formatBook(0, 7, nil), "Booked flight(s), reservation ID: 7\n"},
		{"book logged out", formatBook(0, 0, domain.ErrNotAuthenticated), "Cannot book reservations, not logged in\n"},
		{"book bad index", formatBook(4, 0, domain.ErrInvalidItineraryReference), "No such itinerary 4\n"},
		{"book same day", formatBook(0, 0, domain.ErrSameDayConflict), "You cannot book two flights in the same day\n"},
		{"book full", formatBook(0, 0, domain.ErrCapacityExceeded), "Booking failed\n"},
		{"pay ok", formatPay(3, "alice", 250, nil), "Paid reservation: 3 remaining balance: 250\n"},
		{"pay logged out", formatPay(3, "", 0, domain.ErrNotAuthenticated), "Cannot pay, not logged in\n"},
		{"pay missing", formatPay(3, "alice", 0, domain.ErrReservationNotFound), "Cannot find unpaid reservation 3 under user: alice\n"},
		{"pay funds", formatPay(3, "alice", 0, &domain.InsufficientFundsError{Balance: 10, Price: 500}), "User has only 10 in account but itinerary costs 500\n"},
		{"pay failed", formatPay(3, "alice", 0, storeErr), "Failed to pay for reservation 3\n"},
		{"reservations logged out", formatReservations(nil, domain.ErrNotAuthenticated), "Cannot view reservations, not logged in\n"},
		{"reservations failed", formatReservations(nil, storeErr), "Failed to retrieve reservations\n"},
		{"reservations empty", formatReservations(nil, nil), "No reservations found\n"},
		{"cancel ok", formatCancel(2, nil), "Canceled reservation 2\n"},
		{"cancel logged out", formatCancel(2, domain.ErrNotAuthenticated), "Cannot cancel reservations, not logged in\n"},
		{"cancel failed", formatCancel(2, errors.New("any")), "Failed to cancel reservation 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}
