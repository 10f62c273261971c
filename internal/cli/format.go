package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

// The functions below render engine outcomes as the REPL prints them. Every
// message ends with a newline.

func formatCreate(username string, err error) string {
	if err != nil {
		return "Failed to create user\n"
	}
	return fmt.Sprintf("Created user %s\n", username)
}

func formatLogin(username string, err error) string {
	switch {
	case err == nil:
		return fmt.Sprintf("Logged in as %s\n", username)
	case errors.Is(err, domain.ErrAlreadyAuthenticated):
		return "User already logged in\n"
	default:
		return "Login failed\n"
	}
}

func formatSearch(list []domain.Itinerary, err error) string {
	if err != nil {
		return "Failed to search\n"
	}
	if len(list) == 0 {
		return "No flights match your selection\n"
	}

	var b strings.Builder
	for i, it := range list {
		fmt.Fprintf(&b, "Itinerary %d: %d flight(s), %d minutes\n", i, it.HopCount(), it.TotalDuration())
		writeLegs(&b, it.LegOne, it.LegTwo)
	}
	return b.String()
}

func formatBook(index int, id int64, err error) string {
	switch {
	case err == nil:
		return fmt.Sprintf("Booked flight(s), reservation ID: %d\n", id)
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "Cannot book reservations, not logged in\n"
	case errors.Is(err, domain.ErrInvalidItineraryReference):
		return fmt.Sprintf("No such itinerary %d\n", index)
	case errors.Is(err, domain.ErrSameDayConflict):
		return "You cannot book two flights in the same day\n"
	default:
		return "Booking failed\n"
	}
}

func formatPay(id int64, username string, balance int64, err error) string {
	var funds *domain.InsufficientFundsError
	switch {
	case err == nil:
		return fmt.Sprintf("Paid reservation: %d remaining balance: %d\n", id, balance)
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "Cannot pay, not logged in\n"
	case errors.Is(err, domain.ErrReservationNotFound):
		return fmt.Sprintf("Cannot find unpaid reservation %d under user: %s\n", id, username)
	case errors.As(err, &funds):
		return fmt.Sprintf("User has only %d in account but itinerary costs %d\n", funds.Balance, funds.Price)
	default:
		return fmt.Sprintf("Failed to pay for reservation %d\n", id)
	}
}

func formatReservations(list []domain.Booking, err error) string {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "Cannot view reservations, not logged in\n"
	case err != nil:
		return "Failed to retrieve reservations\n"
	case len(list) == 0:
		return "No reservations found\n"
	}

	var b strings.Builder
	for _, booking := range list {
		fmt.Fprintf(&b, "Reservation %d paid: %t:\n", booking.Reservation.ID, booking.Reservation.Paid)
		writeLegs(&b, booking.LegOne, booking.LegTwo)
	}
	return b.String()
}

func formatCancel(id int64, err error) string {
	switch {
	case err == nil:
		return fmt.Sprintf("Canceled reservation %d\n", id)
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "Cannot cancel reservations, not logged in\n"
	default:
		return fmt.Sprintf("Failed to cancel reservation %d\n", id)
	}
}

func writeLegs(b *strings.Builder, legOne domain.Flight, legTwo *domain.Flight) {
	b.WriteString(legOne.String())
	b.WriteByte('\n')
	if legTwo != nil {
		b.WriteString(legTwo.String())
		b.WriteByte('\n')
	}
}
