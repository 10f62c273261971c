package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyAuthenticated      = errors.New("user already logged in")
	ErrAuthenticationFailed      = errors.New("login failed")
	ErrAccountAlreadyExists      = errors.New("account already exists")
	ErrInvalidInitialBalance     = errors.New("initial balance must not be negative")
	ErrNotAuthenticated          = errors.New("not logged in")
	ErrInvalidItineraryReference = errors.New("no such itinerary")
	ErrCapacityExceeded          = errors.New("flight is full")
	ErrSameDayConflict           = errors.New("cannot book two flights in the same day")
	ErrReservationNotFound       = errors.New("reservation not found")
	ErrFlightNotFound            = errors.New("flight not found")
	ErrInsufficientFunds         = errors.New("insufficient funds")
	ErrStoreFailure              = errors.New("operation failed")
	ErrSessionHalted             = errors.New("session halted")
)

// InsufficientFundsError carries the numbers behind a rejected payment.
type InsufficientFundsError struct {
	Balance int64
	Price   int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("balance %d is below price %d", e.Balance, e.Price)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

type Kind int

const (
	KindNone Kind = iota
	KindAlreadyAuthenticated
	KindAuthenticationFailed
	KindAccountAlreadyExists
	KindInvalidInitialBalance
	KindNotAuthenticated
	KindInvalidItineraryReference
	KindCapacityExceeded
	KindSameDayConflict
	KindReservationNotFound
	KindFlightNotFound
	KindInsufficientFunds
	KindStoreFailure
	KindSessionHalted
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrAlreadyAuthenticated, KindAlreadyAuthenticated},
	{ErrAuthenticationFailed, KindAuthenticationFailed},
	{ErrAccountAlreadyExists, KindAccountAlreadyExists},
	{ErrInvalidInitialBalance, KindInvalidInitialBalance},
	{ErrNotAuthenticated, KindNotAuthenticated},
	{ErrInvalidItineraryReference, KindInvalidItineraryReference},
	{ErrCapacityExceeded, KindCapacityExceeded},
	{ErrSameDayConflict, KindSameDayConflict},
	{ErrReservationNotFound, KindReservationNotFound},
	{ErrFlightNotFound, KindFlightNotFound},
	{ErrInsufficientFunds, KindInsufficientFunds},
	{ErrSessionHalted, KindSessionHalted},
	{ErrStoreFailure, KindStoreFailure},
}

// KindOf maps err to its outcome kind. Unknown non-nil errors are store failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindStoreFailure
}

// IsRejection reports whether err is a business-rule outcome rather than a
// backend failure.
func IsRejection(err error) bool {
	switch KindOf(err) {
	case KindNone, KindStoreFailure, KindSessionHalted:
		return false
	}
	return true
}

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindAlreadyAuthenticated:
		return "already_authenticated"
	case KindAuthenticationFailed:
		return "authentication_failed"
	case KindAccountAlreadyExists:
		return "account_already_exists"
	case KindInvalidInitialBalance:
		return "invalid_initial_balance"
	case KindNotAuthenticated:
		return "not_authenticated"
	case KindInvalidItineraryReference:
		return "invalid_itinerary_reference"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindSameDayConflict:
		return "same_day_conflict"
	case KindReservationNotFound:
		return "reservation_not_found"
	case KindFlightNotFound:
		return "flight_not_found"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindSessionHalted:
		return "session_halted"
	default:
		return "store_failure"
	}
}
