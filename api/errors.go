package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Balance *int64 `json:"balance,omitempty"`
	Price   *int64 `json:"price,omitempty"`
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotAuthenticated, domain.KindAuthenticationFailed:
		return http.StatusUnauthorized
	case domain.KindAlreadyAuthenticated, domain.KindAccountAlreadyExists,
		domain.KindCapacityExceeded, domain.KindSameDayConflict:
		return http.StatusConflict
	case domain.KindInvalidInitialBalance:
		return http.StatusBadRequest
	case domain.KindInvalidItineraryReference, domain.KindReservationNotFound, domain.KindFlightNotFound:
		return http.StatusNotFound
	case domain.KindInsufficientFunds:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// writeError hides backend details behind the generic failure message.
func writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	resp := errorResponse{Error: err.Error(), Kind: kind.String()}

	switch kind {
	case domain.KindStoreFailure:
		resp.Error = domain.ErrStoreFailure.Error()
	case domain.KindSessionHalted:
		resp.Error = domain.ErrSessionHalted.Error()
	case domain.KindInsufficientFunds:
		var funds *domain.InsufficientFundsError
		if errors.As(err, &funds) {
			resp.Balance, resp.Price = &funds.Balance, &funds.Price
		}
	}
	c.JSON(statusFor(kind), resp)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Kind: "bad_request"})
}
