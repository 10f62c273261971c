package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	sessions *Sessions
}

type createBookingRequest struct {
	Itinerary *int `json:"itinerary" binding:"required"`
}

type bookingResponse struct {
	ReservationID int64 `json:"reservation_id"`
}

type paymentResponse struct {
	ReservationID int64 `json:"reservation_id"`
	Balance       int64 `json:"balance"`
}

type reservationResponse struct {
	ID      int64           `json:"id"`
	Paid    bool            `json:"paid"`
	Price   int64           `json:"price"`
	Day     int             `json:"day"`
	Flights []domain.Flight `json:"flights"`
}

func NewBookingHandler(sessions *Sessions) *BookingHandler {
	return &BookingHandler{sessions: sessions}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.POST("/:id/pay", h.pay)
	router.DELETE("/:id", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	session, err := h.sessions.fromRequest(c)
	if err != nil {
		writeError(c, err)
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	id, err := session.Book(c.Request.Context(), *req.Itinerary)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bookingResponse{ReservationID: id})
}

func (h *BookingHandler) pay(c *gin.Context) {
	session, err := h.sessions.fromRequest(c)
	if err != nil {
		writeError(c, err)
		return
	}
	id, ok := reservationID(c)
	if !ok {
		return
	}

	balance, err := session.Pay(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentResponse{ReservationID: id, Balance: balance})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	session, err := h.sessions.fromRequest(c)
	if err != nil {
		writeError(c, err)
		return
	}
	id, ok := reservationID(c)
	if !ok {
		return
	}

	receipt, err := session.Cancel(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (h *BookingHandler) list(c *gin.Context) {
	session, err := h.sessions.fromRequest(c)
	if err != nil {
		writeError(c, err)
		return
	}

	list, err := session.ListReservations(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]reservationResponse, 0, len(list))
	for _, b := range list {
		legs := []domain.Flight{b.LegOne}
		if b.LegTwo != nil {
			legs = append(legs, *b.LegTwo)
		}
		resp = append(resp, reservationResponse{
			ID:      b.Reservation.ID,
			Paid:    b.Reservation.Paid,
			Price:   b.Reservation.Price,
			Day:     b.Reservation.DayOfMonth,
			Flights: legs,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func reservationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid reservation id")
		return 0, false
	}
	return id, true
}
