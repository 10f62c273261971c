package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

// FlightLookup reads reference flights outside of any session.
type FlightLookup interface {
	Flight(ctx context.Context, id int64) (*domain.Flight, error)
}

type FlightHandler struct {
	sessions *Sessions
	flights  FlightLookup
}

type searchRequest struct {
	Origin      string `form:"origin" binding:"required"`
	Destination string `form:"destination" binding:"required"`
	Day         int    `form:"day" binding:"required,min=1,max=31"`
	Direct      bool   `form:"direct"`
	Limit       int    `form:"limit" binding:"required,min=1"`
}

type itineraryResponse struct {
	Index    int             `json:"index"`
	Duration int             `json:"duration"`
	Price    int64           `json:"price"`
	Flights  []domain.Flight `json:"flights"`
}

func NewFlightHandler(sessions *Sessions, flights FlightLookup) *FlightHandler {
	return &FlightHandler{sessions: sessions, flights: flights}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/itineraries", h.search)
	router.GET("/flights/:id", h.get)
}

// search is allowed without a session; the result is then not kept for
// booking.
func (h *FlightHandler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	session, ok := h.sessions.Get(c.GetHeader(SessionHeader))
	if !ok {
		session = h.sessions.New()
	}

	list, err := session.Search(c.Request.Context(), domain.SearchQuery{
		Origin:      req.Origin,
		Destination: req.Destination,
		DayOfMonth:  req.Day,
		DirectOnly:  req.Direct,
		MaxResults:  req.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]itineraryResponse, 0, len(list))
	for i, it := range list {
		legs := []domain.Flight{it.LegOne}
		if it.LegTwo != nil {
			legs = append(legs, *it.LegTwo)
		}
		resp = append(resp, itineraryResponse{Index: i, Duration: it.TotalDuration(), Price: it.Price(), Flights: legs})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid id")
		return
	}
	flight, err := h.flights.Flight(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}
