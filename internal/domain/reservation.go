package domain

// Reservation is a persisted booking. Price is fixed at creation; Paid and
// Canceled only ever move from false to true.
type Reservation struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	LegOneFlightID int64  `json:"fid1"`
	LegTwoFlightID *int64 `json:"fid2,omitempty"`
	DayOfMonth     int    `json:"day_of_month"`
	Price          int64  `json:"price"`
	Paid           bool   `json:"paid"`
	Canceled       bool   `json:"canceled"`
}

// Booking is a reservation with its flight legs resolved.
type Booking struct {
	Reservation Reservation `json:"reservation"`
	LegOne      Flight      `json:"leg_one"`
	LegTwo      *Flight     `json:"leg_two,omitempty"`
}

// CancelReceipt reports what a cancellation did to the owner's balance.
type CancelReceipt struct {
	ReservationID int64 `json:"reservation_id"`
	Refunded      int64 `json:"refunded"`
	Balance       int64 `json:"balance"`
}
