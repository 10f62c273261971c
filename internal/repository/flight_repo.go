package repository

import (
	"context"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/store"
)

const flightColumns = `fid, day_of_month, carrier_id, flight_num, origin_city, dest_city, actual_time, capacity, price, canceled`

type FlightRepository interface {
	SearchDirect(ctx context.Context, q domain.SearchQuery, limit int) ([]domain.Flight, error)
	SearchConnecting(ctx context.Context, q domain.SearchQuery, limit int) ([]domain.Itinerary, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Capacity(ctx context.Context, id int64) (int, error)
	Insert(ctx context.Context, flights ...domain.Flight) error
}

type SQLFlightRepository struct {
	q store.Querier
}

func NewFlightRepository(q store.Querier) FlightRepository {
	return &SQLFlightRepository{q: q}
}

func (r *SQLFlightRepository) SearchDirect(ctx context.Context, q domain.SearchQuery, limit int) ([]domain.Flight, error) {
	rows, err := r.q.Query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE origin_city = ? AND dest_city = ? AND day_of_month = ? AND canceled = FALSE
		ORDER BY actual_time ASC, fid ASC
		LIMIT ?`, q.Origin, q.Destination, q.DayOfMonth, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := scanFlight(rows, &f); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *SQLFlightRepository) SearchConnecting(ctx context.Context, q domain.SearchQuery, limit int) ([]domain.Itinerary, error) {
	rows, err := r.q.Query(ctx, `SELECT
			f1.fid, f1.day_of_month, f1.carrier_id, f1.flight_num, f1.origin_city, f1.dest_city, f1.actual_time, f1.capacity, f1.price, f1.canceled,
			f2.fid, f2.day_of_month, f2.carrier_id, f2.flight_num, f2.origin_city, f2.dest_city, f2.actual_time, f2.capacity, f2.price, f2.canceled
		FROM flights f1
		JOIN flights f2 ON f1.dest_city = f2.origin_city
		WHERE f1.origin_city = ? AND f2.dest_city = ?
			AND f1.day_of_month = ? AND f2.day_of_month = ?
			AND f1.canceled = FALSE AND f2.canceled = FALSE
		ORDER BY f1.actual_time + f2.actual_time ASC, f1.fid ASC, f2.fid ASC
		LIMIT ?`, q.Origin, q.Destination, q.DayOfMonth, q.DayOfMonth, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	itineraries := make([]domain.Itinerary, 0)
	for rows.Next() {
		var f1, f2 domain.Flight
		if err := rows.Scan(
			&f1.ID, &f1.DayOfMonth, &f1.Carrier, &f1.FlightNumber, &f1.OriginCity, &f1.DestCity, &f1.Duration, &f1.Capacity, &f1.Price, &f1.Canceled,
			&f2.ID, &f2.DayOfMonth, &f2.Carrier, &f2.FlightNumber, &f2.OriginCity, &f2.DestCity, &f2.Duration, &f2.Capacity, &f2.Price, &f2.Canceled,
		); err != nil {
			return nil, err
		}
		itineraries = append(itineraries, domain.Connecting(f1, f2))
	}
	return itineraries, rows.Err()
}

func (r *SQLFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.q.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE fid = ?`, id)
	var f domain.Flight
	if err := scanFlight(row, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *SQLFlightRepository) Capacity(ctx context.Context, id int64) (int, error) {
	var capacity int
	if err := r.q.QueryRow(ctx, `SELECT capacity FROM flights WHERE fid = ?`, id).Scan(&capacity); err != nil {
		return 0, err
	}
	return capacity, nil
}

func (r *SQLFlightRepository) Insert(ctx context.Context, flights ...domain.Flight) error {
	for _, f := range flights {
		if _, err := r.q.Exec(ctx, `INSERT INTO flights (`+flightColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			f.ID, f.DayOfMonth, f.Carrier, f.FlightNumber, f.OriginCity, f.DestCity, f.Duration, f.Capacity, f.Price, f.Canceled); err != nil {
			return err
		}
	}
	return nil
}

func scanFlight(row store.Row, f *domain.Flight) error {
	return row.Scan(&f.ID, &f.DayOfMonth, &f.Carrier, &f.FlightNumber, &f.OriginCity, &f.DestCity, &f.Duration, &f.Capacity, &f.Price, &f.Canceled)
}

var _ FlightRepository = (*SQLFlightRepository)(nil)
