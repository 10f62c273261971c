package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/store"
)

var ErrReservationChanged = errors.New("reservation changed during update")

const reservationColumns = `id, username, fid1, fid2, day_of_month, price, paid, canceled`

type ReservationRepository interface {
	CountActiveOnFlight(ctx context.Context, flightID int64) (int, error)
	HasActiveOnDay(ctx context.Context, username string, day int) (bool, error)
	NextID(ctx context.Context) (int64, error)
	Create(ctx context.Context, r *domain.Reservation) error
	GetUnpaid(ctx context.Context, username string, id int64) (*domain.Reservation, error)
	GetActive(ctx context.Context, username string, id int64) (*domain.Reservation, error)
	MarkPaid(ctx context.Context, username string, id int64) error
	MarkCanceled(ctx context.Context, username string, id int64) error
	ListActive(ctx context.Context, username string) ([]domain.Reservation, error)
}

type SQLReservationRepository struct {
	q store.Querier
}

func NewReservationRepository(q store.Querier) ReservationRepository {
	return &SQLReservationRepository{q: q}
}

// CountActiveOnFlight counts non-canceled reservations using the flight as
// either leg.
func (r *SQLReservationRepository) CountActiveOnFlight(ctx context.Context, flightID int64) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM reservations
		WHERE (fid1 = ? OR fid2 = ?) AND canceled = FALSE`, flightID, flightID).Scan(&n)
	return n, err
}

func (r *SQLReservationRepository) HasActiveOnDay(ctx context.Context, username string, day int) (bool, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM reservations
		WHERE username = ? AND day_of_month = ? AND canceled = FALSE`, username, day).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// NextID is the number of reservations ever created plus one. Rows are never
// deleted, so this stays dense and monotonic within a serializable transaction.
func (r *SQLReservationRepository) NextID(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&n); err != nil {
		return 0, err
	}
	return n + 1, nil
}

func (r *SQLReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	_, err := r.q.Exec(ctx, `INSERT INTO reservations (`+reservationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.Username, res.LegOneFlightID, res.LegTwoFlightID, res.DayOfMonth, res.Price, res.Paid, res.Canceled)
	return err
}

func (r *SQLReservationRepository) GetUnpaid(ctx context.Context, username string, id int64) (*domain.Reservation, error) {
	return r.getOne(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE username = ? AND id = ? AND paid = FALSE AND canceled = FALSE`, username, id)
}

func (r *SQLReservationRepository) GetActive(ctx context.Context, username string, id int64) (*domain.Reservation, error) {
	return r.getOne(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE username = ? AND id = ? AND canceled = FALSE`, username, id)
}

func (r *SQLReservationRepository) MarkPaid(ctx context.Context, username string, id int64) error {
	return r.mark(ctx, `UPDATE reservations SET paid = TRUE
		WHERE username = ? AND id = ? AND paid = FALSE AND canceled = FALSE`, username, id)
}

func (r *SQLReservationRepository) MarkCanceled(ctx context.Context, username string, id int64) error {
	return r.mark(ctx, `UPDATE reservations SET canceled = TRUE
		WHERE username = ? AND id = ? AND canceled = FALSE`, username, id)
}

func (r *SQLReservationRepository) ListActive(ctx context.Context, username string) ([]domain.Reservation, error) {
	rows, err := r.q.Query(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE username = ? AND canceled = FALSE
		ORDER BY id ASC`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		var res domain.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (r *SQLReservationRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := scanReservation(r.q.QueryRow(ctx, query, args...), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *SQLReservationRepository) mark(ctx context.Context, query string, args ...any) error {
	n, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationChanged
	}
	return nil
}

func scanReservation(row store.Row, res *domain.Reservation) error {
	return row.Scan(&res.ID, &res.Username, &res.LegOneFlightID, &res.LegTwoFlightID, &res.DayOfMonth, &res.Price, &res.Paid, &res.Canceled)
}

var _ ReservationRepository = (*SQLReservationRepository)(nil)
