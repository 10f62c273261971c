package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	Book(ctx context.Context, username string, it domain.Itinerary) (int64, error)
	Pay(ctx context.Context, username string, reservationID int64) (int64, error)
	Cancel(ctx context.Context, username string, reservationID int64) (*domain.CancelReceipt, error)
	Reservations(ctx context.Context, username string) ([]domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	tx                 store.Transactor
	repos              func(store.Querier) repository.Set
	retry              store.RetryPolicy
	producer           Producer
	reservationTopic   string
	notificationsTopic string
	log                *zap.Logger
}

type BookingServiceOption func(*BookingService)

func WithRepositories(repos func(store.Querier) repository.Set) BookingServiceOption {
	return func(s *BookingService) {
		s.repos = repos
	}
}

func WithRetryPolicy(p store.RetryPolicy) BookingServiceOption {
	return func(s *BookingService) {
		s.retry = p
	}
}

func WithProducer(producer Producer, reservationTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.reservationTopic = reservationTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithLogger(log *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func NewBookingService(tx store.Transactor, opts ...BookingServiceOption) *BookingService {
	service := &BookingService{
		tx:    tx,
		repos: repository.NewSet,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Book reserves every leg of it for username and returns the new
// reservation id. Capacity, the same-day rule and id allocation are all
// evaluated inside the same transaction as the insert.
func (s *BookingService) Book(ctx context.Context, username string, it domain.Itinerary) (int64, error) {
	var created domain.Reservation
	err := s.retry.Do(ctx, "book", func(ctx context.Context) error {
		return s.tx.WithinTx(ctx, store.TxOptions{}, func(ctx context.Context, q store.Querier) error {
			repos := s.repos(q)

			for _, leg := range legs(it) {
				capacity, err := repos.Flights.Capacity(ctx, leg)
				if err != nil {
					return err
				}
				booked, err := repos.Reservations.CountActiveOnFlight(ctx, leg)
				if err != nil {
					return err
				}
				if booked >= capacity {
					return domain.ErrCapacityExceeded
				}
			}

			sameDay, err := repos.Reservations.HasActiveOnDay(ctx, username, it.LegOne.DayOfMonth)
			if err != nil {
				return err
			}
			if sameDay {
				return domain.ErrSameDayConflict
			}

			id, err := repos.Reservations.NextID(ctx)
			if err != nil {
				return err
			}
			res := domain.Reservation{
				ID:             id,
				Username:       username,
				LegOneFlightID: it.LegOne.ID,
				DayOfMonth:     it.LegOne.DayOfMonth,
				Price:          it.Price(),
			}
			if it.LegTwo != nil {
				legTwo := it.LegTwo.ID
				res.LegTwoFlightID = &legTwo
			}
			if err := repos.Reservations.Create(ctx, &res); err != nil {
				// Another session took the same id between our count and insert.
				if errors.Is(err, store.ErrUniqueViolation) {
					return fmt.Errorf("%w: %w", store.ErrConflict, err)
				}
				return err
			}
			created = res
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("reservation booked",
		zap.String("username", username),
		zap.Int64("reservation_id", created.ID),
		zap.Int64("price", created.Price))
	s.publish(ctx, kafka.EventReservationBooked, created, nil)
	return created.ID, nil
}

// Pay charges the reservation price to username and returns the remaining
// balance.
func (s *BookingService) Pay(ctx context.Context, username string, reservationID int64) (int64, error) {
	var (
		paid    domain.Reservation
		balance int64
	)
	err := s.retry.Do(ctx, "pay", func(ctx context.Context) error {
		return s.tx.WithinTx(ctx, store.TxOptions{}, func(ctx context.Context, q store.Querier) error {
			repos := s.repos(q)

			res, err := repos.Reservations.GetUnpaid(ctx, username, reservationID)
			if errors.Is(err, store.ErrNoRows) {
				return domain.ErrReservationNotFound
			}
			if err != nil {
				return err
			}

			current, err := repos.Users.Balance(ctx, username)
			if err != nil {
				return err
			}
			if current < res.Price {
				return &domain.InsufficientFundsError{Balance: current, Price: res.Price}
			}

			if err := repos.Reservations.MarkPaid(ctx, username, reservationID); err != nil {
				return err
			}
			if err := repos.Users.SetBalance(ctx, username, current-res.Price); err != nil {
				return err
			}
			paid = *res
			paid.Paid = true
			balance = current - res.Price
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("reservation paid",
		zap.String("username", username),
		zap.Int64("reservation_id", reservationID),
		zap.Int64("balance", balance))
	s.publish(ctx, kafka.EventReservationPaid, paid, &balance)
	return balance, nil
}

// Cancel marks the reservation canceled and refunds it when it was paid.
func (s *BookingService) Cancel(ctx context.Context, username string, reservationID int64) (*domain.CancelReceipt, error) {
	var (
		canceled domain.Reservation
		receipt  domain.CancelReceipt
	)
	err := s.retry.Do(ctx, "cancel", func(ctx context.Context) error {
		return s.tx.WithinTx(ctx, store.TxOptions{}, func(ctx context.Context, q store.Querier) error {
			repos := s.repos(q)

			res, err := repos.Reservations.GetActive(ctx, username, reservationID)
			if errors.Is(err, store.ErrNoRows) {
				return domain.ErrReservationNotFound
			}
			if err != nil {
				return err
			}

			if err := repos.Reservations.MarkCanceled(ctx, username, reservationID); err != nil {
				return err
			}

			balance, err := repos.Users.Balance(ctx, username)
			if err != nil {
				return err
			}
			var refunded int64
			if res.Paid {
				refunded = res.Price
				balance += refunded
				if err := repos.Users.SetBalance(ctx, username, balance); err != nil {
					return err
				}
			}

			canceled = *res
			canceled.Canceled = true
			receipt = domain.CancelReceipt{ReservationID: reservationID, Refunded: refunded, Balance: balance}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("reservation canceled",
		zap.String("username", username),
		zap.Int64("reservation_id", reservationID),
		zap.Int64("refunded", receipt.Refunded))
	s.publish(ctx, kafka.EventReservationCanceled, canceled, &receipt.Balance)
	return &receipt, nil
}

// Reservations lists the non-canceled reservations of username with their
// flights resolved, ordered by reservation id.
func (s *BookingService) Reservations(ctx context.Context, username string) ([]domain.Booking, error) {
	var bookings []domain.Booking
	err := s.retry.Do(ctx, "reservations", func(ctx context.Context) error {
		return s.tx.WithinTx(ctx, store.TxOptions{ReadOnly: true}, func(ctx context.Context, q store.Querier) error {
			repos := s.repos(q)

			list, err := repos.Reservations.ListActive(ctx, username)
			if err != nil {
				return err
			}

			resolved := make(map[int64]*domain.Flight)
			lookup := func(id int64) (*domain.Flight, error) {
				if f, ok := resolved[id]; ok {
					return f, nil
				}
				f, err := repos.Flights.GetByID(ctx, id)
				if err != nil {
					return nil, fmt.Errorf("resolve flight %d: %w", id, err)
				}
				resolved[id] = f
				return f, nil
			}

			out := make([]domain.Booking, 0, len(list))
			for _, res := range list {
				legOne, err := lookup(res.LegOneFlightID)
				if err != nil {
					return err
				}
				b := domain.Booking{Reservation: res, LegOne: *legOne}
				if res.LegTwoFlightID != nil {
					legTwo, err := lookup(*res.LegTwoFlightID)
					if err != nil {
						return err
					}
					b.LegTwo = legTwo
				}
				out = append(out, b)
			}
			bookings = out
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// publish runs after commit. A failed publish is logged and never undoes
// the committed change.
func (s *BookingService) publish(ctx context.Context, eventType string, res domain.Reservation, balance *int64) {
	if s.producer == nil || s.reservationTopic == "" {
		return
	}
	event := kafka.ReservationEvent{
		ID:            uuid.New(),
		Type:          eventType,
		ReservationID: res.ID,
		Username:      res.Username,
		Price:         res.Price,
		Balance:       balance,
		OccurredAt:    time.Now().UTC(),
	}
	key := strconv.FormatInt(res.ID, 10)
	if err := s.producer.Publish(ctx, s.reservationTopic, key, event); err != nil {
		s.log.Warn("failed to publish reservation event", zap.String("type", eventType), zap.Int64("reservation_id", res.ID), zap.Error(err))
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			s.log.Warn("failed to publish notification", zap.String("type", eventType), zap.Int64("reservation_id", res.ID), zap.Error(err))
		}
	}
}

func legs(it domain.Itinerary) []int64 {
	if it.LegTwo == nil {
		return []int64{it.LegOne.ID}
	}
	return []int64{it.LegOne.ID, it.LegTwo.ID}
}

var _ BookingUseCase = (*BookingService)(nil)
