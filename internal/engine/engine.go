// Package engine runs the booking operations of one client session. Each
// Engine owns its login state, its last search result and its own
// transaction scope; engines built by the same Factory share the database.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Domenick1991/flightbooking/internal/credential"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/metrics"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/accounts"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/Domenick1991/flightbooking/internal/session"
	"github.com/Domenick1991/flightbooking/internal/store"
	"go.uber.org/zap"
)

// Factory holds what sessions share.
type Factory struct {
	Conn               store.Conn
	Hasher             credential.Hasher
	Cache              flights.SearchCache
	Producer           booking.Producer
	ReservationTopic   string
	NotificationsTopic string
	Retry              store.RetryPolicy
	Logger             *zap.Logger
}

func (f *Factory) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

// NewEngine starts a session: logged out, no candidates.
func (f *Factory) NewEngine() *Engine {
	tx := store.NewManager(f.Conn)
	log := f.logger()

	hasher := f.Hasher
	if hasher == nil {
		hasher = credential.NewPBKDF2()
	}

	flightOpts := []flights.FlightServiceOption{flights.WithRetryPolicy(f.Retry), flights.WithLogger(log)}
	if f.Cache != nil {
		flightOpts = append(flightOpts, flights.WithCache(f.Cache))
	}
	bookingOpts := []booking.BookingServiceOption{
		booking.WithRetryPolicy(f.Retry),
		booking.WithLogger(log),
		booking.WithNotificationsTopic(f.NotificationsTopic),
	}
	if f.Producer != nil {
		bookingOpts = append(bookingOpts, booking.WithProducer(f.Producer, f.ReservationTopic))
	}

	return &Engine{
		session:  session.New(),
		tx:       tx,
		accounts: accounts.NewAccountService(tx, hasher, accounts.WithRetryPolicy(f.Retry), accounts.WithLogger(log)),
		flights:  flights.NewFlightService(tx, flightOpts...),
		bookings: booking.NewBookingService(tx, bookingOpts...),
		log:      log,
	}
}

// ClearTables removes all users and reservations. Used to reset fixtures.
func (f *Factory) ClearTables(ctx context.Context) error {
	tx := store.NewManager(f.Conn)
	return f.Retry.Do(ctx, "clear_tables", func(ctx context.Context) error {
		return tx.WithinTx(ctx, store.TxOptions{}, repository.ClearTables)
	})
}

// LoadFlights inserts flights in one transaction and drops cached searches.
func (f *Factory) LoadFlights(ctx context.Context, list []domain.Flight) error {
	tx := store.NewManager(f.Conn)
	err := f.Retry.Do(ctx, "load_flights", func(ctx context.Context) error {
		return tx.WithinTx(ctx, store.TxOptions{}, func(ctx context.Context, q store.Querier) error {
			return repository.NewFlightRepository(q).Insert(ctx, list...)
		})
	})
	if err != nil {
		return err
	}
	if flusher, ok := f.Cache.(interface{ Flush(context.Context) error }); ok {
		if err := flusher.Flush(ctx); err != nil {
			f.logger().Warn("failed to flush search cache", zap.Error(err))
		}
	}
	f.logger().Info("flights loaded", zap.Int("count", len(list)))
	return nil
}

// Flight looks up one flight outside of any session.
func (f *Factory) Flight(ctx context.Context, id int64) (*domain.Flight, error) {
	return flights.NewFlightService(store.NewManager(f.Conn), flights.WithRetryPolicy(f.Retry)).GetByID(ctx, id)
}

// Engine is one session. Its operations are serialized.
type Engine struct {
	mu       sync.Mutex
	session  *session.Session
	tx       *store.Manager
	accounts accounts.AccountUseCase
	flights  flights.FlightUseCase
	bookings booking.BookingUseCase
	halted   error
	log      *zap.Logger
}

// Register creates a new account. It does not log the session in.
func (e *Engine) Register(ctx context.Context, username, password string, initialBalance int64) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.finish("register", &err)

	if err := e.usable(); err != nil {
		return err
	}
	return e.accounts.Register(ctx, username, password, initialBalance)
}

func (e *Engine) Login(ctx context.Context, username, password string) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.finish("login", &err)

	if err := e.usable(); err != nil {
		return err
	}
	if e.session.LoggedIn() {
		return domain.ErrAlreadyAuthenticated
	}
	if err := e.accounts.Authenticate(ctx, username, password); err != nil {
		return err
	}
	return e.session.Login(username)
}

// Search runs an itinerary search and makes its result the session's
// candidate list. A failed search leaves the list empty.
func (e *Engine) Search(ctx context.Context, q domain.SearchQuery) (list []domain.Itinerary, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.finish("search", &err)

	if err := e.usable(); err != nil {
		return nil, err
	}
	list, err = e.flights.Search(ctx, q)
	if err != nil {
		e.session.ReplaceCandidates(nil)
		return nil, err
	}
	e.session.ReplaceCandidates(list)
	return list, nil
}

// Book reserves the candidate at index from the last search.
func (e *Engine) Book(ctx context.Context, index int) (id int64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.finish("book", &err)

	if err := e.usable(); err != nil {
		return 0, err
	}
	username, err := e.session.Username()
	if err != nil {
		return 0, err
	}
	it, err := e.session.Candidate(index)
	if err != nil {
		return 0, err
	}
	return e.bookings.Book(ctx, username, it)
}

// Pay returns the balance left after paying.
func (e *Engine) Pay(ctx context.Context, reservationID int64) (balance int64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.finish("pay", &err)

	if err := e.usable(); err != nil {
		return 0, err
	}
	username, err := e.session.Username()
	if err != nil {
		return 0, err
	}
	return e.bookings.Pay(ctx, username, reservationID)
}

func (e *Engine) Cancel(ctx context.Context, reservationID int64) (receipt *domain.CancelReceipt, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.finish("cancel", &err)

	if err := e.usable(); err != nil {
		return nil, err
	}
	username, err := e.session.Username()
	if err != nil {
		return nil, err
	}
	return e.bookings.Cancel(ctx, username, reservationID)
}

func (e *Engine) ListReservations(ctx context.Context) (list []domain.Booking, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.finish("list_reservations", &err)

	if err := e.usable(); err != nil {
		return nil, err
	}
	username, err := e.session.Username()
	if err != nil {
		return nil, err
	}
	return e.bookings.Reservations(ctx, username)
}

// Username returns the logged-in user, or "" when logged out.
func (e *Engine) Username() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	name, _ := e.session.Username()
	return name
}

// OpenTransactions reports transactions of this session not yet closed.
func (e *Engine) OpenTransactions() int64 {
	return e.tx.OpenTransactions()
}

func (e *Engine) usable() error {
	return e.halted
}

// finish verifies no transaction was left open, normalizes err to a domain
// outcome and records it. A leaked transaction halts the session for good.
func (e *Engine) finish(op string, err *error) {
	if e.halted == nil {
		if dangling := e.tx.CheckClosed(); dangling != nil {
			e.halted = fmt.Errorf("%w: %w", domain.ErrSessionHalted, dangling)
			metrics.DanglingTransactions.Inc()
			e.log.Error("session halted", zap.String("operation", op), zap.Error(dangling))
			*err = e.halted
		}
	}

	if *err != nil && domain.KindOf(*err) == domain.KindStoreFailure && !errors.Is(*err, domain.ErrStoreFailure) {
		*err = fmt.Errorf("%w: %w", domain.ErrStoreFailure, *err)
	}

	kind := domain.KindOf(*err)
	metrics.Operations.WithLabelValues(op, kind.String()).Inc()
	switch kind {
	case domain.KindNone:
		e.log.Debug("operation done", zap.String("operation", op))
	case domain.KindStoreFailure:
		e.log.Error("operation failed", zap.String("operation", op), zap.Error(*err))
	default:
		e.log.Info("operation rejected", zap.String("operation", op), zap.String("outcome", kind.String()))
	}
}
