package flights

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/store"
	"go.uber.org/zap"
)

type FlightUseCase interface {
	Search(ctx context.Context, q domain.SearchQuery) ([]domain.Itinerary, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

// SearchCache returns nil, nil on a miss.
type SearchCache interface {
	GetItineraries(ctx context.Context, q domain.SearchQuery) ([]domain.Itinerary, error)
	SetItineraries(ctx context.Context, q domain.SearchQuery, itineraries []domain.Itinerary) error
}

type FlightService struct {
	tx    store.Transactor
	repos func(store.Querier) repository.Set
	cache SearchCache
	retry store.RetryPolicy
	log   *zap.Logger
}

type FlightServiceOption func(*FlightService)

func WithCache(cache SearchCache) FlightServiceOption {
	return func(s *FlightService) {
		s.cache = cache
	}
}

func WithRepositories(repos func(store.Querier) repository.Set) FlightServiceOption {
	return func(s *FlightService) {
		s.repos = repos
	}
}

func WithRetryPolicy(p store.RetryPolicy) FlightServiceOption {
	return func(s *FlightService) {
		s.retry = p
	}
}

func WithLogger(log *zap.Logger) FlightServiceOption {
	return func(s *FlightService) {
		s.log = log
	}
}

func NewFlightService(tx store.Transactor, opts ...FlightServiceOption) *FlightService {
	service := &FlightService{
		tx:    tx,
		repos: repository.NewSet,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Search returns up to q.MaxResults itineraries. Direct flights fill the
// result first; one-stop connections are added only for the remaining slots.
// The merged list is ordered by total duration, then flight ids.
func (s *FlightService) Search(ctx context.Context, q domain.SearchQuery) ([]domain.Itinerary, error) {
	if q.MaxResults <= 0 {
		return []domain.Itinerary{}, nil
	}

	if s.cache != nil {
		cached, err := s.cache.GetItineraries(ctx, q)
		if err != nil {
			s.log.Warn("search cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	var result []domain.Itinerary
	err := s.retry.Do(ctx, "search", func(ctx context.Context) error {
		return s.tx.WithinTx(ctx, store.TxOptions{ReadOnly: true}, func(ctx context.Context, tq store.Querier) error {
			flights := s.repos(tq).Flights

			direct, err := flights.SearchDirect(ctx, q, q.MaxResults)
			if err != nil {
				return err
			}
			list := make([]domain.Itinerary, 0, len(direct))
			for _, f := range direct {
				list = append(list, domain.Direct(f))
			}

			if !q.DirectOnly && len(list) < q.MaxResults {
				connecting, err := flights.SearchConnecting(ctx, q, q.MaxResults-len(list))
				if err != nil {
					return err
				}
				list = append(list, connecting...)
			}

			domain.SortItineraries(list)
			result = list
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetItineraries(ctx, q, result); err != nil {
			s.log.Warn("search cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	var flight *domain.Flight
	err := s.retry.Do(ctx, "get_flight", func(ctx context.Context) error {
		return s.tx.WithinTx(ctx, store.TxOptions{ReadOnly: true}, func(ctx context.Context, tq store.Querier) error {
			f, err := s.repos(tq).Flights.GetByID(ctx, id)
			if err != nil {
				return err
			}
			flight = f
			return nil
		})
	})
	if errors.Is(err, store.ErrNoRows) {
		return nil, domain.ErrFlightNotFound
	}
	if err != nil {
		return nil, err
	}
	return flight, nil
}

var _ FlightUseCase = (*FlightService)(nil)
