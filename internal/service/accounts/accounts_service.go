package accounts

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightbooking/internal/credential"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/store"
	"go.uber.org/zap"
)

type AccountUseCase interface {
	Register(ctx context.Context, username, password string, initialBalance int64) error
	Authenticate(ctx context.Context, username, password string) error
}

type AccountService struct {
	tx     store.Transactor
	repos  func(store.Querier) repository.Set
	hasher credential.Hasher
	retry  store.RetryPolicy
	log    *zap.Logger
}

type AccountServiceOption func(*AccountService)

func WithRepositories(repos func(store.Querier) repository.Set) AccountServiceOption {
	return func(s *AccountService) {
		s.repos = repos
	}
}

func WithRetryPolicy(p store.RetryPolicy) AccountServiceOption {
	return func(s *AccountService) {
		s.retry = p
	}
}

func WithLogger(log *zap.Logger) AccountServiceOption {
	return func(s *AccountService) {
		s.log = log
	}
}

func NewAccountService(tx store.Transactor, hasher credential.Hasher, opts ...AccountServiceOption) *AccountService {
	service := &AccountService{
		tx:     tx,
		repos:  repository.NewSet,
		hasher: hasher,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *AccountService) Register(ctx context.Context, username, password string, initialBalance int64) error {
	if initialBalance < 0 {
		return domain.ErrInvalidInitialBalance
	}

	salt, err := s.hasher.NewSalt()
	if err != nil {
		return err
	}
	user := &domain.User{
		Username:     username,
		PasswordHash: s.hasher.Hash(password, salt),
		Salt:         salt,
		Balance:      initialBalance,
	}

	err = s.retry.Do(ctx, "register", func(ctx context.Context) error {
		return s.tx.WithinTx(ctx, store.TxOptions{}, func(ctx context.Context, q store.Querier) error {
			users := s.repos(q).Users
			exists, err := users.Exists(ctx, username)
			if err != nil {
				return err
			}
			if exists {
				return domain.ErrAccountAlreadyExists
			}
			if err := users.Create(ctx, user); err != nil {
				if errors.Is(err, store.ErrUniqueViolation) {
					return domain.ErrAccountAlreadyExists
				}
				return err
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	s.log.Info("account created", zap.String("username", username))
	return nil
}

// Authenticate reads the stored hash and salt in one read-only transaction
// and compares the derived hash in constant time.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) error {
	var user *domain.User
	err := s.retry.Do(ctx, "login", func(ctx context.Context) error {
		return s.tx.WithinTx(ctx, store.TxOptions{ReadOnly: true}, func(ctx context.Context, q store.Querier) error {
			u, err := s.repos(q).Users.GetByUsername(ctx, username)
			if err != nil {
				return err
			}
			user = u
			return nil
		})
	})
	if errors.Is(err, store.ErrNoRows) {
		return domain.ErrAuthenticationFailed
	}
	if err != nil {
		return err
	}

	if !credential.Verify(s.hasher, password, user.Salt, user.PasswordHash) {
		return domain.ErrAuthenticationFailed
	}
	return nil
}

var _ AccountUseCase = (*AccountService)(nil)
