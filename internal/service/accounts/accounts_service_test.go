package accounts

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Exists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Balance(ctx context.Context, username string) (int64, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) SetBalance(ctx context.Context, username string, balance int64) error {
	args := m.Called(ctx, username, balance)
	return args.Error(0)
}

// fakeTransactor runs fn directly and fails the first `conflicts` commits.
type fakeTransactor struct {
	calls     int
	conflicts int
	readOnly  []bool
}

func (f *fakeTransactor) WithinTx(ctx context.Context, opts store.TxOptions, fn func(ctx context.Context, q store.Querier) error) error {
	f.calls++
	f.readOnly = append(f.readOnly, opts.ReadOnly)
	if err := fn(ctx, nil); err != nil {
		return err
	}
	if f.calls <= f.conflicts {
		return fmt.Errorf("%w: commit", store.ErrConflict)
	}
	return nil
}

// plainHasher is deterministic so expected hashes can be built in tests.
type plainHasher struct{}

func (plainHasher) Hash(password string, salt []byte) []byte {
	return append([]byte(password+":"), salt...)
}

func (plainHasher) NewSalt() ([]byte, error) {
	return []byte("salt"), nil
}

func newService(tx store.Transactor, users *MockUserRepository) *AccountService {
	return NewAccountService(tx, plainHasher{}, WithRepositories(func(store.Querier) repository.Set {
		return repository.Set{Users: users}
	}))
}

// Тест 1: регистрация нового пользователя
func TestAccountService_Register_Success(t *testing.T) {
	users := &MockUserRepository{}
	tx := &fakeTransactor{}
	service := newService(tx, users)
	ctx := context.Background()

	users.On("Exists", ctx, "alice").Return(false, nil).Once()
	users.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "alice" && u.Balance == 100 &&
			string(u.Salt) == "salt" && string(u.PasswordHash) == "pw:salt"
	})).Return(nil).Once()

	err := service.Register(ctx, "alice", "pw", 100)

	assert.NoError(t, err)
	assert.Equal(t, []bool{false}, tx.readOnly)
	users.AssertExpectations(t)
}

func TestAccountService_Register_NegativeBalance(t *testing.T) {
	users := &MockUserRepository{}
	tx := &fakeTransactor{}
	service := newService(tx, users)

	err := service.Register(context.Background(), "alice", "pw", -1)

	assert.ErrorIs(t, err, domain.ErrInvalidInitialBalance)
	assert.Equal(t, 0, tx.calls)
	users.AssertNotCalled(t, "Create")
}

func TestAccountService_Register_Existing(t *testing.T) {
	users := &MockUserRepository{}
	service := newService(&fakeTransactor{}, users)
	ctx := context.Background()

	users.On("Exists", ctx, "alice").Return(true, nil).Once()

	err := service.Register(ctx, "alice", "pw", 10)

	assert.ErrorIs(t, err, domain.ErrAccountAlreadyExists)
	users.AssertNotCalled(t, "Create")
}

// Вставка проиграла гонку другой сессии
func TestAccountService_Register_UniqueViolation(t *testing.T) {
	users := &MockUserRepository{}
	service := newService(&fakeTransactor{}, users)
	ctx := context.Background()

	users.On("Exists", ctx, "alice").Return(false, nil).Once()
	users.On("Create", ctx, mock.Anything).Return(fmt.Errorf("%w: users_pkey", store.ErrUniqueViolation)).Once()

	err := service.Register(ctx, "alice", "pw", 10)

	assert.ErrorIs(t, err, domain.ErrAccountAlreadyExists)
}

func TestAccountService_Register_RetriesWholeOperation(t *testing.T) {
	users := &MockUserRepository{}
	tx := &fakeTransactor{conflicts: 2}
	service := newService(tx, users)
	ctx := context.Background()

	users.On("Exists", ctx, "alice").Return(false, nil).Times(3)
	users.On("Create", ctx, mock.Anything).Return(nil).Times(3)

	err := service.Register(ctx, "alice", "pw", 10)

	assert.NoError(t, err)
	assert.Equal(t, 3, tx.calls)
	users.AssertExpectations(t)
}

func TestAccountService_Register_StoreError(t *testing.T) {
	users := &MockUserRepository{}
	service := newService(&fakeTransactor{}, users)
	ctx := context.Background()
	dbErr := errors.New("connection reset")

	users.On("Exists", ctx, "alice").Return(false, dbErr).Once()

	err := service.Register(ctx, "alice", "pw", 10)

	assert.ErrorIs(t, err, dbErr)
}

func TestAccountService_Authenticate(t *testing.T) {
	stored := &domain.User{Username: "alice", PasswordHash: []byte("pw:salt"), Salt: []byte("salt"), Balance: 5}

	testCases := []struct {
		name     string
		password string
		user     *domain.User
		repoErr  error
		wantErr  error
	}{
		{name: "correct password", password: "pw", user: stored},
		{name: "wrong password", password: "nope", user: stored, wantErr: domain.ErrAuthenticationFailed},
		{name: "unknown user", password: "pw", repoErr: store.ErrNoRows, wantErr: domain.ErrAuthenticationFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			users := &MockUserRepository{}
			tx := &fakeTransactor{}
			service := newService(tx, users)
			ctx := context.Background()

			if tc.user != nil {
				users.On("GetByUsername", ctx, "alice").Return(tc.user, nil).Once()
			} else {
				users.On("GetByUsername", ctx, "alice").Return(nil, tc.repoErr).Once()
			}

			err := service.Authenticate(ctx, "alice", tc.password)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, []bool{true}, tx.readOnly)
		})
	}
}
