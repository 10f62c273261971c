package repository

import (
	"context"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/store"
)

type UserRepository interface {
	Exists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Balance(ctx context.Context, username string) (int64, error)
	SetBalance(ctx context.Context, username string, balance int64) error
}

type SQLUserRepository struct {
	q store.Querier
}

func NewUserRepository(q store.Querier) UserRepository {
	return &SQLUserRepository{q: q}
}

func (r *SQLUserRepository) Exists(ctx context.Context, username string) (bool, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLUserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.q.Exec(ctx, `INSERT INTO users (username, password_hash, salt, balance) VALUES (?, ?, ?, ?)`,
		u.Username, u.PasswordHash, u.Salt, u.Balance)
	return err
}

func (r *SQLUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := r.q.QueryRow(ctx, `SELECT username, password_hash, salt, balance FROM users WHERE username = ?`, username).
		Scan(&u.Username, &u.PasswordHash, &u.Salt, &u.Balance); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *SQLUserRepository) Balance(ctx context.Context, username string) (int64, error) {
	var balance int64
	if err := r.q.QueryRow(ctx, `SELECT balance FROM users WHERE username = ?`, username).Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *SQLUserRepository) SetBalance(ctx context.Context, username string, balance int64) error {
	_, err := r.q.Exec(ctx, `UPDATE users SET balance = ? WHERE username = ?`, balance, username)
	return err
}

var _ UserRepository = (*SQLUserRepository)(nil)
