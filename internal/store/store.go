// Package store is the transactional boundary between the engine and the
// relational backend. Every backend error leaving this package is classified:
// ErrConflict for serialization failures and deadlocks, ErrUniqueViolation for
// duplicate keys, ErrNoRows for empty single-row reads, anything else as is.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/atomic"
)

var (
	ErrConflict        = errors.New("store: serialization conflict")
	ErrUniqueViolation = errors.New("store: unique violation")
	ErrNoRows          = errors.New("store: no rows")
	ErrTxDone          = errors.New("store: transaction already closed")
)

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

type Row interface {
	Scan(dest ...any) error
}

// Querier runs parameterized statements. Placeholders are written as '?'.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
}

type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxOptions for a serializable transaction.
type TxOptions struct {
	ReadOnly bool
}

// Conn opens serializable transactions against a backend.
type Conn interface {
	Begin(ctx context.Context, opts TxOptions) (Tx, error)
	Close()
}

// Transactor runs fn inside one transaction, committing when fn returns nil
// and rolling back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, opts TxOptions, fn func(ctx context.Context, q Querier) error) error
}

// DanglingTxError reports transactions left open after an operation returned.
type DanglingTxError struct {
	Open int64
}

func (e *DanglingTxError) Error() string {
	return fmt.Sprintf("store: transaction not fully committed or rolled back, %d still open", e.Open)
}

// Manager is the transaction scope of one session. It counts the
// transactions it has begun and not yet closed.
type Manager struct {
	conn Conn
	open atomic.Int64
}

func NewManager(conn Conn) *Manager {
	return &Manager{conn: conn}
}

func (m *Manager) WithinTx(ctx context.Context, opts TxOptions, fn func(ctx context.Context, q Querier) error) (err error) {
	tx, err := m.conn.Begin(ctx, opts)
	if err != nil {
		return err
	}
	m.open.Inc()

	defer func() {
		if p := recover(); p != nil {
			m.release(tx)
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		m.release(tx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		m.release(tx)
		return err
	}
	m.open.Dec()
	return nil
}

// release rolls tx back. The transaction stays counted as open unless the
// backend confirms it is closed.
func (m *Manager) release(tx Tx) {
	err := tx.Rollback(context.Background())
	if err == nil || errors.Is(err, ErrTxDone) {
		m.open.Dec()
	}
}

func (m *Manager) OpenTransactions() int64 {
	return m.open.Load()
}

// CheckClosed returns a *DanglingTxError if any transaction is still open.
func (m *Manager) CheckClosed() error {
	if n := m.open.Load(); n > 0 {
		return &DanglingTxError{Open: n}
	}
	return nil
}

var _ Transactor = (*Manager)(nil)
