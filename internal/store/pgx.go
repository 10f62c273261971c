package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

type PgxConn struct {
	pool *pgxpool.Pool
}

func NewPgxConn(pool *pgxpool.Pool) *PgxConn {
	return &PgxConn{pool: pool}
}

func (c *PgxConn) Begin(ctx context.Context, opts TxOptions) (Tx, error) {
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	if opts.ReadOnly {
		txOpts.AccessMode = pgx.ReadOnly
	}
	tx, err := c.pool.BeginTx(ctx, txOpts)
	if err != nil {
		return nil, classifyPg(err)
	}
	return &pgxTx{tx: tx}, nil
}

func (c *PgxConn) Close() {
	c.pool.Close()
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rows, err := t.tx.Query(ctx, Rebind(sql), args...)
	if err != nil {
		return nil, classifyPg(err)
	}
	return &pgxRows{rows: rows}, nil
}

func (t *pgxTx) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return pgxRow{row: t.tx.QueryRow(ctx, Rebind(sql), args...)}
}

func (t *pgxTx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, Rebind(sql), args...)
	if err != nil {
		return 0, classifyPg(err)
	}
	return tag.RowsAffected(), nil
}

func (t *pgxTx) Commit(ctx context.Context) error {
	return classifyPg(t.tx.Commit(ctx))
}

// Rollback reports every failure as ErrTxDone: pgx marks the transaction
// closed even when the rollback itself fails, e.g. on a dead connection.
func (t *pgxTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrTxClosed):
		return ErrTxDone
	default:
		return fmt.Errorf("%w: %w", ErrTxDone, err)
	}
}

type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Next() bool             { return r.rows.Next() }
func (r *pgxRows) Scan(dest ...any) error { return classifyPg(r.rows.Scan(dest...)) }
func (r *pgxRows) Err() error             { return classifyPg(r.rows.Err()) }
func (r *pgxRows) Close()                 { r.rows.Close() }

type pgxRow struct {
	row pgx.Row
}

func (r pgxRow) Scan(dest ...any) error { return classifyPg(r.row.Scan(dest...)) }

func classifyPg(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNoRows
	case errors.Is(err, pgx.ErrTxClosed):
		return ErrTxDone
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		case pgUniqueViolation:
			return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
		}
	}
	return err
}

var _ Conn = (*PgxConn)(nil)
