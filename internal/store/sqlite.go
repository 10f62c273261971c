package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// SQLiteConn runs on database/sql with the sqlite3 driver. Transactions are
// opened with BEGIN IMMEDIATE, so writers are serialized by the file lock.
type SQLiteConn struct {
	db *sql.DB
}

func SQLiteDSN(path string, busyTimeoutMS int) string {
	return fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=1", path, busyTimeoutMS)
}

func OpenSQLite(ctx context.Context, dsn string) (*SQLiteConn, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLiteConn{db: db}, nil
}

func (c *SQLiteConn) Begin(ctx context.Context, _ TxOptions) (Tx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classifySQLite(err)
	}
	return &sqlTx{tx: tx}, nil
}

func (c *SQLiteConn) Close() {
	c.db.Close()
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classifySQLite(err)
	}
	return &sqlRows{rows: rows}, nil
}

func (t *sqlTx) QueryRow(ctx context.Context, query string, args ...any) Row {
	return sqlRow{row: t.tx.QueryRowContext(ctx, query, args...)}
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classifySQLite(err)
	}
	n, err := res.RowsAffected()
	return n, classifySQLite(err)
}

func (t *sqlTx) Commit(context.Context) error { return classifySQLite(t.tx.Commit()) }
// Rollback reports every failure as ErrTxDone: database/sql marks the
// transaction done before asking the driver to roll back.
func (t *sqlTx) Rollback(context.Context) error {
	err := t.tx.Rollback()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrTxDone):
		return ErrTxDone
	default:
		return fmt.Errorf("%w: %w", ErrTxDone, err)
	}
}

type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Next() bool             { return r.rows.Next() }
func (r *sqlRows) Scan(dest ...any) error { return classifySQLite(r.rows.Scan(dest...)) }
func (r *sqlRows) Err() error             { return classifySQLite(r.rows.Err()) }
func (r *sqlRows) Close()                 { _ = r.rows.Close() }

type sqlRow struct {
	row *sql.Row
}

func (r sqlRow) Scan(dest ...any) error { return classifySQLite(r.row.Scan(dest...)) }

func classifySQLite(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNoRows
	case errors.Is(err, sql.ErrTxDone):
		return ErrTxDone
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch {
		case sqliteErr.Code == sqlite3.ErrBusy, sqliteErr.Code == sqlite3.ErrLocked:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique,
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
		}
	}
	return err
}

var _ Conn = (*SQLiteConn)(nil)
