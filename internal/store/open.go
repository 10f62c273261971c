package store

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	//go:embed schema_postgres.sql
	postgresSchema string

	//go:embed schema_sqlite.sql
	sqliteSchema string
)

// Open connects to the configured backend and applies the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Conn, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return OpenSQLite(ctx, SQLiteDSN(cfg.Path, cfg.BusyTimeoutMS))
	case config.DriverPostgres, "":
		pool, err := pgxpool.New(ctx, cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if _, err := pool.Exec(ctx, postgresSchema); err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
		return NewPgxConn(pool), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
