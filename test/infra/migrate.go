package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"vendaflow/migrations"
)

// ApplyMigrations runs the embedded schema migrations against the DSN and
// returns a connection pool ready for tests.
func ApplyMigrations(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if err := migrations.Up(dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return pool, nil
}
