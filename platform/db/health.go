package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pinger is the narrow view of the pool used by health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PoolAdapter exposes a pgx pool to the health endpoint.
type PoolAdapter struct {
	pool *pgxpool.Pool
}

// NewPoolAdapter wraps pool for health checks.
func NewPoolAdapter(pool *pgxpool.Pool) *PoolAdapter {
	return &PoolAdapter{pool: pool}
}

// Ping verifies the database is reachable.
func (a *PoolAdapter) Ping(ctx context.Context) error {
	return a.pool.Ping(ctx)
}
