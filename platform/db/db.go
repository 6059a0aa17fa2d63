// Package db opens the Postgres pool and applies the embedded migrations.
package db

import (
	"context"
	"time"

	"telemarketing_backend/platform/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

type poolSettings struct {
	appName  string
	maxConns int32
	minConns int32
}

// PoolOption adjusts the pool opened by NewPool.
type PoolOption func(*poolSettings)

// WithAppName sets application_name so sessions are identifiable in pg_stat_activity.
func WithAppName(name string) PoolOption {
	return func(s *poolSettings) { s.appName = name }
}

// WithMaxConns caps the pool. Idle connections are capped to match.
func WithMaxConns(n int32) PoolOption {
	return func(s *poolSettings) {
		s.maxConns = n
		if s.minConns > n {
			s.minConns = n
		}
	}
}

// NewPool opens a pool and pings it. Defaults suit the API server: 25
// connections with 5 kept warm.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, opts ...PoolOption) (*pgxpool.Pool, error) {
	settings := poolSettings{appName: "telemarketing-api", maxConns: 25, minConns: 5}
	for _, opt := range opts {
		opt(&settings)
	}

	poolConfig, err := buildPoolConfig(cfg.GetDatabaseURL(), settings)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func buildPoolConfig(url string, settings poolSettings) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = settings.maxConns
	poolConfig.MinConns = settings.minConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute
	if settings.appName != "" {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = settings.appName
	}
	return poolConfig, nil
}
