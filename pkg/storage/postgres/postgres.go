package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultMaxConns     = 10
	defaultConnLifetime = time.Hour
	healthCheckPeriod   = 30 * time.Second
)

// PoolOptions sizes the shared pool. Zero fields take the package defaults.
type PoolOptions struct {
	MaxConns     int32
	ConnLifetime time.Duration
}

// Connect builds the pool every repository shares and fails fast when the
// database does not answer a ping.
func Connect(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	cfg, err := poolConfig(dsn, opts)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: unreachable: %w", err)
	}
	return pool, nil
}

func poolConfig(dsn string, opts PoolOptions) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: bad DATABASE_URL: %w", err)
	}

	cfg.MaxConns = defaultMaxConns
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	cfg.MaxConnLifetime = defaultConnLifetime
	if opts.ConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.ConnLifetime
	}
	// idle pools shrink to zero between bursts
	cfg.MinConns = 0
	cfg.HealthCheckPeriod = healthCheckPeriod
	return cfg, nil
}
