package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type Options struct {
	DSN      string
	MaxConns int
}

// Open connects a database/sql pool backed by the pgx driver and pings it
// so misconfiguration fails at startup rather than on the first request.
func Open(ctx context.Context, opt Options) (*sql.DB, error) {
	if opt.DSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}
	if opt.MaxConns <= 0 {
		opt.MaxConns = 10
	}

	pool, err := sql.Open("pgx", opt.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	pool.SetMaxOpenConns(opt.MaxConns)
	pool.SetConnMaxIdleTime(5 * time.Minute)

	// Fail fast
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return pool, nil
}
