package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return pool, nil
}

// Migrate creates the leaderboard table when it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS leaderboard_entries (
			id                   TEXT PRIMARY KEY,
			game_id              TEXT NOT NULL,
			initials             TEXT NOT NULL,
			holdco_name          TEXT NOT NULL,
			score                INTEGER NOT NULL,
			grade                TEXT NOT NULL,
			enterprise_value     BIGINT NOT NULL,
			founder_equity_value BIGINT NOT NULL,
			business_count       INTEGER NOT NULL,
			difficulty           TEXT NOT NULL,
			duration             TEXT NOT NULL,
			created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}
