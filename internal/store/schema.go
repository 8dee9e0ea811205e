// Package store persists options snapshots, computed gamma levels,
// alerts, and the recommendation log in PostgreSQL.
package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		id BIGSERIAL PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		ticker TEXT NOT NULL,
		strike DOUBLE PRECISION NOT NULL,
		expiration TEXT,
		option_type TEXT,
		oi BIGINT DEFAULT 0,
		volume BIGINT DEFAULT 0,
		gamma DOUBLE PRECISION DEFAULT 0,
		delta DOUBLE PRECISION DEFAULT 0,
		vega DOUBLE PRECISION DEFAULT 0,
		theta DOUBLE PRECISION DEFAULT 0,
		underlying_price DOUBLE PRECISION DEFAULT 0,
		implied_vol DOUBLE PRECISION DEFAULT 0,
		gex DOUBLE PRECISION DEFAULT 0,
		vex DOUBLE PRECISION DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS gamma_levels (
		id BIGSERIAL PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		ticker TEXT NOT NULL,
		price DOUBLE PRECISION DEFAULT 0,
		max_pos_strike DOUBLE PRECISION,
		max_pos_gex DOUBLE PRECISION,
		max_neg_strike DOUBLE PRECISION,
		max_neg_gex DOUBLE PRECISION,
		net_gex DOUBLE PRECISION DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS alert_history (
		id BIGSERIAL PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		ticker TEXT NOT NULL,
		alert_type TEXT NOT NULL,
		message TEXT NOT NULL,
		details TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS recommendation_log (
		id BIGSERIAL PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		ticker TEXT NOT NULL,
		score INT NOT NULL,
		direction TEXT NOT NULL,
		play_type TEXT NOT NULL,
		price_at_score DOUBLE PRECISION DEFAULT 0,
		net_gex DOUBLE PRECISION DEFAULT 0,
		iv_rank DOUBLE PRECISION DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_ticker_ts ON snapshots (ticker, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_ticker_strike_ts ON snapshots (ticker, strike, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_gamma_levels_ticker_ts ON gamma_levels (ticker, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alert_history (timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendation_log_ts ON recommendation_log (timestamp)`,
}

// EnsureSchema creates all tables and indices if they do not exist.
// Safe to call on every startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
