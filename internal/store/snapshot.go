package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hmartin/gexsight/internal/contracts"
	"github.com/hmartin/gexsight/pkg/logger"
)

// SnapshotRepository stores per-contract chain snapshots.
type SnapshotRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(pool *pgxpool.Pool, log *logger.Logger) *SnapshotRepository {
	return &SnapshotRepository{pool: pool, log: log}
}

// SaveSnapshot bulk inserts one fetch cycle's contracts. Per-contract
// dollar gamma and vega exposures are computed at write time so the
// time-series queries never re-derive them.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, cs []contracts.Contract, ts time.Time) error {
	if len(cs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range cs {
		gex := c.Gamma * float64(c.OpenInterest) * 100 * c.UnderlyingPrice
		vex := c.Vega * float64(c.OpenInterest) * 100
		if c.Type == contracts.Put {
			gex = -gex
			vex = -vex
		}

		batch.Queue(`
			INSERT INTO snapshots
				(timestamp, ticker, strike, expiration, option_type, oi, volume,
				 gamma, delta, vega, theta, underlying_price, implied_vol, gex, vex)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`, ts, c.Ticker, c.Strike, c.Expiration, string(c.Type), c.OpenInterest, c.Volume,
			c.Gamma, c.Delta, c.Vega, c.Theta, c.UnderlyingPrice, c.ImpliedVol, gex, vex)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range cs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}

	if r.log != nil {
		r.log.Infof("Saved %d contract snapshots to database", len(cs))
	}
	return nil
}

// LatestSnapshotTime returns the timestamp of the most recent snapshot,
// or nil when the table is empty.
func (r *SnapshotRepository) LatestSnapshotTime(ctx context.Context) (*time.Time, error) {
	var latest *time.Time
	err := r.pool.QueryRow(ctx, `SELECT MAX(timestamp) FROM snapshots`).Scan(&latest)
	if err != nil {
		return nil, err
	}
	return latest, nil
}

// LatestContracts loads the most recent snapshot's contracts, optionally
// filtered to a single ticker (empty string loads all tickers).
func (r *SnapshotRepository) LatestContracts(ctx context.Context, ticker string) ([]contracts.Contract, error) {
	query := `
		SELECT ticker, strike, expiration, option_type, oi, volume,
		       gamma, delta, vega, theta, underlying_price, implied_vol
		FROM snapshots
		WHERE timestamp = (SELECT MAX(timestamp) FROM snapshots)
	`
	args := []any{}
	if ticker != "" {
		query += ` AND ticker = $1`
		args = append(args, ticker)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contracts.Contract
	for rows.Next() {
		var c contracts.Contract
		var optType string
		if err := rows.Scan(&c.Ticker, &c.Strike, &c.Expiration, &optType, &c.OpenInterest,
			&c.Volume, &c.Gamma, &c.Delta, &c.Vega, &c.Theta, &c.UnderlyingPrice, &c.ImpliedVol); err != nil {
			return nil, err
		}
		c.Type = contracts.OptionType(optType)
		out = append(out, c)
	}
	return out, rows.Err()
}

// OIChange compares the earliest and latest open interest per strike
// within the interval. Rows are sorted by absolute OI change.
type OIChange struct {
	Strike    float64 `json:"strike"`
	OldOI     int64   `json:"old_oi"`
	NewOI     int64   `json:"new_oi"`
	OIChange  int64   `json:"oi_change"`
	PctChange float64 `json:"pct_change"`
}

// OIChanges returns open interest deltas for a ticker over the interval.
func (r *SnapshotRepository) OIChanges(ctx context.Context, ticker string, interval time.Duration) ([]OIChange, error) {
	cutoff := time.Now().Add(-interval)

	rows, err := r.pool.Query(ctx, `
		WITH latest AS (
			SELECT ticker, strike, oi,
			       ROW_NUMBER() OVER (PARTITION BY ticker, strike ORDER BY timestamp DESC) AS rn
			FROM snapshots
			WHERE ticker = $1 AND timestamp >= $2
		),
		earliest AS (
			SELECT ticker, strike, oi,
			       ROW_NUMBER() OVER (PARTITION BY ticker, strike ORDER BY timestamp ASC) AS rn
			FROM snapshots
			WHERE ticker = $1 AND timestamp >= $2
		)
		SELECT
			l.strike,
			e.oi AS old_oi,
			l.oi AS new_oi,
			(l.oi - e.oi) AS oi_change,
			CASE WHEN e.oi > 0 THEN ROUND((l.oi - e.oi) * 100.0 / e.oi, 2) ELSE 0 END AS pct_change
		FROM latest l
		JOIN earliest e ON l.ticker = e.ticker AND l.strike = e.strike
		WHERE l.rn = 1 AND e.rn = 1
		ORDER BY ABS(l.oi - e.oi) DESC
	`, ticker, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []OIChange
	for rows.Next() {
		var c OIChange
		if err := rows.Scan(&c.Strike, &c.OldOI, &c.NewOI, &c.OIChange, &c.PctChange); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
