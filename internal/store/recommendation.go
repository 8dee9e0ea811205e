package store

import (
	"context"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hmartin/gexsight/internal/contracts"
	"github.com/hmartin/gexsight/pkg/logger"
)

// RecommendationRepository persists scored recommendations and joins
// them with realized prices for backtesting.
type RecommendationRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewRecommendationRepository creates a new recommendation log repository.
func NewRecommendationRepository(pool *pgxpool.Pool, log *logger.Logger) *RecommendationRepository {
	return &RecommendationRepository{pool: pool, log: log}
}

// SaveLog appends one cycle's recommendations to the write-once log.
func (r *RecommendationRepository) SaveLog(ctx context.Context, entries []contracts.RecommendationLogEntry, ts time.Time) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO recommendation_log
				(timestamp, ticker, score, direction, play_type,
				 price_at_score, net_gex, iv_rank)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, ts, e.Ticker, e.Score, e.Direction, e.PlayType, e.PriceAtScore, e.NetGEX, e.IVRank)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range entries {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}

	if r.log != nil {
		r.log.Infof("Logged %d recommendations for backtesting", len(entries))
	}
	return nil
}

// Outcomes joins logged recommendations over the lookback window with
// each ticker's latest price from gamma_levels, newest first. Entries
// without a realized price get a zero return.
func (r *RecommendationRepository) Outcomes(ctx context.Context, hours int) ([]contracts.Outcome, error) {
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)

	rows, err := r.pool.Query(ctx, `
		SELECT r.ticker, r.score, r.direction, r.play_type,
		       r.price_at_score, r.timestamp,
		       COALESCE(g.price, 0) AS current_price
		FROM recommendation_log r
		LEFT JOIN (
			SELECT DISTINCT ON (ticker) ticker, price
			FROM gamma_levels
			ORDER BY ticker, timestamp DESC
		) g ON r.ticker = g.ticker
		WHERE r.timestamp >= $1 AND r.price_at_score > 0
		ORDER BY r.timestamp DESC
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []contracts.Outcome
	for rows.Next() {
		var o contracts.Outcome
		if err := rows.Scan(&o.Ticker, &o.Score, &o.Direction, &o.PlayType,
			&o.PriceAtScore, &o.Timestamp, &o.CurrentPrice); err != nil {
			return nil, err
		}
		if o.PriceAtScore > 0 && o.CurrentPrice > 0 {
			o.ReturnPct = math.Round((o.CurrentPrice-o.PriceAtScore)/o.PriceAtScore*100*1000) / 1000
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
