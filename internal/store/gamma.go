package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hmartin/gexsight/internal/contracts"
	"github.com/hmartin/gexsight/pkg/logger"
)

// GammaRepository stores computed gamma wall levels per ticker per cycle.
type GammaRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewGammaRepository creates a new gamma levels repository.
func NewGammaRepository(pool *pgxpool.Pool, log *logger.Logger) *GammaRepository {
	return &GammaRepository{pool: pool, log: log}
}

// GammaPoint is one row of a ticker's gamma level time series.
type GammaPoint struct {
	Timestamp      time.Time `json:"timestamp"`
	Price          float64   `json:"price"`
	CallWallStrike *float64  `json:"max_pos_strike"`
	CallWallValue  float64   `json:"max_pos_gex"`
	PutWallStrike  *float64  `json:"max_neg_strike"`
	PutWallValue   float64   `json:"max_neg_gex"`
	NetGEX         float64   `json:"net_gex"`
}

// FlipEvent marks a timestamp where net GEX changed sign.
type FlipEvent struct {
	Timestamp time.Time `json:"timestamp"`
	OldGEX    float64   `json:"old_gex"`
	NewGEX    float64   `json:"new_gex"`
	Direction string    `json:"direction"` // "positive_to_negative" or "negative_to_positive"
}

// LatestLevels couples a ticker's most recent gamma levels with the
// cycle timestamp they were computed at.
type LatestLevels struct {
	contracts.GammaLevels
	Timestamp time.Time `json:"timestamp"`
}

// SaveLevels persists the gamma walls computed for each ticker in one
// cycle.
func (r *GammaRepository) SaveLevels(ctx context.Context, levels map[string]*contracts.GammaLevels, ts time.Time) error {
	if len(levels) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for ticker, g := range levels {
		batch.Queue(`
			INSERT INTO gamma_levels
				(timestamp, ticker, price, max_pos_strike, max_pos_gex,
				 max_neg_strike, max_neg_gex, net_gex)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, ts, ticker, g.Price, g.CallWallStrike, g.CallWallValue,
			g.PutWallStrike, g.PutWallValue, g.NetGEX())
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range levels {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}

	if r.log != nil {
		r.log.Infof("Saved gamma levels for %d tickers", len(levels))
	}
	return nil
}

// History returns a ticker's gamma level time series over the lookback
// window, oldest first.
func (r *GammaRepository) History(ctx context.Context, ticker string, hours int) ([]GammaPoint, error) {
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)

	rows, err := r.pool.Query(ctx, `
		SELECT timestamp, price, max_pos_strike, max_pos_gex,
		       max_neg_strike, max_neg_gex, net_gex
		FROM gamma_levels
		WHERE ticker = $1 AND timestamp >= $2
		ORDER BY timestamp ASC
	`, ticker, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []GammaPoint
	for rows.Next() {
		var p GammaPoint
		if err := rows.Scan(&p.Timestamp, &p.Price, &p.CallWallStrike, &p.CallWallValue,
			&p.PutWallStrike, &p.PutWallValue, &p.NetGEX); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// FlipEvents scans a ticker's history for net GEX sign changes.
func (r *GammaRepository) FlipEvents(ctx context.Context, ticker string, hours int) ([]FlipEvent, error) {
	history, err := r.History(ctx, ticker, hours)
	if err != nil {
		return nil, err
	}
	return DetectFlips(history), nil
}

// DetectFlips finds consecutive points where net GEX crossed zero.
func DetectFlips(history []GammaPoint) []FlipEvent {
	if len(history) < 2 {
		return nil
	}

	var flips []FlipEvent
	for i := 1; i < len(history); i++ {
		oldGEX := history[i-1].NetGEX
		newGEX := history[i].NetGEX
		if (oldGEX > 0 && newGEX < 0) || (oldGEX < 0 && newGEX > 0) {
			direction := "negative_to_positive"
			if oldGEX > 0 {
				direction = "positive_to_negative"
			}
			flips = append(flips, FlipEvent{
				Timestamp: history[i].Timestamp,
				OldGEX:    oldGEX,
				NewGEX:    newGEX,
				Direction: direction,
			})
		}
	}
	return flips
}

// Latest returns the most recent gamma levels for every ticker.
func (r *GammaRepository) Latest(ctx context.Context) (map[string]LatestLevels, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (ticker)
			ticker, price, max_pos_strike, max_pos_gex,
			max_neg_strike, max_neg_gex, timestamp
		FROM gamma_levels
		ORDER BY ticker, timestamp DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make(map[string]LatestLevels)
	for rows.Next() {
		var l LatestLevels
		if err := rows.Scan(&l.Ticker, &l.Price, &l.CallWallStrike, &l.CallWallValue,
			&l.PutWallStrike, &l.PutWallValue, &l.Timestamp); err != nil {
			return nil, err
		}
		results[l.Ticker] = l
	}
	return results, rows.Err()
}
