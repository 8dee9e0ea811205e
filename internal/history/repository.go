// Package history answers the adaptive-scoring questions: where does
// the current value sit in the ticker's own recent distribution, and
// which way is it moving.
package history

import (
	"context"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hmartin/gexsight/internal/contracts"
)

// Lookback windows.
const (
	PercentileHours = 168 // 7 days
	MomentumHours   = 4
	IVRankHours     = 168
)

// Columns of gamma_levels that may be percentile-ranked. Guards the
// interpolated column name.
var rankableFields = map[string]struct{}{
	"net_gex":     {},
	"max_pos_gex": {},
	"max_neg_gex": {},
	"price":       {},
}

// Repository runs the time-series queries behind adaptive scoring.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new history repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Percentile ranks a current value against the ticker's own history of
// the given gamma_levels field. Returns 0.5 for unknown fields or when
// fewer than 3 samples exist.
func (r *Repository) Percentile(ctx context.Context, ticker, field string, currentValue float64, hours int) (float64, error) {
	if _, ok := rankableFields[field]; !ok {
		return 0.5, nil
	}

	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)
	rows, err := r.pool.Query(ctx, `
		SELECT `+field+` FROM gamma_levels
		WHERE ticker = $1 AND timestamp >= $2 AND `+field+` IS NOT NULL
		ORDER BY `+field+` ASC
	`, ticker, cutoff)
	if err != nil {
		return 0.5, err
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return 0.5, err
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return 0.5, err
	}

	if len(values) < 3 {
		return 0.5, nil
	}

	countBelow := 0
	for _, v := range values {
		if v < currentValue {
			countBelow++
		}
	}
	return round3(float64(countBelow) / float64(len(values))), nil
}

// Momentum returns the net GEX trend over the lookback window,
// normalized to [-1, 1].
func (r *Repository) Momentum(ctx context.Context, ticker string, hours int) (contracts.Momentum, error) {
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)

	rows, err := r.pool.Query(ctx, `
		SELECT net_gex FROM gamma_levels
		WHERE ticker = $1 AND timestamp >= $2
		ORDER BY timestamp ASC
	`, ticker, cutoff)
	if err != nil {
		return contracts.Momentum{}, err
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return contracts.Momentum{}, err
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return contracts.Momentum{}, err
	}

	if len(values) < 2 {
		return contracts.Momentum{GexSamples: len(values)}, nil
	}

	start, end := values[0], values[len(values)-1]

	var trend float64
	if start == 0 {
		if end > 0 {
			trend = 1.0
		} else if end < 0 {
			trend = -1.0
		}
	} else {
		trend = math.Max(-1.0, math.Min(1.0, (end-start)/math.Abs(start)))
	}

	return contracts.Momentum{
		GexTrend:   round3(trend),
		GexSamples: len(values),
		GexStart:   start,
		GexEnd:     end,
	}, nil
}

// IVRank computes where the latest ATM average implied vol sits in its
// historical range (0 = lowest seen, 1 = highest). ATM means strikes
// within 5% of the underlying. Returns 0.5 when history is too thin or
// the range is degenerate.
func (r *Repository) IVRank(ctx context.Context, ticker string, hours int) (float64, error) {
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)

	rows, err := r.pool.Query(ctx, `
		SELECT AVG(implied_vol) AS avg_iv
		FROM snapshots
		WHERE ticker = $1 AND timestamp >= $2
		      AND implied_vol > 0
		      AND underlying_price > 0
		      AND ABS(strike - underlying_price) / underlying_price < 0.05
		GROUP BY timestamp
		ORDER BY timestamp ASC
	`, ticker, cutoff)
	if err != nil {
		return 0.5, err
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v *float64
		if err := rows.Scan(&v); err != nil {
			return 0.5, err
		}
		if v != nil && *v > 0 {
			values = append(values, *v)
		}
	}
	if err := rows.Err(); err != nil {
		return 0.5, err
	}

	if len(values) < 3 {
		return 0.5, nil
	}

	current := values[len(values)-1]
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if max == min {
		return 0.5, nil
	}

	rank := (current - min) / (max - min)
	return round3(math.Max(0.0, math.Min(1.0, rank))), nil
}

// LatestNetGEX returns the most recent net GEX reading for a ticker.
// The bool is false when no history exists.
func (r *Repository) LatestNetGEX(ctx context.Context, ticker string) (float64, bool, error) {
	var netGEX float64
	err := r.pool.QueryRow(ctx, `
		SELECT net_gex FROM gamma_levels
		WHERE ticker = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`, ticker).Scan(&netGEX)
	if err != nil {
		return 0, false, err
	}
	return netGEX, true, nil
}

// PreviousPCRatio returns the ATM put/call OI ratio from the snapshot
// cycle before the latest one, for skew momentum comparison. The bool
// is false when fewer than two cycles exist.
func (r *Repository) PreviousPCRatio(ctx context.Context, ticker string) (float64, bool, error) {
	var putOI, callOI float64
	err := r.pool.QueryRow(ctx, `
		WITH prev AS (
			SELECT DISTINCT timestamp FROM snapshots
			WHERE ticker = $1
			ORDER BY timestamp DESC
			OFFSET 1 LIMIT 1
		)
		SELECT
			COALESCE(SUM(oi) FILTER (WHERE option_type = 'PUT'), 0),
			COALESCE(SUM(oi) FILTER (WHERE option_type = 'CALL'), 0)
		FROM snapshots s, prev
		WHERE s.ticker = $1 AND s.timestamp = prev.timestamp
		      AND s.underlying_price > 0
		      AND ABS(s.strike - s.underlying_price) / s.underlying_price < 0.05
	`, ticker).Scan(&putOI, &callOI)
	if err != nil {
		return 0, false, err
	}

	if putOI == 0 && callOI == 0 {
		return 0, false, nil
	}
	if callOI == 0 {
		return 999, true, nil
	}
	return putOI / callOI, true, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
