package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hmartin/gexsight/pkg/logger"
)

// Pruner deletes rows older than the retention period.
type Pruner struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewPruner creates a new pruner.
func NewPruner(pool *pgxpool.Pool, log *logger.Logger) *Pruner {
	return &Pruner{pool: pool, log: log}
}

// PruneResult reports how many rows each table lost.
type PruneResult struct {
	Snapshots       int64 `json:"snapshots"`
	GammaLevels     int64 `json:"gamma_levels"`
	Alerts          int64 `json:"alerts"`
	Recommendations int64 `json:"recommendations"`
}

// Prune deletes data older than retentionDays from all tables.
func (p *Pruner) Prune(ctx context.Context, retentionDays int) (PruneResult, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	var result PruneResult
	for _, t := range []struct {
		table string
		count *int64
	}{
		{"snapshots", &result.Snapshots},
		{"gamma_levels", &result.GammaLevels},
		{"alert_history", &result.Alerts},
		{"recommendation_log", &result.Recommendations},
	} {
		tag, err := p.pool.Exec(ctx, `DELETE FROM `+t.table+` WHERE timestamp < $1`, cutoff)
		if err != nil {
			return result, err
		}
		*t.count = tag.RowsAffected()
	}

	if p.log != nil {
		p.log.Infof("Pruned old data (>%d days): %d snapshots, %d gamma_levels, %d alerts, %d recommendations",
			retentionDays, result.Snapshots, result.GammaLevels, result.Alerts, result.Recommendations)
	}
	return result, nil
}
