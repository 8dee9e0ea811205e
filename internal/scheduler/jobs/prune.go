package jobs

import (
	"context"
	"fmt"

	"github.com/hmartin/gexsight/internal/store"
	"github.com/hmartin/gexsight/pkg/logger"
)

// PruneJob deletes rows older than the configured retention window.
type PruneJob struct {
	pruner        *store.Pruner
	retentionDays int
	schedule      string
	logger        *logger.Logger
}

// NewPruneJob creates the retention pruning job.
func NewPruneJob(pruner *store.Pruner, retentionDays int, schedule string, log *logger.Logger) *PruneJob {
	return &PruneJob{
		pruner:        pruner,
		retentionDays: retentionDays,
		schedule:      schedule,
		logger:        log,
	}
}

// Name returns the job name
func (j *PruneJob) Name() string {
	return "data_prune"
}

// Schedule returns the cron schedule from config
func (j *PruneJob) Schedule() string {
	return j.schedule
}

// Run deletes expired rows from every table.
func (j *PruneJob) Run(ctx context.Context) error {
	result, err := j.pruner.Prune(ctx, j.retentionDays)
	if err != nil {
		return fmt.Errorf("prune data: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"retention_days":  j.retentionDays,
		"snapshots":       result.Snapshots,
		"gamma_levels":    result.GammaLevels,
		"alerts":          result.Alerts,
		"recommendations": result.Recommendations,
	}).Info("Data pruning completed")

	return nil
}
