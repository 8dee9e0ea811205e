// Package jobs contains the scheduled jobs driving the scoring
// pipeline.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hmartin/gexsight/internal/alerts"
	"github.com/hmartin/gexsight/internal/contracts"
	"github.com/hmartin/gexsight/internal/gamma"
	"github.com/hmartin/gexsight/internal/scoring"
	"github.com/hmartin/gexsight/internal/store"
	"github.com/hmartin/gexsight/pkg/logger"
	"github.com/hmartin/gexsight/pkg/redis"
)

// ScoringJob runs one full scoring cycle: aggregate gamma levels from
// the latest snapshot, detect alerts against the previous cycle, score
// every ticker, and persist the results.
type ScoringJob struct {
	snapshots  *store.SnapshotRepository
	gammaRepo  *store.GammaRepository
	recs       *store.RecommendationRepository
	aggregator *gamma.Aggregator
	scorer     *scoring.Scorer
	detector   *alerts.Detector
	notifier   *alerts.Notifier
	cache      *redis.Cache
	tickers    map[string]bool
	schedule   string
	logger     *logger.Logger
}

// NewScoringJob creates the scoring cycle job. notifier and cache may
// be nil. tickers limits the cycle to the configured universe; an
// empty list scores every ticker in the snapshot.
func NewScoringJob(
	snapshots *store.SnapshotRepository,
	gammaRepo *store.GammaRepository,
	recs *store.RecommendationRepository,
	aggregator *gamma.Aggregator,
	scorer *scoring.Scorer,
	detector *alerts.Detector,
	notifier *alerts.Notifier,
	cache *redis.Cache,
	tickers []string,
	schedule string,
	log *logger.Logger,
) *ScoringJob {
	universe := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		universe[t] = true
	}
	return &ScoringJob{
		snapshots:  snapshots,
		gammaRepo:  gammaRepo,
		recs:       recs,
		aggregator: aggregator,
		scorer:     scorer,
		detector:   detector,
		notifier:   notifier,
		cache:      cache,
		tickers:    universe,
		schedule:   schedule,
		logger:     log,
	}
}

// Name returns the job name
func (j *ScoringJob) Name() string {
	return "scoring_cycle"
}

// Schedule returns the cron schedule from config
func (j *ScoringJob) Schedule() string {
	return j.schedule
}

// Run executes one scoring cycle.
func (j *ScoringJob) Run(ctx context.Context) error {
	now := time.Now()

	cs, err := j.snapshots.LatestContracts(ctx, "")
	if err != nil {
		return fmt.Errorf("load latest snapshot: %w", err)
	}
	if len(j.tickers) > 0 {
		kept := cs[:0]
		for _, c := range cs {
			if j.tickers[c.Ticker] {
				kept = append(kept, c)
			}
		}
		cs = kept
	}
	if len(cs) == 0 {
		j.logger.Warn("No snapshot data available, skipping scoring cycle")
		return nil
	}

	// Previous cycle's walls, for alert comparison. Must be read
	// before the current levels are persisted.
	previous := map[string]*contracts.GammaLevels{}
	if prev, err := j.gammaRepo.Latest(ctx); err != nil {
		j.logger.WithError(err).Warn("Could not load previous gamma levels")
	} else {
		for ticker := range prev {
			p := prev[ticker]
			previous[ticker] = &p.GammaLevels
		}
	}

	levels := j.aggregator.Aggregate(cs)
	if err := j.gammaRepo.SaveLevels(ctx, levels, now); err != nil {
		return fmt.Errorf("save gamma levels: %w", err)
	}

	if j.detector != nil {
		detected := j.detector.Check(levels, previous)
		if j.notifier != nil {
			j.notifier.Dispatch(ctx, detected)
		}
	}

	analytics := make(map[string]*contracts.TickerAnalytics, len(levels))
	for ticker, byTicker := range contracts.GroupByTicker(cs) {
		price := 0.0
		if l, ok := levels[ticker]; ok {
			price = l.Price
		}
		analytics[ticker] = scoring.BuildAnalytics(byTicker, price)
	}

	recs := j.scorer.ScoreAll(ctx, cs, analytics, levels)

	entries := make([]contracts.RecommendationLogEntry, 0, len(recs))
	for i := range recs {
		entries = append(entries, recs[i].LogEntry())
	}
	if err := j.recs.SaveLog(ctx, entries, now); err != nil {
		return fmt.Errorf("save recommendation log: %w", err)
	}

	if j.cache != nil {
		if err := j.cache.Set(ctx, redis.RecommendationsKey(), scoring.Batch(recs, now), redis.TTLMedium); err != nil {
			j.logger.WithError(err).Warn("Could not cache recommendations")
		}
		if err := j.cache.Set(ctx, redis.GammaLevelsKey(), levels, redis.TTLMedium); err != nil {
			j.logger.WithError(err).Warn("Could not cache gamma levels")
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"tickers":   len(levels),
		"contracts": len(cs),
		"duration":  time.Since(now),
	}).Info("Scoring cycle completed")

	return nil
}
