package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/hmartin/gexsight/internal/alerts"
	"github.com/hmartin/gexsight/internal/backtest"
	"github.com/hmartin/gexsight/internal/gamma"
	"github.com/hmartin/gexsight/internal/history"
	"github.com/hmartin/gexsight/internal/realtime"
	"github.com/hmartin/gexsight/internal/scheduler/jobs"
	"github.com/hmartin/gexsight/internal/scoring"
	"github.com/hmartin/gexsight/internal/store"
	"github.com/hmartin/gexsight/pkg/config"
	"github.com/hmartin/gexsight/pkg/database"
	"github.com/hmartin/gexsight/pkg/httputil"
	"github.com/hmartin/gexsight/pkg/logger"
	"github.com/hmartin/gexsight/pkg/redis"
)

// app bundles the wired dependency graph shared by the CLI commands.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	redis *redis.Client
	cache *redis.Cache

	snapshots *store.SnapshotRepository
	gammaRepo *store.GammaRepository
	recRepo   *store.RecommendationRepository
	alertRepo *store.AlertRepository
	pruner    *store.Pruner

	aggregator *gamma.Aggregator
	scorer     *scoring.Scorer
	detector   *alerts.Detector
	notifier   *alerts.Notifier
	evaluator  *backtest.Evaluator
	hub        *realtime.Hub
}

// initApp loads config and wires every component. The returned app owns
// the database and redis connections; call close when done.
func initApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.EnsureSchema(ctx, db.Pool); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, caching disabled")
		redisClient = nil
	}
	var cache *redis.Cache
	var limiter *redis.RateLimiter
	if redisClient != nil {
		cache = redis.NewCache(redisClient, "gexsight")
		limiter = redis.NewRateLimiter(redisClient, "gexsight")
	}

	a := &app{
		cfg:   cfg,
		log:   log,
		db:    db,
		redis: redisClient,
		cache: cache,
	}

	a.snapshots = store.NewSnapshotRepository(db.Pool, log)
	a.gammaRepo = store.NewGammaRepository(db.Pool, log)
	a.recRepo = store.NewRecommendationRepository(db.Pool, log)
	a.alertRepo = store.NewAlertRepository(db.Pool, log)
	a.pruner = store.NewPruner(db.Pool, log)

	a.aggregator = gamma.NewAggregator(log)
	a.evaluator = backtest.NewEvaluator(a.recRepo, log)
	a.hub = realtime.NewHub(log)

	histProvider := history.NewProvider(history.NewRepository(db.Pool), cache, log)
	a.scorer = scoring.New(histProvider, log)

	if cfg.Alerts.Enabled {
		a.detector = alerts.NewDetector(cfg.Alerts.WallProximityPct, log)
		a.notifier = alerts.NewNotifier(alerts.NotifierConfig{
			DiscordWebhook:   cfg.Alerts.DiscordWebhook,
			TelegramBotToken: cfg.Alerts.TelegramBotToken,
			TelegramChatID:   cfg.Alerts.TelegramChatID,
		}, httputil.New(cfg, log), limiter, a.alertRepo, a.hub, log)
	}

	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
	a.db.Close()
}

// scoringJob builds the full scoring cycle job from the wired graph.
func (a *app) scoringJob() *jobs.ScoringJob {
	return jobs.NewScoringJob(
		a.snapshots,
		a.gammaRepo,
		a.recRepo,
		a.aggregator,
		a.scorer,
		a.detector,
		a.notifier,
		a.cache,
		a.cfg.Scoring.Tickers,
		a.cfg.Scoring.ScoreSchedule,
		a.log,
	)
}
