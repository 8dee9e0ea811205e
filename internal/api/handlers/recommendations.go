package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/hmartin/gexsight/internal/backtest"
	"github.com/hmartin/gexsight/internal/contracts"
	"github.com/hmartin/gexsight/pkg/logger"
	"github.com/hmartin/gexsight/pkg/redis"
)

const defaultBacktestHours = 24

// RecommendationHandler serves the latest scored recommendations and
// backtest reports
type RecommendationHandler struct {
	cache     *redis.Cache
	evaluator *backtest.Evaluator
	logger    *logger.Logger
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(cache *redis.Cache, evaluator *backtest.Evaluator, log *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{cache: cache, evaluator: evaluator, logger: log}
}

// GetAll returns the latest recommendation batch
// GET /api/recommendations
func (h *RecommendationHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.latestBatch(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

// GetTicker returns the latest recommendation for one ticker
// GET /api/recommendations/{ticker}
func (h *RecommendationHandler) GetTicker(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	batch, ok := h.latestBatch(w, r)
	if !ok {
		return
	}

	for i := range batch.Recommendations {
		if batch.Recommendations[i].Ticker == ticker {
			respondJSON(w, http.StatusOK, batch.Recommendations[i])
			return
		}
	}

	respondError(w, http.StatusNotFound, "No recommendation for ticker "+ticker)
}

// Backtest evaluates logged recommendations against realized returns
// GET /api/recommendations/backtest?hours=24
func (h *RecommendationHandler) Backtest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hours := parseHours(r, defaultBacktestHours)

	if h.cache != nil {
		var cached contracts.BacktestReport
		if found, err := h.cache.Get(ctx, redis.BacktestKey(hours), &cached); err == nil && found {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	report, err := h.evaluator.Evaluate(ctx, hours)
	if err != nil {
		h.logger.WithError(err).Error("Backtest evaluation failed")
		respondError(w, http.StatusInternalServerError, "Failed to evaluate recommendations")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, redis.BacktestKey(hours), report, redis.TTLShort); err != nil {
			h.logger.WithError(err).Warn("Could not cache backtest report")
		}
	}

	respondJSON(w, http.StatusOK, report)
}

// latestBatch loads the most recent recommendation batch from cache.
// Writes the error response itself and returns false when unavailable.
func (h *RecommendationHandler) latestBatch(w http.ResponseWriter, r *http.Request) (*contracts.RecommendationBatch, bool) {
	if h.cache == nil {
		respondError(w, http.StatusServiceUnavailable, "Recommendation cache not available")
		return nil, false
	}

	var batch contracts.RecommendationBatch
	found, err := h.cache.Get(r.Context(), redis.RecommendationsKey(), &batch)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read recommendation cache")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve recommendations")
		return nil, false
	}
	if !found {
		respondError(w, http.StatusNotFound, "No recommendations generated yet")
		return nil, false
	}

	return &batch, true
}
