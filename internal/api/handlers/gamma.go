package handlers

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/hmartin/gexsight/internal/store"
	"github.com/hmartin/gexsight/pkg/logger"
	"github.com/hmartin/gexsight/pkg/redis"
)

const defaultHistoryHours = 24

// OIChangeSource provides open interest deltas from the snapshot store.
type OIChangeSource interface {
	OIChanges(ctx context.Context, ticker string, interval time.Duration) ([]store.OIChange, error)
}

// GammaHandler serves gamma wall levels and their history
type GammaHandler struct {
	repo      *store.GammaRepository
	snapshots OIChangeSource
	cache     *redis.Cache
	logger    *logger.Logger
}

// NewGammaHandler creates a new gamma levels handler
func NewGammaHandler(repo *store.GammaRepository, snapshots OIChangeSource, cache *redis.Cache, log *logger.Logger) *GammaHandler {
	return &GammaHandler{repo: repo, snapshots: snapshots, cache: cache, logger: log}
}

// GetTickers returns the tickers present in the latest cycle
// GET /api/tickers
func (h *GammaHandler) GetTickers(w http.ResponseWriter, r *http.Request) {
	levels, err := h.repo.Latest(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest gamma levels")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve tickers")
		return
	}

	tickers := make([]string, 0, len(levels))
	for ticker := range levels {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tickers": tickers,
		"count":   len(tickers),
	})
}

// GetAll returns the latest gamma levels for every ticker
// GET /api/gamma-levels
func (h *GammaHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cached map[string]store.LatestLevels
	if h.cache != nil {
		if found, err := h.cache.Get(ctx, redis.GammaLevelsKey(), &cached); err == nil && found {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	levels, err := h.repo.Latest(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest gamma levels")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve gamma levels")
		return
	}

	respondJSON(w, http.StatusOK, levels)
}

// GetTicker returns the latest gamma levels for one ticker
// GET /api/gamma-levels/{ticker}
func (h *GammaHandler) GetTicker(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	levels, err := h.repo.Latest(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest gamma levels")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve gamma levels")
		return
	}

	l, ok := levels[ticker]
	if !ok {
		respondError(w, http.StatusNotFound, "No gamma levels for ticker "+ticker)
		return
	}

	respondJSON(w, http.StatusOK, l)
}

// GetHistory returns a ticker's gamma level time series
// GET /api/history/{ticker}?hours=24
func (h *GammaHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])
	hours := parseHours(r, defaultHistoryHours)

	points, err := h.repo.History(r.Context(), ticker, hours)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load gamma history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}
	if len(points) == 0 {
		respondError(w, http.StatusNotFound, "No history for ticker "+ticker)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker": ticker,
		"hours":  hours,
		"points": points,
	})
}

// GetFlips returns a ticker's GEX sign flip events
// GET /api/flips/{ticker}?hours=24
func (h *GammaHandler) GetFlips(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])
	hours := parseHours(r, defaultHistoryHours)

	flips, err := h.repo.FlipEvents(r.Context(), ticker, hours)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load flip events")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve flip events")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker": ticker,
		"hours":  hours,
		"flips":  flips,
	})
}

// GetOIChanges returns open interest deltas per strike for a ticker
// GET /api/oi-changes/{ticker}?hours=24
func (h *GammaHandler) GetOIChanges(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])
	hours := parseHours(r, defaultHistoryHours)

	changes, err := h.snapshots.OIChanges(r.Context(), ticker, time.Duration(hours)*time.Hour)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load OI changes")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve OI changes")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  ticker,
		"hours":   hours,
		"changes": changes,
		"count":   len(changes),
	})
}

// parseHours reads the hours query parameter, falling back to def for
// missing or invalid values.
func parseHours(r *http.Request, def int) int {
	raw := r.URL.Query().Get("hours")
	if raw == "" {
		return def
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return def
	}
	return hours
}
