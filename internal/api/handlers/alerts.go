package handlers

import (
	"net/http"
	"strconv"

	"github.com/hmartin/gexsight/internal/store"
	"github.com/hmartin/gexsight/pkg/logger"
)

const (
	defaultAlertHours = 24
	defaultAlertLimit = 100
)

// AlertHandler serves the alert history
type AlertHandler struct {
	repo   *store.AlertRepository
	logger *logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(repo *store.AlertRepository, log *logger.Logger) *AlertHandler {
	return &AlertHandler{repo: repo, logger: log}
}

// Recent returns alerts fired within the lookback window
// GET /api/alerts/recent?hours=24&limit=100
func (h *AlertHandler) Recent(w http.ResponseWriter, r *http.Request) {
	hours := parseHours(r, defaultAlertHours)

	limit := defaultAlertLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.repo.Recent(r.Context(), hours, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load recent alerts")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve alerts")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"hours":  hours,
		"count":  len(records),
		"alerts": records,
	})
}
