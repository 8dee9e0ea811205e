// Package handlers implements the HTTP API handlers.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hmartin/gexsight/pkg/database"
	"github.com/hmartin/gexsight/pkg/logger"
)

// HealthChecker reports database pool health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// SnapshotInfo reports when option chain data last arrived.
type SnapshotInfo interface {
	LatestSnapshotTime(ctx context.Context) (*time.Time, error)
}

// HealthHandler reports service, database, and data freshness health
type HealthHandler struct {
	db        HealthChecker
	snapshots SnapshotInfo
	logger    *logger.Logger
}

// NewHealthHandler creates a new health handler. snapshots may be nil.
func NewHealthHandler(db HealthChecker, snapshots SnapshotInfo, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, snapshots: snapshots, logger: log}
}

// Check returns server and database health status
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]interface{}{
		"status":    "ok",
		"service":   "gexsight-api",
		"timestamp": time.Now().UTC(),
	}

	dbHealth, err := h.db.HealthCheck(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Database health check failed")
		status["status"] = "degraded"
		status["database"] = map[string]string{"status": "down", "error": err.Error()}
		respondJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	status["database"] = dbHealth

	if h.snapshots != nil {
		latest, err := h.snapshots.LatestSnapshotTime(ctx)
		switch {
		case err != nil:
			h.logger.WithError(err).Warn("Could not read latest snapshot time")
		case latest == nil:
			status["last_snapshot"] = nil
		default:
			status["last_snapshot"] = latest.UTC()
			status["snapshot_age_seconds"] = int(time.Since(*latest).Seconds())
		}
	}

	respondJSON(w, http.StatusOK, status)
}

// Helper functions shared by all handlers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
