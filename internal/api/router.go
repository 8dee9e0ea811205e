package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/hmartin/gexsight/internal/api/handlers"
	"github.com/hmartin/gexsight/internal/realtime"
	"github.com/hmartin/gexsight/pkg/logger"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	health *handlers.HealthHandler,
	gammaHandler *handlers.GammaHandler,
	recHandler *handlers.RecommendationHandler,
	alertHandler *handlers.AlertHandler,
	hub *realtime.Hub,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", health.Check).Methods("GET")

	// WebSocket alert stream (no middleware: the upgrader owns the
	// connection once hijacked)
	r.HandleFunc("/ws/alerts", hub.ServeWS)

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/tickers", gammaHandler.GetTickers).Methods("GET")
	api.HandleFunc("/gamma-levels", gammaHandler.GetAll).Methods("GET")
	api.HandleFunc("/gamma-levels/{ticker}", gammaHandler.GetTicker).Methods("GET")
	api.HandleFunc("/history/{ticker}", gammaHandler.GetHistory).Methods("GET")
	api.HandleFunc("/flips/{ticker}", gammaHandler.GetFlips).Methods("GET")
	api.HandleFunc("/oi-changes/{ticker}", gammaHandler.GetOIChanges).Methods("GET")

	api.HandleFunc("/recommendations", recHandler.GetAll).Methods("GET")
	api.HandleFunc("/recommendations/backtest", recHandler.Backtest).Methods("GET")
	api.HandleFunc("/recommendations/{ticker}", recHandler.GetTicker).Methods("GET")

	api.HandleFunc("/alerts/recent", alertHandler.Recent).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
