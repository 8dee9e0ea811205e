package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hmartin/gexsight/internal/api"
	"github.com/hmartin/gexsight/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API and WebSocket server.

Endpoints:
  GET  /health                          - Health check
  GET  /api/tickers                     - Tickers in the latest cycle
  GET  /api/gamma-levels                - Latest gamma walls, all tickers
  GET  /api/gamma-levels/{ticker}       - Latest gamma walls, one ticker
  GET  /api/history/{ticker}            - Gamma level time series
  GET  /api/flips/{ticker}              - GEX sign flip events
  GET  /api/oi-changes/{ticker}         - Open interest deltas per strike
  GET  /api/recommendations             - Latest scored recommendations
  GET  /api/recommendations/{ticker}    - One ticker's recommendation
  GET  /api/recommendations/backtest    - Hit rates by score tier
  GET  /api/alerts/recent               - Recent alert history
  WS   /ws/alerts                       - Live alert stream

Example:
  go run ./cmd/gexsight api
  go run ./cmd/gexsight api --port 8090`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== GEXsight API Server ===")

	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	healthHandler := handlers.NewHealthHandler(a.db, a.snapshots, a.log)
	gammaHandler := handlers.NewGammaHandler(a.gammaRepo, a.snapshots, a.cache, a.log)
	recHandler := handlers.NewRecommendationHandler(a.cache, a.evaluator, a.log)
	alertHandler := handlers.NewAlertHandler(a.alertRepo, a.log)

	router := api.NewRouter(healthHandler, gammaHandler, recHandler, alertHandler, a.hub, a.log)
	server := api.New(a.cfg, a.log, router)

	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	a.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
