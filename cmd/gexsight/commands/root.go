package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gexsight",
	Short: "GEXsight - options gamma exposure scanner",
	Long: `GEXsight CLI

Aggregates dealer gamma exposure from options chain snapshots, scores
tickers on a weighted nine-signal model, and maps the signal mix to a
defined-risk options strategy.

Usage:
  go run ./cmd/gexsight [command]

Examples:
  go run ./cmd/gexsight api
  go run ./cmd/gexsight score
  go run ./cmd/gexsight backtest --hours 48
  go run ./cmd/gexsight scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
