package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Evaluate past recommendations",
	Long: `Compares logged recommendations against realized price moves and
prints hit rates by score tier and direction.

Example:
  go run ./cmd/gexsight backtest
  go run ./cmd/gexsight backtest --hours 48`,
	RunE: runBacktest,
}

var backtestHours int

func init() {
	rootCmd.AddCommand(backtestCmd)

	// Flags
	backtestCmd.Flags().IntVar(&backtestHours, "hours", 0, "lookback window in hours (default from config)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== GEXsight Backtest ===")

	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	hours := backtestHours
	if hours <= 0 {
		hours = a.cfg.Scoring.BacktestHours
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	report, err := a.evaluator.Evaluate(ctx, hours)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	if report.Message != "" {
		fmt.Printf("\n%s\n", report.Message)
		return nil
	}

	fmt.Printf("\nLookback: %dh  Recommendations: %d\n", report.LookbackHours, report.TotalRecommendations)

	fmt.Println("\nBy score tier:")
	for _, tier := range []string{"80-100", "60-79", "40-59", "0-39"} {
		stats, ok := report.ByScoreTier[tier]
		if !ok || stats.Count == 0 {
			continue
		}
		fmt.Printf("  %-7s count=%-4d hit=%5.1f%%  avg return=%+.3f%%\n",
			tier, stats.Count, stats.HitRate, stats.AvgReturn)
	}

	acc := report.Accuracy
	fmt.Println("\nDirectional accuracy:")
	fmt.Printf("  Bullish: %5.1f%% (%d)\n", acc.BullishHitRate, acc.BullishTotal)
	fmt.Printf("  Bearish: %5.1f%% (%d)\n", acc.BearishHitRate, acc.BearishTotal)
	fmt.Printf("  Overall: %5.1f%% (%d neutral excluded: %d)\n",
		acc.OverallHitRate, report.TotalRecommendations, acc.NeutralTotal)

	return nil
}
