package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Run one scoring cycle",
	Long: `Runs a single scoring cycle against the latest snapshot:
aggregate gamma walls, detect alerts, score every ticker, and persist
the recommendation log.

Example:
  go run ./cmd/gexsight score`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	fmt.Println("=== GEXsight Scoring Cycle ===")

	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	if err := a.scoringJob().Run(ctx); err != nil {
		return fmt.Errorf("scoring cycle: %w", err)
	}

	fmt.Printf("\n✅ Scoring cycle completed in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}
