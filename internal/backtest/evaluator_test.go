package backtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmartin/gexsight/internal/contracts"
	"github.com/hmartin/gexsight/pkg/config"
	"github.com/hmartin/gexsight/pkg/logger"
)

type stubProvider struct {
	outcomes []contracts.Outcome
	err      error
}

func (s *stubProvider) Outcomes(_ context.Context, _ int) ([]contracts.Outcome, error) {
	return s.outcomes, s.err
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "console"})
}

func TestEvaluate_NoData(t *testing.T) {
	e := NewEvaluator(&stubProvider{}, testLogger())

	report, err := e.Evaluate(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, "No recommendation data yet. Run a few scoring cycles to build history.", report.Message)
	assert.Equal(t, 0, report.TotalRecommendations)
	assert.Equal(t, 24, report.LookbackHours)
	assert.NotNil(t, report.ByScoreTier)
	assert.NotNil(t, report.Outcomes)
}

func TestEvaluate_ProviderError(t *testing.T) {
	e := NewEvaluator(&stubProvider{err: errors.New("connection refused")}, testLogger())

	report, err := e.Evaluate(context.Background(), 24)
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestSummarize_DirectionalHitRates(t *testing.T) {
	outcomes := []contracts.Outcome{
		{Ticker: "A", Score: 85, Direction: contracts.DirectionBullish, ReturnPct: 1.2},
		{Ticker: "B", Score: 85, Direction: contracts.DirectionBullish, ReturnPct: -0.4},
		{Ticker: "C", Score: 85, Direction: contracts.DirectionBullish, ReturnPct: 0.8},
		{Ticker: "D", Score: 65, Direction: contracts.DirectionBearish, ReturnPct: -2.0},
		{Ticker: "E", Score: 65, Direction: contracts.DirectionBearish, ReturnPct: 0.5},
		{Ticker: "F", Score: 45, Direction: contracts.DirectionNeutral, ReturnPct: 0.2},
		{Ticker: "G", Score: 20, Direction: contracts.DirectionNeutral, ReturnPct: 1.5},
	}

	report := Summarize(outcomes, 24)

	assert.Equal(t, 7, report.TotalRecommendations)

	// 2/3 bullish hits, 1/2 bearish hits, 3/5 directional overall
	assert.InDelta(t, 66.7, report.Accuracy.BullishHitRate, 1e-9)
	assert.InDelta(t, 50.0, report.Accuracy.BearishHitRate, 1e-9)
	assert.InDelta(t, 60.0, report.Accuracy.OverallHitRate, 1e-9)
	assert.Equal(t, 3, report.Accuracy.BullishTotal)
	assert.Equal(t, 2, report.Accuracy.BearishTotal)
	assert.Equal(t, 2, report.Accuracy.NeutralTotal)
}

func TestSummarize_ScoreTiers(t *testing.T) {
	outcomes := []contracts.Outcome{
		{Score: 92, Direction: contracts.DirectionBullish, ReturnPct: 1.0},
		{Score: 80, Direction: contracts.DirectionBullish, ReturnPct: -1.0},
		{Score: 70, Direction: contracts.DirectionBearish, ReturnPct: -0.5},
		{Score: 45, Direction: contracts.DirectionNeutral, ReturnPct: 0.1},
		{Score: 10, Direction: contracts.DirectionNeutral, ReturnPct: 3.0},
	}

	report := Summarize(outcomes, 24)

	require.Len(t, report.ByScoreTier, 4)

	top := report.ByScoreTier["80-100"]
	assert.Equal(t, 2, top.Count)
	assert.Equal(t, 1, top.Correct)
	assert.InDelta(t, 50.0, top.HitRate, 1e-9)
	assert.InDelta(t, 0.0, top.AvgReturn, 1e-9)

	mid := report.ByScoreTier["60-79"]
	assert.Equal(t, 1, mid.Count)
	assert.Equal(t, 1, mid.Correct)
	assert.InDelta(t, 100.0, mid.HitRate, 1e-9)
	assert.InDelta(t, -0.5, mid.AvgReturn, 1e-9)

	// Neutral inside the band counts as correct, outside does not
	assert.Equal(t, 1, report.ByScoreTier["40-59"].Correct)
	assert.Equal(t, 0, report.ByScoreTier["0-39"].Correct)

	// Empty tiers report zeros, not NaN
	for name, stats := range report.ByScoreTier {
		if stats.Count == 0 {
			assert.Zero(t, stats.HitRate, "tier %s", name)
			assert.Zero(t, stats.AvgReturn, "tier %s", name)
		}
	}
}

func TestSummarize_NoDirectionalCalls(t *testing.T) {
	outcomes := []contracts.Outcome{
		{Score: 50, Direction: contracts.DirectionNeutral, ReturnPct: 0.1},
	}

	report := Summarize(outcomes, 24)

	// Zero denominators report 0 rather than dividing by zero
	assert.Zero(t, report.Accuracy.BullishHitRate)
	assert.Zero(t, report.Accuracy.BearishHitRate)
	assert.Zero(t, report.Accuracy.OverallHitRate)
}

func TestSummarize_CapsReportedOutcomes(t *testing.T) {
	outcomes := make([]contracts.Outcome, 120)
	for i := range outcomes {
		outcomes[i] = contracts.Outcome{Score: 50, Direction: contracts.DirectionBullish, ReturnPct: 1}
	}

	report := Summarize(outcomes, 24)

	assert.Equal(t, 120, report.TotalRecommendations)
	assert.Len(t, report.Outcomes, 50)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score int
		tier  string
	}{
		{100, "80-100"}, {80, "80-100"},
		{79, "60-79"}, {60, "60-79"},
		{59, "40-59"}, {40, "40-59"},
		{39, "0-39"}, {0, "0-39"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.tier, tierFor(tt.score), "score %d", tt.score)
	}
}
