// Package backtest compares logged recommendations against realized
// price outcomes.
package backtest

import (
	"context"
	"math"

	"github.com/hmartin/gexsight/internal/contracts"
	"github.com/hmartin/gexsight/pkg/logger"
)

// Score tiers for grouping outcomes.
var tierNames = []string{"80-100", "60-79", "40-59", "0-39"}

// Neutral calls are considered correct when the move stayed inside this
// absolute return band.
const neutralBandPct = 0.5

// maxReportedOutcomes caps the individual outcomes included in a report.
const maxReportedOutcomes = 50

// OutcomeProvider joins logged recommendations with the latest realized
// prices.
type OutcomeProvider interface {
	Outcomes(ctx context.Context, hours int) ([]contracts.Outcome, error)
}

// Evaluator scores past recommendations against what price actually did.
type Evaluator struct {
	provider OutcomeProvider
	log      *logger.Logger
}

func NewEvaluator(provider OutcomeProvider, log *logger.Logger) *Evaluator {
	return &Evaluator{provider: provider, log: log}
}

// Evaluate pulls recommendation outcomes over the lookback window and
// computes directional hit rates, overall and per score tier.
func (e *Evaluator) Evaluate(ctx context.Context, hours int) (*contracts.BacktestReport, error) {
	outcomes, err := e.provider.Outcomes(ctx, hours)
	if err != nil {
		if e.log != nil {
			e.log.WithError(err).Warn("Cannot run backtest")
		}
		return nil, err
	}

	if len(outcomes) == 0 {
		return &contracts.BacktestReport{
			LookbackHours: hours,
			Message:       "No recommendation data yet. Run a few scoring cycles to build history.",
			ByScoreTier:   map[string]contracts.TierStats{},
			Outcomes:      []contracts.Outcome{},
		}, nil
	}

	report := Summarize(outcomes, hours)

	if e.log != nil {
		e.log.Infof("Backtest: %d recs, overall hit rate: %.1f%%",
			report.TotalRecommendations, report.Accuracy.OverallHitRate)
	}

	return report, nil
}

// Summarize computes the report for an already-fetched outcome set.
func Summarize(outcomes []contracts.Outcome, hours int) *contracts.BacktestReport {
	var bullishCorrect, bullishTotal int
	var bearishCorrect, bearishTotal int
	var neutralTotal int

	type tierAcc struct {
		count   int
		correct int
		returns []float64
	}
	tiers := make(map[string]*tierAcc, len(tierNames))
	for _, name := range tierNames {
		tiers[name] = &tierAcc{}
	}

	for _, o := range outcomes {
		tier := tierFor(o.Score)
		t := tiers[tier]
		t.count++
		t.returns = append(t.returns, o.ReturnPct)

		switch o.Direction {
		case contracts.DirectionBullish:
			bullishTotal++
			if o.ReturnPct > 0 {
				bullishCorrect++
				t.correct++
			}
		case contracts.DirectionBearish:
			bearishTotal++
			if o.ReturnPct < 0 {
				bearishCorrect++
				t.correct++
			}
		default:
			neutralTotal++
			if math.Abs(o.ReturnPct) < neutralBandPct {
				t.correct++
			}
		}
	}

	byTier := make(map[string]contracts.TierStats, len(tiers))
	for name, t := range tiers {
		stats := contracts.TierStats{Count: t.count, Correct: t.correct}
		if len(t.returns) > 0 {
			var sum float64
			for _, r := range t.returns {
				sum += r
			}
			stats.AvgReturn = round3(sum / float64(len(t.returns)))
			stats.HitRate = hitRate(t.correct, t.count)
		}
		byTier[name] = stats
	}

	totalDirectional := bullishTotal + bearishTotal
	totalCorrect := bullishCorrect + bearishCorrect

	reported := outcomes
	if len(reported) > maxReportedOutcomes {
		reported = reported[:maxReportedOutcomes]
	}

	return &contracts.BacktestReport{
		TotalRecommendations: len(outcomes),
		LookbackHours:        hours,
		Accuracy: contracts.Accuracy{
			BullishHitRate: hitRate(bullishCorrect, bullishTotal),
			BearishHitRate: hitRate(bearishCorrect, bearishTotal),
			OverallHitRate: hitRate(totalCorrect, totalDirectional),
			BullishTotal:   bullishTotal,
			BearishTotal:   bearishTotal,
			NeutralTotal:   neutralTotal,
		},
		ByScoreTier: byTier,
		Outcomes:    reported,
	}
}

func tierFor(score int) string {
	switch {
	case score >= 80:
		return "80-100"
	case score >= 60:
		return "60-79"
	case score >= 40:
		return "40-59"
	default:
		return "0-39"
	}
}

// hitRate returns correct/total as a percentage rounded to one decimal,
// or 0 when there were no attempts.
func hitRate(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(correct) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
