// Package scoring turns options chain data into scored trade
// recommendations. Each ticker receives a score 0-100 built from nine
// weighted signals, with adaptive thresholds sourced from the ticker's
// own history.
package scoring

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hmartin/gexsight/internal/contracts"
	"github.com/hmartin/gexsight/internal/strategy"
	"github.com/hmartin/gexsight/pkg/logger"
)

// HistoryProvider supplies per-ticker historical context for adaptive
// scoring. Implementations must degrade to a neutral context instead of
// failing when history is unavailable.
type HistoryProvider interface {
	Fetch(ctx context.Context, ticker string) contracts.HistoricalContext
}

// Scorer produces recommendations from contracts, strike analytics, and
// gamma levels.
type Scorer struct {
	history HistoryProvider
	log     *logger.Logger
}

// New creates a Scorer. history may be nil, in which case every ticker
// is scored against a neutral context.
func New(history HistoryProvider, log *logger.Logger) *Scorer {
	return &Scorer{history: history, log: log}
}

// ScoreTicker scores a single ticker and produces a recommendation.
// Missing inputs degrade individual signals to their no-data scores
// rather than failing the ticker.
func (s *Scorer) ScoreTicker(
	ticker string,
	cs []contracts.Contract,
	analytics *contracts.TickerAnalytics,
	levels *contracts.GammaLevels,
	hist contracts.HistoricalContext,
	now time.Time,
) contracts.Recommendation {
	var price float64
	if analytics != nil {
		price = analytics.Price
	}

	var callWall, putWall *float64
	var netGEX float64
	if levels != nil {
		callWall = levels.CallWallStrike
		putWall = levels.PutWallStrike
		netGEX = levels.NetGEX()
	}

	dteMult := ComputeDTEWeight(cs, price, now)

	pcScore, skewLabel := scorePCSkew(cs, price, now)
	biasScore, biasDir := scoreDirectionalBias(analytics, price)

	signals := []contracts.SignalScore{
		scoreGexRegime(netGEX, hist.GexPercentile),
		scoreWallProximity(price, callWall, putWall),
		pcScore,
		scoreVolumeOISurge(cs, price, now),
		scoreIVRank(hist.IVRank),
		biasScore,
		scoreGexMomentum(hist.Momentum),
		scoreSkewMomentum(cs, price, hist.PreviousPCRatio),
		scoreDTEConviction(dteMult),
	}

	total := 0
	for _, sig := range signals {
		total += sig.Score
	}
	if total < 0 {
		total = 0
	} else if total > 100 {
		total = 100
	}

	regime := strategy.RegimePositive
	if netGEX < 0 {
		regime = strategy.RegimeNegative
	}

	wallPos := strategy.MidRange
	if price > 0 && callWall != nil && wallDistPct(price, *callWall) <= 3 {
		wallPos = strategy.NearCallWall
	} else if price > 0 && putWall != nil && wallDistPct(price, *putWall) <= 3 {
		wallPos = strategy.NearPutWall
	}

	skew := strategy.SkewNeutral
	if skewLabel == SkewPutHeavy || biasDir == contracts.DirectionBearish {
		skew = strategy.SkewBearish
	} else if skewLabel == SkewCallHeavy || biasDir == contracts.DirectionBullish {
		skew = strategy.SkewBullish
	}

	strat := strategy.Select(regime, wallPos, skew)

	return contracts.Recommendation{
		Ticker:       ticker,
		Score:        total,
		Direction:    strat.Direction,
		PlayType:     strat.PlayType,
		Reasoning:    buildReasoning(strat, signals),
		RiskNotes:    buildRiskNotes(regime, wallPos, skewLabel, total, hist.IVRank),
		Signals:      signals,
		Timestamp:    now,
		PriceAtScore: price,
		IVRankValue:  hist.IVRank,
		NetGEXValue:  netGEX,
	}
}

// ScoreAll scores every ticker present in any of the three inputs and
// returns recommendations sorted by score, highest first.
func (s *Scorer) ScoreAll(
	ctx context.Context,
	all []contracts.Contract,
	analyticsData map[string]*contracts.TickerAnalytics,
	gammaData map[string]*contracts.GammaLevels,
) []contracts.Recommendation {
	byTicker := contracts.GroupByTicker(all)

	seen := make(map[string]struct{})
	for t := range byTicker {
		seen[t] = struct{}{}
	}
	for t := range analyticsData {
		seen[t] = struct{}{}
	}
	for t := range gammaData {
		seen[t] = struct{}{}
	}

	tickers := make([]string, 0, len(seen))
	for t := range seen {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	now := time.Now()
	recs := make([]contracts.Recommendation, 0, len(tickers))
	for _, ticker := range tickers {
		if rec, ok := s.scoreOne(ctx, ticker, byTicker[ticker], analyticsData[ticker], gammaData[ticker], now); ok {
			recs = append(recs, rec)
		}
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })

	if s.log != nil {
		top := make([]string, 0, 5)
		for i, r := range recs {
			if i == 5 {
				break
			}
			top = append(top, fmt.Sprintf("%s(%d)", r.Ticker, r.Score))
		}
		s.log.Infof("Scored %d tickers. Top 5: %s", len(recs), strings.Join(top, ", "))
	}

	return recs
}

// scoreOne scores a single ticker. A panic anywhere in the signal
// pipeline is converted into a skipped ticker so one bad input cannot
// abort the whole batch.
func (s *Scorer) scoreOne(
	ctx context.Context,
	ticker string,
	cs []contracts.Contract,
	analytics *contracts.TickerAnalytics,
	gamma *contracts.GammaLevels,
	now time.Time,
) (rec contracts.Recommendation, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if s.log != nil {
				s.log.Errorf("Scoring %s panicked, skipping: %v", ticker, r)
			}
			ok = false
		}
	}()

	hist := contracts.NeutralContext()
	if s.history != nil {
		hist = s.history.Fetch(ctx, ticker)
	}
	return s.ScoreTicker(ticker, cs, analytics, gamma, hist, now), true
}

// Batch wraps recommendations in the serialized output envelope.
func Batch(recs []contracts.Recommendation, generatedAt time.Time) contracts.RecommendationBatch {
	return contracts.RecommendationBatch{
		GeneratedAt:     generatedAt,
		TotalTickers:    len(recs),
		Disclaimer:      contracts.Disclaimer,
		Recommendations: recs,
	}
}

func wallDistPct(price, strike float64) float64 {
	d := price - strike
	if d < 0 {
		d = -d
	}
	return d / price * 100
}

// buildReasoning prepends the strategy description to the three
// strongest signals. Ties keep signal declaration order.
func buildReasoning(strat contracts.StrategyRecommendation, signals []contracts.SignalScore) string {
	top := make([]contracts.SignalScore, len(signals))
	copy(top, signals)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Score > top[j].Score })

	parts := make([]string, 0, 3)
	for i, sig := range top {
		if i == 3 {
			break
		}
		parts = append(parts, fmt.Sprintf("[%s: %d/%d] %s", sig.Name, sig.Score, sig.MaxScore, sig.Detail))
	}

	return fmt.Sprintf("%s. Top signals: %s", strat.Description, strings.Join(parts, " | "))
}

func buildRiskNotes(regime strategy.Regime, wallPos strategy.WallPosition, skewLabel Skew, total int, ivRank float64) string {
	var parts []string
	if regime == strategy.RegimeNegative {
		parts = append(parts, "Negative GEX = volatile regime, wider stops needed")
	}
	if wallPos == strategy.MidRange {
		parts = append(parts, "No nearby gamma wall support/resistance")
	}
	if skewLabel == SkewBalanced {
		parts = append(parts, "No clear directional conviction from OI skew")
	}
	if total < 40 {
		parts = append(parts, "Low overall signal strength, consider smaller position")
	}
	if ivRank > 0.8 {
		parts = append(parts, "IV elevated, premium expensive, define risk carefully")
	}
	if len(parts) == 0 {
		return "Standard risk management applies"
	}
	return strings.Join(parts, "; ")
}
