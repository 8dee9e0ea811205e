package contracts

import "time"

// Direction is the directional call attached to a recommendation.
const (
	DirectionBullish = "BULLISH"
	DirectionBearish = "BEARISH"
	DirectionNeutral = "NEUTRAL"
)

// Disclaimer is attached to every serialized recommendation batch.
const Disclaimer = "NOT financial advice. Scores reflect signal strength for educational purposes only."

// SignalScore is one sub-signal's contribution to a recommendation.
type SignalScore struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`     // 0..MaxScore
	MaxScore int    `json:"max_score"` // the signal's weight
	Detail   string `json:"detail"`
}

// StrategyRecommendation is a suggested options play for a signal
// combination.
type StrategyRecommendation struct {
	PlayType    string `json:"play_type"`
	Direction   string `json:"direction"`
	Description string `json:"description"`
	RiskProfile string `json:"risk_profile"`
}

// Recommendation is the scored output for one ticker in one cycle.
// Created once per cycle and appended to the recommendation log; never
// mutated afterwards.
type Recommendation struct {
	Ticker       string        `json:"ticker"`
	Score        int           `json:"score"` // 0..100
	Direction    string        `json:"direction"`
	PlayType     string        `json:"play_type"`
	Reasoning    string        `json:"reasoning"`
	RiskNotes    string        `json:"risk_notes"`
	Signals      []SignalScore `json:"signals"`
	Timestamp    time.Time     `json:"timestamp"`
	PriceAtScore float64       `json:"price_at_score"`
	IVRankValue  float64       `json:"iv_rank_value"`
	NetGEXValue  float64       `json:"net_gex_value"`
}

// RecommendationBatch is the JSON payload produced per cycle.
type RecommendationBatch struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	TotalTickers    int              `json:"total_tickers"`
	Disclaimer      string           `json:"disclaimer"`
	Recommendations []Recommendation `json:"recommendations"`
}

// RecommendationLogEntry is the persisted write-once record consumed by
// the backtester.
type RecommendationLogEntry struct {
	Ticker       string    `json:"ticker"`
	Score        int       `json:"score"`
	Direction    string    `json:"direction"`
	PlayType     string    `json:"play_type"`
	PriceAtScore float64   `json:"price_at_score"`
	NetGEX       float64   `json:"net_gex"`
	IVRank       float64   `json:"iv_rank"`
	Timestamp    time.Time `json:"timestamp"`
}

// LogEntry converts a recommendation into its persisted form.
func (r *Recommendation) LogEntry() RecommendationLogEntry {
	return RecommendationLogEntry{
		Ticker:       r.Ticker,
		Score:        r.Score,
		Direction:    r.Direction,
		PlayType:     r.PlayType,
		PriceAtScore: r.PriceAtScore,
		NetGEX:       r.NetGEXValue,
		IVRank:       r.IVRankValue,
		Timestamp:    r.Timestamp,
	}
}

// Outcome joins a logged recommendation with the latest realized price.
type Outcome struct {
	Ticker       string    `json:"ticker"`
	Score        int       `json:"score"`
	Direction    string    `json:"direction"`
	PlayType     string    `json:"play_type"`
	PriceAtScore float64   `json:"price_at_score"`
	CurrentPrice float64   `json:"current_price"`
	ReturnPct    float64   `json:"return_pct"`
	Timestamp    time.Time `json:"timestamp"`
}

// TierStats accumulates outcome statistics for one score tier.
type TierStats struct {
	Count     int     `json:"count"`
	Correct   int     `json:"correct"`
	AvgReturn float64 `json:"avg_return"`
	HitRate   float64 `json:"hit_rate"`
}

// Accuracy summarizes directional hit rates across all outcomes.
type Accuracy struct {
	BullishHitRate float64 `json:"bullish_hit_rate"`
	BearishHitRate float64 `json:"bearish_hit_rate"`
	OverallHitRate float64 `json:"overall_hit_rate"`
	BullishTotal   int     `json:"bullish_total"`
	BearishTotal   int     `json:"bearish_total"`
	NeutralTotal   int     `json:"neutral_total"`
}

// BacktestReport is the evaluator's output. Message is set (and the rest
// zeroed) when no recommendation history exists yet, so callers can tell
// "no data" apart from "zero hit rate".
type BacktestReport struct {
	TotalRecommendations int                  `json:"total_recommendations"`
	LookbackHours        int                  `json:"lookback_hours"`
	Message              string               `json:"message,omitempty"`
	Accuracy             Accuracy             `json:"accuracy"`
	ByScoreTier          map[string]TierStats `json:"by_score_tier"`
	Outcomes             []Outcome            `json:"outcomes"`
}
