// Package strategy maps combinations of scoring signals to suggested
// option play types.
package strategy

import (
	"fmt"

	"github.com/hmartin/gexsight/internal/contracts"
)

// Regime describes the prevailing gamma regime.
type Regime string

const (
	RegimePositive Regime = "positive" // mean-reversion, sell premium
	RegimeNegative Regime = "negative" // trending, buy directional
)

// WallPosition describes where spot trades relative to the gamma walls.
type WallPosition string

const (
	NearCallWall WallPosition = "near_call_wall"
	NearPutWall  WallPosition = "near_put_wall"
	MidRange     WallPosition = "mid_range"
)

// SkewDirection is the directional lean derived from OI skew and dealer
// delta positioning.
type SkewDirection string

const (
	SkewBullish SkewDirection = "bullish"
	SkewBearish SkewDirection = "bearish"
	SkewNeutral SkewDirection = "neutral"
)

type key struct {
	regime Regime
	wall   WallPosition
	skew   SkewDirection
}

var playbook = map[key]contracts.StrategyRecommendation{
	// Positive GEX: dealers dampen moves, premium selling works.
	{RegimePositive, NearCallWall, SkewBullish}: {
		PlayType: "Bear Call Spread", Direction: contracts.DirectionBearish,
		Description: "Price at call wall resistance in mean-reversion regime: fade the rally",
		RiskProfile: "Defined Risk"},
	{RegimePositive, NearCallWall, SkewBearish}: {
		PlayType: "Bear Call Spread", Direction: contracts.DirectionBearish,
		Description: "Bearish skew + call wall resistance: high-probability fade",
		RiskProfile: "Defined Risk"},
	{RegimePositive, NearCallWall, SkewNeutral}: {
		PlayType: "Iron Condor", Direction: contracts.DirectionNeutral,
		Description: "Neutral skew at resistance: sell both sides, gamma supports range",
		RiskProfile: "Defined Risk"},

	{RegimePositive, NearPutWall, SkewBullish}: {
		PlayType: "Bull Call Spread", Direction: contracts.DirectionBullish,
		Description: "Bullish skew at put wall support: buy the bounce",
		RiskProfile: "Defined Risk"},
	{RegimePositive, NearPutWall, SkewBearish}: {
		PlayType: "Bull Put Spread", Direction: contracts.DirectionBullish,
		Description: "Put wall support in positive GEX: sell puts for premium with floor",
		RiskProfile: "Defined Risk"},
	{RegimePositive, NearPutWall, SkewNeutral}: {
		PlayType: "Bull Put Spread", Direction: contracts.DirectionBullish,
		Description: "Support level in mean-reversion: sell premium into support",
		RiskProfile: "Defined Risk"},

	{RegimePositive, MidRange, SkewBullish}: {
		PlayType: "Iron Condor", Direction: contracts.DirectionNeutral,
		Description: "Positive GEX mid-range: range-bound, sell premium both sides",
		RiskProfile: "Defined Risk"},
	{RegimePositive, MidRange, SkewBearish}: {
		PlayType: "Iron Condor", Direction: contracts.DirectionNeutral,
		Description: "Positive GEX keeps price pinned: sell premium into the range",
		RiskProfile: "Defined Risk"},
	{RegimePositive, MidRange, SkewNeutral}: {
		PlayType: "Iron Condor", Direction: contracts.DirectionNeutral,
		Description: "Perfect mean-reversion setup: sell iron condor around current price",
		RiskProfile: "Defined Risk"},

	// Negative GEX: dealers amplify moves, buy directional exposure.
	{RegimeNegative, NearCallWall, SkewBullish}: {
		PlayType: "Bull Call Spread", Direction: contracts.DirectionBullish,
		Description: "Negative GEX + bullish flow + near resistance: breakout potential",
		RiskProfile: "Defined Risk"},
	{RegimeNegative, NearCallWall, SkewBearish}: {
		PlayType: "Bear Put Spread", Direction: contracts.DirectionBearish,
		Description: "Bearish skew at resistance in volatile regime: rejection likely",
		RiskProfile: "Defined Risk"},
	{RegimeNegative, NearCallWall, SkewNeutral}: {
		PlayType: "Long Straddle", Direction: contracts.DirectionNeutral,
		Description: "Negative GEX at key level: expect big move in either direction",
		RiskProfile: "Defined Risk"},

	{RegimeNegative, NearPutWall, SkewBullish}: {
		PlayType: "Bull Call Spread", Direction: contracts.DirectionBullish,
		Description: "Bullish positioning at put support in trend regime: bounce play",
		RiskProfile: "Defined Risk"},
	{RegimeNegative, NearPutWall, SkewBearish}: {
		PlayType: "Bear Put Spread", Direction: contracts.DirectionBearish,
		Description: "Negative GEX + bearish flow at put wall: breakdown expected",
		RiskProfile: "Defined Risk"},
	{RegimeNegative, NearPutWall, SkewNeutral}: {
		PlayType: "Long Straddle", Direction: contracts.DirectionNeutral,
		Description: "Negative GEX at support: breakout or bounce, buy both sides",
		RiskProfile: "Defined Risk"},

	{RegimeNegative, MidRange, SkewBullish}: {
		PlayType: "Bull Call Spread", Direction: contracts.DirectionBullish,
		Description: "Negative GEX trend regime + bullish skew: ride the momentum up",
		RiskProfile: "Defined Risk"},
	{RegimeNegative, MidRange, SkewBearish}: {
		PlayType: "Bear Put Spread", Direction: contracts.DirectionBearish,
		Description: "Negative GEX + bearish skew: ride the momentum down",
		RiskProfile: "Defined Risk"},
	{RegimeNegative, MidRange, SkewNeutral}: {
		PlayType: "Long Straddle", Direction: contracts.DirectionNeutral,
		Description: "High volatility regime with no directional conviction: play the vol",
		RiskProfile: "Defined Risk"},
}

// fallback covers unexpected key combinations without taking on risk.
var fallback = contracts.StrategyRecommendation{
	PlayType:    "Iron Condor",
	Direction:   contracts.DirectionNeutral,
	Description: "Insufficient signal clarity: consider neutral premium selling",
	RiskProfile: "Defined Risk",
}

func init() {
	// The playbook must cover the full 2x3x3 signal space.
	for _, r := range []Regime{RegimePositive, RegimeNegative} {
		for _, w := range []WallPosition{NearCallWall, NearPutWall, MidRange} {
			for _, s := range []SkewDirection{SkewBullish, SkewBearish, SkewNeutral} {
				if _, ok := playbook[key{r, w, s}]; !ok {
					panic(fmt.Sprintf("strategy: playbook missing entry (%s, %s, %s)", r, w, s))
				}
			}
		}
	}
}

// Select returns the recommended strategy for a signal combination.
// Unknown combinations fall back to a neutral premium-selling play.
func Select(regime Regime, wall WallPosition, skew SkewDirection) contracts.StrategyRecommendation {
	if s, ok := playbook[key{regime, wall, skew}]; ok {
		return s
	}
	return fallback
}
