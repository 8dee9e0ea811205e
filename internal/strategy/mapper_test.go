package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hmartin/gexsight/internal/contracts"
)

func TestSelect_CoversFullSignalSpace(t *testing.T) {
	for _, r := range []Regime{RegimePositive, RegimeNegative} {
		for _, w := range []WallPosition{NearCallWall, NearPutWall, MidRange} {
			for _, s := range []SkewDirection{SkewBullish, SkewBearish, SkewNeutral} {
				rec := Select(r, w, s)
				assert.NotEmpty(t, rec.PlayType, "(%s, %s, %s)", r, w, s)
				assert.NotEmpty(t, rec.Description, "(%s, %s, %s)", r, w, s)
				assert.Equal(t, "Defined Risk", rec.RiskProfile, "(%s, %s, %s)", r, w, s)
				assert.Contains(t, []string{
					contracts.DirectionBullish,
					contracts.DirectionBearish,
					contracts.DirectionNeutral,
				}, rec.Direction, "(%s, %s, %s)", r, w, s)
			}
		}
	}
}

func TestSelect_KnownCombinations(t *testing.T) {
	tests := []struct {
		name      string
		regime    Regime
		wall      WallPosition
		skew      SkewDirection
		playType  string
		direction string
	}{
		{
			name:   "positive regime at call wall with bullish skew fades the rally",
			regime: RegimePositive, wall: NearCallWall, skew: SkewBullish,
			playType: "Bear Call Spread", direction: contracts.DirectionBearish,
		},
		{
			name:   "positive regime mid range is the iron condor setup",
			regime: RegimePositive, wall: MidRange, skew: SkewNeutral,
			playType: "Iron Condor", direction: contracts.DirectionNeutral,
		},
		{
			name:   "positive regime at put wall with bearish skew sells puts into support",
			regime: RegimePositive, wall: NearPutWall, skew: SkewBearish,
			playType: "Bull Put Spread", direction: contracts.DirectionBullish,
		},
		{
			name:   "negative regime at call wall with neutral skew buys volatility",
			regime: RegimeNegative, wall: NearCallWall, skew: SkewNeutral,
			playType: "Long Straddle", direction: contracts.DirectionNeutral,
		},
		{
			name:   "negative regime mid range with bearish skew rides momentum down",
			regime: RegimeNegative, wall: MidRange, skew: SkewBearish,
			playType: "Bear Put Spread", direction: contracts.DirectionBearish,
		},
		{
			name:   "negative regime at put wall with bullish skew plays the bounce",
			regime: RegimeNegative, wall: NearPutWall, skew: SkewBullish,
			playType: "Bull Call Spread", direction: contracts.DirectionBullish,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Select(tt.regime, tt.wall, tt.skew)
			assert.Equal(t, tt.playType, rec.PlayType)
			assert.Equal(t, tt.direction, rec.Direction)
		})
	}
}

func TestSelect_UnknownCombinationFallsBack(t *testing.T) {
	rec := Select(Regime("sideways"), MidRange, SkewNeutral)

	assert.Equal(t, "Iron Condor", rec.PlayType)
	assert.Equal(t, contracts.DirectionNeutral, rec.Direction)
	assert.Equal(t, "Insufficient signal clarity: consider neutral premium selling", rec.Description)
}
