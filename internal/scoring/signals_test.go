package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hmartin/gexsight/internal/contracts"
)

func ptr(v float64) *float64 { return &v }

func TestScoreGexRegime(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		s := scoreGexRegime(0, 0.5)
		assert.Equal(t, 0, s.Score)
		assert.Equal(t, "No GEX data available", s.Detail)
	})

	t.Run("mid percentile is the floor", func(t *testing.T) {
		s := scoreGexRegime(1e9, 0.5)
		assert.Equal(t, 4, s.Score) // 0.2 * 20
		assert.Contains(t, s.Detail, "POSITIVE (mean-reversion)")
	})

	t.Run("extreme percentile maxes out", func(t *testing.T) {
		s := scoreGexRegime(-1e9, 1.0)
		assert.Equal(t, WeightGexRegime, s.Score)
		assert.Contains(t, s.Detail, "NEGATIVE (trending)")
	})

	t.Run("both tails score alike", func(t *testing.T) {
		assert.Equal(t, scoreGexRegime(1e9, 0.9).Score, scoreGexRegime(1e9, 0.1).Score)
	})
}

func TestScoreWallProximity(t *testing.T) {
	t.Run("no price", func(t *testing.T) {
		s := scoreWallProximity(0, ptr(500), nil)
		assert.Equal(t, 0, s.Score)
		assert.Equal(t, "No price data", s.Detail)
	})

	t.Run("no walls scores the far bucket", func(t *testing.T) {
		s := scoreWallProximity(500, nil, nil)
		assert.Equal(t, 2, s.Score) // 0.15 * 15
		assert.Contains(t, s.Detail, "none")
	})

	tests := []struct {
		name  string
		wall  float64
		score int
	}{
		{"within half a percent", 501, 15},   // 0.2% -> 1.0
		{"within one percent", 504, 12},      // 0.8% -> 0.85
		{"within two percent", 507.5, 9},     // 1.5% -> 0.65
		{"within five percent", 520, 6},      // 4% -> 0.4
		{"beyond five percent", 550, 2},      // 10% -> 0.15
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scoreWallProximity(500, ptr(tt.wall), nil)
			assert.Equal(t, tt.score, s.Score)
		})
	}

	t.Run("nearest wall wins", func(t *testing.T) {
		s := scoreWallProximity(500, ptr(530), ptr(499))
		assert.Equal(t, 15, s.Score)
		assert.Contains(t, s.Detail, "put wall $499")
	})
}

func TestScorePCSkew(t *testing.T) {
	t.Run("no contracts", func(t *testing.T) {
		s, skew := scorePCSkew(nil, 500, now)
		assert.Equal(t, 0, s.Score)
		assert.Equal(t, SkewUnknown, skew)
	})

	t.Run("no ATM open interest", func(t *testing.T) {
		cs := []contracts.Contract{{Strike: 600, Type: contracts.Call, OpenInterest: 1000, Expiration: expIn(7)}}
		s, skew := scorePCSkew(cs, 500, now)
		assert.Equal(t, 0, s.Score)
		assert.Equal(t, "No ATM OI data", s.Detail)
		assert.Equal(t, SkewUnknown, skew)
	})

	t.Run("heavy put skew", func(t *testing.T) {
		cs := []contracts.Contract{
			{Strike: 500, Type: contracts.Call, OpenInterest: 100, Expiration: expIn(7)},
			{Strike: 495, Type: contracts.Put, OpenInterest: 300, Expiration: expIn(7)},
		}
		s, skew := scorePCSkew(cs, 500, now)
		assert.Equal(t, WeightPCSkew, s.Score) // ratio 3.0 -> 1.0
		assert.Equal(t, SkewPutHeavy, skew)
		assert.Contains(t, s.Detail, "PUT-heavy (bearish)")
	})

	t.Run("all puts pins the ratio", func(t *testing.T) {
		cs := []contracts.Contract{
			{Strike: 495, Type: contracts.Put, OpenInterest: 300, Expiration: expIn(7)},
		}
		s, skew := scorePCSkew(cs, 500, now)
		assert.Equal(t, WeightPCSkew, s.Score)
		assert.Equal(t, SkewPutHeavy, skew)
		assert.Contains(t, s.Detail, "999.00")
	})

	t.Run("balanced book scores low", func(t *testing.T) {
		cs := []contracts.Contract{
			{Strike: 500, Type: contracts.Call, OpenInterest: 200, Expiration: expIn(7)},
			{Strike: 500, Type: contracts.Put, OpenInterest: 200, Expiration: expIn(7)},
		}
		s, skew := scorePCSkew(cs, 500, now)
		assert.Equal(t, 3, s.Score) // 0.25 * 12
		assert.Equal(t, SkewBalanced, skew)
	})

	t.Run("near-term OI dominates through decay", func(t *testing.T) {
		// Equal raw OI, but the put book sits at 1 DTE and the call book
		// at 100 DTE. Decay pushes the ratio well past 2.
		cs := []contracts.Contract{
			{Strike: 500, Type: contracts.Call, OpenInterest: 1000, Expiration: expIn(100)},
			{Strike: 500, Type: contracts.Put, OpenInterest: 1000, Expiration: expIn(1)},
		}
		s, skew := scorePCSkew(cs, 500, now)
		assert.Equal(t, WeightPCSkew, s.Score)
		assert.Equal(t, SkewPutHeavy, skew)
	})
}

func TestScoreVolumeOISurge(t *testing.T) {
	t.Run("no contracts", func(t *testing.T) {
		s := scoreVolumeOISurge(nil, 500, now)
		assert.Equal(t, 0, s.Score)
		assert.Equal(t, "No contract data", s.Detail)
	})

	t.Run("volume exceeding OI maxes out", func(t *testing.T) {
		cs := []contracts.Contract{
			{Strike: 500, Type: contracts.Call, OpenInterest: 100, Volume: 150, Expiration: expIn(7)},
		}
		s := scoreVolumeOISurge(cs, 500, now)
		assert.Equal(t, WeightVolumeOISurge, s.Score)
		assert.Contains(t, s.Detail, "1 surge strikes")
	})

	t.Run("quiet tape scores the floor", func(t *testing.T) {
		cs := []contracts.Contract{
			{Strike: 500, Type: contracts.Call, OpenInterest: 10000, Volume: 100, Expiration: expIn(7)},
		}
		s := scoreVolumeOISurge(cs, 500, now)
		assert.Equal(t, 1, s.Score) // 0.1 * 12
		assert.NotContains(t, s.Detail, "surge strikes")
	})
}

func TestScoreIVRank(t *testing.T) {
	t.Run("mid rank is the floor", func(t *testing.T) {
		s := scoreIVRank(0.5)
		assert.Equal(t, 1, s.Score) // 0.1 * 10
		assert.Contains(t, s.Detail, "ELEVATED")
	})

	t.Run("high rank", func(t *testing.T) {
		s := scoreIVRank(0.9)
		assert.Equal(t, 8, s.Score) // 0.82 * 10
		assert.Contains(t, s.Detail, "HIGH")
		assert.Contains(t, s.Detail, "sell premium")
	})

	t.Run("low rank", func(t *testing.T) {
		s := scoreIVRank(0.3)
		assert.Equal(t, 4, s.Score) // 0.46 * 10
		assert.Contains(t, s.Detail, "LOW")
	})

	t.Run("very low rank", func(t *testing.T) {
		s := scoreIVRank(0.05)
		assert.Equal(t, 9, s.Score) // 0.91 * 10
		assert.Contains(t, s.Detail, "VERY LOW")
	})
}

func TestScoreDirectionalBias(t *testing.T) {
	t.Run("no analytics", func(t *testing.T) {
		s, dir := scoreDirectionalBias(nil, 500)
		assert.Equal(t, 0, s.Score)
		assert.Equal(t, "FLAT", dir)
	})

	t.Run("large positive delta is bullish", func(t *testing.T) {
		analytics := &contracts.TickerAnalytics{
			Price: 500,
			Strikes: map[string]contracts.StrikeAnalytics{
				contracts.StrikeKey(500): {TotalDelta: 600_000},
			},
		}
		s, dir := scoreDirectionalBias(analytics, 500)
		assert.Equal(t, WeightDirectionalBias, s.Score)
		assert.Equal(t, "BULLISH", dir)
	})

	t.Run("moderate negative delta is bearish", func(t *testing.T) {
		analytics := &contracts.TickerAnalytics{
			Price: 500,
			Strikes: map[string]contracts.StrikeAnalytics{
				contracts.StrikeKey(495): {TotalDelta: -50_000},
			},
		}
		s, dir := scoreDirectionalBias(analytics, 500)
		assert.Equal(t, 5, s.Score) // 0.5 * 10
		assert.Equal(t, "BEARISH", dir)
	})

	t.Run("far strikes are out of the window", func(t *testing.T) {
		analytics := &contracts.TickerAnalytics{
			Price: 500,
			Strikes: map[string]contracts.StrikeAnalytics{
				contracts.StrikeKey(700): {TotalDelta: 9_000_000},
			},
		}
		s, dir := scoreDirectionalBias(analytics, 500)
		assert.Equal(t, 1, s.Score) // 0.1 * 10
		assert.Equal(t, "FLAT", dir)
	})
}

func TestScoreGexMomentum(t *testing.T) {
	t.Run("insufficient history", func(t *testing.T) {
		s := scoreGexMomentum(contracts.Momentum{GexSamples: 1})
		assert.Equal(t, 0, s.Score)
		assert.Equal(t, "Insufficient history", s.Detail)
	})

	t.Run("strong trend", func(t *testing.T) {
		s := scoreGexMomentum(contracts.Momentum{GexTrend: 0.6, GexSamples: 6})
		assert.Equal(t, WeightGexMomentum, s.Score)
		assert.Contains(t, s.Detail, "RISING")
	})

	t.Run("falling trend", func(t *testing.T) {
		s := scoreGexMomentum(contracts.Momentum{GexTrend: -0.3, GexSamples: 4})
		assert.Equal(t, 5, s.Score) // 0.7 * 8
		assert.Contains(t, s.Detail, "FALLING")
	})

	t.Run("flat trend", func(t *testing.T) {
		s := scoreGexMomentum(contracts.Momentum{GexTrend: 0.02, GexSamples: 4})
		assert.Equal(t, 1, s.Score) // 0.15 * 8
		assert.Contains(t, s.Detail, "FLAT")
	})
}

func TestScoreSkewMomentum(t *testing.T) {
	atm := []contracts.Contract{
		{Strike: 500, Type: contracts.Call, OpenInterest: 100, Expiration: expIn(7)},
		{Strike: 495, Type: contracts.Put, OpenInterest: 200, Expiration: expIn(7)},
	}

	t.Run("no contracts", func(t *testing.T) {
		s := scoreSkewMomentum(nil, 500, nil)
		assert.Equal(t, 0, s.Score)
	})

	t.Run("no prior ratio gives partial credit", func(t *testing.T) {
		s := scoreSkewMomentum(atm, 500, nil)
		assert.Equal(t, 1, s.Score) // 0.2 * 5
		assert.Contains(t, s.Detail, "no history for trend")
		assert.Contains(t, s.Detail, "2.00")
	})

	t.Run("puts piling in", func(t *testing.T) {
		s := scoreSkewMomentum(atm, 500, ptr(1.0)) // 1.0 -> 2.0 is +100%
		assert.Equal(t, WeightSkewMomentum, s.Score)
		assert.Contains(t, s.Detail, "PUTS increasing")
	})

	t.Run("calls piling in", func(t *testing.T) {
		s := scoreSkewMomentum(atm, 500, ptr(4.0)) // 4.0 -> 2.0 is -50%
		assert.Equal(t, WeightSkewMomentum, s.Score)
		assert.Contains(t, s.Detail, "CALLS increasing")
	})

	t.Run("stable skew", func(t *testing.T) {
		s := scoreSkewMomentum(atm, 500, ptr(1.96)) // ~+2%
		assert.Equal(t, 0, s.Score) // 0.15 * 5 truncates
		assert.Contains(t, s.Detail, "Stable")
	})
}

func TestScoreDTEConviction(t *testing.T) {
	tests := []struct {
		mult  float64
		score int
	}{
		{1.5, 8},  // 1.0 * 8
		{1.25, 6}, // 0.75 * 8
		{1.0, 3},  // 0.45 * 8
		{0.8, 2},  // 0.25 * 8
		{0.5, 0},  // 0.1 * 8 truncates
	}
	for _, tt := range tests {
		s := scoreDTEConviction(tt.mult)
		assert.Equal(t, tt.score, s.Score, "multiplier %.2f", tt.mult)
		assert.Equal(t, WeightDTEConviction, s.MaxScore)
	}
}
