package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/hmartin/gexsight/internal/contracts"
)

// Skew labels the options positioning detected by the P/C skew signal.
// Empty means the signal had no data to judge.
type Skew string

const (
	SkewPutHeavy  Skew = "PUT-heavy"
	SkewCallHeavy Skew = "CALL-heavy"
	SkewBalanced  Skew = "balanced"
	SkewUnknown   Skew = ""
)

// scoreGexRegime scores how extreme the current net GEX sits in the
// ticker's own recent distribution. Both tails are informative: high
// positive GEX pins price, deep negative GEX amplifies moves.
func scoreGexRegime(netGEX, percentile float64) contracts.SignalScore {
	if netGEX == 0 {
		return contracts.SignalScore{
			Name: "GEX Regime", Score: 0, MaxScore: WeightGexRegime,
			Detail: "No GEX data available",
		}
	}

	raw := 0.2 + math.Abs(percentile-0.5)*2*0.8
	if raw > 1.0 {
		raw = 1.0
	}

	regime := "POSITIVE (mean-reversion)"
	if netGEX < 0 {
		regime = "NEGATIVE (trending)"
	}

	return contracts.SignalScore{
		Name:     "GEX Regime",
		Score:    int(raw * WeightGexRegime),
		MaxScore: WeightGexRegime,
		Detail:   fmt.Sprintf("Net GEX: %.0f → %s (percentile: %.0f%%)", netGEX, regime, percentile*100),
	}
}

// scoreWallProximity scores how close spot trades to the nearest gamma
// wall. Closer means a higher conviction play, bounce or rejection.
func scoreWallProximity(price float64, callWall, putWall *float64) contracts.SignalScore {
	if price <= 0 {
		return contracts.SignalScore{
			Name: "Wall Proximity", Score: 0, MaxScore: WeightWallProximity,
			Detail: "No price data",
		}
	}

	bestDistPct := 100.0
	wallName := "none"

	if callWall != nil && *callWall > 0 {
		if dist := math.Abs(price-*callWall) / price * 100; dist < bestDistPct {
			bestDistPct = dist
			wallName = fmt.Sprintf("call wall $%.0f", *callWall)
		}
	}
	if putWall != nil && *putWall > 0 {
		if dist := math.Abs(price-*putWall) / price * 100; dist < bestDistPct {
			bestDistPct = dist
			wallName = fmt.Sprintf("put wall $%.0f", *putWall)
		}
	}

	var raw float64
	switch {
	case bestDistPct <= 0.5:
		raw = 1.0
	case bestDistPct <= 1.0:
		raw = 0.85
	case bestDistPct <= 2.0:
		raw = 0.65
	case bestDistPct <= 5.0:
		raw = 0.4
	default:
		raw = 0.15
	}

	return contracts.SignalScore{
		Name:     "Wall Proximity",
		Score:    int(raw * WeightWallProximity),
		MaxScore: WeightWallProximity,
		Detail:   fmt.Sprintf("Price $%.2f is %.1f%% from %s", price, bestDistPct, wallName),
	}
}

// scorePCSkew scores put/call open interest imbalance near the money.
// Each contract's OI is decayed by 1/sqrt(DTE) so near-term positioning
// dominates. The detected skew feeds strategy selection.
func scorePCSkew(cs []contracts.Contract, price float64, now time.Time) (contracts.SignalScore, Skew) {
	if len(cs) == 0 || price <= 0 {
		return contracts.SignalScore{
			Name: "P/C Skew", Score: 0, MaxScore: WeightPCSkew,
			Detail: "No contract data",
		}, SkewUnknown
	}

	lo, hi := price*(1-atmWindowPct), price*(1+atmWindowPct)
	var callOI, putOI float64

	for _, c := range cs {
		if c.Strike < lo || c.Strike > hi {
			continue
		}
		weighted := float64(c.OpenInterest) * dteDecay(c.Expiration, now)
		switch c.Type {
		case contracts.Call:
			callOI += weighted
		case contracts.Put:
			putOI += weighted
		}
	}

	if callOI == 0 && putOI == 0 {
		return contracts.SignalScore{
			Name: "P/C Skew", Score: 0, MaxScore: WeightPCSkew,
			Detail: "No ATM OI data",
		}, SkewUnknown
	}

	ratio := 999.0
	if callOI > 0 {
		ratio = putOI / callOI
	}

	var raw float64
	switch {
	case ratio > 2.0 || ratio < 0.5:
		raw = 1.0
	case ratio > 1.5 || ratio < 0.67:
		raw = 0.75
	case ratio > 1.2 || ratio < 0.83:
		raw = 0.5
	default:
		raw = 0.25
	}

	skew := SkewBalanced
	label := "balanced"
	if ratio > 1.2 {
		skew = SkewPutHeavy
		label = "PUT-heavy (bearish)"
	} else if ratio < 0.83 {
		skew = SkewCallHeavy
		label = "CALL-heavy (bullish)"
	}

	return contracts.SignalScore{
		Name:     "P/C Skew",
		Score:    int(raw * WeightPCSkew),
		MaxScore: WeightPCSkew,
		Detail:   fmt.Sprintf("P/C ratio %.2f (%s), DTE-weighted", ratio, label),
	}, skew
}

// scoreVolumeOISurge scores unusual volume relative to open interest at
// ATM strikes. Both sides are DTE-decayed so near-term surges count more.
func scoreVolumeOISurge(cs []contracts.Contract, price float64, now time.Time) contracts.SignalScore {
	if len(cs) == 0 || price <= 0 {
		return contracts.SignalScore{
			Name: "Vol/OI Surge", Score: 0, MaxScore: WeightVolumeOISurge,
			Detail: "No contract data",
		}
	}

	lo, hi := price*(1-atmWindowPct), price*(1+atmWindowPct)
	var totalVol, totalOI float64
	surgeStrikes := 0

	for _, c := range cs {
		if c.Strike < lo || c.Strike > hi {
			continue
		}
		w := dteDecay(c.Expiration, now)
		totalVol += float64(c.Volume) * w
		totalOI += float64(c.OpenInterest) * w

		if c.OpenInterest > 0 && float64(c.Volume)/float64(c.OpenInterest) > 0.5 {
			surgeStrikes++
		}
	}

	ratio := 0.0
	if totalOI > 0 {
		ratio = totalVol / totalOI
	}

	var raw float64
	switch {
	case ratio > 1.0:
		raw = 1.0
	case ratio > 0.5:
		raw = 0.75
	case ratio > 0.25:
		raw = 0.5
	case ratio > 0.1:
		raw = 0.3
	default:
		raw = 0.1
	}

	surgeNote := ""
	if surgeStrikes > 0 {
		surgeNote = fmt.Sprintf(" (%d surge strikes)", surgeStrikes)
	}

	return contracts.SignalScore{
		Name:     "Vol/OI Surge",
		Score:    int(raw * WeightVolumeOISurge),
		MaxScore: WeightVolumeOISurge,
		Detail:   fmt.Sprintf("Vol/OI ratio: %.2f%s, DTE-weighted", ratio, surgeNote),
	}
}

// scoreIVRank scores the current implied volatility against its own
// recent range. Both extremes are actionable: high IV favors selling
// premium, low IV favors buying it.
func scoreIVRank(ivRank float64) contracts.SignalScore {
	raw := 0.1 + math.Abs(ivRank-0.5)*2*0.9

	var outlook string
	switch {
	case ivRank >= 0.8:
		outlook = fmt.Sprintf("HIGH (%.0f%%), sell premium, vol crush expected", ivRank*100)
	case ivRank >= 0.5:
		outlook = fmt.Sprintf("ELEVATED (%.0f%%), neutral to sell", ivRank*100)
	case ivRank >= 0.2:
		outlook = fmt.Sprintf("LOW (%.0f%%), buy premium opportunity", ivRank*100)
	default:
		outlook = fmt.Sprintf("VERY LOW (%.0f%%), strong vol expansion expected", ivRank*100)
	}

	return contracts.SignalScore{
		Name:     "IV Rank",
		Score:    int(raw * WeightIVRank),
		MaxScore: WeightIVRank,
		Detail:   fmt.Sprintf("IV Rank: %s", outlook),
	}
}

// scoreDirectionalBias sums net dealer delta across strikes within ±10%
// of spot. Large net delta forces dealers to hedge directionally.
// The returned direction is BULLISH, BEARISH, or FLAT by sign.
func scoreDirectionalBias(analytics *contracts.TickerAnalytics, price float64) (contracts.SignalScore, string) {
	if analytics == nil || len(analytics.Strikes) == 0 || price <= 0 {
		return contracts.SignalScore{
			Name: "Directional Bias", Score: 0, MaxScore: WeightDirectionalBias,
			Detail: "No analytics data",
		}, "FLAT"
	}

	lo, hi := price*0.9, price*1.1
	var netDelta float64
	for key, sa := range analytics.Strikes {
		if s := contracts.ParseStrikeKey(key); s >= lo && s <= hi {
			netDelta += sa.TotalDelta
		}
	}

	absDelta := math.Abs(netDelta)
	var raw float64
	switch {
	case absDelta > 500_000:
		raw = 1.0
	case absDelta > 100_000:
		raw = 0.75
	case absDelta > 25_000:
		raw = 0.5
	case absDelta > 5_000:
		raw = 0.3
	default:
		raw = 0.1
	}

	direction := "FLAT"
	if netDelta > 0 {
		direction = "BULLISH"
	} else if netDelta < 0 {
		direction = "BEARISH"
	}

	return contracts.SignalScore{
		Name:     "Directional Bias",
		Score:    int(raw * WeightDirectionalBias),
		MaxScore: WeightDirectionalBias,
		Detail:   fmt.Sprintf("Net delta: %.0f → %s dealer positioning", netDelta, direction),
	}, direction
}

// scoreGexMomentum scores the GEX trend over recent hours. Rising GEX
// strengthens mean reversion, falling GEX weakens support.
func scoreGexMomentum(m contracts.Momentum) contracts.SignalScore {
	if m.GexSamples < 2 {
		return contracts.SignalScore{
			Name: "GEX Momentum", Score: 0, MaxScore: WeightGexMomentum,
			Detail: "Insufficient history",
		}
	}

	absTrend := math.Abs(m.GexTrend)
	var raw float64
	switch {
	case absTrend > 0.5:
		raw = 1.0
	case absTrend > 0.25:
		raw = 0.7
	case absTrend > 0.1:
		raw = 0.4
	default:
		raw = 0.15
	}

	direction := "FLAT"
	if m.GexTrend > 0.05 {
		direction = "RISING"
	} else if m.GexTrend < -0.05 {
		direction = "FALLING"
	}

	return contracts.SignalScore{
		Name:     "GEX Momentum",
		Score:    int(raw * WeightGexMomentum),
		MaxScore: WeightGexMomentum,
		Detail:   fmt.Sprintf("GEX trend: %s (%+.1f%%) over %d samples", direction, m.GexTrend*100, m.GexSamples),
	}
}

// scoreSkewMomentum scores the rate of change of the raw ATM P/C ratio
// versus the previous scoring run. A rapidly shifting skew flags new
// institutional positioning before the level itself looks extreme.
func scoreSkewMomentum(cs []contracts.Contract, price float64, previousPCRatio *float64) contracts.SignalScore {
	if len(cs) == 0 || price <= 0 {
		return contracts.SignalScore{
			Name: "Skew Momentum", Score: 0, MaxScore: WeightSkewMomentum,
			Detail: "No contract data",
		}
	}

	lo, hi := price*(1-atmWindowPct), price*(1+atmWindowPct)
	var callOI, putOI int64
	for _, c := range cs {
		if c.Strike < lo || c.Strike > hi {
			continue
		}
		switch c.Type {
		case contracts.Call:
			callOI += c.OpenInterest
		case contracts.Put:
			putOI += c.OpenInterest
		}
	}

	if callOI == 0 && putOI == 0 {
		return contracts.SignalScore{
			Name: "Skew Momentum", Score: 0, MaxScore: WeightSkewMomentum,
			Detail: "No ATM OI",
		}
	}

	current := 999.0
	if callOI > 0 {
		current = float64(putOI) / float64(callOI)
	}

	if previousPCRatio == nil || *previousPCRatio <= 0 {
		return contracts.SignalScore{
			Name:     "Skew Momentum",
			Score:    int(0.2 * WeightSkewMomentum),
			MaxScore: WeightSkewMomentum,
			Detail:   fmt.Sprintf("Current P/C: %.2f (no history for trend)", current),
		}
	}

	change := (current - *previousPCRatio) / *previousPCRatio
	absChange := math.Abs(change)
	var raw float64
	switch {
	case absChange > 0.3:
		raw = 1.0
	case absChange > 0.15:
		raw = 0.7
	case absChange > 0.05:
		raw = 0.4
	default:
		raw = 0.15
	}

	direction := "Stable"
	if change > 0.05 {
		direction = "PUTS increasing"
	} else if change < -0.05 {
		direction = "CALLS increasing"
	}

	return contracts.SignalScore{
		Name:     "Skew Momentum",
		Score:    int(raw * WeightSkewMomentum),
		MaxScore: WeightSkewMomentum,
		Detail:   fmt.Sprintf("P/C shift: %+.1f%% → %s", change*100, direction),
	}
}

// scoreDTEConviction converts the DTE multiplier into a signal of its
// own. Heavy near-term open interest means the gamma picture is
// actionable now rather than weeks out.
func scoreDTEConviction(dteMultiplier float64) contracts.SignalScore {
	var raw float64
	var detail string
	switch {
	case dteMultiplier >= 1.4:
		raw = 1.0
		detail = "Very heavy 0-2 DTE positioning, imminent move expected"
	case dteMultiplier >= 1.2:
		raw = 0.75
		detail = "Elevated near-term activity, 1-7 DTE dominant"
	case dteMultiplier >= 1.0:
		raw = 0.45
		detail = "Standard DTE distribution, no near-term urgency"
	case dteMultiplier >= 0.7:
		raw = 0.25
		detail = "Longer-dated positioning, structural not immediate"
	default:
		raw = 0.1
		detail = "Far-dated positioning, watch but low conviction"
	}

	return contracts.SignalScore{
		Name:     "DTE Conviction",
		Score:    int(raw * WeightDTEConviction),
		MaxScore: WeightDTEConviction,
		Detail:   fmt.Sprintf("DTE multiplier: %.2f, %s", dteMultiplier, detail),
	}
}
