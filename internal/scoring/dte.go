package scoring

import (
	"math"
	"time"

	"github.com/hmartin/gexsight/internal/contracts"
)

const (
	atmWindowPct  = 0.05 // ±5% of spot for ATM filters
	defaultDTE    = 30   // assumed DTE for missing or malformed expirations
	expDateLayout = "2006-01-02"
)

// daysToExpiration returns the whole days until the contract's expiration,
// floored at 1 so same-day contracts still carry weight. Malformed or
// missing expirations fall back to a 30-day assumption.
func daysToExpiration(expiration string, now time.Time) int {
	if len(expiration) < len(expDateLayout) {
		return defaultDTE
	}
	exp, err := time.Parse(expDateLayout, expiration[:len(expDateLayout)])
	if err != nil {
		return defaultDTE
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dte := int(exp.Sub(today).Hours() / 24)
	if dte < 1 {
		return 1
	}
	return dte
}

// dteDecay returns the 1/sqrt(dte) weighting applied to OI and volume in
// the ATM skew and surge signals, so near-term positioning counts more.
func dteDecay(expiration string, now time.Time) float64 {
	return 1.0 / math.Sqrt(float64(daysToExpiration(expiration, now)))
}

// ComputeDTEWeight derives a conviction multiplier from the OI-weighted
// average days-to-expiration of ATM contracts. Near-term concentration
// reflects active hedging that impacts price now.
//
// The multiplier lies in [0.5, 1.5]; >1 means heavy near-term positioning.
func ComputeDTEWeight(cs []contracts.Contract, price float64, now time.Time) float64 {
	if len(cs) == 0 || price <= 0 {
		return 1.0
	}

	lo, hi := price*(1-atmWindowPct), price*(1+atmWindowPct)
	var weightedDTE float64
	var totalOI int64

	for _, c := range cs {
		if c.Strike < lo || c.Strike > hi {
			continue
		}
		if c.OpenInterest <= 0 {
			continue
		}
		dte := daysToExpiration(c.Expiration, now)
		weightedDTE += float64(dte) * float64(c.OpenInterest)
		totalOI += c.OpenInterest
	}

	if totalOI == 0 {
		return 1.0
	}

	avgDTE := weightedDTE / float64(totalOI)

	// avg DTE 1 → 1.5x, 7 → 1.2x, 30 → 1.0x, 90 → 0.7x, floor 0.5x.
	var multiplier float64
	switch {
	case avgDTE <= 1:
		multiplier = 1.5
	case avgDTE <= 7:
		multiplier = 1.5 - (avgDTE-1)*0.05
	case avgDTE <= 30:
		multiplier = 1.2 - (avgDTE-7)*0.0087
	default:
		multiplier = math.Max(0.5, 1.0-(avgDTE-30)*0.005)
	}

	return round3(multiplier)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
