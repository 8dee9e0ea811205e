package gamma

import (
	"github.com/hmartin/gexsight/internal/contracts"
	"github.com/hmartin/gexsight/pkg/logger"
)

// Aggregator computes per-(strike, expiration) net dealer gamma exposure
// and extracts the wall levels for each ticker. Holds no state across
// calls.
type Aggregator struct {
	logger *logger.Logger
}

// NewAggregator creates a new gamma aggregator.
func NewAggregator(log *logger.Logger) *Aggregator {
	return &Aggregator{logger: log}
}

type cellKey struct {
	strike     float64
	expiration string
}

// Exposure returns the dollar gamma exposure of a single contract leg.
// Calls contribute positive exposure, puts negative.
func Exposure(gamma float64, openInterest int64, spot float64, optType contracts.OptionType) float64 {
	exposure := gamma * float64(openInterest) * 100 * spot * spot * 0.01
	if optType == contracts.Put {
		return -exposure
	}
	return exposure
}

// Compute builds the per-cell net GEX map for one ticker and returns its
// wall levels. Contracts with a non-positive spot or zero strike are
// excluded. A wall is absent when no cell of that sign exists.
func (a *Aggregator) Compute(ticker string, cs []contracts.Contract, spot float64) *contracts.GammaLevels {
	levels := &contracts.GammaLevels{Ticker: ticker, Price: spot}
	if spot <= 0 {
		return levels
	}

	cells := make(map[cellKey]float64)
	for _, c := range cs {
		if c.Strike == 0 || c.UnderlyingPrice <= 0 {
			continue
		}
		if c.Type != contracts.Call && c.Type != contracts.Put {
			continue
		}
		key := cellKey{strike: c.Strike, expiration: c.Expiration}
		cells[key] += Exposure(c.Gamma, c.OpenInterest, spot, c.Type)
	}

	var (
		maxPos, maxNeg             float64
		maxPosStrike, maxNegStrike float64
		havePos, haveNeg           bool
	)
	for key, gex := range cells {
		// Ties on the extremum resolve to the lower strike so the walls
		// are stable across map iteration order.
		if gex > 0 {
			if !havePos || gex > maxPos || (gex == maxPos && key.strike < maxPosStrike) {
				maxPos = gex
				maxPosStrike = key.strike
				havePos = true
			}
		}
		if gex < 0 {
			if !haveNeg || gex < maxNeg || (gex == maxNeg && key.strike < maxNegStrike) {
				maxNeg = gex
				maxNegStrike = key.strike
				haveNeg = true
			}
		}
	}

	if havePos {
		s := maxPosStrike
		levels.CallWallStrike = &s
		levels.CallWallValue = maxPos
	}
	if haveNeg {
		s := maxNegStrike
		levels.PutWallStrike = &s
		levels.PutWallValue = maxNeg
	}
	return levels
}

// Aggregate computes wall levels for every ticker found in the contract
// slice. Each ticker's spot is taken from its first contract carrying a
// positive underlying price; tickers with no usable spot are skipped.
func (a *Aggregator) Aggregate(all []contracts.Contract) map[string]*contracts.GammaLevels {
	byTicker := make(map[string][]contracts.Contract)
	spots := make(map[string]float64)

	for _, c := range all {
		if c.Ticker == "" || c.UnderlyingPrice <= 0 {
			continue
		}
		if _, seen := spots[c.Ticker]; !seen {
			spots[c.Ticker] = c.UnderlyingPrice
		}
		byTicker[c.Ticker] = append(byTicker[c.Ticker], c)
	}

	results := make(map[string]*contracts.GammaLevels, len(byTicker))
	for ticker, cs := range byTicker {
		results[ticker] = a.Compute(ticker, cs, spots[ticker])
	}

	a.logger.WithFields(map[string]interface{}{
		"tickers":   len(results),
		"contracts": len(all),
	}).Debug("Computed gamma wall levels")

	return results
}
