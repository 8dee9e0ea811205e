package scoring

import (
	"github.com/hmartin/gexsight/internal/contracts"
)

// BuildAnalytics aggregates per-contract greeks into per-strike totals
// for one ticker. Greeks are scaled by open interest and contract
// multiplier so TotalDelta is in shares-equivalent terms.
func BuildAnalytics(cs []contracts.Contract, price float64) *contracts.TickerAnalytics {
	ta := &contracts.TickerAnalytics{
		Price:   price,
		Strikes: make(map[string]contracts.StrikeAnalytics),
	}

	for _, c := range cs {
		if c.Strike <= 0 {
			continue
		}
		key := contracts.StrikeKey(c.Strike)
		sa := ta.Strikes[key]

		oi := float64(c.OpenInterest)
		sign := 1.0
		if c.Type == contracts.Put {
			// Put deltas are already negative; the sign here applies
			// to the long/short exposure convention for gamma.
			sign = -1.0
		}

		sa.TotalDelta += c.Delta * oi * 100
		sa.TotalGamma += sign * c.Gamma * oi * 100
		sa.TotalTheta += c.Theta * oi * 100
		sa.TotalVega += c.Vega * oi * 100
		sa.OI += c.OpenInterest
		sa.Volume += c.Volume

		ta.Strikes[key] = sa
	}

	return ta
}
