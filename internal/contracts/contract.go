package contracts

import "strconv"

// OptionType identifies the side of an option contract.
type OptionType string

const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

// Contract is one option leg as captured in a single fetch cycle.
// Immutable snapshot; greeks arrive already computed from the feed.
type Contract struct {
	Ticker          string     `json:"ticker"`
	Strike          float64    `json:"strike"`
	Expiration      string     `json:"expiration"` // YYYY-MM-DD, may be empty
	Type            OptionType `json:"type"`
	OpenInterest    int64      `json:"open_interest"`
	Volume          int64      `json:"volume"`
	Delta           float64    `json:"delta"`
	Gamma           float64    `json:"gamma"`
	Theta           float64    `json:"theta"`
	Vega            float64    `json:"vega"`
	UnderlyingPrice float64    `json:"underlying_price"`
	ImpliedVol      float64    `json:"implied_vol"`
}

// StrikeAnalytics holds OI-weighted greek totals accumulated at one strike.
type StrikeAnalytics struct {
	TotalDelta float64 `json:"total_delta"`
	TotalGamma float64 `json:"total_gamma"`
	TotalTheta float64 `json:"total_theta"`
	TotalVega  float64 `json:"total_vega"`
	OI         int64   `json:"oi"`
	Volume     int64   `json:"volume"`
}

// TickerAnalytics is the aggregated strike-level view for one ticker.
// Strike keys are formatted prices so the structure serializes as a JSON
// object the dashboard can consume directly.
type TickerAnalytics struct {
	Price   float64                    `json:"price"`
	Strikes map[string]StrikeAnalytics `json:"strikes"`
}

// StrikeKey formats a strike price for use as an analytics map key.
func StrikeKey(strike float64) string {
	return strconv.FormatFloat(strike, 'f', -1, 64)
}

// ParseStrikeKey converts an analytics map key back to a strike price.
// Returns 0 for malformed keys.
func ParseStrikeKey(key string) float64 {
	v, err := strconv.ParseFloat(key, 64)
	if err != nil {
		return 0
	}
	return v
}

// GroupByTicker splits a flat contract slice into per-ticker slices.
func GroupByTicker(all []Contract) map[string][]Contract {
	byTicker := make(map[string][]Contract)
	for _, c := range all {
		if c.Ticker == "" {
			continue
		}
		byTicker[c.Ticker] = append(byTicker[c.Ticker], c)
	}
	return byTicker
}
