package contracts

// StrikeCell accumulates net dealer gamma exposure for one
// (strike, expiration) cell of a single ticker in a single cycle.
type StrikeCell struct {
	Strike     float64 `json:"strike"`
	Expiration string  `json:"expiration"`
	NetGEX     float64 `json:"net_gex"`
}

// GammaLevels holds the per-ticker wall levels derived from a cycle's
// strike cells. A wall strike is nil when no cell of that sign exists.
type GammaLevels struct {
	Ticker         string   `json:"ticker"`
	Price          float64  `json:"price"`
	CallWallStrike *float64 `json:"max_positive_gamma_strike"`
	CallWallValue  float64  `json:"max_positive_gamma_value"`
	PutWallStrike  *float64 `json:"max_negative_gamma_strike"`
	PutWallValue   float64  `json:"max_negative_gamma_value"`
}

// NetGEX returns the cycle-level regime indicator: the sum of the two wall
// values. This is an approximation of total exposure, not a sum over all
// cells.
func (g *GammaLevels) NetGEX() float64 {
	if g == nil {
		return 0
	}
	return g.CallWallValue + g.PutWallValue
}

// HasCallWall reports whether a positive-GEX wall was found.
func (g *GammaLevels) HasCallWall() bool {
	return g != nil && g.CallWallStrike != nil
}

// HasPutWall reports whether a negative-GEX wall was found.
func (g *GammaLevels) HasPutWall() bool {
	return g != nil && g.PutWallStrike != nil
}
