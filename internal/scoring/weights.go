package scoring

import "fmt"

// Signal weight table. The nine weights must sum to exactly 100 so the
// total score is directly readable as a 0-100 conviction percentage.
const (
	WeightGexRegime       = 20
	WeightWallProximity   = 15
	WeightPCSkew          = 12
	WeightVolumeOISurge   = 12
	WeightDirectionalBias = 10
	WeightIVRank          = 10
	WeightGexMomentum     = 8
	WeightSkewMomentum    = 5
	WeightDTEConviction   = 8
)

// SignalWeights lists the weights in signal order. The order is the
// tie-break order when building reasoning text from top signals.
var SignalWeights = []struct {
	Name   string
	Weight int
}{
	{"GEX Regime", WeightGexRegime},
	{"Wall Proximity", WeightWallProximity},
	{"P/C Skew", WeightPCSkew},
	{"Vol/OI Surge", WeightVolumeOISurge},
	{"Directional Bias", WeightDirectionalBias},
	{"IV Rank", WeightIVRank},
	{"GEX Momentum", WeightGexMomentum},
	{"Skew Momentum", WeightSkewMomentum},
	{"DTE Conviction", WeightDTEConviction},
}

func init() {
	if err := ValidateWeights(); err != nil {
		panic(err)
	}
}

// ValidateWeights checks the weight table invariants: nine positive
// weights summing to exactly 100.
func ValidateWeights() error {
	if len(SignalWeights) != 9 {
		return fmt.Errorf("weight table has %d signals, want 9", len(SignalWeights))
	}
	sum := 0
	for _, w := range SignalWeights {
		if w.Weight <= 0 {
			return fmt.Errorf("weight %s must be positive, got %d", w.Name, w.Weight)
		}
		sum += w.Weight
	}
	if sum != 100 {
		return fmt.Errorf("signal weights sum to %d, want 100", sum)
	}
	return nil
}
