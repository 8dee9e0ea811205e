package contracts

// Momentum describes the short-term trend of a ticker's net GEX.
type Momentum struct {
	GexTrend   float64 `json:"gex_trend"` // -1..1
	GexSamples int     `json:"gex_samples"`
	GexStart   float64 `json:"gex_start"`
	GexEnd     float64 `json:"gex_end"`
}

// HistoricalContext carries the time-series-derived inputs for scoring one
// ticker. All fields have neutral defaults so a failed history fetch
// degrades scoring instead of aborting it.
type HistoricalContext struct {
	GexPercentile   float64  `json:"gex_percentile"` // 0..1
	Momentum        Momentum `json:"momentum"`
	IVRank          float64  `json:"iv_rank"` // 0..1
	PreviousPCRatio *float64 `json:"previous_pc_ratio"`
}

// NeutralContext returns the fallback context used when no history is
// available: mid percentile, mid IV rank, no momentum, no prior P/C ratio.
func NeutralContext() HistoricalContext {
	return HistoricalContext{
		GexPercentile: 0.5,
		IVRank:        0.5,
	}
}
