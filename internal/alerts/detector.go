// Package alerts detects significant changes in gamma exposure between
// cycles and dispatches them to the configured notification channels.
package alerts

import (
	"fmt"
	"math"
	"sort"

	"github.com/hmartin/gexsight/internal/contracts"
	"github.com/hmartin/gexsight/pkg/logger"
)

// Alert types.
const (
	TypeGexFlip       = "gex_flip"
	TypeNewMaxStrike  = "new_max_strike"
	TypePriceNearWall = "price_near_wall"
)

// Severities, in dispatch order.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

var severityOrder = map[string]int{
	SeverityCritical: 0,
	SeverityWarning:  1,
	SeverityInfo:     2,
}

// Alert is a single detected trading event.
type Alert struct {
	Ticker   string `json:"ticker"`
	Type     string `json:"alert_type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Details  string `json:"details,omitempty"`
}

// DetectGexFlip fires when net GEX crossed zero between cycles. The
// positive-to-negative flip is the dangerous one: dealers switch from
// dampening moves to amplifying them.
func DetectGexFlip(ticker string, current float64, previous *float64) *Alert {
	if previous == nil {
		return nil
	}

	switch {
	case *previous > 0 && current < 0:
		return &Alert{
			Ticker:   ticker,
			Type:     TypeGexFlip,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("%s: GEX flipped NEGATIVE, dealers now amplify moves", ticker),
			Details: fmt.Sprintf("Net GEX went from +%.0f to %.0f. Expect increased volatility and trend acceleration.",
				*previous, current),
		}
	case *previous < 0 && current > 0:
		return &Alert{
			Ticker:   ticker,
			Type:     TypeGexFlip,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%s: GEX flipped POSITIVE, dealers now stabilize", ticker),
			Details: fmt.Sprintf("Net GEX went from %.0f to +%.0f. Expect mean-reverting, range-bound behavior.",
				*previous, current),
		}
	}
	return nil
}

// DetectWallShifts fires when the call or put wall moved to a different
// strike since the previous cycle.
func DetectWallShifts(ticker string, curCall, curPut, prevCall, prevPut *float64) []Alert {
	var alerts []Alert

	if curCall != nil && prevCall != nil && *curCall != *prevCall {
		alerts = append(alerts, Alert{
			Ticker:   ticker,
			Type:     TypeNewMaxStrike,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("%s: Call wall shifted $%.1f → $%.1f", ticker, *prevCall, *curCall),
			Details: fmt.Sprintf("Max positive GEX strike (resistance) moved from $%.1f to $%.1f",
				*prevCall, *curCall),
		})
	}

	if curPut != nil && prevPut != nil && *curPut != *prevPut {
		alerts = append(alerts, Alert{
			Ticker:   ticker,
			Type:     TypeNewMaxStrike,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("%s: Put wall shifted $%.1f → $%.1f", ticker, *prevPut, *curPut),
			Details: fmt.Sprintf("Max negative GEX strike (support) moved from $%.1f to $%.1f",
				*prevPut, *curPut),
		})
	}

	return alerts
}

// DetectPriceNearWall fires when spot trades within thresholdPct of a
// gamma wall.
func DetectPriceNearWall(ticker string, price float64, callWall, putWall *float64, thresholdPct float64) []Alert {
	if price <= 0 {
		return nil
	}

	var alerts []Alert

	if callWall != nil && *callWall > 0 {
		if dist := math.Abs(price-*callWall) / price * 100; dist <= thresholdPct {
			alerts = append(alerts, Alert{
				Ticker:   ticker,
				Type:     TypePriceNearWall,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("%s: Price $%.2f within %.1f%% of call wall $%.1f", ticker, price, dist, *callWall),
				Details:  "Approaching max positive GEX strike (resistance). Expect selling pressure from dealer hedging.",
			})
		}
	}

	if putWall != nil && *putWall > 0 {
		if dist := math.Abs(price-*putWall) / price * 100; dist <= thresholdPct {
			alerts = append(alerts, Alert{
				Ticker:   ticker,
				Type:     TypePriceNearWall,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("%s: Price $%.2f within %.1f%% of put wall $%.1f", ticker, price, dist, *putWall),
				Details:  "Approaching max negative GEX strike (support). Expect buying pressure from dealer hedging.",
			})
		}
	}

	return alerts
}

// Detector runs all alert checks between consecutive cycles.
type Detector struct {
	thresholdPct float64
	log          *logger.Logger
}

// NewDetector creates a detector. thresholdPct is the price-near-wall
// distance in percent.
func NewDetector(thresholdPct float64, log *logger.Logger) *Detector {
	if thresholdPct <= 0 {
		thresholdPct = 1.0
	}
	return &Detector{thresholdPct: thresholdPct, log: log}
}

// Check compares the current cycle's gamma levels against the previous
// cycle's and returns all detected alerts, most severe first.
func (d *Detector) Check(current, previous map[string]*contracts.GammaLevels) []Alert {
	var all []Alert

	for ticker, cur := range current {
		if cur == nil {
			continue
		}

		var prevNetGEX *float64
		var prevCall, prevPut *float64
		if prev, ok := previous[ticker]; ok && prev != nil {
			n := prev.NetGEX()
			prevNetGEX = &n
			prevCall = prev.CallWallStrike
			prevPut = prev.PutWallStrike
		}

		if a := DetectGexFlip(ticker, cur.NetGEX(), prevNetGEX); a != nil {
			all = append(all, *a)
		}
		all = append(all, DetectWallShifts(ticker, cur.CallWallStrike, cur.PutWallStrike, prevCall, prevPut)...)
		all = append(all, DetectPriceNearWall(ticker, cur.Price, cur.CallWallStrike, cur.PutWallStrike, d.thresholdPct)...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return severityOrder[all[i].Severity] < severityOrder[all[j].Severity]
	})

	if len(all) > 0 && d.log != nil {
		d.log.Infof("Detected %d alerts across %d tickers", len(all), len(current))
	}

	return all
}
