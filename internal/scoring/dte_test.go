package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hmartin/gexsight/internal/contracts"
)

var now = time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)

// expIn returns an expiration string n days from the fixed test clock.
func expIn(n int) string {
	return now.AddDate(0, 0, n).Format("2006-01-02")
}

func TestDaysToExpiration(t *testing.T) {
	assert.Equal(t, 7, daysToExpiration(expIn(7), now))
	assert.Equal(t, 1, daysToExpiration(expIn(0), now), "same-day floors at 1")
	assert.Equal(t, 1, daysToExpiration(expIn(-3), now), "past dates floor at 1")
	assert.Equal(t, 30, daysToExpiration("", now), "missing expiration assumes 30")
	assert.Equal(t, 30, daysToExpiration("not-a-date", now), "malformed expiration assumes 30")
	assert.Equal(t, 14, daysToExpiration(expIn(14)+"T00:00:00Z", now), "date prefix is enough")
}

func TestDteDecay(t *testing.T) {
	assert.InDelta(t, 1.0, dteDecay(expIn(1), now), 1e-9)
	assert.InDelta(t, 0.5, dteDecay(expIn(4), now), 1e-9)
	assert.InDelta(t, 0.2, dteDecay(expIn(25), now), 1e-9)
}

func TestComputeDTEWeight(t *testing.T) {
	atm := func(dte int, oi int64) contracts.Contract {
		return contracts.Contract{
			Ticker: "SPY", Strike: 500, Expiration: expIn(dte),
			Type: contracts.Call, OpenInterest: oi, UnderlyingPrice: 500,
		}
	}

	tests := []struct {
		name string
		cs   []contracts.Contract
		want float64
	}{
		{"0DTE concentration maxes out", []contracts.Contract{atm(1, 1000)}, 1.5},
		{"one week out", []contracts.Contract{atm(7, 1000)}, 1.2},
		{"one month out", []contracts.Contract{atm(30, 1000)}, 1.0},
		{"far-dated floor", []contracts.Contract{atm(230, 1000)}, 0.5},
		{"no contracts is neutral", nil, 1.0},
		{
			"OI-weighted average",
			// (1*3000 + 7*1000) / 4000 = 2.5 -> 1.5 - 1.5*0.05 = 1.425
			[]contracts.Contract{atm(1, 3000), atm(7, 1000)},
			1.425,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ComputeDTEWeight(tt.cs, 500, now), 1e-9)
		})
	}
}

func TestComputeDTEWeight_IgnoresAwayFromMoney(t *testing.T) {
	cs := []contracts.Contract{
		// 20% OTM: outside the ATM window, must not move the average
		{Ticker: "SPY", Strike: 600, Expiration: expIn(1),
			Type: contracts.Call, OpenInterest: 100000, UnderlyingPrice: 500},
		{Ticker: "SPY", Strike: 500, Expiration: expIn(30),
			Type: contracts.Call, OpenInterest: 1000, UnderlyingPrice: 500},
	}

	assert.InDelta(t, 1.0, ComputeDTEWeight(cs, 500, now), 1e-9)
}

func TestComputeDTEWeight_Bounds(t *testing.T) {
	for _, dte := range []int{1, 3, 7, 14, 30, 60, 90, 180, 365} {
		cs := []contracts.Contract{{
			Ticker: "SPY", Strike: 500, Expiration: expIn(dte),
			Type: contracts.Call, OpenInterest: 500, UnderlyingPrice: 500,
		}}
		w := ComputeDTEWeight(cs, 500, now)
		assert.GreaterOrEqual(t, w, 0.5, "dte %d", dte)
		assert.LessOrEqual(t, w, 1.5, "dte %d", dte)
	}
}
