package contracts

import (
	"testing"
	"time"
)

func TestGammaLevels_NetGEX(t *testing.T) {
	call, put := 500.0, 480.0
	g := &GammaLevels{
		Ticker:         "SPY",
		CallWallStrike: &call, CallWallValue: 3e7,
		PutWallStrike: &put, PutWallValue: -1e7,
	}

	if got := g.NetGEX(); got != 2e7 {
		t.Errorf("NetGEX() = %v, want %v", got, 2e7)
	}

	var nilLevels *GammaLevels
	if got := nilLevels.NetGEX(); got != 0 {
		t.Errorf("nil NetGEX() = %v, want 0", got)
	}
}

func TestGammaLevels_WallPresence(t *testing.T) {
	g := &GammaLevels{Ticker: "SPY"}
	if g.HasCallWall() || g.HasPutWall() {
		t.Error("empty levels should report no walls")
	}

	strike := 500.0
	g.CallWallStrike = &strike
	if !g.HasCallWall() {
		t.Error("expected call wall after setting strike")
	}
}

func TestStrikeKeyRoundTrip(t *testing.T) {
	tests := []float64{500, 500.5, 123.25, 0.5}
	for _, strike := range tests {
		key := StrikeKey(strike)
		if got := ParseStrikeKey(key); got != strike {
			t.Errorf("ParseStrikeKey(StrikeKey(%v)) = %v", strike, got)
		}
	}

	if got := ParseStrikeKey("not-a-number"); got != 0 {
		t.Errorf("ParseStrikeKey(malformed) = %v, want 0", got)
	}
}

func TestGroupByTicker(t *testing.T) {
	cs := []Contract{
		{Ticker: "SPY", Strike: 500},
		{Ticker: "QQQ", Strike: 450},
		{Ticker: "SPY", Strike: 505},
		{Ticker: "", Strike: 100},
	}

	groups := GroupByTicker(cs)

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if len(groups["SPY"]) != 2 {
		t.Errorf("expected 2 SPY contracts, got %d", len(groups["SPY"]))
	}
	if len(groups["QQQ"]) != 1 {
		t.Errorf("expected 1 QQQ contract, got %d", len(groups["QQQ"]))
	}
}

func TestRecommendation_LogEntry(t *testing.T) {
	ts := time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)
	rec := Recommendation{
		Ticker:       "SPY",
		Score:        72,
		Direction:    DirectionBullish,
		PlayType:     "Bull Put Spread",
		PriceAtScore: 500.25,
		NetGEXValue:  2e7,
		IVRankValue:  0.6,
		Timestamp:    ts,
	}

	entry := rec.LogEntry()

	if entry.Ticker != "SPY" || entry.Score != 72 {
		t.Errorf("unexpected entry identity: %+v", entry)
	}
	if entry.NetGEX != 2e7 || entry.IVRank != 0.6 {
		t.Errorf("unexpected entry values: %+v", entry)
	}
	if !entry.Timestamp.Equal(ts) {
		t.Errorf("timestamp not carried: %v", entry.Timestamp)
	}
}
