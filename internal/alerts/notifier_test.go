package alerts

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmartin/gexsight/pkg/config"
	"github.com/hmartin/gexsight/pkg/redis"
)

type captureHub struct {
	got []Alert
}

func (c *captureHub) BroadcastAlerts(as []Alert) { c.got = append(c.got, as...) }

// disabledLimiter builds a limiter over a disabled Redis client, which
// admits every request.
func disabledLimiter(t *testing.T) *redis.RateLimiter {
	t.Helper()
	client, err := redis.New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return redis.NewRateLimiter(client, "gexsight")
}

func TestDispatchBroadcastsToHub(t *testing.T) {
	hub := &captureHub{}
	n := NewNotifier(NotifierConfig{}, nil, disabledLimiter(t), nil, hub, testLogger())

	n.Dispatch(context.Background(), []Alert{
		{Ticker: "SPY", Type: TypeGexFlip, Severity: SeverityCritical, Message: "Net GEX flipped NEGATIVE"},
		{Ticker: "QQQ", Type: TypeNewMaxStrike, Severity: SeverityInfo, Message: "Call wall moved"},
	})

	require.Len(t, hub.got, 2)
	assert.Equal(t, "SPY", hub.got[0].Ticker)
	assert.Equal(t, "QQQ", hub.got[1].Ticker)
}

func TestDispatchEmptyIsNoop(t *testing.T) {
	hub := &captureHub{}
	n := NewNotifier(NotifierConfig{}, nil, nil, nil, hub, testLogger())

	n.Dispatch(context.Background(), nil)

	assert.Empty(t, hub.got)
}

func TestAllowWithoutLimiter(t *testing.T) {
	n := NewNotifier(NotifierConfig{}, nil, nil, nil, nil, testLogger())

	assert.True(t, n.allow(context.Background(), redis.DiscordRateLimit))
}

func TestAllowWithDisabledRedis(t *testing.T) {
	n := NewNotifier(NotifierConfig{}, nil, disabledLimiter(t), nil, nil, testLogger())

	assert.True(t, n.allow(context.Background(), redis.DiscordRateLimit))
	assert.True(t, n.allow(context.Background(), redis.TelegramRateLimit))
}

func TestJoinMessagesCapped(t *testing.T) {
	alerts := make([]Alert, 15)
	for i := range alerts {
		alerts[i].Message = fmt.Sprintf("alert %d", i)
	}

	joined := joinMessages(alerts, telegramAlertCap)

	lines := strings.Split(joined, "\n")
	require.Len(t, lines, telegramAlertCap)
	assert.Equal(t, "alert 0", lines[0])
	assert.Equal(t, "alert 9", lines[len(lines)-1])
}
