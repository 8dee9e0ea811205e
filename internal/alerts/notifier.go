package alerts

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hmartin/gexsight/internal/store"
	"github.com/hmartin/gexsight/pkg/httputil"
	"github.com/hmartin/gexsight/pkg/logger"
	"github.com/hmartin/gexsight/pkg/redis"
)

// Broadcaster pushes alerts to connected dashboard clients.
type Broadcaster interface {
	BroadcastAlerts(alerts []Alert)
}

// telegramAlertCap limits how many alerts go into one Telegram message.
const telegramAlertCap = 10

// Notifier routes detected alerts to the database, websocket clients,
// Discord, and Telegram. Channel failures are logged, never fatal: a
// dead webhook must not stop the scoring cycle.
type Notifier struct {
	discordWebhook string
	telegramChatID int64
	telegram       *tgbotapi.BotAPI
	http           *httputil.Client
	limiter        *redis.RateLimiter
	repo           *store.AlertRepository
	hub            Broadcaster
	log            *logger.Logger
}

// NotifierConfig carries the channel settings for a Notifier.
type NotifierConfig struct {
	DiscordWebhook   string
	TelegramBotToken string
	TelegramChatID   int64
}

// NewNotifier creates a notifier. Each channel is optional: empty
// webhook or token simply disables that channel. limiter, repo and hub
// may be nil.
func NewNotifier(cfg NotifierConfig, httpClient *httputil.Client, limiter *redis.RateLimiter, repo *store.AlertRepository, hub Broadcaster, log *logger.Logger) *Notifier {
	n := &Notifier{
		discordWebhook: cfg.DiscordWebhook,
		telegramChatID: cfg.TelegramChatID,
		http:           httpClient,
		limiter:        limiter,
		repo:           repo,
		hub:            hub,
		log:            log,
	}

	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			if log != nil {
				log.WithError(err).Warn("Telegram bot init failed, channel disabled")
			}
		} else {
			n.telegram = bot
		}
	}

	return n
}

// Dispatch persists alerts and fans them out to every configured
// channel.
func (n *Notifier) Dispatch(ctx context.Context, alerts []Alert) {
	if len(alerts) == 0 {
		return
	}

	now := time.Now()
	if n.repo != nil {
		for _, a := range alerts {
			var details *string
			if a.Details != "" {
				d := a.Details
				details = &d
			}
			if err := n.repo.Save(ctx, a.Ticker, a.Type, a.Message, details, now); err != nil {
				if n.log != nil {
					n.log.WithError(err).Warn("Could not save alert to database")
				}
			}
		}
	}

	if n.hub != nil {
		n.hub.BroadcastAlerts(alerts)
	}

	var critical, warning, info []Alert
	for _, a := range alerts {
		switch a.Severity {
		case SeverityCritical:
			critical = append(critical, a)
		case SeverityWarning:
			warning = append(warning, a)
		default:
			info = append(info, a)
		}
	}

	n.sendDiscord(ctx, critical, warning, info)
	n.sendTelegram(ctx, critical, warning)

	if n.log != nil {
		n.log.Infof("Dispatched %d alerts (%d critical, %d warning, %d info)",
			len(alerts), len(critical), len(warning), len(info))
	}
}

// sendDiscord posts all alerts grouped by severity to the webhook.
func (n *Notifier) sendDiscord(ctx context.Context, critical, warning, info []Alert) {
	if n.discordWebhook == "" || n.http == nil {
		return
	}

	var parts []string
	if len(critical) > 0 {
		parts = append(parts, "**CRITICAL**\n"+joinMessages(critical, len(critical)))
	}
	if len(warning) > 0 {
		parts = append(parts, "**WARNING**\n"+joinMessages(warning, len(warning)))
	}
	if len(info) > 0 {
		parts = append(parts, "**INFO**\n"+joinMessages(info, telegramAlertCap))
	}
	if len(parts) == 0 {
		return
	}
	if !n.allow(ctx, redis.DiscordRateLimit) {
		return
	}

	payload := map[string]string{"content": strings.Join(parts, "\n\n")}
	resp, err := n.http.PostJSON(ctx, n.discordWebhook, payload)
	if err != nil {
		if n.log != nil {
			n.log.WithError(err).Warn("Discord webhook failed")
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 && resp.StatusCode != 204 {
		if n.log != nil {
			n.log.Warnf("Discord webhook returned %d", resp.StatusCode)
		}
	}
}

// sendTelegram sends critical and warning alerts only.
func (n *Notifier) sendTelegram(ctx context.Context, critical, warning []Alert) {
	if n.telegram == nil {
		return
	}

	important := append(append([]Alert{}, critical...), warning...)
	if len(important) == 0 {
		return
	}
	if !n.allow(ctx, redis.TelegramRateLimit) {
		return
	}

	text := "GEXsight Alerts\n\n" + joinMessages(important, telegramAlertCap)
	msg := tgbotapi.NewMessage(n.telegramChatID, text)
	if _, err := n.telegram.Send(msg); err != nil && n.log != nil {
		n.log.WithError(err).Warn("Telegram send failed")
	}
}

// allow asks the shared limiter for a send slot. Limiter errors fail
// open: the alert matters more than the budget bookkeeping.
func (n *Notifier) allow(ctx context.Context, cfg redis.RateLimitConfig) bool {
	if n.limiter == nil {
		return true
	}
	allowed, _, err := n.limiter.Allow(ctx, cfg)
	if err != nil {
		if n.log != nil {
			n.log.WithError(err).Warn("Rate limit check failed, sending anyway")
		}
		return true
	}
	if !allowed && n.log != nil {
		n.log.Warnf("%s rate limit reached, dropping alert message", cfg.Key)
	}
	return allowed
}

func joinMessages(alerts []Alert, max int) string {
	if len(alerts) > max {
		alerts = alerts[:max]
	}
	msgs := make([]string, len(alerts))
	for i, a := range alerts {
		msgs[i] = a.Message
	}
	return strings.Join(msgs, "\n")
}
