package history

import (
	"context"
	"fmt"
	"math"

	"github.com/hmartin/gexsight/internal/contracts"
	"github.com/hmartin/gexsight/pkg/logger"
	"github.com/hmartin/gexsight/pkg/redis"
)

// Provider assembles the per-ticker historical context consumed by the
// scorer. Every failure path degrades to the neutral context so scoring
// never depends on history being available.
type Provider struct {
	repo  *Repository
	cache *redis.Cache
	log   *logger.Logger
}

// NewProvider creates a context provider. cache may be nil.
func NewProvider(repo *Repository, cache *redis.Cache, log *logger.Logger) *Provider {
	return &Provider{repo: repo, cache: cache, log: log}
}

func contextKey(ticker string) string {
	return fmt.Sprintf("histctx:%s", ticker)
}

// Fetch returns the historical context for a ticker. Results are cached
// briefly since several jobs score the same tickers each cycle.
func (p *Provider) Fetch(ctx context.Context, ticker string) contracts.HistoricalContext {
	if p.cache != nil {
		var cached contracts.HistoricalContext
		if found, err := p.cache.Get(ctx, contextKey(ticker), &cached); err == nil && found {
			return cached
		}
	}

	hc := contracts.NeutralContext()

	netGEX, ok, err := p.repo.LatestNetGEX(ctx, ticker)
	if err != nil {
		p.debugf(ticker, "latest net GEX", err)
	} else if ok {
		pct, err := p.repo.Percentile(ctx, ticker, "net_gex", math.Abs(netGEX), PercentileHours)
		if err != nil {
			p.debugf(ticker, "GEX percentile", err)
		} else {
			hc.GexPercentile = pct
		}
	}

	momentum, err := p.repo.Momentum(ctx, ticker, MomentumHours)
	if err != nil {
		p.debugf(ticker, "momentum", err)
	} else {
		hc.Momentum = momentum
	}

	ivRank, err := p.repo.IVRank(ctx, ticker, IVRankHours)
	if err != nil {
		p.debugf(ticker, "IV rank", err)
	} else {
		hc.IVRank = ivRank
	}

	prevPC, ok, err := p.repo.PreviousPCRatio(ctx, ticker)
	if err != nil {
		p.debugf(ticker, "previous P/C ratio", err)
	} else if ok {
		hc.PreviousPCRatio = &prevPC
	}

	if p.cache != nil {
		_ = p.cache.Set(ctx, contextKey(ticker), hc, redis.TTLShort)
	}

	return hc
}

func (p *Provider) debugf(ticker, what string, err error) {
	if p.log != nil {
		p.log.Debugf("Historical %s for %s unavailable: %v", what, ticker, err)
	}
}
