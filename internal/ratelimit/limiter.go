package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Upstream identifies the external hosts we fetch from
type Upstream string

const (
	// UpstreamYahoo covers the chart, quote and search endpoints
	UpstreamYahoo Upstream = "yahoo"
	// UpstreamFT is the Financial Times tearsheet pages
	UpstreamFT Upstream = "ft"
	// UpstreamVeracash is the Veracash spot-price pages
	UpstreamVeracash Upstream = "veracash"
	// UpstreamAuCoffre is the AuCOFFRE coin pages
	UpstreamAuCoffre Upstream = "aucoffre"
)

// Limiter manages rate limits for the upstream hosts. One instance is
// constructed at startup and shared by the source adapters; there is no
// package-level singleton so tests can build unlimited instances.
type Limiter struct {
	limiters map[Upstream]*rate.Limiter
	mu       sync.RWMutex
}

// New creates a limiter with conservative per-host defaults. These hosts are
// free services without published quotas, so the limits just keep a batch
// refresh from looking like abuse.
func New() *Limiter {
	return &Limiter{
		limiters: map[Upstream]*rate.Limiter{
			UpstreamYahoo:    rate.NewLimiter(rate.Limit(2), 1),
			UpstreamFT:       rate.NewLimiter(rate.Limit(1), 1),
			UpstreamVeracash: rate.NewLimiter(rate.Limit(1), 1),
			UpstreamAuCoffre: rate.NewLimiter(rate.Limit(1), 1),
		},
	}
}

// NewUnlimited creates a limiter that never blocks, for tests.
func NewUnlimited() *Limiter {
	return &Limiter{
		limiters: map[Upstream]*rate.Limiter{
			UpstreamYahoo:    rate.NewLimiter(rate.Inf, 1),
			UpstreamFT:       rate.NewLimiter(rate.Inf, 1),
			UpstreamVeracash: rate.NewLimiter(rate.Inf, 1),
			UpstreamAuCoffre: rate.NewLimiter(rate.Inf, 1),
		},
	}
}

// Wait blocks until the rate limiter permits an event for the given upstream.
// It returns an error if the context is canceled before the event can proceed.
func (l *Limiter) Wait(ctx context.Context, upstream Upstream) error {
	l.mu.RLock()
	limiter, exists := l.limiters[upstream]
	l.mu.RUnlock()

	if !exists {
		// No limiter configured for this host, allow the request
		return nil
	}

	return limiter.Wait(ctx)
}

// Allow reports whether an event for the given upstream may happen now
func (l *Limiter) Allow(upstream Upstream) bool {
	l.mu.RLock()
	limiter, exists := l.limiters[upstream]
	l.mu.RUnlock()

	if !exists {
		return true
	}

	return limiter.Allow()
}
