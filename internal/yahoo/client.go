// Package yahoo fetches prices from the Yahoo Finance chart, quote and
// search endpoints. Many fund identifiers have quote data but no chart
// series, and vice versa, so the orchestrator tries both shapes.
package yahoo

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"marketfetcher/internal/fetcher"
	"marketfetcher/internal/ratelimit"
)

// Config holds the endpoint base URLs. Defaults live in the config package;
// tests point them at httptest servers.
type Config struct {
	ChartBaseURL  string
	QuoteBaseURL  string
	SearchBaseURL string
}

// Client talks to the three Yahoo Finance endpoints through the shared
// HTTP wrapper.
type Client struct {
	cfg     Config
	http    *fetcher.Client
	limiter *ratelimit.Limiter
	log     zerolog.Logger
}

// NewClient creates a Yahoo Finance client.
func NewClient(cfg Config, http *fetcher.Client, limiter *ratelimit.Limiter, log zerolog.Logger) *Client {
	return &Client{
		cfg:     cfg,
		http:    http,
		limiter: limiter,
		log:     log.With().Str("component", "yahoo").Logger(),
	}
}

// QuotePrice is a single resolved price with its metadata.
type QuotePrice struct {
	Symbol   string
	Name     string
	Price    float64
	Currency string
	AsOf     time.Time
}

// flexNumber accepts a price encoded either as a JSON number or as a numeric
// string; both occur in the wild on the quote endpoint.
type flexNumber struct {
	val float64
	ok  bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Junk in a price field is treated as absent, not fatal: the
		// orchestrator will move on to the next source.
		return nil
	}
	n.val = v
	n.ok = true
	return nil
}

// firstPresent returns the first populated value among candidates, in order.
func firstPresent(candidates ...flexNumber) (float64, bool) {
	for _, c := range candidates {
		if c.ok {
			return c.val, true
		}
	}
	return 0, false
}
