// Package aucoffre scrapes coin prices from AuCOFFRE product pages. Each
// COIN:* synthetic identifier maps to a table-driven config entry naming the
// page, the text anchor near the price, and a unit divisor for coins quoted
// as lots. Historical series come from a JSON blob embedded in a script tag
// on the same pages.
package aucoffre

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"marketfetcher/internal/fetcher"
	"marketfetcher/internal/ratelimit"
	"marketfetcher/internal/scrape"
)

// priceFloor rejects stray incidental numbers on the page; no coin tracked
// here trades below 10 EUR.
const priceFloor = 10.0

// CoinConfig describes one scraped coin. The URLs and search anchors follow
// upstream page changes, so they are configuration, not code.
type CoinConfig struct {
	Key         string
	URL         string
	SearchText  string
	DisplayName string
	// Divisor converts a lot price to a unit price (1 when quoted per coin).
	Divisor float64
}

// CoinPrice is a scraped per-unit coin price. AuCOFFRE quotes in EUR only.
type CoinPrice struct {
	Key         string
	DisplayName string
	Price       float64
	Currency    string
}

// Client scrapes AuCOFFRE pages for the configured coin table.
type Client struct {
	coins   map[string]CoinConfig
	http    *fetcher.Client
	parser  scrape.Parser
	limiter *ratelimit.Limiter
	log     zerolog.Logger
}

// NewClient creates an AuCOFFRE client over a coin config table.
func NewClient(coins []CoinConfig, http *fetcher.Client, parser scrape.Parser, limiter *ratelimit.Limiter, log zerolog.Logger) *Client {
	table := make(map[string]CoinConfig, len(coins))
	for _, c := range coins {
		table[c.Key] = c
	}
	return &Client{
		coins:   table,
		http:    http,
		parser:  parser,
		limiter: limiter,
		log:     log.With().Str("component", "aucoffre").Logger(),
	}
}

// Known reports whether a coin key is in the configured table.
func (c *Client) Known(key string) bool {
	_, ok := c.coins[key]
	return ok
}

// Price fetches the current per-unit price for a configured coin.
// A nil result with nil error means the page did not yield a price.
func (c *Client) Price(ctx context.Context, key string) (*CoinPrice, error) {
	coin, known := c.coins[key]
	if !known {
		return nil, fmt.Errorf("unknown coin %q", key)
	}
	if !scrape.Enabled(c.parser) {
		return nil, nil
	}

	body, err := c.fetchPage(ctx, coin.URL)
	if err != nil || body == nil {
		return nil, err
	}

	doc, err := c.parser.Parse(body)
	if err != nil {
		if err == scrape.ErrDisabled {
			return nil, nil
		}
		return nil, fetcher.NewParseError(err.Error())
	}

	price, ok := scrape.ExtractEuroAmountAfter(doc.Text(), coin.SearchText, priceFloor)
	if !ok {
		c.log.Debug().Str("coin", key).Msg("no price found near anchor")
		return nil, nil
	}

	divisor := coin.Divisor
	if divisor <= 0 {
		divisor = 1
	}

	return &CoinPrice{
		Key:         key,
		DisplayName: coin.DisplayName,
		Price:       price / divisor,
		Currency:    "EUR",
	}, nil
}

func (c *Client) fetchPage(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx, ratelimit.UpstreamAuCoffre); err != nil {
		return nil, err
	}

	body, status, err := c.http.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		c.log.Debug().Str("url", url).Int("status", status).Msg("coin page unavailable")
		return nil, nil
	}
	return body, nil
}
