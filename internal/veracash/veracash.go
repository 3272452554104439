// Package veracash scrapes gram prices for gold and silver from Veracash
// public pages. These back the VERACASH:* synthetic identifiers and the
// 1oz gold bar, which is priced as the spot gram price times the troy ounce.
package veracash

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"marketfetcher/internal/fetcher"
	"marketfetcher/internal/ratelimit"
	"marketfetcher/internal/scrape"
)

// Metal kinds, matching the suffix of the VERACASH:* identifiers.
const (
	GoldPremium = "GOLD_PREMIUM"
	GoldSpot    = "GOLD_SPOT"
	SilverSpot  = "SILVER_SPOT"
)

// displayNames are the fixed names shown for the synthetic instruments.
var displayNames = map[string]string{
	GoldPremium: "Veracash Gold Premium (1g)",
	GoldSpot:    "Veracash Gold Spot (1g)",
	SilverSpot:  "Veracash Silver Spot (1g)",
}

// Anchor locates a metal's price cell on the page: the extraction starts at
// the anchor text and takes the first plausible euro amount after it. The
// floor rejects incidental page numbers; silver trades around 1 EUR/g so its
// floor must sit well below gold's.
type Anchor struct {
	Search string
	Floor  float64
}

// Config holds the page URL and per-metal anchors, kept as configuration
// because the upstream markup changes over time.
type Config struct {
	URL     string
	Anchors map[string]Anchor
}

// Spot is a scraped per-gram price. Veracash quotes in EUR only.
type Spot struct {
	Kind         string
	DisplayName  string
	PricePerGram float64
	Currency     string
}

// Client scrapes the Veracash spot page.
type Client struct {
	cfg     Config
	http    *fetcher.Client
	parser  scrape.Parser
	limiter *ratelimit.Limiter
	log     zerolog.Logger
}

// NewClient creates a Veracash client.
func NewClient(cfg Config, http *fetcher.Client, parser scrape.Parser, limiter *ratelimit.Limiter, log zerolog.Logger) *Client {
	return &Client{
		cfg:     cfg,
		http:    http,
		parser:  parser,
		limiter: limiter,
		log:     log.With().Str("component", "veracash").Logger(),
	}
}

// DisplayName returns the fixed display name for a metal kind.
func DisplayName(kind string) string {
	return displayNames[kind]
}

// Spot fetches the current per-gram price for a metal kind.
// A nil result with nil error means the page did not yield a price.
func (c *Client) Spot(ctx context.Context, kind string) (*Spot, error) {
	anchor, known := c.cfg.Anchors[kind]
	if !known {
		return nil, fmt.Errorf("unknown veracash metal %q", kind)
	}
	if !scrape.Enabled(c.parser) {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx, ratelimit.UpstreamVeracash); err != nil {
		return nil, err
	}

	body, status, err := c.http.Get(ctx, c.cfg.URL, nil)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		c.log.Debug().Int("status", status).Msg("spot page unavailable")
		return nil, fetcher.ClassifyHTTPError(status)
	}

	doc, err := c.parser.Parse(body)
	if err != nil {
		if err == scrape.ErrDisabled {
			return nil, nil
		}
		return nil, fetcher.NewParseError(err.Error())
	}

	price, ok := scrape.ExtractEuroAmountAfter(doc.Text(), anchor.Search, anchor.Floor)
	if !ok {
		c.log.Debug().Str("kind", kind).Msg("no price found near anchor")
		return nil, nil
	}

	return &Spot{
		Kind:         kind,
		DisplayName:  displayNames[kind],
		PricePerGram: price,
		Currency:     "EUR",
	}, nil
}
