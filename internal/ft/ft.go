// Package ft scrapes prices from Financial Times tearsheet pages. FT lists
// many European funds that Yahoo does not carry, including per-currency
// share-class pages addressed by "ISIN:CCC", which is why the orchestrator
// tries it first for currency-suffixed identifiers.
package ft

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"marketfetcher/internal/fetcher"
	"marketfetcher/internal/ratelimit"
	"marketfetcher/internal/scrape"
)

// priceLabelAnchor marks the label of the price cell on a tearsheet.
const priceLabelAnchor = "Price ("

// currencyTokens are the codes recognized inside a price label, e.g.
// "Price (EUR)". GBX is FT's pence quotation. EUR is the default when no
// token matches.
var currencyTokens = []string{
	"USD", "EUR", "GBP", "GBX", "CHF", "JPY", "CAD", "AUD", "SGD", "HKD",
}

// Config holds the tearsheet URL templates (one %s for the query) and the
// CSS selectors for the label/value data list. Upstream markup changes are
// operational configuration, not code.
type Config struct {
	FundsURL      string
	ETFURL        string
	LabelSelector string
	ValueSelector string
}

// Price is a price scraped from a tearsheet.
type Price struct {
	Query    string
	Price    float64
	Currency string
}

// Client scrapes FT tearsheet pages through the shared HTTP wrapper.
type Client struct {
	cfg     Config
	http    *fetcher.Client
	parser  scrape.Parser
	limiter *ratelimit.Limiter
	log     zerolog.Logger
}

// NewClient creates an FT tearsheet client.
func NewClient(cfg Config, http *fetcher.Client, parser scrape.Parser, limiter *ratelimit.Limiter, log zerolog.Logger) *Client {
	return &Client{
		cfg:     cfg,
		http:    http,
		parser:  parser,
		limiter: limiter,
		log:     log.With().Str("component", "ft").Logger(),
	}
}

// ParseTearsheet locates the label/value pair whose label contains
// "Price (" and returns its numeric value with the currency inferred from
// the label text. The page is rejected when its title contains "Error" or no
// matching label exists.
func ParseTearsheet(doc scrape.Document, labelSelector, valueSelector string) (Price, bool) {
	if strings.Contains(doc.Title(), "Error") {
		return Price{}, false
	}

	labels := doc.Each(labelSelector)
	values := doc.Each(valueSelector)

	for i, label := range labels {
		if !strings.Contains(label, priceLabelAnchor) || i >= len(values) {
			continue
		}

		raw := strings.ReplaceAll(strings.TrimSpace(values[i]), ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}

		currency := "EUR"
		for _, code := range currencyTokens {
			if strings.Contains(label, code) {
				currency = code
				break
			}
		}

		return Price{Price: v, Currency: currency}, true
	}

	return Price{}, false
}

// Fetch scrapes the price for query, trying the funds tearsheet and then the
// ETF variant. A nil result with nil error means neither page has it.
func (c *Client) Fetch(ctx context.Context, query string) (*Price, error) {
	if !scrape.Enabled(c.parser) {
		return nil, nil
	}
	for _, tmpl := range []string{c.cfg.FundsURL, c.cfg.ETFURL} {
		if tmpl == "" {
			continue
		}
		price, err := c.fetchPage(ctx, fmt.Sprintf(tmpl, query))
		if err != nil {
			return nil, err
		}
		if price != nil {
			price.Query = query
			return price, nil
		}
	}
	return nil, nil
}

func (c *Client) fetchPage(ctx context.Context, url string) (*Price, error) {
	if err := c.limiter.Wait(ctx, ratelimit.UpstreamFT); err != nil {
		return nil, err
	}

	body, status, err := c.http.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		// Tearsheets 404 for unknown identifiers; that is "no data" here.
		c.log.Debug().Str("url", url).Int("status", status).Msg("tearsheet unavailable")
		return nil, nil
	}

	doc, err := c.parser.Parse(body)
	if err != nil {
		if err == scrape.ErrDisabled {
			return nil, nil
		}
		return nil, fetcher.NewParseError(err.Error())
	}

	price, ok := ParseTearsheet(doc, c.cfg.LabelSelector, c.cfg.ValueSelector)
	if !ok {
		return nil, nil
	}
	return &price, nil
}
