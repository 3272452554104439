package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"marketfetcher/internal/fetcher"
	"marketfetcher/internal/ratelimit"
)

// searchResponse mirrors the v1 search endpoint payload.
type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

// ParseSearch returns the first ticker symbol in a raw search body, or false
// when the search matched nothing.
func ParseSearch(body []byte) (string, bool) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false
	}
	for _, q := range resp.Quotes {
		if q.Symbol != "" {
			return q.Symbol, true
		}
	}
	return "", false
}

// Search resolves a free query (usually an ISIN) to a ticker symbol.
// An empty string with nil error means the search found nothing.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	if err := c.limiter.Wait(ctx, ratelimit.UpstreamYahoo); err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s?q=%s", c.cfg.SearchBaseURL, url.QueryEscape(query))
	body, status, err := c.http.Get(ctx, u, nil)
	if err != nil {
		return "", err
	}
	if status != 200 {
		c.log.Debug().Str("query", query).Int("status", status).Msg("search endpoint refused")
		return "", fetcher.ClassifyHTTPError(status)
	}

	symbol, ok := ParseSearch(body)
	if !ok {
		return "", nil
	}
	c.log.Debug().Str("query", query).Str("symbol", symbol).Msg("resolved ticker")
	return symbol, nil
}
