package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"marketfetcher/internal/fetcher"
	"marketfetcher/internal/ratelimit"
)

// quoteResponse mirrors the v7 quote endpoint payload.
type quoteResponse struct {
	QuoteResponse struct {
		Result []quoteResult `json:"result"`
	} `json:"quoteResponse"`
}

type quoteResult struct {
	Symbol                     string     `json:"symbol"`
	ShortName                  string     `json:"shortName"`
	LongName                   string     `json:"longName"`
	Currency                   string     `json:"currency"`
	RegularMarketPrice         flexNumber `json:"regularMarketPrice"`
	RegularMarketPreviousClose flexNumber `json:"regularMarketPreviousClose"`
	PreviousClose              flexNumber `json:"previousClose"`
	Ask                        flexNumber `json:"ask"`
	Bid                        flexNumber `json:"bid"`
	RegularMarketTime          int64      `json:"regularMarketTime"`
}

// ParseQuote extracts a price from a raw v7 quote body. Price fields are
// tried in a fixed priority order; the currency defaults to USD when the
// payload omits it and the date comes from regularMarketTime epoch seconds
// when present, today otherwise. Returns false when the payload carries no
// usable price.
func ParseQuote(body []byte) (QuotePrice, bool) {
	var resp quoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return QuotePrice{}, false
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return QuotePrice{}, false
	}

	r := resp.QuoteResponse.Result[0]
	price, ok := firstPresent(r.RegularMarketPrice, r.RegularMarketPreviousClose, r.PreviousClose, r.Ask, r.Bid)
	if !ok {
		return QuotePrice{}, false
	}

	currency := r.Currency
	if currency == "" {
		currency = "USD"
	}

	asOf := time.Now()
	if r.RegularMarketTime > 0 {
		asOf = time.Unix(r.RegularMarketTime, 0)
	}

	name := r.LongName
	if name == "" {
		name = r.ShortName
	}

	return QuotePrice{
		Symbol:   r.Symbol,
		Name:     name,
		Price:    price,
		Currency: currency,
		AsOf:     asOf,
	}, true
}

// Quote fetches the current price for a ticker from the quote endpoint.
// A nil result with nil error means the endpoint has no data for the symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*QuotePrice, error) {
	if err := c.limiter.Wait(ctx, ratelimit.UpstreamYahoo); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s?symbols=%s", c.cfg.QuoteBaseURL, url.QueryEscape(symbol))
	body, status, err := c.http.Get(ctx, u, nil)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		c.log.Debug().Str("symbol", symbol).Int("status", status).Msg("quote endpoint refused")
		return nil, fetcher.ClassifyHTTPError(status)
	}

	qp, ok := ParseQuote(body)
	if !ok {
		return nil, nil
	}
	return &qp, nil
}
