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

// chartResponse mirrors the v8 chart endpoint payload.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string     `json:"currency"`
				Symbol             string     `json:"symbol"`
				RegularMarketPrice flexNumber `json:"regularMarketPrice"`
				PreviousClose      flexNumber `json:"previousClose"`
				ChartPreviousClose flexNumber `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// SeriesPoint is one (time, close) observation from a chart series.
type SeriesPoint struct {
	Time  time.Time
	Close float64
}

// Series is a chart time series with its quote currency.
type Series struct {
	Currency string
	Points   []SeriesPoint
}

// Latest returns the most recent point of the series.
func (s Series) Latest() (SeriesPoint, bool) {
	if len(s.Points) == 0 {
		return SeriesPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// ParseChartSeries extracts the (timestamp, close) series and currency from a
// raw v8 chart body. Null closes are skipped. Returns false when any required
// key is absent or the series is empty, so the orchestrator can try the next
// source; it never fails harder than that.
func ParseChartSeries(body []byte) (Series, bool) {
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Series{}, false
	}
	if len(resp.Chart.Result) == 0 {
		return Series{}, false
	}

	r := resp.Chart.Result[0]
	if len(r.Timestamp) == 0 || len(r.Indicators.Quote) == 0 {
		return Series{}, false
	}

	closes := r.Indicators.Quote[0].Close
	n := len(r.Timestamp)
	if len(closes) < n {
		n = len(closes)
	}

	series := Series{Currency: r.Meta.Currency}
	for i := 0; i < n; i++ {
		if closes[i] == nil {
			continue
		}
		series.Points = append(series.Points, SeriesPoint{
			Time:  time.Unix(r.Timestamp[i], 0),
			Close: *closes[i],
		})
	}
	if len(series.Points) == 0 {
		return Series{}, false
	}
	return series, true
}

// ParseChartMeta extracts a price from the chart payload's meta summary
// block. It is the fallback for instruments whose chart payload carries no
// time series but still reports a regular market price; the quote endpoint is
// unauthorized for some of those, so this block is the last Yahoo-side
// chance. Keys are tried in the order regularMarketPrice, previousClose,
// chartPreviousClose, and a currency is required.
func ParseChartMeta(body []byte) (QuotePrice, bool) {
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return QuotePrice{}, false
	}
	if len(resp.Chart.Result) == 0 {
		return QuotePrice{}, false
	}

	meta := resp.Chart.Result[0].Meta
	price, ok := firstPresent(meta.RegularMarketPrice, meta.PreviousClose, meta.ChartPreviousClose)
	if !ok || meta.Currency == "" {
		return QuotePrice{}, false
	}

	return QuotePrice{
		Symbol:   meta.Symbol,
		Price:    price,
		Currency: meta.Currency,
		AsOf:     time.Now(),
	}, true
}

// chartBody fetches the raw chart payload for a symbol.
func (c *Client) chartBody(ctx context.Context, symbol, rng, interval string) ([]byte, error) {
	if err := c.limiter.Wait(ctx, ratelimit.UpstreamYahoo); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/%s?interval=%s&range=%s",
		c.cfg.ChartBaseURL, url.PathEscape(symbol), url.QueryEscape(interval), url.QueryEscape(rng))
	body, status, err := c.http.Get(ctx, u, nil)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		c.log.Debug().Str("symbol", symbol).Int("status", status).Msg("chart endpoint refused")
		return nil, fetcher.ClassifyHTTPError(status)
	}
	return body, nil
}

// ChartQuote fetches the chart endpoint once and returns both readings of it:
// the latest close of the time series, and the meta-only summary price. Either
// may be nil when that shape is absent from the payload.
func (c *Client) ChartQuote(ctx context.Context, symbol string) (series *QuotePrice, metaOnly *QuotePrice, err error) {
	body, err := c.chartBody(ctx, symbol, "1d", "1d")
	if err != nil {
		return nil, nil, err
	}

	if s, ok := ParseChartSeries(body); ok {
		if latest, ok := s.Latest(); ok {
			series = &QuotePrice{
				Symbol:   symbol,
				Price:    latest.Close,
				Currency: s.Currency,
				AsOf:     latest.Time,
			}
		}
	}
	if qp, ok := ParseChartMeta(body); ok {
		metaOnly = &qp
	}
	return series, metaOnly, nil
}

// History fetches a chart time series for the given range and interval.
// A nil series with nil error means the endpoint has no data for the symbol.
func (c *Client) History(ctx context.Context, symbol, rng, interval string) (*Series, error) {
	body, err := c.chartBody(ctx, symbol, rng, interval)
	if err != nil {
		return nil, err
	}
	s, ok := ParseChartSeries(body)
	if !ok {
		return nil, nil
	}
	return &s, nil
}
