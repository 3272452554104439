package aucoffre

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"marketfetcher/internal/fetcher"
	"marketfetcher/internal/scrape"
)

// initialDataMarker locates the embedded chart data blob inside a script tag
// on the product page.
const initialDataMarker = "initialData"

// candidatePaths are the spots where the [timestampMs, price] pairs have been
// observed inside the blob, across upstream page revisions.
var candidatePaths = []string{
	"$.series[0].data",
	"$.data",
}

// ExtractHistory parses the embedded initialData JSON out of a raw page body
// and returns one point per calendar day, first occurrence winning, sorted by
// ascending date. Returns false when the page carries no usable blob.
// Upstream only keeps roughly six months of history on these pages.
func ExtractHistory(body []byte, identifier string) ([]fetcher.HistoricalPricePoint, bool) {
	blob, ok := extractInitialData(string(body))
	if !ok {
		return nil, false
	}

	var jobj any
	if err := json.Unmarshal([]byte(blob), &jobj); err != nil {
		return nil, false
	}

	pairs := findPairs(jobj)
	if len(pairs) == 0 {
		return nil, false
	}

	seen := make(map[string]bool)
	var points []fetcher.HistoricalPricePoint
	for _, p := range pairs {
		day := time.UnixMilli(int64(p[0])).UTC().Truncate(24 * time.Hour)
		key := day.Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true
		points = append(points, fetcher.HistoricalPricePoint{
			Identifier: identifier,
			Date:       day,
			Value:      p[1],
			Currency:   "EUR",
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, true
}

// findPairs digs the pair list out of the blob, whatever revision of the page
// produced it: a bare top-level array, or an object carrying the array at one
// of the known paths.
func findPairs(jobj any) [][2]float64 {
	if pairs := asPairs(jobj); pairs != nil {
		return pairs
	}
	for _, path := range candidatePaths {
		jval, err := jsonpath.Get(path, jobj)
		if err != nil {
			continue
		}
		if pairs := asPairs(jval); pairs != nil {
			return pairs
		}
	}
	return nil
}

func asPairs(v any) [][2]float64 {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var pairs [][2]float64
	for _, item := range list {
		pair, ok := item.([]any)
		if !ok || len(pair) < 2 {
			continue
		}
		ts, tsOK := pair[0].(float64)
		price, priceOK := pair[1].(float64)
		if !tsOK || !priceOK {
			continue
		}
		pairs = append(pairs, [2]float64{ts, price})
	}
	return pairs
}

// extractInitialData cuts the JSON value assigned to initialData out of the
// page text by matching brackets from its first [ or {.
func extractInitialData(page string) (string, bool) {
	idx := strings.Index(page, initialDataMarker)
	if idx < 0 {
		return "", false
	}
	rest := page[idx+len(initialDataMarker):]

	start := strings.IndexAny(rest, "[{")
	if start < 0 {
		return "", false
	}

	open := rest[start]
	var closing byte = ']'
	if open == '{' {
		closing = '}'
	}

	depth := 0
	inString := false
	for i := start; i < len(rest); i++ {
		ch := rest[i]
		switch {
		case inString:
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inString = false
			}
		case ch == '"':
			inString = true
		case ch == open:
			depth++
		case ch == closing:
			depth--
			if depth == 0 {
				return rest[start : i+1], true
			}
		}
	}
	return "", false
}

// History fetches the embedded historical series for a configured coin.
// It never fails: total failure returns an empty slice, logged for
// diagnostics only.
func (c *Client) History(ctx context.Context, key string) ([]fetcher.HistoricalPricePoint, error) {
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

	points, ok := ExtractHistory(body, key)
	if !ok {
		c.log.Debug().Str("coin", key).Msg("no embedded history blob on page")
		return nil, nil
	}

	divisor := coin.Divisor
	if divisor > 0 && divisor != 1 {
		for i := range points {
			points[i].Value /= divisor
		}
	}
	return points, nil
}
