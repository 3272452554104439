package fetcher

import "time"

// MarketDataResult is the outcome of resolving one instrument identifier.
// Exactly one of Price or FailureReason is meaningful: a result without a
// price carries the most diagnostic failure text collected across sources.
// Results are built fresh per fetch call and never mutated afterwards.
type MarketDataResult struct {
	Identifier     string
	ResolvedTicker string
	DisplayName    string
	Price          *float64
	Currency       string
	AsOf           time.Time
	FailureReason  string
}

// HasPrice reports whether the resolution produced a usable price.
func (r MarketDataResult) HasPrice() bool {
	return r.Price != nil
}

// HistoricalPricePoint is one (identifier, date) price observation.
// Backfill adapters produce at most one point per calendar day, ordered by
// ascending date.
type HistoricalPricePoint struct {
	Identifier string
	Date       time.Time
	Value      float64
	Currency   string
}

// ExchangeRate is a currency-pair rate observation.
type ExchangeRate struct {
	From string
	To   string
	Rate float64
	Date time.Time
}

// Float returns a pointer to v, for building results in place.
func Float(v float64) *float64 {
	return &v
}
