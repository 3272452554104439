// Package resolver implements the multi-source price resolution pipeline:
// identifier classification, cascading fallback across Financial Times and
// Yahoo Finance, the bespoke bullion/coin scrape routes, historical backfill
// and benchmark fetching. Sources are tried sequentially: each is a fallback
// for the previous one.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"marketfetcher/internal/aucoffre"
	"marketfetcher/internal/diagnostics"
	"marketfetcher/internal/fetcher"
	"marketfetcher/internal/ft"
	"marketfetcher/internal/identifier"
	"marketfetcher/internal/veracash"
	"marketfetcher/internal/yahoo"
)

// TroyOunceGrams converts between per-gram and per-ounce bullion prices.
const TroyOunceGrams = 31.1034768

// tickerPlaceholder marks an instrument whose ticker is not known yet.
const tickerPlaceholder = "N/A"

// CoinClient is the slice of the AuCOFFRE adapter the resolver needs.
type CoinClient interface {
	Known(key string) bool
	Price(ctx context.Context, key string) (*aucoffre.CoinPrice, error)
	History(ctx context.Context, key string) ([]fetcher.HistoricalPricePoint, error)
}

// VeracashClient is the slice of the Veracash adapter the resolver needs.
type VeracashClient interface {
	Spot(ctx context.Context, kind string) (*veracash.Spot, error)
}

// FTClient is the slice of the FT adapter the resolver needs.
type FTClient interface {
	Fetch(ctx context.Context, query string) (*ft.Price, error)
}

// YahooClient is the slice of the Yahoo adapter the resolver needs.
type YahooClient interface {
	Search(ctx context.Context, query string) (string, error)
	Quote(ctx context.Context, symbol string) (*yahoo.QuotePrice, error)
	ChartQuote(ctx context.Context, symbol string) (*yahoo.QuotePrice, *yahoo.QuotePrice, error)
	History(ctx context.Context, symbol, rng, interval string) (*yahoo.Series, error)
}

// BenchmarkConfig names one reference series fetched for performance
// comparison.
type BenchmarkConfig struct {
	Name   string
	Symbol string
}

// Service is the resolution orchestrator. It is stateless apart from its
// immutable collaborators: one instance is built at startup and shared.
type Service struct {
	yahoo      YahooClient
	ft         FTClient
	veracash   VeracashClient
	coins      CoinClient
	benchmarks []BenchmarkConfig
	diag       *diagnostics.Recorder
	log        zerolog.Logger
}

// NewService creates the orchestrator.
func NewService(y YahooClient, f FTClient, v VeracashClient, c CoinClient, benchmarks []BenchmarkConfig, diag *diagnostics.Recorder, log zerolog.Logger) *Service {
	return &Service{
		yahoo:      y,
		ft:         f,
		veracash:   v,
		coins:      c,
		benchmarks: benchmarks,
		diag:       diag,
		log:        log.With().Str("component", "resolver").Logger(),
	}
}

// FetchData resolves the current price, currency and display name for an
// instrument identifier, trying sources in a fixed priority order and
// stopping at the first success. It never returns an error: on total
// exhaustion the result carries no price and the most diagnostic failure
// text collected along the way.
func (s *Service) FetchData(ctx context.Context, rawID, ticker string) fetcher.MarketDataResult {
	norm := identifier.Normalize(rawID)
	errcap := &fetcher.ErrorCapture{}

	if norm.Kind == identifier.KindSyntheticCommodity {
		return s.fetchSynthetic(ctx, norm, errcap)
	}

	wantCurrency := norm.Currency

	// Currency-suffixed identifiers may have a dedicated per-currency
	// share-class tearsheet under the full "ISIN:CCC" form.
	if norm.Kind == identifier.KindISINWithCurrency {
		if res := s.tryFT(ctx, rawID, norm.Raw, wantCurrency, errcap); res != nil {
			return *res
		}
	}

	if norm.IsISINShaped() {
		if res := s.tryFT(ctx, rawID, norm.ISIN, wantCurrency, errcap); res != nil {
			return *res
		}
	}

	resolved := ticker
	if norm.IsISINShaped() && (resolved == "" || resolved == tickerPlaceholder) {
		symbol, err := s.yahoo.Search(ctx, norm.ISIN)
		errcap.CaptureErr(err)
		resolved = symbol
	}
	if (resolved == "" || resolved == tickerPlaceholder) && !norm.IsISINShaped() {
		// Freeform identifiers are already ticker symbols.
		resolved = norm.Raw
	}

	if resolved != "" && resolved != tickerPlaceholder {
		if res := s.tryYahoo(ctx, rawID, resolved, errcap); res != nil {
			return *res
		}
	}

	// Last-chance pass: FT sometimes answers on a retry after Yahoo came up
	// empty. The currency discard rule still applies.
	if norm.IsISINShaped() {
		if res := s.tryFT(ctx, rawID, norm.ISIN, wantCurrency, errcap); res != nil {
			return *res
		}
	}

	return s.exhausted(rawID, resolved, errcap)
}

// tryFT asks FT for query and applies the currency-match discard rule: when
// the caller wants a specific currency and FT answers in another, the result
// is dropped and the cascade moves on.
func (s *Service) tryFT(ctx context.Context, rawID, query, wantCurrency string, errcap *fetcher.ErrorCapture) *fetcher.MarketDataResult {
	price, err := s.ft.Fetch(ctx, query)
	if err != nil {
		errcap.CaptureErr(err)
		return nil
	}
	if price == nil {
		return nil
	}

	if wantCurrency != "" && !strings.EqualFold(price.Currency, wantCurrency) {
		errcap.Capture(fmt.Sprintf("FT quotes %s in %s, want %s", query, price.Currency, wantCurrency))
		s.log.Debug().
			Str("query", query).
			Str("got", price.Currency).
			Str("want", wantCurrency).
			Msg("discarding FT result on currency mismatch")
		return nil
	}

	return &fetcher.MarketDataResult{
		Identifier: rawID,
		Price:      fetcher.Float(price.Price),
		Currency:   price.Currency,
		AsOf:       time.Now(),
	}
}

// tryYahoo runs the Yahoo-internal cascade: quote API first (many fund
// identifiers lack chart data but have quote data), then the chart series,
// then the chart meta summary as the last resort.
func (s *Service) tryYahoo(ctx context.Context, rawID, symbol string, errcap *fetcher.ErrorCapture) *fetcher.MarketDataResult {
	qp, err := s.yahoo.Quote(ctx, symbol)
	errcap.CaptureErr(err)
	if qp != nil {
		return quoteResult(rawID, symbol, qp)
	}

	series, metaOnly, err := s.yahoo.ChartQuote(ctx, symbol)
	errcap.CaptureErr(err)
	if series != nil {
		return quoteResult(rawID, symbol, series)
	}
	if metaOnly != nil {
		return quoteResult(rawID, symbol, metaOnly)
	}
	return nil
}

func quoteResult(rawID, symbol string, qp *yahoo.QuotePrice) *fetcher.MarketDataResult {
	return &fetcher.MarketDataResult{
		Identifier:     rawID,
		ResolvedTicker: symbol,
		DisplayName:    qp.Name,
		Price:          fetcher.Float(qp.Price),
		Currency:       qp.Currency,
		AsOf:           qp.AsOf,
	}
}

// exhausted builds the terminal no-price result. The diagnostic text is
// never empty, and the failure is recorded to the debug side-channel.
func (s *Service) exhausted(rawID, resolved string, errcap *fetcher.ErrorCapture) fetcher.MarketDataResult {
	reason := errcap.MessageOr(fmt.Sprintf("no source returned a price for %s", rawID))
	s.log.Warn().Str("identifier", rawID).Str("reason", reason).Msg("all sources exhausted")
	s.diag.Record("resolver", rawID, []byte(reason))

	return fetcher.MarketDataResult{
		Identifier:     rawID,
		ResolvedTicker: resolved,
		AsOf:           time.Now(),
		FailureReason:  reason,
	}
}

// ResolveISINToTicker maps an instrument identifier to a Yahoo ticker
// symbol. Non-ISIN identifiers are returned unchanged; an empty string means
// the search found nothing.
func (s *Service) ResolveISINToTicker(ctx context.Context, rawID string) (string, error) {
	norm := identifier.Normalize(rawID)
	if !norm.IsISINShaped() {
		if norm.Kind == identifier.KindSyntheticCommodity {
			return "", nil
		}
		return norm.Raw, nil
	}
	return s.yahoo.Search(ctx, norm.ISIN)
}
