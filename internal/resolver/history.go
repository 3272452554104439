package resolver

import (
	"context"
	"strings"
	"sync"
	"time"

	"marketfetcher/internal/fetcher"
	"marketfetcher/internal/identifier"
	"marketfetcher/internal/veracash"
	"marketfetcher/internal/yahoo"
)

// Futures symbols used as proxies for bullion history: Veracash publishes no
// historical gram prices, so the series is derived from COMEX futures with a
// date-matched USD→EUR conversion.
const (
	goldFuturesSymbol   = "GC=F"
	silverFuturesSymbol = "SI=F"
	eurUsdSymbol        = "EURUSD=X"
)

// FetchHistoricalData retrieves a historical price series for an instrument.
// It never fails: total failure returns an empty slice and is logged for
// diagnostics only.
func (s *Service) FetchHistoricalData(ctx context.Context, rawID, ticker, period, interval string) []fetcher.HistoricalPricePoint {
	norm := identifier.Normalize(rawID)

	if norm.Kind == identifier.KindSyntheticCommodity {
		return s.syntheticHistory(ctx, norm, period, interval)
	}
	return s.ordinaryHistory(ctx, norm, ticker, period, interval)
}

// syntheticHistory routes the scraped assets: bullion proxies through
// futures, coins through the embedded page series (upstream keeps roughly
// six months of it), and the 1oz gold bar through the gold futures proxy at
// ounce granularity.
func (s *Service) syntheticHistory(ctx context.Context, norm identifier.Normalized, period, interval string) []fetcher.HistoricalPricePoint {
	key := norm.CommodityKey

	switch {
	case strings.HasPrefix(key, identifier.PrefixVeracash):
		kind := strings.TrimPrefix(key, identifier.PrefixVeracash)
		futures := goldFuturesSymbol
		if kind == veracash.SilverSpot {
			futures = silverFuturesSymbol
		}
		return s.futuresProxyHistory(ctx, norm.Raw, futures, period, interval, true)

	case key == goldBarKey:
		return s.futuresProxyHistory(ctx, norm.Raw, goldFuturesSymbol, period, interval, false)

	case strings.HasPrefix(key, identifier.PrefixCoin):
		if !s.coins.Known(key) {
			s.log.Debug().Str("identifier", norm.Raw).Msg("no coin configuration, empty history")
			return nil
		}
		points, err := s.coins.History(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("identifier", norm.Raw).Msg("coin history failed")
			return nil
		}
		for i := range points {
			points[i].Identifier = norm.Raw
		}
		return points
	}

	return nil
}

// futuresProxyHistory derives a EUR bullion series from USD futures. The
// futures prices and the EUR/USD series are independent and both needed, so
// they are fetched concurrently; each point converts at the FX rate of its
// own day, falling back to the latest available rate.
func (s *Service) futuresProxyHistory(ctx context.Context, rawID, futuresSymbol, period, interval string, perGram bool) []fetcher.HistoricalPricePoint {
	var (
		wg          sync.WaitGroup
		futures, fx *yahoo.Series
		futuresErr  error
		fxErr       error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		futures, futuresErr = s.yahoo.History(ctx, futuresSymbol, period, interval)
	}()
	go func() {
		defer wg.Done()
		fx, fxErr = s.yahoo.History(ctx, eurUsdSymbol, period, interval)
	}()
	wg.Wait()

	if futuresErr != nil || futures == nil {
		s.log.Warn().Err(futuresErr).Str("identifier", rawID).Str("symbol", futuresSymbol).Msg("futures history unavailable")
		return nil
	}
	if fxErr != nil || fx == nil || len(fx.Points) == 0 {
		s.log.Warn().Err(fxErr).Str("identifier", rawID).Msg("EUR/USD history unavailable")
		return nil
	}

	rateByDay := make(map[string]float64, len(fx.Points))
	for _, p := range fx.Points {
		rateByDay[dayKey(p.Time)] = p.Close
	}
	latestRate := fx.Points[len(fx.Points)-1].Close

	points := make([]fetcher.HistoricalPricePoint, 0, len(futures.Points))
	for _, p := range futures.Points {
		rate, ok := rateByDay[dayKey(p.Time)]
		if !ok {
			rate = latestRate
		}
		if rate == 0 {
			continue
		}
		// EURUSD=X quotes USD per EUR.
		value := p.Close / rate
		if perGram {
			value /= TroyOunceGrams
		}
		points = append(points, fetcher.HistoricalPricePoint{
			Identifier: rawID,
			Date:       p.Time.UTC().Truncate(24 * time.Hour),
			Value:      value,
			Currency:   "EUR",
		})
	}
	return points
}

// ordinaryHistory tries ticker candidates in order: the already-resolved
// ticker, the full currency-suffixed identifier as a literal symbol, then the
// bare ISIN. The first source returning a non-empty series wins.
func (s *Service) ordinaryHistory(ctx context.Context, norm identifier.Normalized, ticker, period, interval string) []fetcher.HistoricalPricePoint {
	var candidates []string

	resolved := ticker
	if (resolved == "" || resolved == tickerPlaceholder) && norm.IsISINShaped() {
		symbol, err := s.yahoo.Search(ctx, norm.ISIN)
		if err != nil {
			s.log.Debug().Err(err).Str("identifier", norm.Raw).Msg("ticker resolution failed for history")
		}
		resolved = symbol
	}
	if resolved != "" && resolved != tickerPlaceholder {
		candidates = append(candidates, resolved)
	}
	if norm.Kind == identifier.KindISINWithCurrency {
		candidates = append(candidates, norm.Raw)
	}
	if norm.IsISINShaped() {
		candidates = append(candidates, norm.ISIN)
	}
	if len(candidates) == 0 {
		candidates = append(candidates, norm.Raw)
	}

	tried := make(map[string]bool, len(candidates))
	for _, symbol := range candidates {
		if tried[symbol] {
			continue
		}
		tried[symbol] = true

		series, err := s.yahoo.History(ctx, symbol, period, interval)
		if err != nil {
			s.log.Debug().Err(err).Str("symbol", symbol).Msg("history attempt failed")
			continue
		}
		if series == nil || len(series.Points) == 0 {
			continue
		}

		points := make([]fetcher.HistoricalPricePoint, 0, len(series.Points))
		for _, p := range series.Points {
			points = append(points, fetcher.HistoricalPricePoint{
				Identifier: norm.Raw,
				Date:       p.Time.UTC().Truncate(24 * time.Hour),
				Value:      p.Close,
				Currency:   series.Currency,
			})
		}
		return points
	}

	s.log.Warn().Str("identifier", norm.Raw).Msg("no source returned history")
	return nil
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
