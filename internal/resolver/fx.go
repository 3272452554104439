package resolver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"marketfetcher/internal/fetcher"
	"marketfetcher/internal/yahoo"
)

// FetchExchangeRate returns the current rate for a currency pair via the
// Yahoo chart endpoint's FX symbols ("EURUSD=X" style).
func (s *Service) FetchExchangeRate(ctx context.Context, from, to string) (*fetcher.ExchangeRate, error) {
	if from == to {
		return &fetcher.ExchangeRate{From: from, To: to, Rate: 1, Date: time.Now()}, nil
	}

	symbol := fmt.Sprintf("%s%s=X", from, to)
	series, metaOnly, err := s.yahoo.ChartQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	qp := series
	if qp == nil {
		qp = metaOnly
	}
	if qp == nil {
		return nil, fetcher.NewNoDataError(fmt.Sprintf("no exchange rate for %s/%s", from, to))
	}

	return &fetcher.ExchangeRate{From: from, To: to, Rate: qp.Price, Date: qp.AsOf}, nil
}

// BenchmarkSeries is one fetched reference series.
type BenchmarkSeries struct {
	Name   string
	Symbol string
	Series *yahoo.Series
	Err    error
}

// FetchBenchmarks retrieves the configured benchmark index histories. None
// depends on another's result, so they are fetched concurrently and
// collected over a channel.
func (s *Service) FetchBenchmarks(ctx context.Context, period, interval string) []BenchmarkSeries {
	if len(s.benchmarks) == 0 {
		return nil
	}

	resultChan := make(chan BenchmarkSeries, len(s.benchmarks))
	var wg sync.WaitGroup

	for _, b := range s.benchmarks {
		wg.Add(1)
		go func(b BenchmarkConfig) {
			defer wg.Done()
			series, err := s.yahoo.History(ctx, b.Symbol, period, interval)
			resultChan <- BenchmarkSeries{Name: b.Name, Symbol: b.Symbol, Series: series, Err: err}
		}(b)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var out []BenchmarkSeries
	for r := range resultChan {
		if r.Err != nil {
			s.log.Warn().Err(r.Err).Str("benchmark", r.Name).Msg("benchmark fetch failed")
		}
		out = append(out, r)
	}
	return out
}
