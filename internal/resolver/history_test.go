package resolver

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"marketfetcher/internal/fetcher"
	"marketfetcher/internal/yahoo"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seriesOf(currency string, points ...yahoo.SeriesPoint) *yahoo.Series {
	return &yahoo.Series{Currency: currency, Points: points}
}

func TestFetchHistoricalDataResolvedTickerWins(t *testing.T) {
	y := &stubYahoo{history: func(symbol string) (*yahoo.Series, error) {
		if symbol != "0P0000UL8V.F" {
			return nil, nil
		}
		return seriesOf("EUR", yahoo.SeriesPoint{Time: day(2024, 1, 2), Close: 10.5}), nil
	}}
	svc := newTestService(y, nil, nil, nil, nil)

	points := svc.FetchHistoricalData(context.Background(), "LU0169518387", "0P0000UL8V.F", "1y", "1d")
	if len(points) != 1 {
		t.Fatalf("points = %+v, want 1", points)
	}
	if points[0].Value != 10.5 || points[0].Currency != "EUR" {
		t.Errorf("point = %+v", points[0])
	}
	if points[0].Identifier != "LU0169518387" {
		t.Errorf("Identifier = %q, want the original identifier, not the ticker", points[0].Identifier)
	}
	if len(y.historyCalls) != 1 {
		t.Errorf("history calls = %v, want first candidate only", y.historyCalls)
	}
}

func TestFetchHistoricalDataCandidateOrder(t *testing.T) {
	// Only the bare ISIN yields a series; the full currency-suffixed form is
	// tried before it.
	y := &stubYahoo{history: func(symbol string) (*yahoo.Series, error) {
		if symbol != "LU0169518387" {
			return nil, nil
		}
		return seriesOf("USD", yahoo.SeriesPoint{Time: day(2024, 1, 2), Close: 12.0}), nil
	}}
	svc := newTestService(y, nil, nil, nil, nil)

	points := svc.FetchHistoricalData(context.Background(), "LU0169518387:USD", "N/A", "1y", "1d")
	if len(points) != 1 || points[0].Value != 12.0 {
		t.Fatalf("points = %+v", points)
	}

	want := []string{"LU0169518387:USD", "LU0169518387"}
	if len(y.historyCalls) != len(want) {
		t.Fatalf("history calls = %v, want %v", y.historyCalls, want)
	}
	for i := range want {
		if y.historyCalls[i] != want[i] {
			t.Errorf("history call %d = %q, want %q", i, y.historyCalls[i], want[i])
		}
	}
}

func TestFetchHistoricalDataNeverFails(t *testing.T) {
	y := &stubYahoo{history: func(symbol string) (*yahoo.Series, error) {
		return nil, errors.New("upstream exploded")
	}}
	svc := newTestService(y, nil, nil, nil, nil)

	points := svc.FetchHistoricalData(context.Background(), "AAPL", "AAPL", "1y", "1d")
	if len(points) != 0 {
		t.Errorf("points = %+v, want empty on total failure", points)
	}
}

func TestFetchHistoricalDataGoldFuturesProxy(t *testing.T) {
	// Gold closes at 2000 USD/oz on a day where EUR/USD is 1.10 and at
	// 2100 USD/oz on a day with no FX point, which falls back to the latest
	// known rate (1.05).
	y := &stubYahoo{history: func(symbol string) (*yahoo.Series, error) {
		switch symbol {
		case "GC=F":
			return seriesOf("USD",
				yahoo.SeriesPoint{Time: day(2024, 1, 2), Close: 2000},
				yahoo.SeriesPoint{Time: day(2024, 1, 4), Close: 2100},
			), nil
		case "EURUSD=X":
			return seriesOf("USD",
				yahoo.SeriesPoint{Time: day(2024, 1, 2), Close: 1.10},
				yahoo.SeriesPoint{Time: day(2024, 1, 3), Close: 1.05},
			), nil
		}
		return nil, nil
	}}
	svc := newTestService(y, nil, nil, nil, nil)

	points := svc.FetchHistoricalData(context.Background(), "VERACASH:GOLD_SPOT", "", "1y", "1d")
	if len(points) != 2 {
		t.Fatalf("points = %+v, want 2", points)
	}

	wantFirst := 2000 / 1.10 / TroyOunceGrams
	if math.Abs(points[0].Value-wantFirst) > 1e-9 {
		t.Errorf("points[0].Value = %v, want %v (date-matched rate)", points[0].Value, wantFirst)
	}
	wantSecond := 2100 / 1.05 / TroyOunceGrams
	if math.Abs(points[1].Value-wantSecond) > 1e-9 {
		t.Errorf("points[1].Value = %v, want %v (latest-rate fallback)", points[1].Value, wantSecond)
	}
	for _, p := range points {
		if p.Currency != "EUR" {
			t.Errorf("Currency = %q, want EUR", p.Currency)
		}
		if p.Identifier != "VERACASH:GOLD_SPOT" {
			t.Errorf("Identifier = %q", p.Identifier)
		}
	}
}

func TestFetchHistoricalDataSilverUsesSilverFutures(t *testing.T) {
	y := &stubYahoo{history: func(symbol string) (*yahoo.Series, error) {
		if symbol == "EURUSD=X" {
			return seriesOf("USD", yahoo.SeriesPoint{Time: day(2024, 1, 2), Close: 1.10}), nil
		}
		if symbol == "SI=F" {
			return seriesOf("USD", yahoo.SeriesPoint{Time: day(2024, 1, 2), Close: 24}), nil
		}
		t.Errorf("unexpected history symbol %q", symbol)
		return nil, nil
	}}
	svc := newTestService(y, nil, nil, nil, nil)

	points := svc.FetchHistoricalData(context.Background(), "VERACASH:SILVER_SPOT", "", "1y", "1d")
	if len(points) != 1 {
		t.Fatalf("points = %+v, want 1", points)
	}
	want := 24 / 1.10 / TroyOunceGrams
	if math.Abs(points[0].Value-want) > 1e-9 {
		t.Errorf("Value = %v, want %v", points[0].Value, want)
	}
}

func TestFetchHistoricalDataGoldBarPerOunce(t *testing.T) {
	y := &stubYahoo{history: func(symbol string) (*yahoo.Series, error) {
		if symbol == "EURUSD=X" {
			return seriesOf("USD", yahoo.SeriesPoint{Time: day(2024, 1, 2), Close: 1.25}), nil
		}
		return seriesOf("USD", yahoo.SeriesPoint{Time: day(2024, 1, 2), Close: 2000}), nil
	}}
	svc := newTestService(y, nil, nil, nil, nil)

	points := svc.FetchHistoricalData(context.Background(), "COIN:GOLD_BAR_1OZ", "", "1y", "1d")
	if len(points) != 1 {
		t.Fatalf("points = %+v, want 1", points)
	}
	// A bar is priced per ounce: no per-gram division.
	if want := 2000 / 1.25; math.Abs(points[0].Value-want) > 1e-9 {
		t.Errorf("Value = %v, want %v", points[0].Value, want)
	}
}

func TestFetchHistoricalDataProxyRequiresFX(t *testing.T) {
	y := &stubYahoo{history: func(symbol string) (*yahoo.Series, error) {
		if symbol == "EURUSD=X" {
			return nil, errors.New("fx unavailable")
		}
		return seriesOf("USD", yahoo.SeriesPoint{Time: day(2024, 1, 2), Close: 2000}), nil
	}}
	svc := newTestService(y, nil, nil, nil, nil)

	if points := svc.FetchHistoricalData(context.Background(), "VERACASH:GOLD_SPOT", "", "1y", "1d"); len(points) != 0 {
		t.Errorf("points = %+v, want empty without an FX series", points)
	}
}

func TestFetchHistoricalDataCoin(t *testing.T) {
	c := &stubCoins{
		known: map[string]bool{"COIN:NAPOLEON_20F": true},
		history: func(key string) ([]fetcher.HistoricalPricePoint, error) {
			return []fetcher.HistoricalPricePoint{
				{Identifier: key, Date: day(2024, 1, 2), Value: 600, Currency: "EUR"},
			}, nil
		},
	}
	svc := newTestService(nil, nil, nil, c, nil)

	points := svc.FetchHistoricalData(context.Background(), "COIN:NAPOLEON_20F", "", "1y", "1d")
	if len(points) != 1 || points[0].Value != 600 {
		t.Fatalf("points = %+v", points)
	}
}

func TestFetchHistoricalDataUnknownCoin(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil, nil)
	if points := svc.FetchHistoricalData(context.Background(), "COIN:DOUBLOON", "", "1y", "1d"); len(points) != 0 {
		t.Errorf("points = %+v, want empty", points)
	}
}
