package resolver

import (
	"context"
	"math"
	"testing"

	"marketfetcher/internal/aucoffre"
	"marketfetcher/internal/veracash"
)

func TestFetchSyntheticVeracash(t *testing.T) {
	v := &stubVeracash{spot: func(kind string) (*veracash.Spot, error) {
		if kind != veracash.GoldSpot {
			t.Errorf("kind = %q, want %q", kind, veracash.GoldSpot)
		}
		return &veracash.Spot{Kind: kind, DisplayName: "Gold (spot)", PricePerGram: 81.2, Currency: "EUR"}, nil
	}}
	svc := newTestService(nil, nil, v, nil, nil)

	res := svc.FetchData(context.Background(), "VERACASH:GOLD_SPOT", "")
	if !res.HasPrice() || *res.Price != 81.2 {
		t.Fatalf("FetchData() = %+v, want 81.2", res)
	}
	if res.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", res.Currency)
	}
	if res.DisplayName != "Gold (spot)" {
		t.Errorf("DisplayName = %q", res.DisplayName)
	}
}

func TestFetchSyntheticGoldBar(t *testing.T) {
	v := &stubVeracash{spot: func(kind string) (*veracash.Spot, error) {
		return &veracash.Spot{Kind: kind, PricePerGram: 70.0, Currency: "EUR"}, nil
	}}
	svc := newTestService(nil, nil, v, nil, nil)

	res := svc.FetchData(context.Background(), "COIN:GOLD_BAR_1OZ", "")
	if !res.HasPrice() {
		t.Fatalf("FetchData() = %+v", res)
	}
	want := 70.0 * TroyOunceGrams
	if math.Abs(*res.Price-want) > 1e-9 {
		t.Errorf("Price = %v, want %v (gram spot times troy ounce)", *res.Price, want)
	}
	if res.DisplayName != "Gold Bar (1 oz)" {
		t.Errorf("DisplayName = %q", res.DisplayName)
	}
}

func TestFetchSyntheticCoin(t *testing.T) {
	c := &stubCoins{
		known: map[string]bool{"COIN:NAPOLEON_20F": true},
		price: func(key string) (*aucoffre.CoinPrice, error) {
			return &aucoffre.CoinPrice{Key: key, DisplayName: "Napoleon 20 Francs", Price: 613.47, Currency: "EUR"}, nil
		},
	}
	svc := newTestService(nil, nil, nil, c, nil)

	res := svc.FetchData(context.Background(), "COIN:NAPOLEON_20F", "")
	if !res.HasPrice() || *res.Price != 613.47 {
		t.Fatalf("FetchData() = %+v, want 613.47", res)
	}
	if res.ResolvedTicker != "COIN:NAPOLEON_20F" {
		t.Errorf("ResolvedTicker = %q", res.ResolvedTicker)
	}
}

func TestFetchSyntheticUnknownCoin(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil, nil)

	res := svc.FetchData(context.Background(), "COIN:DOUBLOON", "")
	if res.HasPrice() {
		t.Fatalf("FetchData() = %+v, want no price", res)
	}
	if res.FailureReason == "" {
		t.Error("FailureReason must not be empty")
	}
}

func TestFetchSyntheticNeverFallsThroughToISINSources(t *testing.T) {
	f := &stubFT{}
	y := &stubYahoo{}
	svc := newTestService(y, f, nil, nil, nil)

	svc.FetchData(context.Background(), "VERACASH:GOLD_SPOT", "")
	if len(f.calls) != 0 {
		t.Errorf("FT consulted for a synthetic identifier: %v", f.calls)
	}
	if len(y.searchCalls) != 0 || len(y.quoteCalls) != 0 {
		t.Errorf("Yahoo consulted for a synthetic identifier")
	}
}
