package veracash

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"marketfetcher/internal/fetcher"
	"marketfetcher/internal/ratelimit"
	"marketfetcher/internal/scrape"
)

const spotPageHTML = `<html><head><title>Gold and silver price</title></head><body>
<h2>Gold spot price per gram</h2><p>81,20 €</p>
<h2>Silver spot price per gram</h2><p>0,95 €</p>
<h2>VeraOne premium</h2><p>84,50 €</p>
</body></html>`

func testVeracashClient(url string) *Client {
	httpClient := fetcher.NewClient(fetcher.Options{
		Timeout:       5 * time.Second,
		RetryWaitTime: time.Millisecond,
		Logger:        zerolog.Nop(),
	})
	return NewClient(Config{
		URL: url,
		Anchors: map[string]Anchor{
			GoldSpot:    {Search: "Gold spot price per gram", Floor: 10},
			SilverSpot:  {Search: "Silver spot price per gram", Floor: 0.1},
			GoldPremium: {Search: "VeraOne premium", Floor: 10},
		},
	}, httpClient, scrape.GoqueryParser{}, ratelimit.NewUnlimited(), zerolog.Nop())
}

func TestSpot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(spotPageHTML))
	}))
	defer server.Close()

	client := testVeracashClient(server.URL)

	tests := []struct {
		kind string
		want float64
	}{
		{GoldSpot, 81.20},
		{SilverSpot, 0.95},
		{GoldPremium, 84.50},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			spot, err := client.Spot(context.Background(), tt.kind)
			if err != nil {
				t.Fatalf("Spot(%s) error = %v", tt.kind, err)
			}
			if spot == nil {
				t.Fatalf("Spot(%s) = nil", tt.kind)
			}
			if spot.PricePerGram != tt.want {
				t.Errorf("PricePerGram = %v, want %v", spot.PricePerGram, tt.want)
			}
			if spot.Currency != "EUR" {
				t.Errorf("Currency = %q, want EUR", spot.Currency)
			}
			if spot.DisplayName == "" {
				t.Error("DisplayName is empty")
			}
		})
	}
}

func TestSpotUnknownKind(t *testing.T) {
	client := testVeracashClient("http://unused")
	if _, err := client.Spot(context.Background(), "PLATINUM_SPOT"); err == nil {
		t.Error("expected an error for unknown metal kind")
	}
}

func TestSpotDisabledScraping(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(spotPageHTML))
	}))
	defer server.Close()

	httpClient := fetcher.NewClient(fetcher.Options{
		Timeout:       5 * time.Second,
		RetryWaitTime: time.Millisecond,
		Logger:        zerolog.Nop(),
	})
	client := NewClient(Config{
		URL:     server.URL,
		Anchors: map[string]Anchor{GoldSpot: {Search: "Gold spot price per gram", Floor: 10}},
	}, httpClient, scrape.DisabledParser{}, ratelimit.NewUnlimited(), zerolog.Nop())

	spot, err := client.Spot(context.Background(), GoldSpot)
	if err != nil {
		t.Fatalf("Spot() error = %v", err)
	}
	if spot != nil {
		t.Errorf("Spot() = %+v, want nil with scraping disabled", spot)
	}
	if calls != 0 {
		t.Errorf("server received %d request(s), want none with scraping disabled", calls)
	}
}

func TestSpotMissingAnchor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>maintenance page</body></html>`))
	}))
	defer server.Close()

	client := testVeracashClient(server.URL)
	spot, err := client.Spot(context.Background(), GoldSpot)
	if err != nil {
		t.Fatalf("Spot() error = %v", err)
	}
	if spot != nil {
		t.Errorf("Spot() = %+v, want nil for unmatched page", spot)
	}
}
