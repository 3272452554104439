package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketfetcher/internal/fetcher"
	"marketfetcher/internal/identifier"
	"marketfetcher/internal/veracash"
)

// goldBarKey is priced off the Veracash gold-spot gram price rather than the
// coin table: a 1oz bar is pure spot exposure, and the dealer pages only list
// coins.
const goldBarKey = "COIN:GOLD_BAR_1OZ"

const goldBarDisplayName = "Gold Bar (1 oz)"

// fetchSynthetic resolves VERACASH:* and COIN:* identifiers through their
// dedicated scrape adapters. Synthetic identifiers never fall through to the
// ISIN-based sources.
func (s *Service) fetchSynthetic(ctx context.Context, norm identifier.Normalized, errcap *fetcher.ErrorCapture) fetcher.MarketDataResult {
	key := norm.CommodityKey

	switch {
	case strings.HasPrefix(key, identifier.PrefixVeracash):
		kind := strings.TrimPrefix(key, identifier.PrefixVeracash)
		spot, err := s.veracash.Spot(ctx, kind)
		errcap.CaptureErr(err)
		if spot != nil {
			return syntheticResult(norm.Raw, key, spot.DisplayName, spot.PricePerGram, spot.Currency)
		}

	case key == goldBarKey:
		spot, err := s.veracash.Spot(ctx, veracash.GoldSpot)
		errcap.CaptureErr(err)
		if spot != nil {
			return syntheticResult(norm.Raw, key, goldBarDisplayName, spot.PricePerGram*TroyOunceGrams, spot.Currency)
		}

	case strings.HasPrefix(key, identifier.PrefixCoin):
		if !s.coins.Known(key) {
			errcap.Capture(fmt.Sprintf("no coin configuration for %s", key))
			break
		}
		price, err := s.coins.Price(ctx, key)
		errcap.CaptureErr(err)
		if price != nil {
			return syntheticResult(norm.Raw, key, price.DisplayName, price.Price, price.Currency)
		}
	}

	return s.exhausted(norm.Raw, key, errcap)
}

func syntheticResult(rawID, key, name string, price float64, currency string) fetcher.MarketDataResult {
	return fetcher.MarketDataResult{
		Identifier:     rawID,
		ResolvedTicker: key,
		DisplayName:    name,
		Price:          fetcher.Float(price),
		Currency:       currency,
		AsOf:           time.Now(),
	}
}
