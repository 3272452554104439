// Package identifier classifies instrument identifiers into the shapes the
// resolution pipeline routes on: plain ISINs, ISINs carrying a currency
// suffix, synthetic commodity codes for scraped assets, and freeform strings
// treated as already-known ticker symbols.
package identifier

import "strings"

// Kind is the classification of an instrument identifier.
type Kind string

const (
	// KindPlainISIN is a bare 12-character alphanumeric ISIN.
	KindPlainISIN Kind = "plain_isin"
	// KindISINWithCurrency is an ISIN with a ":CCC" currency suffix, used for
	// instruments with per-currency share classes.
	KindISINWithCurrency Kind = "isin_with_currency"
	// KindSyntheticCommodity is a VERACASH:* or COIN:* pseudo-code for a
	// physically-traded asset with no public ISIN.
	KindSyntheticCommodity Kind = "synthetic_commodity"
	// KindFreeform is anything else, treated as a ticker symbol.
	KindFreeform Kind = "freeform"
)

const (
	isinLength = 12

	// PrefixVeracash routes to the Veracash spot-price scrape adapter.
	PrefixVeracash = "VERACASH:"
	// PrefixCoin routes to the coin scrape adapter.
	PrefixCoin = "COIN:"
)

// supportedCurrencies is the fixed set accepted as a ":CCC" suffix.
var supportedCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "CHF": true, "JPY": true,
	"CAD": true, "AUD": true, "SGD": true, "HKD": true,
}

// Normalized is the result of classifying a raw identifier string.
type Normalized struct {
	Raw  string
	Kind Kind

	// ISIN is set for plain and currency-suffixed ISINs.
	ISIN string
	// Currency is the desired currency for currency-suffixed ISINs.
	Currency string
	// CommodityKey is the routing key after the synthetic prefix, including
	// the prefix itself (e.g. "VERACASH:GOLD_SPOT", "COIN:NAPOLEON_20F").
	CommodityKey string
}

// Normalize classifies raw into exactly one Kind. It is a pure function of
// the string's shape: no I/O, total over all inputs.
func Normalize(raw string) Normalized {
	if strings.HasPrefix(raw, PrefixVeracash) || strings.HasPrefix(raw, PrefixCoin) {
		return Normalized{Raw: raw, Kind: KindSyntheticCommodity, CommodityKey: raw}
	}

	if len(raw) == isinLength+4 && raw[isinLength] == ':' {
		isin, suffix := raw[:isinLength], raw[isinLength+1:]
		if isAlphanumeric(isin) && supportedCurrencies[strings.ToUpper(suffix)] {
			return Normalized{
				Raw:      raw,
				Kind:     KindISINWithCurrency,
				ISIN:     isin,
				Currency: strings.ToUpper(suffix),
			}
		}
	}

	if len(raw) == isinLength && isAlphanumeric(raw) {
		return Normalized{Raw: raw, Kind: KindPlainISIN, ISIN: raw}
	}

	return Normalized{Raw: raw, Kind: KindFreeform}
}

// IsISINShaped reports whether the identifier carries a valid 12-character
// ISIN, with or without a currency suffix.
func (n Normalized) IsISINShaped() bool {
	return n.Kind == KindPlainISIN || n.Kind == KindISINWithCurrency
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		default:
			return false
		}
	}
	return len(s) > 0
}
