package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Numeric runs adjacent to a euro sign. Thousands groups may be separated by
// spaces (including non-breaking variants) or dots, decimals by a comma.
var (
	beforeEuroRe = regexp.MustCompile(`([0-9][0-9 \x{00a0}\x{202f}.,]*)€`)
	afterEuroRe  = regexp.MustCompile(`€\s*([0-9][0-9 \x{00a0}\x{202f}.,]*[0-9]|[0-9])`)
)

// ParseEuropeanNumber converts a number written in European formatting
// ("2 798,32", "1.234,56") to a float64. Plain dot-decimal input is accepted
// unchanged.
func ParseEuropeanNumber(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, strings.TrimSpace(s))

	if strings.Contains(cleaned, ",") {
		// Comma decimal: any dots left are thousands separators.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable number %q: %w", s, err)
	}
	return v, nil
}

// ExtractEuroAmount scans visible page text for a euro sign and the nearest
// numeric run before it (or after it, for "€ 1 234,56" layouts). A candidate
// is accepted only when strictly greater than floor, which rejects stray
// incidental numbers like quantities or percentages.
func ExtractEuroAmount(text string, floor float64) (float64, bool) {
	for _, m := range beforeEuroRe.FindAllStringSubmatch(text, -1) {
		if v, err := ParseEuropeanNumber(m[1]); err == nil && v > floor {
			return v, true
		}
	}
	for _, m := range afterEuroRe.FindAllStringSubmatch(text, -1) {
		if v, err := ParseEuropeanNumber(m[1]); err == nil && v > floor {
			return v, true
		}
	}
	return 0, false
}

// ExtractEuroAmountAfter is ExtractEuroAmount restricted to the text that
// follows the first occurrence of anchor. Adapters use a page-specific anchor
// string to land near the right table cell before extracting.
func ExtractEuroAmountAfter(text, anchor string, floor float64) (float64, bool) {
	idx := strings.Index(text, anchor)
	if idx < 0 {
		return 0, false
	}
	return ExtractEuroAmount(text[idx+len(anchor):], floor)
}
