// Package scrape provides the HTML document-query abstraction shared by the
// page-scraping source adapters, plus helpers for extracting prices from
// visible page text in European number formatting.
package scrape

import (
	"bytes"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrDisabled is returned by the disabled parser. Adapters treat it as
// "this source has no data" rather than a hard failure.
var ErrDisabled = errors.New("html scraping disabled")

// Document is a parsed HTML page reduced to the queries the adapters need.
type Document interface {
	// Title returns the text of the page's <title> element.
	Title() string
	// Text returns the concatenated visible text of the page.
	Text() string
	// Each returns the trimmed text of every node matching the CSS selector,
	// in document order.
	Each(selector string) []string
}

// Parser turns a raw HTML body into a queryable Document.
type Parser interface {
	Parse(body []byte) (Document, error)
}

// GoqueryParser is the real Parser implementation.
type GoqueryParser struct{}

// Parse implements Parser.
func (GoqueryParser) Parse(body []byte) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return goqueryDocument{doc: doc}, nil
}

type goqueryDocument struct {
	doc *goquery.Document
}

func (d goqueryDocument) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

func (d goqueryDocument) Text() string {
	return d.doc.Text()
}

func (d goqueryDocument) Each(selector string) []string {
	var out []string
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

// DisabledParser is the no-op stub selected when scraping is turned off.
// Every Parse call fails with ErrDisabled.
type DisabledParser struct{}

// Parse implements Parser.
func (DisabledParser) Parse([]byte) (Document, error) {
	return nil, ErrDisabled
}

// Enabled reports whether p would actually parse pages. Adapters check it
// before fetching so a disabled scrape source skips the network entirely.
func Enabled(p Parser) bool {
	_, disabled := p.(DisabledParser)
	return !disabled
}
