package scrape

import (
	"context"
	"fmt"
	"io"
)

// Item sources. Selector-based product extraction reports the selector that
// matched instead of a fixed constant.
const (
	SourceJSONLD       = "jsonld"
	SourceCategoryCard = "category-card"
	SourceProduct      = "product"
	SourceError        = "error"
)

// Item represents one scraped product record. Immutable once produced.
type Item struct {
	URL                 string   `json:"url"`
	Site                string   `json:"site"`
	Title               string   `json:"title"`
	PriceValue          *float64 `json:"price_value"`
	PriceCurrency       string   `json:"price_currency,omitempty"`
	PriceText           string   `json:"price_text,omitempty"`
	DiscountedValue     *float64 `json:"discounted_value"`
	DiscountedFormatted string   `json:"discounted_formatted,omitempty"`
	OriginalFormatted   string   `json:"original_formatted,omitempty"`
	Source              string   `json:"source"`
	ImageURL            string   `json:"image_url,omitempty"`
}

// PageResult carries the items extracted from one page (or one URL) together
// with the warnings accumulated along the way. Failures degrade to warnings
// so partial data always survives.
type PageResult struct {
	Items    []Item
	Warnings []string
}

// Merge appends another result's items and warnings
func (r *PageResult) Merge(other PageResult) {
	r.Items = append(r.Items, other.Items...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Warnf records a formatted warning
func (r *PageResult) Warnf(format string, v ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, v...))
}

// Options control how a single URL or a batch is scraped
type Options struct {
	Rule            DiscountRule
	CrawlPagination bool
	MaxPages        int
}

// Fetcher retrieves a page and reports the final URL after redirects.
// Implementations absorb transport details; callers treat any error as an
// empty page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (finalURL string, body io.Reader, err error)
}
