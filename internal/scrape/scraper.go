package scrape

import (
	"context"
	"time"

	"pricehound/helpers"
	"pricehound/logger"
)

// Scraper orchestrates the fetch, classify, parse, and paginate steps for
// user-supplied URLs. Each call is synchronous and stateless; per-URL
// failures degrade to error rows instead of aborting the batch.
type Scraper struct {
	fetcher   Fetcher
	paginator *Paginator
	log       *logger.Logger
}

// NewScraper creates a scraper using the given fetcher and politeness delay
func NewScraper(fetcher Fetcher, delay time.Duration) *Scraper {
	return &Scraper{
		fetcher:   fetcher,
		paginator: NewPaginator(fetcher, delay),
		log:       logger.ForComponent("scraper"),
	}
}

// ScrapeURL fetches one URL, classifies it as a product or category page, and
// extracts items accordingly. Unclassifiable pages fall back to product
// extraction so the caller always gets at least a flagged row.
func (s *Scraper) ScrapeURL(ctx context.Context, rawURL string, opts Options) PageResult {
	finalURL, body, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		s.log.Warn().Err(err).Str("url", rawURL).Msg("Fetch failed")
		var result PageResult
		result.Items = append(result.Items, errorItem(rawURL, err))
		result.Warnf("%s: fetch failed: %v", rawURL, err)
		return result
	}

	doc, err := NewDocument(body)
	if err != nil {
		var result PageResult
		result.Warnf("%s: parse failed: %v", finalURL, err)
		return result
	}

	parser := ParserFor(helpers.HostOf(finalURL))

	if parser.IsProductPage(doc) {
		return parser.ParseProduct(doc, finalURL, opts.Rule)
	}

	if parser.IsCategoryPage(doc) {
		if opts.CrawlPagination {
			return s.paginator.Crawl(ctx, finalURL, opts.Rule, opts.MaxPages)
		}
		return parser.ParseCategory(doc, finalURL, opts.Rule)
	}

	return parser.ParseProduct(doc, finalURL, opts.Rule)
}

// ScrapeBatch processes URLs sequentially and merges their results. Every
// URL's outcome is independent.
func (s *Scraper) ScrapeBatch(ctx context.Context, urls []string, opts Options) PageResult {
	var result PageResult
	for _, u := range urls {
		s.log.Info().Str("url", u).Msg("Scraping URL")
		result.Merge(s.ScrapeURL(ctx, u, opts))
	}
	s.log.Info().Int("url_count", len(urls)).Int("item_count", len(result.Items)).Msg("Batch finished")
	return result
}
