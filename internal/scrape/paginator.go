package scrape

import (
	"context"
	mathrand "math/rand"
	"net/url"
	"strconv"
	"time"

	"pricehound/helpers"
	"pricehound/logger"
)

// Paginator drives repeated fetch-parse cycles across the pages of one
// category listing
type Paginator struct {
	fetcher Fetcher
	delay   time.Duration
	log     *logger.Logger
}

// NewPaginator creates a paginator. delay is the politeness pause before each
// page fetch; a small jitter is added on top.
func NewPaginator(fetcher Fetcher, delay time.Duration) *Paginator {
	return &Paginator{
		fetcher: fetcher,
		delay:   delay,
		log:     logger.ForComponent("paginator"),
	}
}

// Crawl collects items starting at startURL until a page yields no items,
// maxPages is exhausted, a fetch fails, or pagination cycles back to a page
// already seen. Whatever was collected before a failure is kept.
func (p *Paginator) Crawl(ctx context.Context, startURL string, rule DiscountRule, maxPages int) PageResult {
	var result PageResult
	seen := make(map[string]bool)
	pageURL := startURL

	for page := 0; pageURL != "" && page < maxPages; page++ {
		p.pause(ctx)

		finalURL, body, err := p.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			p.log.Warn().Err(err).Str("url", pageURL).Msg("Page fetch failed, stopping pagination")
			result.Items = append(result.Items, errorItem(pageURL, err))
			result.Warnf("%s: fetch failed: %v", pageURL, err)
			break
		}

		doc, err := NewDocument(body)
		if err != nil {
			result.Warnf("%s: parse failed: %v", finalURL, err)
			break
		}

		parser := ParserFor(helpers.HostOf(finalURL))
		pageResult := parser.ParseCategory(doc, finalURL, rule)
		result.Merge(pageResult)

		// An empty page means the listing ran out
		if len(pageResult.Items) == 0 {
			break
		}

		seen[finalURL] = true
		next := parser.NextPageURL(doc, finalURL)
		if next == "" {
			next = incrementPageParam(finalURL, parser.PageParam())
		}
		if next == "" || seen[next] {
			break
		}
		pageURL = next
	}

	return result
}

// pause sleeps for the politeness delay plus jitter, returning early when the
// request context is done
func (p *Paginator) pause(ctx context.Context) {
	if p.delay <= 0 {
		return
	}
	jitter := time.Duration(mathrand.Int63n(int64(50 * time.Millisecond)))
	select {
	case <-time.After(p.delay + jitter):
	case <-ctx.Done():
	}
}

// incrementPageParam derives the next page URL from the site's page query
// parameter convention. An absent parameter counts as page 1.
func incrementPageParam(rawURL, param string) string {
	if param == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	current := 1
	if v := q.Get(param); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			current = n
		}
	}
	q.Set(param, strconv.Itoa(current+1))
	u.RawQuery = q.Encode()
	return u.String()
}
