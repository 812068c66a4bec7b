package scrape

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricehound/pkg/errors"
)

func TestCrawlStopsAtMaxPages(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.pages["https://shop.example.com/list"] = categoryPage("/list?p=2", card("/p/a", "A", "$1.00"))
	fetcher.pages["https://shop.example.com/list?p=2"] = categoryPage("/list?p=3", card("/p/b", "B", "$2.00"))
	fetcher.pages["https://shop.example.com/list?p=3"] = categoryPage("/list?p=4", card("/p/c", "C", "$3.00"))
	fetcher.pages["https://shop.example.com/list?p=4"] = categoryPage("", card("/p/d", "D", "$4.00"))

	result := NewPaginator(fetcher, 0).Crawl(context.Background(), "https://shop.example.com/list", DiscountRule{}, 3)

	assert.Len(t, fetcher.calls, 3)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "A", result.Items[0].Title)
	assert.Equal(t, "C", result.Items[2].Title)
}

func TestCrawlStopsOnEmptyPage(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.pages["https://shop.example.com/list"] = categoryPage("/list?p=2", card("/p/a", "A", "$1.00"))
	fetcher.pages["https://shop.example.com/list?p=2"] = categoryPage("")

	result := NewPaginator(fetcher, 0).Crawl(context.Background(), "https://shop.example.com/list", DiscountRule{}, 10)

	assert.Len(t, fetcher.calls, 2)
	assert.Len(t, result.Items, 1)
}

func TestCrawlKeepsCollectedOnFetchFailure(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.pages["https://shop.example.com/list"] = categoryPage("/list?p=2", card("/p/a", "A", "$1.00"))
	fetcher.errs["https://shop.example.com/list?p=2"] = errors.NewFetch("shop.example.com", "unexpected status code: 500", nil)

	result := NewPaginator(fetcher, 0).Crawl(context.Background(), "https://shop.example.com/list", DiscountRule{}, 10)

	require.Len(t, result.Items, 2)
	assert.Equal(t, "A", result.Items[0].Title)
	assert.Equal(t, SourceError, result.Items[1].Source)
	assert.Contains(t, result.Items[1].PriceText, "fetch_failed:")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "fetch failed")
}

func TestCrawlStopsOnCycle(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.pages["https://shop.example.com/list"] = categoryPage("/list?p=2", card("/p/a", "A", "$1.00"))
	fetcher.pages["https://shop.example.com/list?p=2"] = categoryPage("/list", card("/p/b", "B", "$2.00"))

	result := NewPaginator(fetcher, 0).Crawl(context.Background(), "https://shop.example.com/list", DiscountRule{}, 10)

	assert.Len(t, fetcher.calls, 2)
	assert.Len(t, result.Items, 2)
}

func TestCrawlFallsBackToPageParam(t *testing.T) {
	fetcher := newFakeFetcher()
	// No next link on page one; pagination continues through the page
	// parameter convention
	fetcher.pages["https://shop.example.com/list"] = categoryPage("", card("/p/a", "A", "$1.00"))
	fetcher.pages["https://shop.example.com/list?p=2"] = categoryPage("")

	result := NewPaginator(fetcher, 0).Crawl(context.Background(), "https://shop.example.com/list", DiscountRule{}, 10)

	require.Len(t, fetcher.calls, 2)
	assert.Equal(t, "https://shop.example.com/list?p=2", fetcher.calls[1])
	assert.Len(t, result.Items, 1)
}

func TestIncrementPageParam(t *testing.T) {
	assert.Equal(t, "https://e.com/list?p=2", incrementPageParam("https://e.com/list", "p"))
	assert.Equal(t, "https://e.com/list?p=4", incrementPageParam("https://e.com/list?p=3", "p"))
	assert.Equal(t, "https://e.com/list?cat=1&p=2", incrementPageParam("https://e.com/list?cat=1", "p"))
	assert.Equal(t, "", incrementPageParam("https://e.com/list", ""))
}
