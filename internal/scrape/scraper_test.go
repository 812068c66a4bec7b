package scrape

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productHTML = `<html><body>
	<h1 class="page-title"><span class="base">Charging Port Flex</span></h1>
	<div class="price-box"><span class="price">$8.99</span></div>
</body></html>`

func TestScrapeURLProductPage(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.pages["https://shop.example.com/p/flex"] = productHTML

	scraper := NewScraper(fetcher, 0)
	result := scraper.ScrapeURL(context.Background(), "https://shop.example.com/p/flex", Options{
		Rule: DiscountRule{PercentOff: 10},
	})

	require.Len(t, result.Items, 1)
	item := result.Items[0]
	assert.Equal(t, "Charging Port Flex", item.Title)
	require.NotNil(t, item.PriceValue)
	assert.Equal(t, 8.99, *item.PriceValue)
	require.NotNil(t, item.DiscountedValue)
	assert.Equal(t, 8.09, *item.DiscountedValue)
}

func TestScrapeURLCategoryWithoutPagination(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.pages["https://shop.example.com/list"] = categoryPage("/list?p=2",
		card("/p/a", "A", "$1.00"),
		card("/p/b", "B", "$2.00"),
	)

	scraper := NewScraper(fetcher, 0)
	result := scraper.ScrapeURL(context.Background(), "https://shop.example.com/list", Options{
		CrawlPagination: false,
	})

	// The next-page link must be ignored
	assert.Len(t, fetcher.calls, 1)
	assert.Len(t, result.Items, 2)
}

func TestScrapeURLCategoryWithPagination(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.pages["https://shop.example.com/list"] = categoryPage("/list?p=2", card("/p/a", "A", "$1.00"))
	fetcher.pages["https://shop.example.com/list?p=2"] = categoryPage("/list", card("/p/b", "B", "$2.00"))

	scraper := NewScraper(fetcher, 0)
	result := scraper.ScrapeURL(context.Background(), "https://shop.example.com/list", Options{
		CrawlPagination: true,
		MaxPages:        5,
	})

	require.Len(t, result.Items, 2)
	assert.Equal(t, "A", result.Items[0].Title)
	assert.Equal(t, "B", result.Items[1].Title)
}

func TestScrapeURLUnclassifiablePage(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.pages["https://shop.example.com/about"] = `<html><body><p>About us</p></body></html>`

	scraper := NewScraper(fetcher, 0)
	result := scraper.ScrapeURL(context.Background(), "https://shop.example.com/about", Options{})

	// Falls back to product extraction so the caller still sees a flagged row
	require.Len(t, result.Items, 1)
	assert.Equal(t, "price_not_found_or_hidden", result.Items[0].PriceText)
	assert.Nil(t, result.Items[0].PriceValue)
}

func TestScrapeBatchKeepsGoingOnFailure(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.pages["https://shop.example.com/p/good"] = productHTML

	scraper := NewScraper(fetcher, 0)
	result := scraper.ScrapeBatch(context.Background(), []string{
		"https://down.example.com/p/bad",
		"https://shop.example.com/p/good",
	}, Options{})

	require.Len(t, result.Items, 2)

	bad := result.Items[0]
	assert.Equal(t, SourceError, bad.Source)
	assert.Equal(t, "down.example.com", bad.Site)
	assert.Contains(t, bad.PriceText, "fetch_failed:")
	assert.Nil(t, bad.PriceValue)

	good := result.Items[1]
	assert.Equal(t, "Charging Port Flex", good.Title)
	require.NotNil(t, good.PriceValue)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "fetch failed")
}
