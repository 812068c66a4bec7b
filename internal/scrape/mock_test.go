package scrape

import (
	"context"
	"io"
	"strings"

	"pricehound/helpers"
	"pricehound/pkg/errors"
)

// fakeFetcher serves canned HTML per URL and records every fetch call
type fakeFetcher struct {
	pages map[string]string
	errs  map[string]error
	calls []string
}

var _ Fetcher = (*fakeFetcher)(nil)

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: make(map[string]string),
		errs:  make(map[string]error),
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, io.Reader, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return "", nil, err
	}
	html, ok := f.pages[url]
	if !ok {
		return "", nil, errors.NewFetch(helpers.HostOf(url), "unexpected status code: 404", nil)
	}
	return url, strings.NewReader(html), nil
}

// categoryPage renders a minimal Magento-style listing page for tests
func categoryPage(nextHref string, cards ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><ul class="product-listing">`)
	for _, c := range cards {
		b.WriteString(c)
	}
	b.WriteString(`</ul>`)
	if nextHref != "" {
		b.WriteString(`<li class="pages-item-next"><a href="` + nextHref + `">Next</a></li>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func card(href, title, price string) string {
	return `<li class="item"><a href="` + href + `">` + title + `</a>` +
		`<span class="price">` + price + `</span>` +
		`<img src="/media/` + title + `.jpg"/></li>`
}
