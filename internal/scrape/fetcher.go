package scrape

import (
	"context"
	"io"
	"strconv"
	"time"

	"pricehound/helpers"
	"pricehound/logger"
	"pricehound/pkg/errors"
	"pricehound/services/cache"
)

// HTTPFetcher fetches pages over plain HTTP with browser-impersonating
// headers. When a host rate limits us, further fetches against it are blocked
// through the cache for blockTime.
type HTTPFetcher struct {
	cacheSvc  cache.CacheService
	blockTime time.Duration
	log       *logger.Logger
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a fetcher. cacheSvc may be nil to disable blocking.
func NewHTTPFetcher(cacheSvc cache.CacheService, blockTime time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		cacheSvc:  cacheSvc,
		blockTime: blockTime,
		log:       logger.ForComponent("fetcher"),
	}
}

// Fetch retrieves a page body and the final URL after redirects
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, io.Reader, error) {
	site := helpers.HostOf(url)
	key := blockKey(site)

	if f.cacheSvc != nil && site != "" {
		if _, err := f.cacheSvc.Get(key); err == nil {
			return "", nil, errors.NewRateLimit(site, "")
		}
	}

	finalURL, body, err := helpers.FetchPage(ctx, url)
	if err != nil {
		if errors.IsRateLimit(err) && f.cacheSvc != nil && site != "" {
			seconds := strconv.Itoa(int(f.blockTime / time.Second))
			if setErr := f.cacheSvc.Set(key, []byte(seconds), f.blockTime); setErr != nil {
				f.log.Warn().Err(setErr).Str("site", site).Msg("Failed to record fetch block")
			} else {
				f.log.Info().Str("site", site).Dur("block_time", f.blockTime).Msg("Host rate limited, blocking further fetches")
			}
		}
		return "", nil, err
	}

	return finalURL, body, nil
}

func blockKey(site string) string {
	return "blocked:" + site
}
