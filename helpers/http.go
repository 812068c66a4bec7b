package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	mathrand "math/rand"
	"net/http"
	"slices"
	"time"

	"golang.org/x/net/html/charset"

	"pricehound/pkg/errors"
)

// HTTP client and header configurations
var (
	userAgents = []string{
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}

	referers = []string{
		"https://www.google.com/",
		"https://www.bing.com/",
		"https://duckduckgo.com/",
	}

	client = &http.Client{
		Timeout: 10 * time.Second,
	}
)

// SetHTTPTimeout replaces the shared client timeout. Call before any fetch.
func SetHTTPTimeout(timeout time.Duration) {
	client = &http.Client{Timeout: timeout}
}

// FetchPage sends an HTTP GET request with browser-impersonating headers,
// converts the response body to UTF-8 (if needed), and returns the final URL
// after redirects together with the body.
func FetchPage(ctx context.Context, url string) (string, io.Reader, error) {
	site := HostOf(url)

	rnd := mathrand.New(mathrand.NewSource(time.Now().UnixNano()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, errors.NewFetch(site, "failed to create request", err)
	}

	// Browser-like headers
	req.Header.Set("User-Agent", userAgents[rnd.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("referer", referers[rnd.Intn(len(referers))])
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("upgrade-insecure-requests", "1")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Sec-Fetch-User", "?1")

	resp, err := client.Do(req)
	if err != nil {
		return "", nil, errors.NewFetch(site, "failed to fetch URL", err)
	}

	// Check for rate limiting
	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		retryAfter := resp.Header.Get("Retry-After")
		resp.Body.Close()
		return "", nil, errors.NewRateLimit(site, retryAfter)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return "", nil, errors.NewFetch(site, fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	defer resp.Body.Close()

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, errors.NewFetch(site, "failed to read response body", err)
	}

	// Determine the encoding from Content-Type header and body content
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, resp.Header.Get("Content-Type"))

	// If already UTF-8, return as is
	if name == "utf-8" || name == "UTF-8" {
		return finalURL, bytes.NewReader(bodyBytes), nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return "", nil, errors.NewFetch(site, "failed to read converted UTF-8 body", err)
	}

	return finalURL, &buf, nil
}
