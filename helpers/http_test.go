package helpers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"pricehound/pkg/errors"
)

func TestFetchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check that browser-like headers are set
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("Accept-Language"))
		assert.NotEmpty(t, r.Header.Get("referer"))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Hello, World!</body></html>"))
	}))
	defer server.Close()

	finalURL, reader, err := FetchPage(context.Background(), server.URL)
	assert.NoError(t, err)
	assert.Equal(t, server.URL, finalURL)

	body, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "Hello, World!")
}

func TestFetchPageFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>moved</body></html>"))
	})

	finalURL, reader, err := FetchPage(context.Background(), server.URL+"/old")
	assert.NoError(t, err)
	assert.Equal(t, server.URL+"/new", finalURL)

	body, _ := io.ReadAll(reader)
	assert.Contains(t, string(body), "moved")
}

func TestFetchPageNonUTF8(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Hello, World!</body></html>"))
	}))
	defer server.Close()

	_, reader, err := FetchPage(context.Background(), server.URL)
	assert.NoError(t, err)

	body, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "Hello, World!")
}

func TestFetchPageError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, _, err := FetchPage(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 500")
}

func TestFetchPageRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, _, err := FetchPage(context.Background(), server.URL)
	assert.Error(t, err)
	assert.True(t, errors.IsRateLimit(err))
	assert.Contains(t, err.Error(), "retry after 60")
}

func TestFetchPageInvalidURL(t *testing.T) {
	_, _, err := FetchPage(context.Background(), "http://invalid.url.that.does.not.exist")
	assert.Error(t, err)
}
