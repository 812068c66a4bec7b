package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"pricehound/config"
	"pricehound/internal/scrape"
	"pricehound/logger"
	"pricehound/pkg/errors"
)

// BatchScraper is the slice of the scraper the API needs
type BatchScraper interface {
	ScrapeBatch(ctx context.Context, urls []string, opts scrape.Options) scrape.PageResult
}

// Server exposes the scraping pipeline over HTTP
type Server struct {
	scraper BatchScraper
	cfg     *config.Config
	log     *logger.Logger
}

// NewServer creates an API server around a scraper
func NewServer(scraper BatchScraper, cfg *config.Config) *Server {
	return &Server{
		scraper: scraper,
		cfg:     cfg,
		log:     logger.ForComponent("api"),
	}
}

// Router builds the route table
func (s *Server) Router() *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", s.Health)
	router.POST("/api/scrape", s.Scrape)
	router.POST("/api/export/csv", s.ExportCSV)
	router.POST("/api/export/xlsx", s.ExportXLSX)
	return router
}

// ScrapeRequest is the request body shared by the scrape and export
// endpoints. URLs come as one newline-separated block, matching what users
// paste from a spreadsheet column.
type ScrapeRequest struct {
	URLs            string  `json:"urls"`
	PercentOff      float64 `json:"percent_off"`
	AbsoluteOff     float64 `json:"absolute_off"`
	CrawlPagination *bool   `json:"crawl_pagination"`
	MaxPages        int     `json:"max_pages"`
}

// ScrapeResponse is the scrape endpoint's reply
type ScrapeResponse struct {
	Rules    scrape.DiscountRule `json:"rules"`
	Count    int                 `json:"count"`
	Items    []scrape.Item       `json:"items"`
	Warnings []string            `json:"warnings"`
}

// Health reports liveness
func (s *Server) Health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Scrape runs the batch pipeline and returns the items as JSON
func (s *Server) Scrape(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	urls, opts, err := s.parseRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result := s.scraper.ScrapeBatch(r.Context(), urls, opts)

	writeJSON(w, http.StatusOK, ScrapeResponse{
		Rules:    opts.Rule,
		Count:    len(result.Items),
		Items:    result.Items,
		Warnings: warningsOrEmpty(result.Warnings),
	})
}

// parseRequest decodes and validates the shared request body, returning the
// cleaned URL list and scrape options
func (s *Server) parseRequest(r *http.Request) ([]string, scrape.Options, error) {
	defer r.Body.Close()

	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, scrape.Options{}, errors.NewValidation("invalid JSON body: " + err.Error())
	}

	urls := splitURLs(req.URLs)
	if len(urls) == 0 {
		return nil, scrape.Options{}, errors.NewValidation("no URLs provided")
	}

	if req.PercentOff < 0 || req.PercentOff > 100 {
		return nil, scrape.Options{}, errors.NewValidation("percent_off must be between 0 and 100")
	}
	if req.AbsoluteOff < 0 {
		return nil, scrape.Options{}, errors.NewValidation("absolute_off must not be negative")
	}

	maxPages := req.MaxPages
	if maxPages <= 0 {
		maxPages = s.cfg.DefaultMaxPages
	}
	if maxPages > s.cfg.MaxPagesCap {
		maxPages = s.cfg.MaxPagesCap
	}

	crawl := true
	if req.CrawlPagination != nil {
		crawl = *req.CrawlPagination
	}

	return urls, scrape.Options{
		Rule: scrape.DiscountRule{
			PercentOff:  req.PercentOff,
			AbsoluteOff: req.AbsoluteOff,
		},
		CrawlPagination: crawl,
		MaxPages:        maxPages,
	}, nil
}

// splitURLs breaks a newline-separated block into trimmed, deduplicated URLs,
// keeping first-seen order
func splitURLs(block string) []string {
	var urls []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(block, "\n") {
		u := strings.TrimSpace(line)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

func warningsOrEmpty(w []string) []string {
	if w == nil {
		return []string{}
	}
	return w
}

// writeJSON serializes a response body
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.ForComponent("api").Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps pipeline errors onto HTTP statuses
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.IsValidation(err) {
		status = http.StatusBadRequest
	}
	if status >= 500 {
		s.log.Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
