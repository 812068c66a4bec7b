package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pricehound/api"
	"pricehound/config"
	"pricehound/helpers"
	"pricehound/internal/scrape"
	"pricehound/logger"
	"pricehound/services/cache"
	"pricehound/services/publisher"
	"pricehound/services/report"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	helpers.SetHTTPTimeout(cfg.HTTPTimeout)

	log.Info().
		Str("environment", cfg.Environment).
		Str("port", cfg.Port).
		Dur("delay", cfg.Delay).
		Msg("Starting application")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	services := initializeServices(ctx, &cfg)
	defer services.Cleanup()

	fetcher := scrape.NewHTTPFetcher(services.Cache, cfg.BlockTime)
	scraper := newPublishingScraper(scrape.NewScraper(fetcher, cfg.Delay), services.Publisher)

	reportSvc := buildReportService(&cfg, scraper)
	if reportSvc != nil {
		if err := reportSvc.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start report scheduler")
		}
		defer reportSvc.Stop()
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.NewServer(scraper, &cfg).Router(),
	}

	serverDone := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		serverDone <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverDone:
		if err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server exited with error")
		}
	}

	log.Info().Msg("Shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

// Services holds the optional backing services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup closes all service connections
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices wires the cache and publisher. Both degrade gracefully:
// without memcache an in-process cache is used, without Redis publishing is
// disabled.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{}

	if cfg.MemcacheAddr != "" {
		services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Using Memcache at %s for fetch blocks", cfg.MemcacheAddr)
	} else {
		services.Cache = cache.NewMemoryService()
		logger.Info("Using in-process cache for fetch blocks")
	}

	if cfg.RedisAddr != "" {
		services.Publisher = publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLength,
		)
		logger.Info("Publishing items to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	return services
}

// buildReportService assembles the scheduled report when it is enabled,
// or returns nil
func buildReportService(cfg *config.Config, scraper report.BatchScraper) *report.Service {
	if !cfg.EnableScheduler {
		return nil
	}

	var mailer report.Mailer
	if cfg.SendGridAPIKey != "" && cfg.ReportEmailFrom != "" && cfg.ReportEmailTo != "" {
		mailer = report.NewSendGridMailer(
			cfg.SendGridAPIKey,
			cfg.ReportEmailFrom,
			splitList(cfg.ReportEmailTo),
		)
	}

	return report.NewService(scraper, mailer, report.Config{
		CronSpec: cfg.CronSpec,
		URLs:     splitList(cfg.ReportURLs),
		Rule: scrape.DiscountRule{
			PercentOff:  cfg.ReportPercentOff,
			AbsoluteOff: cfg.ReportAbsOff,
		},
		MaxPages: cfg.ReportMaxPages,
	})
}

// splitList splits a comma-separated env value into trimmed entries
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// publishingScraper decorates the scraper so every batch's items are also
// pushed to the configured stream
type publishingScraper struct {
	inner *scrape.Scraper
	pub   publisher.Publisher
	log   *logger.Logger
}

func newPublishingScraper(inner *scrape.Scraper, pub publisher.Publisher) *publishingScraper {
	return &publishingScraper{
		inner: inner,
		pub:   pub,
		log:   logger.ForComponent("publisher"),
	}
}

func (p *publishingScraper) ScrapeBatch(ctx context.Context, urls []string, opts scrape.Options) scrape.PageResult {
	result := p.inner.ScrapeBatch(ctx, urls, opts)

	if p.pub != nil && len(result.Items) > 0 {
		data, err := json.Marshal(result.Items)
		if err == nil {
			err = p.pub.Publish("b64_items", data)
		}
		if err != nil {
			p.log.Warn().Err(err).Msg("Failed to publish items")
		} else if err := p.pub.TrimStreams(); err != nil {
			p.log.Warn().Err(err).Msg("Failed to trim streams")
		}
	}

	return result
}
