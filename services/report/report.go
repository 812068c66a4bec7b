package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"pricehound/internal/scrape"
	"pricehound/logger"
	"pricehound/services/export"
)

// BatchScraper is the slice of the scraper the report job needs
type BatchScraper interface {
	ScrapeBatch(ctx context.Context, urls []string, opts scrape.Options) scrape.PageResult
}

// Config controls what the scheduled report scrapes
type Config struct {
	CronSpec string
	URLs     []string
	Rule     scrape.DiscountRule
	MaxPages int
}

// Service runs a scheduled scrape of a fixed URL list and mails the results
// as CSV and XLSX attachments
type Service struct {
	scraper BatchScraper
	mailer  Mailer
	cfg     Config
	cron    *cron.Cron
	log     *logger.Logger
}

// NewService creates a report service. It does nothing until Start is called.
func NewService(scraper BatchScraper, mailer Mailer, cfg Config) *Service {
	return &Service{
		scraper: scraper,
		mailer:  mailer,
		cfg:     cfg,
		cron:    cron.New(),
		log:     logger.ForComponent("report"),
	}
}

// Start schedules the report job. A service without URLs or a mailer is left
// idle, with a log line saying so.
func (s *Service) Start() error {
	if len(s.cfg.URLs) == 0 || s.mailer == nil {
		s.log.Info().Msg("Report job not configured, scheduler idle")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.CronSpec, func() {
		if err := s.Run(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("Scheduled report failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.cfg.CronSpec, err)
	}

	s.cron.Start()
	s.log.Info().Str("cron", s.cfg.CronSpec).Int("url_count", len(s.cfg.URLs)).Msg("Report job scheduled")
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Run scrapes the configured URLs once and mails the results
func (s *Service) Run(ctx context.Context) error {
	s.log.Info().Int("url_count", len(s.cfg.URLs)).Msg("Running report")

	result := s.scraper.ScrapeBatch(ctx, s.cfg.URLs, scrape.Options{
		Rule:            s.cfg.Rule,
		CrawlPagination: true,
		MaxPages:        s.cfg.MaxPages,
	})

	rows := export.ItemRows(result.Items, s.cfg.Rule)

	var csvBuf bytes.Buffer
	if err := export.WriteCSV(&csvBuf, rows); err != nil {
		return err
	}
	xlsxData, err := export.WriteXLSX(rows)
	if err != nil {
		return err
	}

	stamp := time.Now().Format("2006-01-02")
	subject := fmt.Sprintf("Price report %s (%d items)", stamp, len(result.Items))
	body := fmt.Sprintf("Scraped %d URLs, %d items, %d warnings.",
		len(s.cfg.URLs), len(result.Items), len(result.Warnings))

	attachments := []Attachment{
		{
			Filename:    "report_" + stamp + ".csv",
			ContentType: "text/csv",
			Data:        csvBuf.Bytes(),
		},
		{
			Filename:    "report_" + stamp + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        xlsxData,
		},
	}

	if err := s.mailer.SendReport(subject, body, attachments); err != nil {
		return err
	}

	s.log.Info().Int("item_count", len(result.Items)).Msg("Report sent")
	return nil
}
