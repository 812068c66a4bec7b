package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricehound/internal/scrape"
)

type stubScraper struct {
	result scrape.PageResult
	urls   []string
}

func (s *stubScraper) ScrapeBatch(_ context.Context, urls []string, _ scrape.Options) scrape.PageResult {
	s.urls = urls
	return s.result
}

type stubMailer struct {
	subject     string
	body        string
	attachments []Attachment
	err         error
}

func (m *stubMailer) SendReport(subject, body string, attachments []Attachment) error {
	m.subject = subject
	m.body = body
	m.attachments = attachments
	return m.err
}

func TestRunSendsReport(t *testing.T) {
	price := 10.0
	discounted := 9.0
	scraper := &stubScraper{result: scrape.PageResult{
		Items: []scrape.Item{{
			URL:                 "https://shop.example.com/p/a",
			Site:                "shop.example.com",
			Title:               "Screen A",
			PriceValue:          &price,
			DiscountedValue:     &discounted,
			DiscountedFormatted: "$9.00",
			OriginalFormatted:   "$10.00",
			Source:              "category-card",
		}},
	}}
	mailer := &stubMailer{}

	svc := NewService(scraper, mailer, Config{
		URLs:     []string{"https://shop.example.com/list"},
		Rule:     scrape.DiscountRule{PercentOff: 10},
		MaxPages: 3,
	})

	require.NoError(t, svc.Run(context.Background()))

	assert.Equal(t, []string{"https://shop.example.com/list"}, scraper.urls)
	assert.Contains(t, mailer.subject, "1 items")
	require.Len(t, mailer.attachments, 2)

	csvAtt := mailer.attachments[0]
	assert.Contains(t, csvAtt.Filename, ".csv")
	records, err := csv.NewReader(bytes.NewReader(csvAtt.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	xlsxAtt := mailer.attachments[1]
	assert.Contains(t, xlsxAtt.Filename, ".xlsx")
	assert.NotEmpty(t, xlsxAtt.Data)
}

func TestStartUnconfiguredStaysIdle(t *testing.T) {
	svc := NewService(&stubScraper{}, nil, Config{CronSpec: "0 8 * * *"})
	require.NoError(t, svc.Start())
	svc.Stop()
}

func TestStartRejectsBadCronSpec(t *testing.T) {
	svc := NewService(&stubScraper{}, &stubMailer{}, Config{
		CronSpec: "not a cron spec",
		URLs:     []string{"https://shop.example.com/list"},
	})
	assert.Error(t, svc.Start())
}
