package config

import (
	"os"
	"strconv"
	"time"

	"pricehound/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// HTTP server
	Port string

	// Fetcher configuration
	HTTPTimeout time.Duration
	Delay       time.Duration
	BlockTime   time.Duration

	// Pagination limits
	DefaultMaxPages int
	MaxPagesCap     int

	// Memcache configuration (empty disables the fetch block cache)
	MemcacheAddr string

	// Redis configuration (empty disables item publishing)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Scheduled report configuration
	EnableScheduler  bool
	CronSpec         string
	ReportURLs       string
	ReportPercentOff float64
	ReportAbsOff     float64
	ReportMaxPages   int
	ReportEmailTo    string
	ReportEmailFrom  string
	SendGridAPIKey   string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	timeoutSec, _ := strconv.Atoi(getEnv("HTTP_TIMEOUT_SECONDS", "10"))
	delayMS, _ := strconv.Atoi(getEnv("DELAY_MS", "400"))
	blockSec, _ := strconv.Atoi(getEnv("BLOCK_SECONDS", "300"))
	defaultMaxPages, _ := strconv.Atoi(getEnv("DEFAULT_MAX_PAGES", "20"))
	maxPagesCap, _ := strconv.Atoi(getEnv("MAX_PAGES_CAP", "100"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "10"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	reportPct, _ := strconv.ParseFloat(getEnv("REPORT_PERCENT_OFF", "0"), 64)
	reportAbs, _ := strconv.ParseFloat(getEnv("REPORT_ABS_OFF", "0"), 64)
	reportMaxPages, _ := strconv.Atoi(getEnv("REPORT_MAX_PAGES", "20"))

	return Config{
		Port:                 getEnv("PORT", "8080"),
		HTTPTimeout:          time.Duration(timeoutSec) * time.Second,
		Delay:                time.Duration(delayMS) * time.Millisecond,
		BlockTime:            time.Duration(blockSec) * time.Second,
		DefaultMaxPages:      defaultMaxPages,
		MaxPagesCap:          maxPagesCap,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "items"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLen,
		EnableScheduler:      getEnv("ENABLE_SCHEDULER", "0") == "1",
		CronSpec:             getEnv("CRON", "0 8 * * *"),
		ReportURLs:           getEnv("REPORT_URLS", ""),
		ReportPercentOff:     reportPct,
		ReportAbsOff:         reportAbs,
		ReportMaxPages:       reportMaxPages,
		ReportEmailTo:        getEnv("REPORT_EMAIL_TO", ""),
		ReportEmailFrom:      getEnv("REPORT_EMAIL_FROM", ""),
		SendGridAPIKey:       getEnv("SENDGRID_API_KEY", ""),
		Environment:          getEnv("PRICEHOUND_ENV", "development"),
	}
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.NewConfiguration("PORT must not be empty", nil)
	}
	if c.HTTPTimeout <= 0 {
		return errors.NewConfiguration("HTTP_TIMEOUT_SECONDS must be positive", nil)
	}
	if c.Delay < 0 {
		return errors.NewConfiguration("DELAY_MS must not be negative", nil)
	}
	if c.MaxPagesCap < 1 {
		return errors.NewConfiguration("MAX_PAGES_CAP must be at least 1", nil)
	}
	if c.DefaultMaxPages < 1 || c.DefaultMaxPages > c.MaxPagesCap {
		return errors.NewConfiguration("DEFAULT_MAX_PAGES must be between 1 and MAX_PAGES_CAP", nil)
	}
	if c.RedisAddr != "" {
		if c.RedisStreamCount < 1 {
			return errors.NewConfiguration("REDIS_STREAM_COUNT must be at least 1", nil)
		}
		if c.RedisStreamMaxLength < 1 {
			return errors.NewConfiguration("REDIS_STREAM_MAX_LENGTH must be at least 1", nil)
		}
	}
	if c.EnableScheduler && c.CronSpec == "" {
		return errors.NewConfiguration("CRON must not be empty when the scheduler is enabled", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
