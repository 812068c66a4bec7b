package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 400*time.Millisecond, cfg.Delay)
	assert.Equal(t, 300*time.Second, cfg.BlockTime)
	assert.Equal(t, 20, cfg.DefaultMaxPages)
	assert.Equal(t, 100, cfg.MaxPagesCap)
	assert.Equal(t, "", cfg.MemcacheAddr)
	assert.Equal(t, "", cfg.RedisAddr)
	assert.Equal(t, "items", cfg.RedisStream)
	assert.False(t, cfg.EnableScheduler)
	assert.Equal(t, "development", cfg.Environment)

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "30")
	t.Setenv("DELAY_MS", "0")
	t.Setenv("DEFAULT_MAX_PAGES", "5")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_STREAM", "scraped")
	t.Setenv("ENABLE_SCHEDULER", "1")
	t.Setenv("CRON", "0 6 * * *")
	t.Setenv("PRICEHOUND_ENV", "production")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, time.Duration(0), cfg.Delay)
	assert.Equal(t, 5, cfg.DefaultMaxPages)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "scraped", cfg.RedisStream)
	assert.True(t, cfg.EnableScheduler)
	assert.Equal(t, "0 6 * * *", cfg.CronSpec)
	assert.Equal(t, "production", cfg.Environment)

	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := LoadConfig()
	cfg.DefaultMaxPages = 0
	assert.Error(t, cfg.Validate())

	cfg = LoadConfig()
	cfg.DefaultMaxPages = cfg.MaxPagesCap + 1
	assert.Error(t, cfg.Validate())

	cfg = LoadConfig()
	cfg.HTTPTimeout = 0
	assert.Error(t, cfg.Validate())

	cfg = LoadConfig()
	cfg.RedisAddr = "localhost:6379"
	cfg.RedisStreamCount = 0
	assert.Error(t, cfg.Validate())
}
