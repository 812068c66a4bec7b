package cache

import (
	"time"
)

// CacheService is the store used to block further fetches against a host
// after it rate limited us. Implementations must be safe for concurrent use.
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
