package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeFetch represents network or non-2xx fetch errors
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypePrice represents unparseable price text
	ErrorTypePrice ErrorType = "price"
	// ErrorTypeValidation represents request validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeExport represents export serialization errors
	ErrorTypeExport ErrorType = "export"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a scrape-pipeline error with its origin site
type ScrapeError struct {
	Type    ErrorType
	Site    string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Site, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Site, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *ScrapeError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeFetch:
		return true
	default:
		return false
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, site, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Site:    site,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewFetch creates a new fetch error
func NewFetch(site, message string, err error) *ScrapeError {
	return New(ErrorTypeFetch, site, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(site string, retryAfter string) *ScrapeError {
	message := "rate limited"
	if retryAfter != "" {
		message = fmt.Sprintf("rate limited; retry after %s", retryAfter)
	}
	return New(ErrorTypeRateLimit, site, message, nil)
}

// NewParsing creates a new parsing error
func NewParsing(site, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, site, message, err)
}

// NewPrice creates a new price error
func NewPrice(site, message string) *ScrapeError {
	return New(ErrorTypePrice, site, message, nil)
}

// NewValidation creates a new validation error
func NewValidation(message string) *ScrapeError {
	return New(ErrorTypeValidation, "", message, nil)
}

// NewExport creates a new export error
func NewExport(message string, err error) *ScrapeError {
	return New(ErrorTypeExport, "", message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsRateLimit reports whether err is a rate limit ScrapeError
func IsRateLimit(err error) bool {
	se, ok := err.(*ScrapeError)
	return ok && se.Type == ErrorTypeRateLimit
}

// IsValidation reports whether err is a validation ScrapeError
func IsValidation(err error) bool {
	se, ok := err.(*ScrapeError)
	return ok && se.Type == ErrorTypeValidation
}
