// Package scraper discovers article URLs from the upstream listing API and
// extracts structured article records from article pages.
package scraper

import "time"

const (
	// DefaultBaseURL is the upstream news site root.
	DefaultBaseURL = "https://www.prothomalo.com/"
	// DefaultPageSize is the fixed number of stories per listing page.
	DefaultPageSize = 12
	// DefaultRequestTimeout bounds listing and article fetches.
	DefaultRequestTimeout = 10 * time.Second
	// DefaultPacingDelay is the fixed delay between upstream requests.
	// This is the only backpressure against the upstream service.
	DefaultPacingDelay = 1 * time.Second
	// DefaultUserAgent identifies the scraper to the upstream service.
	DefaultUserAgent = "newsscraper/1.0"
)

// Config holds scraper settings for discovery and article fetching.
type Config struct {
	BaseURL        string        `yaml:"base_url"`
	PageSize       int           `yaml:"page_size"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	PacingDelay    time.Duration `yaml:"pacing_delay"`
	UserAgent      string        `yaml:"user_agent"`
}

// NewConfig returns a scraper configuration with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		PageSize:       DefaultPageSize,
		RequestTimeout: DefaultRequestTimeout,
		PacingDelay:    DefaultPacingDelay,
		UserAgent:      DefaultUserAgent,
	}
}
