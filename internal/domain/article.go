// Package domain defines the core types shared across the scraping pipeline.
package domain

import (
	"strings"
	"time"
)

// Sentinel values substituted when a field cannot be extracted from the
// article markup. They distinguish "looked but not found" from "not attempted".
const (
	HeadlineNotFound = "Headline not found"
	AuthorNotFound   = "Author not found"
	LocationNotFound = "Location not found"
	DateNotFound     = "Date not found"
)

// Article is one scraped article. URL is always present and non-empty;
// every other field is best-effort.
type Article struct {
	URL         string    `json:"url"`
	Headline    string    `json:"headline"`
	Author      string    `json:"author"`
	Location    string    `json:"location"`
	PublishedAt string    `json:"published_at,omitempty"`
	Content     string    `json:"content"`
	WordCount   int       `json:"word_count"`
	ScrapedAt   time.Time `json:"scraped_at"`
	Category    string    `json:"category"`
}

// CountWords returns the whitespace-token count of content, 0 for empty content.
func CountWords(content string) int {
	return len(strings.Fields(content))
}
