package scraper

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonesrussell/newsscraper/internal/dates"
	"github.com/jonesrussell/newsscraper/internal/domain"
)

// Selectors for the upstream article markup. The class names are generated
// by the site's frontend build and change rarely; when they do, extraction
// degrades to sentinels rather than failing.
const (
	headlineSelector  = "h1.IiRps"
	authorSelector    = "span.contributor-name._8TSJC"
	locationSelector  = "span.author-location._8-umj"
	dateSelector      = "div.time-social-share-wrapper span:first-child"
	paragraphSelector = "div.story-content p"

	locationPrefix = "Location: "
)

// extractText returns the trimmed text of the first node matching the
// selector, or the sentinel when no node is present.
func extractText(doc *goquery.Document, selector, sentinel string) string {
	node := doc.Find(selector).First()
	if node.Length() == 0 {
		return sentinel
	}
	text := strings.TrimSpace(node.Text())
	if text == "" {
		return sentinel
	}
	return text
}

// extractLocation strips the known label prefix from the location node text.
func extractLocation(doc *goquery.Document) string {
	location := extractText(doc, locationSelector, domain.LocationNotFound)
	return strings.TrimSpace(strings.TrimPrefix(location, locationPrefix))
}

// extractPublishedAt reads the publication-date node, drops the label segment
// before the first colon, and normalizes the remainder. Returns the empty
// string when the date is missing or unparseable.
func extractPublishedAt(doc *goquery.Document) string {
	raw := extractText(doc, dateSelector, domain.DateNotFound)
	if idx := strings.Index(raw, ":"); idx >= 0 {
		raw = raw[idx+1:]
	}
	normalized, ok := dates.Normalize(strings.TrimSpace(raw))
	if !ok {
		return ""
	}
	return normalized
}

// extractContent joins the trimmed text of every body paragraph with newlines.
func extractContent(doc *goquery.Document) string {
	var paragraphs []string
	doc.Find(paragraphSelector).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n")
}

// Extract produces an article record from parsed markup. Every field falls
// back independently to its sentinel; markup problems never abort record
// construction.
func Extract(doc *goquery.Document, pageURL string, category domain.Category) *domain.Article {
	content := extractContent(doc)

	return &domain.Article{
		URL:         pageURL,
		Headline:    extractText(doc, headlineSelector, domain.HeadlineNotFound),
		Author:      extractText(doc, authorSelector, domain.AuthorNotFound),
		Location:    extractLocation(doc),
		PublishedAt: extractPublishedAt(doc),
		Content:     content,
		WordCount:   domain.CountWords(content),
		ScrapedAt:   time.Now().UTC(),
		Category:    string(category),
	}
}
