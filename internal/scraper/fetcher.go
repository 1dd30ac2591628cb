package scraper

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/jonesrussell/newsscraper/internal/domain"
	"github.com/jonesrussell/newsscraper/internal/logger"
)

// colly request-context keys for passing state into response callbacks.
const (
	ctxKeyCategory = "category"
	ctxKeyArticle  = "article"
)

// ErrArticleUnavailable marks a total fetch failure for one article
// (transport error or non-2xx status). The orchestrator skips the URL.
var ErrArticleUnavailable = errors.New("article unavailable")

// Fetcher retrieves article pages and turns them into article records.
// The underlying collector enforces the fixed pacing delay between requests.
type Fetcher struct {
	collector *colly.Collector
	pacing    *colly.LimitRule
	logger    logger.Interface
}

// NewFetcher creates an article fetcher with pacing and timeout from cfg.
func NewFetcher(cfg *Config, log logger.Interface) (*Fetcher, error) {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(cfg.RequestTimeout)

	pacing := &colly.LimitRule{
		DomainGlob: "*",
		Delay:      cfg.PacingDelay,
	}
	if err := collector.Limit(pacing); err != nil {
		return nil, fmt.Errorf("failed to configure pacing limit: %w", err)
	}

	fetcher := &Fetcher{
		collector: collector,
		pacing:    pacing,
		logger:    log,
	}

	collector.OnResponse(fetcher.handleResponse)

	return fetcher, nil
}

// handleResponse parses the page body and stores the extracted record in the
// request context for Fetch to pick up.
func (f *Fetcher) handleResponse(r *colly.Response) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	if err != nil {
		f.logger.Warn("Failed to parse article markup",
			"url", r.Request.URL.String(),
			"error", err)
		return
	}

	category := domain.Category(r.Ctx.Get(ctxKeyCategory))
	article := Extract(doc, r.Request.URL.String(), category)
	r.Ctx.Put(ctxKeyArticle, article)
}

// Fetch retrieves one article page and extracts its record. A transport
// failure or non-2xx status yields ErrArticleUnavailable and no record;
// missing fields inside a reachable page never cause an error.
func (f *Fetcher) Fetch(rawURL string, category domain.Category) (*domain.Article, error) {
	ctx := colly.NewContext()
	ctx.Put(ctxKeyCategory, string(category))

	if err := f.collector.Request(http.MethodGet, rawURL, nil, ctx, nil); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArticleUnavailable, rawURL, err)
	}
	f.collector.Wait()

	article, ok := ctx.GetAny(ctxKeyArticle).(*domain.Article)
	if !ok {
		return nil, fmt.Errorf("%w: %s: unreadable response body", ErrArticleUnavailable, rawURL)
	}

	return article, nil
}
