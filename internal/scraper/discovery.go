package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonesrussell/newsscraper/internal/domain"
	"github.com/jonesrussell/newsscraper/internal/logger"
)

// listingPage is the upstream listing API response shape.
type listingPage struct {
	Items []listingItem `json:"items"`
}

type listingItem struct {
	Story struct {
		Slug string `json:"slug"`
	} `json:"story"`
}

// Discoverer paginates the upstream listing API to enumerate candidate
// article URLs for a category.
type Discoverer struct {
	cfg        *Config
	httpClient *http.Client
	logger     logger.Interface
	sleep      func(time.Duration)
}

// NewDiscoverer creates a URL discoverer.
func NewDiscoverer(cfg *Config, log logger.Interface) *Discoverer {
	return &Discoverer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     log,
		sleep:      time.Sleep,
	}
}

// DiscoverURLs collects article URLs for the category across up to maxPages
// listing pages. It stops early on an empty page or a transport error and
// returns whatever it gathered so far; slugs are not de-duplicated across
// pages (index-time document ids collapse repeats).
func (d *Discoverer) DiscoverURLs(ctx context.Context, category domain.Category, maxPages int) ([]string, error) {
	if maxPages < 1 {
		return nil, domain.ErrInvalidMaxPages
	}

	base, err := url.Parse(d.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", d.cfg.BaseURL, err)
	}

	var articleURLs []string
	for page := range maxPages {
		items, fetchErr := d.fetchPage(ctx, category, page)
		if fetchErr != nil {
			d.logger.Error("Failed to fetch listing page, stopping discovery",
				"category", category,
				"page", page+1,
				"error", fetchErr)
			break
		}
		if len(items) == 0 {
			d.logger.Debug("Listing exhausted", "category", category, "page", page+1)
			break
		}

		for _, item := range items {
			slug := item.Story.Slug
			if slug == "" {
				continue
			}
			ref, parseErr := url.Parse(slug)
			if parseErr != nil {
				d.logger.Warn("Skipping unresolvable slug", "slug", slug, "error", parseErr)
				continue
			}
			articleURLs = append(articleURLs, base.ResolveReference(ref).String())
		}

		// Fixed pacing between listing pages to bound the request rate.
		if page < maxPages-1 {
			d.sleep(d.cfg.PacingDelay)
		}
	}

	return articleURLs, nil
}

// fetchPage requests one listing page using the skip/limit scheme.
func (d *Discoverer) fetchPage(ctx context.Context, category domain.Category, page int) ([]listingItem, error) {
	endpoint, err := url.JoinPath(d.cfg.BaseURL, "api", "v1", "collections", string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to construct listing URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	query := req.URL.Query()
	query.Set("skip", strconv.Itoa(page*d.cfg.PageSize))
	query.Set("limit", strconv.Itoa(d.cfg.PageSize))
	req.URL.RawQuery = query.Encode()
	req.Header.Set("User-Agent", d.cfg.UserAgent)

	res, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing request returned status %d", res.StatusCode)
	}

	var pageData listingPage
	if decodeErr := json.NewDecoder(res.Body).Decode(&pageData); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode listing response: %w", decodeErr)
	}

	return pageData.Items, nil
}
