package scraper_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/jonesrussell/newsscraper/internal/domain"
	"github.com/jonesrussell/newsscraper/internal/logger"
	"github.com/jonesrussell/newsscraper/internal/scraper"
	"github.com/stretchr/testify/require"
)

// newListingServer serves listing pages built by the pageItems callback,
// keyed by the zero-based page number derived from skip/limit.
func newListingServer(t *testing.T, pageItems func(page int) []string) *httptest.Server {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/collections/politics", r.URL.Path)

		skip, err := strconv.Atoi(r.URL.Query().Get("skip"))
		require.NoError(t, err)
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		require.NoError(t, err)
		require.Equal(t, scraper.DefaultPageSize, limit)

		items := make([]map[string]any, 0)
		for _, slug := range pageItems(skip / limit) {
			items = append(items, map[string]any{"story": map[string]any{"slug": slug}})
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"items": items}))
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func testConfig(baseURL string) *scraper.Config {
	cfg := scraper.NewConfig()
	cfg.BaseURL = baseURL
	cfg.PacingDelay = 0
	return cfg
}

func fullPage(page int) []string {
	slugs := make([]string, scraper.DefaultPageSize)
	for i := range slugs {
		slugs[i] = fmt.Sprintf("politics/story-%d-%d", page, i)
	}
	return slugs
}

func TestDiscoverURLs_FullPages(t *testing.T) {
	server := newListingServer(t, fullPage)
	d := scraper.NewDiscoverer(testConfig(server.URL), logger.NewNoOp())

	urls, err := d.DiscoverURLs(context.Background(), domain.CategoryPolitics, 3)
	require.NoError(t, err)
	require.Len(t, urls, 3*scraper.DefaultPageSize)
	require.Equal(t, server.URL+"/politics/story-0-0", urls[0])
}

func TestDiscoverURLs_StopsOnEmptyPage(t *testing.T) {
	server := newListingServer(t, func(page int) []string {
		if page >= 1 {
			return nil
		}
		return fullPage(page)
	})
	d := scraper.NewDiscoverer(testConfig(server.URL), logger.NewNoOp())

	urls, err := d.DiscoverURLs(context.Background(), domain.CategoryPolitics, 5)
	require.NoError(t, err)
	require.Len(t, urls, scraper.DefaultPageSize)
}

func TestDiscoverURLs_TransportErrorReturnsPartial(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[{"story":{"slug":"politics/only-story"}}]}`)
	}))
	t.Cleanup(server.Close)

	d := scraper.NewDiscoverer(testConfig(server.URL), logger.NewNoOp())

	urls, err := d.DiscoverURLs(context.Background(), domain.CategoryPolitics, 3)
	require.NoError(t, err)
	require.Equal(t, []string{server.URL + "/politics/only-story"}, urls)
}

func TestDiscoverURLs_RejectsZeroPageBudget(t *testing.T) {
	d := scraper.NewDiscoverer(testConfig("http://localhost:0"), logger.NewNoOp())

	_, err := d.DiscoverURLs(context.Background(), domain.CategoryPolitics, 0)
	require.ErrorIs(t, err, domain.ErrInvalidMaxPages)
}

func TestDiscoverURLs_SkipsEmptySlugs(t *testing.T) {
	server := newListingServer(t, func(page int) []string {
		if page > 0 {
			return nil
		}
		return []string{"politics/real-story", ""}
	})
	d := scraper.NewDiscoverer(testConfig(server.URL), logger.NewNoOp())

	urls, err := d.DiscoverURLs(context.Background(), domain.CategoryPolitics, 2)
	require.NoError(t, err)
	require.Equal(t, []string{server.URL + "/politics/real-story"}, urls)
}
