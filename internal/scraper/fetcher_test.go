package scraper_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonesrussell/newsscraper/internal/domain"
	"github.com/jonesrussell/newsscraper/internal/logger"
	"github.com/jonesrussell/newsscraper/internal/scraper"
	"github.com/stretchr/testify/require"
)

func TestFetch_ExtractsRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, fullArticleHTML)
	}))
	t.Cleanup(server.Close)

	fetcher, err := scraper.NewFetcher(testConfig(server.URL), logger.NewNoOp())
	require.NoError(t, err)

	article, err := fetcher.Fetch(server.URL+"/politics/example-story", domain.CategoryPolitics)
	require.NoError(t, err)
	require.Equal(t, server.URL+"/politics/example-story", article.URL)
	require.Equal(t, "সংসদে নতুন বিল পাস", article.Headline)
	require.Equal(t, "politics", article.Category)
}

func TestFetch_NonSuccessStatusIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	fetcher, err := scraper.NewFetcher(testConfig(server.URL), logger.NewNoOp())
	require.NoError(t, err)

	article, err := fetcher.Fetch(server.URL+"/politics/gone", domain.CategoryPolitics)
	require.ErrorIs(t, err, scraper.ErrArticleUnavailable)
	require.Nil(t, article)
}

func TestFetch_ConnectionRefusedIsUnavailable(t *testing.T) {
	fetcher, err := scraper.NewFetcher(testConfig("http://127.0.0.1:1"), logger.NewNoOp())
	require.NoError(t, err)

	article, err := fetcher.Fetch("http://127.0.0.1:1/politics/unreachable", domain.CategoryPolitics)
	require.ErrorIs(t, err, scraper.ErrArticleUnavailable)
	require.Nil(t, article)
}

func TestFetch_SameURLTwice(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, fullArticleHTML)
	}))
	t.Cleanup(server.Close)

	fetcher, err := scraper.NewFetcher(testConfig(server.URL), logger.NewNoOp())
	require.NoError(t, err)

	for range 2 {
		article, fetchErr := fetcher.Fetch(server.URL+"/politics/example-story", domain.CategoryPolitics)
		require.NoError(t, fetchErr)
		require.NotNil(t, article)
	}
	require.Equal(t, 2, hits)
}
