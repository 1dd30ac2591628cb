package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsscraper/internal/domain"
	"github.com/jonesrussell/newsscraper/internal/logger"
)

func pacingConfig(baseURL string, delay time.Duration) *Config {
	return &Config{
		BaseURL:        baseURL,
		PageSize:       2,
		RequestTimeout: 5 * time.Second,
		PacingDelay:    delay,
		UserAgent:      DefaultUserAgent,
	}
}

func TestDiscoverURLs_PacesBetweenPages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"story":{"slug":"bangladesh/abc123"}}]}`))
	}))
	defer srv.Close()

	d := NewDiscoverer(pacingConfig(srv.URL, 250*time.Millisecond), logger.NewNoOp())

	var slept []time.Duration
	d.sleep = func(dur time.Duration) { slept = append(slept, dur) }

	urls, err := d.DiscoverURLs(context.Background(), domain.CategoryPolitics, 3)
	require.NoError(t, err)
	require.Len(t, urls, 3)

	// One pause between each pair of pages, none after the last.
	require.Len(t, slept, 2)
	for _, dur := range slept {
		assert.Equal(t, 250*time.Millisecond, dur)
	}
}

func TestDiscoverURLs_SinglePageDoesNotSleep(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"story":{"slug":"bangladesh/abc123"}}]}`))
	}))
	defer srv.Close()

	d := NewDiscoverer(pacingConfig(srv.URL, 250*time.Millisecond), logger.NewNoOp())

	sleeps := 0
	d.sleep = func(time.Duration) { sleeps++ }

	_, err := d.DiscoverURLs(context.Background(), domain.CategoryPolitics, 1)
	require.NoError(t, err)
	assert.Zero(t, sleeps)
}

func TestNewFetcher_AppliesPacingLimit(t *testing.T) {
	t.Parallel()

	cfg := pacingConfig(DefaultBaseURL, 750*time.Millisecond)
	f, err := NewFetcher(cfg, logger.NewNoOp())
	require.NoError(t, err)

	require.NotNil(t, f.pacing)
	assert.Equal(t, "*", f.pacing.DomainGlob)
	assert.Equal(t, cfg.PacingDelay, f.pacing.Delay)
}

func TestFetcher_PacesSequentialRequests(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1 class="IiRps">শিরোনাম</h1></body></html>`))
	}))
	defer srv.Close()

	const delay = 120 * time.Millisecond
	f, err := NewFetcher(pacingConfig(srv.URL, delay), logger.NewNoOp())
	require.NoError(t, err)

	start := time.Now()
	_, err = f.Fetch(srv.URL, domain.CategoryPolitics)
	require.NoError(t, err)
	_, err = f.Fetch(srv.URL, domain.CategoryPolitics)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), delay)
}
