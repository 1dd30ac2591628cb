package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsscraper/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "https://www.prothomalo.com/", cfg.Scraper.BaseURL)
	assert.Equal(t, 12, cfg.Scraper.PageSize)
	assert.Equal(t, time.Second, cfg.Scraper.PacingDelay)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Elasticsearch.Addresses)
	assert.Equal(t, "prothomalo_articles", cfg.Elasticsearch.IndexName)
	assert.Equal(t, "article-archives", cfg.MinIO.Bucket)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "scrapers", cfg.Worker.ConsumerGroup)
	assert.Equal(t, 30*time.Minute, cfg.Worker.JobTimeout)
	assert.Equal(t, 5, cfg.Schedule.MaxPages)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `
server:
  address: ":9090"
scraper:
  pacing_delay: 2s
elasticsearch:
  index_name: staging_articles
schedule:
  spec: "0 * * * *"
  categories:
    - politics
    - sports-all
  max_pages: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 2*time.Second, cfg.Scraper.PacingDelay)
	assert.Equal(t, "staging_articles", cfg.Elasticsearch.IndexName)
	assert.Equal(t, []string{"politics", "sports-all"}, cfg.Schedule.Categories)
	assert.Equal(t, 2, cfg.Schedule.MaxPages)

	// untouched sections keep their defaults
	assert.Equal(t, 12, cfg.Scraper.PageSize)
	assert.Equal(t, "article-archives", cfg.MinIO.Bucket)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NEWSSCRAPER_SERVER_ADDRESS", ":7070")
	t.Setenv("NEWSSCRAPER_DATABASE_PASSWORD", "hunter2")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, "hunter2", cfg.Database.Password)
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("schedule:\n  max_pages: 0\n"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := config.Load("/does/not/exist.yml")
	assert.Error(t, err)
}
