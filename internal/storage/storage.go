package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/jonesrussell/newsscraper/internal/domain"
	"github.com/jonesrussell/newsscraper/internal/logger"
)

// Timeouts for index operations.
const (
	DefaultBulkTimeout  = 60 * time.Second
	DefaultIndexTimeout = 10 * time.Second
)

// Storage writes article batches into the shared search index.
type Storage struct {
	client    *es.Client
	indexName string
	logger    logger.Interface
}

// NewStorage creates a storage instance over an existing client. The client's
// connection lifecycle is owned by the caller.
func NewStorage(client *es.Client, indexName string, log logger.Interface) *Storage {
	if indexName == "" {
		indexName = DefaultIndexName
	}
	return &Storage{
		client:    client,
		indexName: indexName,
		logger:    log,
	}
}

// IndexName returns the target index name.
func (s *Storage) IndexName() string {
	return s.indexName
}

// DocumentID derives the deterministic document id for an article URL.
// Re-indexing the same URL overwrites the existing document, which makes
// repeated runs idempotent.
func DocumentID(articleURL string) string {
	return strings.ReplaceAll(url.QueryEscape(articleURL), "+", "%20")
}

// IndexExists checks whether the target index exists.
func (s *Storage) IndexExists(ctx context.Context) (bool, error) {
	if s.client == nil {
		return false, ErrNilClient
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultIndexTimeout)
	defer cancel()

	res, err := s.client.Indices.Exists(
		[]string{s.indexName},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	return res.StatusCode == http.StatusOK, nil
}

// RequireIndex returns ErrIndexNotFound when the target index is missing.
func (s *Storage) RequireIndex(ctx context.Context) error {
	exists, err := s.IndexExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrIndexNotFound, s.indexName)
	}
	return nil
}

// EnsureIndex creates the article index with its mapping if it does not
// already exist. Safe to call before every bulk write.
func (s *Storage) EnsureIndex(ctx context.Context) error {
	exists, err := s.IndexExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultIndexTimeout)
	defer cancel()

	var buf bytes.Buffer
	if encodeErr := json.NewEncoder(&buf).Encode(NewArticleMapping()); encodeErr != nil {
		return fmt.Errorf("error encoding mapping: %w", encodeErr)
	}

	res, err := s.client.Indices.Create(
		s.indexName,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(&buf),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to create index: %s", res.String())
	}

	s.logger.Info("Created index", "index", s.indexName)
	return nil
}

// bulkResponse is the subset of the _bulk response needed for aggregate
// success/failure counting.
type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// BulkIndex writes a batch of articles in one bulk operation, keyed by URL.
// Individual document failures do not abort the batch; only aggregate counts
// are logged. An error is returned only when the bulk request itself cannot
// be completed.
func (s *Storage) BulkIndex(ctx context.Context, articles []*domain.Article) error {
	if s.client == nil {
		return ErrNilClient
	}
	if len(articles) == 0 {
		return ErrEmptyBatch
	}

	if err := s.EnsureIndex(ctx); err != nil {
		return err
	}

	body, err := buildBulkBody(s.indexName, articles)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultBulkTimeout)
	defer cancel()

	res, err := s.client.Bulk(
		bytes.NewReader(body),
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithIndex(s.indexName),
	)
	if err != nil {
		return fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk request error: %s", res.String())
	}

	var parsed bulkResponse
	if decodeErr := json.NewDecoder(res.Body).Decode(&parsed); decodeErr != nil {
		return fmt.Errorf("error decoding bulk response: %w", decodeErr)
	}

	succeeded, failed := countBulkItems(&parsed)
	if failed > 0 {
		s.logger.Warn("Bulk index completed with per-document failures",
			"index", s.indexName,
			"succeeded", succeeded,
			"failed", failed)
	} else {
		s.logger.Info("Indexed documents",
			"index", s.indexName,
			"count", succeeded)
	}

	return nil
}

// buildBulkBody serializes the batch into the newline-delimited bulk format,
// one index action per article keyed by its URL-derived document id.
func buildBulkBody(indexName string, articles []*domain.Article) ([]byte, error) {
	var buf bytes.Buffer
	for _, article := range articles {
		action := map[string]map[string]string{
			"index": {
				"_index": indexName,
				"_id":    DocumentID(article.URL),
			},
		}
		actionLine, err := json.Marshal(action)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal bulk action: %w", err)
		}
		docLine, err := json.Marshal(article)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal article %s: %w", article.URL, err)
		}
		buf.Write(actionLine)
		buf.WriteByte('\n')
		buf.Write(docLine)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// countBulkItems tallies per-item outcomes from a bulk response.
func countBulkItems(res *bulkResponse) (succeeded, failed int) {
	for _, item := range res.Items {
		for _, op := range item {
			if op.Error != nil || op.Status >= http.StatusBadRequest {
				failed++
			} else {
				succeeded++
			}
		}
	}
	return succeeded, failed
}
