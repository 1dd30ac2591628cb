// Package archive packages scraped article batches into compressed
// containers and uploads them to object storage.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/newsscraper/internal/domain"
)

// Container layout constants. The per-article entries are 1-indexed with
// 4-digit zero-padded names so each record is re-extractable on its own.
const (
	articlesDirName   = "articles"
	articleNameFormat = "article_%04d.json"

	manifestFormat   = "zip"
	manifestEncoding = "utf-8"
)

// ErrEmptyBatch is returned when a container is requested for zero records.
var ErrEmptyBatch = errors.New("article batch is empty")

// Manifest is the metadata document bundled with every archive.
type Manifest struct {
	RunID        string    `json:"run_id"`
	Category     string    `json:"category"`
	ArticleCount int       `json:"article_count"`
	ArchivedAt   time.Time `json:"archived_at"`
	Format       string    `json:"format"`
	Encoding     string    `json:"encoding"`
}

// marshalJSON renders a document as indented UTF-8 JSON without escaping
// non-Latin text.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildContainer serializes the batch plus manifest into one zip archive:
// the full batch as a single document, the manifest, and one document per
// article.
func BuildContainer(articles []*domain.Article, runID string, category domain.Category) ([]byte, *Manifest, error) {
	if len(articles) == 0 {
		return nil, nil, ErrEmptyBatch
	}

	manifest := &Manifest{
		RunID:        runID,
		Category:     string(category),
		ArticleCount: len(articles),
		ArchivedAt:   time.Now().UTC(),
		Format:       manifestFormat,
		Encoding:     manifestEncoding,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	batchDoc, err := marshalJSON(articles)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal article batch: %w", err)
	}
	if writeErr := writeEntry(zw, runID+"_articles.json", batchDoc); writeErr != nil {
		return nil, nil, writeErr
	}

	manifestDoc, err := marshalJSON(manifest)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if writeErr := writeEntry(zw, runID+"_metadata.json", manifestDoc); writeErr != nil {
		return nil, nil, writeErr
	}

	for i, article := range articles {
		doc, marshalErr := marshalJSON(article)
		if marshalErr != nil {
			return nil, nil, fmt.Errorf("failed to marshal article %s: %w", article.URL, marshalErr)
		}
		name := fmt.Sprintf("%s/"+articleNameFormat, articlesDirName, i+1)
		if writeErr := writeEntry(zw, name, doc); writeErr != nil {
			return nil, nil, writeErr
		}
	}

	if closeErr := zw.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("failed to finalize container: %w", closeErr)
	}

	return buf.Bytes(), manifest, nil
}

// writeEntry adds one deflate-compressed entry to the archive.
func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create container entry %s: %w", name, err)
	}
	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("failed to write container entry %s: %w", name, err)
	}
	return nil
}
