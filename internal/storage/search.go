package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonesrussell/newsscraper/internal/domain"
)

// DefaultSearchTimeout bounds search and count requests.
const DefaultSearchTimeout = 10 * time.Second

// SearchQuery describes one article search.
type SearchQuery struct {
	Query    string
	Author   string
	Location string
	Category string
	DateFrom string
	DateTo   string
	Page     int
	Size     int
}

// SearchResult is a page of matching articles with the total hit count.
type SearchResult struct {
	Total    int64
	Articles []*domain.Article
}

// esSearchResponse is the subset of the search response we decode.
type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source *domain.Article `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// buildSearchBody constructs the query DSL: a multi_match over headline,
// content and author, narrowed by the optional filters, sorted newest first.
func buildSearchBody(q SearchQuery) map[string]any {
	must := make([]map[string]any, 0, 1)
	if q.Query != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":  q.Query,
				"fields": []string{"headline^2", "content", "author"},
			},
		})
	} else {
		must = append(must, map[string]any{"match_all": map[string]any{}})
	}

	filter := make([]map[string]any, 0)
	if q.Author != "" {
		filter = append(filter, map[string]any{"match": map[string]any{"author": q.Author}})
	}
	if q.Location != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"location": q.Location}})
	}
	if q.Category != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"category": q.Category}})
	}
	if q.DateFrom != "" {
		filter = append(filter, map[string]any{"range": map[string]any{
			"published_at": map[string]any{"gte": q.DateFrom},
		}})
	}
	if q.DateTo != "" {
		filter = append(filter, map[string]any{"range": map[string]any{
			"published_at": map[string]any{"lte": q.DateTo},
		}})
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.Size
	if size < 1 {
		size = 20
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must":   must,
				"filter": filter,
			},
		},
		"sort": []map[string]any{
			{"published_at": map[string]any{"order": "desc"}},
		},
		"from": (page - 1) * size,
		"size": size,
	}
}

// Search runs an article search. A missing index yields an empty result
// rather than an error, matching the behavior before the first run.
func (s *Storage) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	if s.client == nil {
		return nil, ErrNilClient
	}

	exists, err := s.IndexExists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &SearchResult{}, nil
	}

	body, err := json.Marshal(buildSearchBody(q))
	if err != nil {
		return nil, fmt.Errorf("error marshaling search query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultSearchTimeout)
	defer cancel()

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.indexName),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("error executing search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var parsed esSearchResponse
	if decodeErr := json.NewDecoder(res.Body).Decode(&parsed); decodeErr != nil {
		return nil, fmt.Errorf("error decoding search response: %w", decodeErr)
	}

	result := &SearchResult{
		Total:    parsed.Hits.Total.Value,
		Articles: make([]*domain.Article, 0, len(parsed.Hits.Hits)),
	}
	for _, hit := range parsed.Hits.Hits {
		if hit.Source != nil {
			result.Articles = append(result.Articles, hit.Source)
		}
	}

	return result, nil
}

// CountByCategory returns the number of indexed articles for a category,
// or the total count when category is empty.
func (s *Storage) CountByCategory(ctx context.Context, category string) (int64, error) {
	if s.client == nil {
		return 0, ErrNilClient
	}

	exists, err := s.IndexExists(ctx)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	query := map[string]any{"query": map[string]any{"match_all": map[string]any{}}}
	if category != "" {
		query = map[string]any{"query": map[string]any{"term": map[string]any{"category": category}}}
	}

	body, err := json.Marshal(query)
	if err != nil {
		return 0, fmt.Errorf("error marshaling count query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultSearchTimeout)
	defer cancel()

	res, err := s.client.Count(
		s.client.Count.WithContext(ctx),
		s.client.Count.WithIndex(s.indexName),
		s.client.Count.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return 0, fmt.Errorf("error executing count: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("count error: %s", res.String())
	}

	var parsed struct {
		Count int64 `json:"count"`
	}
	if decodeErr := json.NewDecoder(res.Body).Decode(&parsed); decodeErr != nil {
		return 0, fmt.Errorf("error decoding count response: %w", decodeErr)
	}

	return parsed.Count, nil
}
