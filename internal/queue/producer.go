package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/newsscraper/internal/domain"
)

const (
	// JobDataField is the field name for the serialized job in stream messages.
	JobDataField = "job"

	// EnqueuedAtField is the field name for the enqueue timestamp.
	EnqueuedAtField = "enqueued_at"

	// defaultMaxStreamLen caps the stream to prevent unbounded growth.
	defaultMaxStreamLen = 10000
)

// ScrapeJob is the unit of work dispatched to workers.
type ScrapeJob struct {
	RunID    string          `json:"run_id"`
	Category domain.Category `json:"category"`
	MaxPages int             `json:"max_pages"`
}

// Validate checks the job fields before enqueueing.
func (j *ScrapeJob) Validate() error {
	if j.RunID == "" {
		return errors.New("run_id is required")
	}
	if !j.Category.IsValid() {
		return fmt.Errorf("unsupported category: %q", j.Category)
	}
	if j.MaxPages < 1 {
		return domain.ErrInvalidMaxPages
	}
	return nil
}

// Producer enqueues scrape jobs onto the Redis stream.
type Producer struct {
	client       *StreamsClient
	maxStreamLen int64
}

// ProducerConfig holds configuration for the Producer.
type ProducerConfig struct {
	MaxStreamLen int64 // 0 = default
}

// NewProducer creates a new job producer.
func NewProducer(client *StreamsClient, cfg ProducerConfig) *Producer {
	maxLen := cfg.MaxStreamLen
	if maxLen <= 0 {
		maxLen = defaultMaxStreamLen
	}
	return &Producer{client: client, maxStreamLen: maxLen}
}

// Enqueue adds a scrape job to the stream and returns its message id.
func (p *Producer) Enqueue(ctx context.Context, job *ScrapeJob) (string, error) {
	if job == nil {
		return "", errors.New("job cannot be nil")
	}
	if err := job.Validate(); err != nil {
		return "", err
	}

	jobData, marshalErr := json.Marshal(job)
	if marshalErr != nil {
		return "", fmt.Errorf("failed to serialize job: %w", marshalErr)
	}

	values := map[string]any{
		JobDataField:    string(jobData),
		EnqueuedAtField: time.Now().UTC().Format(time.RFC3339),
	}

	stream := p.client.StreamName()
	messageID, addErr := p.client.XAdd(ctx, stream, values, p.maxStreamLen)
	if addErr != nil {
		return "", fmt.Errorf("failed to enqueue job to stream %s: %w", stream, addErr)
	}

	return messageID, nil
}
