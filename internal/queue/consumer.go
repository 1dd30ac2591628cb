package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// defaultConsumerGroup is the consumer group used by scrape workers.
	defaultConsumerGroup = "scrapers"

	// defaultBlockTimeout is how long a read blocks waiting for messages.
	defaultBlockTimeout = 5 * time.Second

	// defaultBatchSize is the number of messages read per batch.
	defaultBatchSize = 10

	// defaultClaimMinIdle is the idle threshold before a pending message is
	// reclaimed from a dead consumer.
	defaultClaimMinIdle = 5 * time.Minute

	// maxPendingCheck bounds how many pending entries are inspected per read.
	maxPendingCheck = 100
)

// Consumer reads scrape jobs from the Redis stream.
type Consumer struct {
	client        *StreamsClient
	consumerGroup string
	consumerID    string
	blockTimeout  time.Duration
	batchSize     int64
	claimMinIdle  time.Duration
}

// ConsumerConfig holds configuration for the Consumer.
type ConsumerConfig struct {
	ConsumerGroup string
	ConsumerID    string
	BlockTimeout  time.Duration
	BatchSize     int64
	ClaimMinIdle  time.Duration
}

// ConsumedJob is a scrape job read from the queue, paired with the stream
// message id needed to acknowledge it.
type ConsumedJob struct {
	MessageID  string
	Job        *ScrapeJob
	EnqueuedAt time.Time
}

// NewConsumer creates a new job consumer.
func NewConsumer(client *StreamsClient, cfg ConsumerConfig) (*Consumer, error) {
	if cfg.ConsumerID == "" {
		return nil, errors.New("consumer ID is required")
	}

	group := cfg.ConsumerGroup
	if group == "" {
		group = defaultConsumerGroup
	}

	blockTimeout := cfg.BlockTimeout
	if blockTimeout <= 0 {
		blockTimeout = defaultBlockTimeout
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	claimMinIdle := cfg.ClaimMinIdle
	if claimMinIdle <= 0 {
		claimMinIdle = defaultClaimMinIdle
	}

	return &Consumer{
		client:        client,
		consumerGroup: group,
		consumerID:    cfg.ConsumerID,
		blockTimeout:  blockTimeout,
		batchSize:     batchSize,
		claimMinIdle:  claimMinIdle,
	}, nil
}

// Initialize creates the consumer group for the job stream.
func (c *Consumer) Initialize(ctx context.Context) error {
	stream := c.client.StreamName()
	if err := c.client.CreateConsumerGroup(ctx, stream, c.consumerGroup); err != nil {
		return fmt.Errorf("failed to create consumer group for %s: %w", stream, err)
	}
	return nil
}

// Read returns the next batch of jobs. Pending messages that exceeded the
// idle threshold are reclaimed before new messages are read.
func (c *Consumer) Read(ctx context.Context) ([]*ConsumedJob, error) {
	if reclaimed := c.reclaimPending(ctx); len(reclaimed) > 0 {
		return reclaimed, nil
	}
	return c.readNewMessages(ctx)
}

// Acknowledge acknowledges successful processing of a job.
func (c *Consumer) Acknowledge(ctx context.Context, job *ConsumedJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return c.client.XAck(ctx, c.client.StreamName(), c.consumerGroup, job.MessageID)
}

// ConsumerGroup returns the consumer group name.
func (c *Consumer) ConsumerGroup() string {
	return c.consumerGroup
}

// ConsumerID returns the consumer ID.
func (c *Consumer) ConsumerID() string {
	return c.consumerID
}

func (c *Consumer) readNewMessages(ctx context.Context) ([]*ConsumedJob, error) {
	streams := []string{c.client.StreamName(), ">"}

	messages, err := c.client.XReadGroup(ctx, c.consumerGroup, c.consumerID, streams, c.batchSize, c.blockTimeout)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // no messages available
		}
		return nil, fmt.Errorf("failed to read from stream: %w", err)
	}

	return c.parseStreams(messages), nil
}

// reclaimPending claims pending messages from consumers that stopped
// acknowledging, so a crashed worker's jobs are retried.
func (c *Consumer) reclaimPending(ctx context.Context) []*ConsumedJob {
	stream := c.client.StreamName()

	pending, err := c.client.XPendingExt(ctx, stream, c.consumerGroup, "-", "+", maxPendingCheck)
	if err != nil {
		return nil
	}

	var idsToReclaim []string
	for _, entry := range pending {
		if entry.Idle >= c.claimMinIdle {
			idsToReclaim = append(idsToReclaim, entry.ID)
		}
	}
	if len(idsToReclaim) == 0 {
		return nil
	}

	claimed, claimErr := c.client.XClaim(ctx, stream, c.consumerGroup, c.consumerID, c.claimMinIdle, idsToReclaim...)
	if claimErr != nil {
		return nil
	}

	var jobs []*ConsumedJob
	for _, msg := range claimed {
		job, parseErr := parseMessage(msg)
		if parseErr != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs
}

func (c *Consumer) parseStreams(streams []redis.XStream) []*ConsumedJob {
	var jobs []*ConsumedJob
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			job, err := parseMessage(msg)
			if err != nil {
				continue // skip malformed messages
			}
			jobs = append(jobs, job)
		}
	}
	return jobs
}

func parseMessage(msg redis.XMessage) (*ConsumedJob, error) {
	jobData, ok := msg.Values[JobDataField].(string)
	if !ok {
		return nil, errors.New("missing or invalid job data")
	}

	var job ScrapeJob
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	consumed := &ConsumedJob{
		MessageID: msg.ID,
		Job:       &job,
	}

	if enqueuedStr, hasEnqueued := msg.Values[EnqueuedAtField].(string); hasEnqueued {
		if t, parseErr := time.Parse(time.RFC3339, enqueuedStr); parseErr == nil {
			consumed.EnqueuedAt = t
		}
	}

	return consumed, nil
}
