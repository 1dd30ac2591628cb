package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsscraper/internal/domain"
	"github.com/jonesrussell/newsscraper/internal/logger"
	"github.com/jonesrussell/newsscraper/internal/queue"
	"github.com/jonesrussell/newsscraper/internal/worker"
)

type scriptedConsumer struct {
	batches [][]*queue.ConsumedJob
	reads   int
	acked   []string
	cancel  context.CancelFunc
}

func (c *scriptedConsumer) Read(ctx context.Context) ([]*queue.ConsumedJob, error) {
	if c.reads >= len(c.batches) {
		// script exhausted, stop the worker
		c.cancel()
		return nil, ctx.Err()
	}
	batch := c.batches[c.reads]
	c.reads++
	return batch, nil
}

func (c *scriptedConsumer) Acknowledge(_ context.Context, job *queue.ConsumedJob) error {
	c.acked = append(c.acked, job.MessageID)
	return nil
}

type recordingExecutor struct {
	outcomes map[string]domain.Outcome
	errs     map[string]error
	executed []string
}

func (e *recordingExecutor) Execute(
	_ context.Context, runID string, _ domain.Category, _ int,
) (domain.Outcome, error) {
	e.executed = append(e.executed, runID)
	if err := e.errs[runID]; err != nil {
		return domain.Outcome{}, err
	}
	return e.outcomes[runID], nil
}

func consumedJob(messageID, runID string) *queue.ConsumedJob {
	return &queue.ConsumedJob{
		MessageID: messageID,
		Job: &queue.ScrapeJob{
			RunID:    runID,
			Category: domain.CategoryPolitics,
			MaxPages: 2,
		},
	}
}

func TestWorker_ProcessesAndAcknowledges(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	consumer := &scriptedConsumer{
		batches: [][]*queue.ConsumedJob{
			{consumedJob("1-0", "run-1"), consumedJob("1-1", "run-2")},
			{consumedJob("2-0", "run-3")},
		},
		cancel: cancel,
	}
	executor := &recordingExecutor{
		outcomes: map[string]domain.Outcome{
			"run-1": {Success: true},
			"run-2": {Success: false, ErrorMessage: "no article URLs found"},
			"run-3": {Success: true},
		},
		errs: map[string]error{},
	}

	w := worker.New(consumer, executor, time.Minute, logger.NewNoOp())
	err := w.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, []string{"run-1", "run-2", "run-3"}, executor.executed)
	assert.Equal(t, []string{"1-0", "1-1", "2-0"}, consumer.acked)

	processed, succeeded, failed := w.Stats()
	assert.EqualValues(t, 3, processed)
	assert.EqualValues(t, 2, succeeded)
	assert.EqualValues(t, 1, failed)
}

func TestWorker_AcknowledgesFailedRuns(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	consumer := &scriptedConsumer{
		batches: [][]*queue.ConsumedJob{{consumedJob("1-0", "run-1")}},
		cancel:  cancel,
	}
	executor := &recordingExecutor{
		outcomes: map[string]domain.Outcome{},
		errs:     map[string]error{"run-1": errors.New("ledger unavailable")},
	}

	w := worker.New(consumer, executor, time.Minute, logger.NewNoOp())
	err := w.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// even an errored run is acked so the message is not redelivered forever
	assert.Equal(t, []string{"1-0"}, consumer.acked)

	processed, succeeded, failed := w.Stats()
	assert.EqualValues(t, 1, processed)
	assert.EqualValues(t, 0, succeeded)
	assert.EqualValues(t, 1, failed)
}
