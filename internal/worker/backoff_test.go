package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsscraper/internal/logger"
	"github.com/jonesrussell/newsscraper/internal/queue"
)

// flakyConsumer fails the first failN reads, then cancels the run context.
type flakyConsumer struct {
	reads  int
	failN  int
	cancel context.CancelFunc
}

func (c *flakyConsumer) Read(ctx context.Context) ([]*queue.ConsumedJob, error) {
	c.reads++
	if c.reads <= c.failN {
		return nil, errors.New("dial tcp 127.0.0.1:6379: connection refused")
	}
	c.cancel()
	return nil, ctx.Err()
}

func (c *flakyConsumer) Acknowledge(context.Context, *queue.ConsumedJob) error {
	return nil
}

func TestRun_BacksOffAfterReadError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := &flakyConsumer{failN: 2, cancel: cancel}
	w := New(consumer, nil, time.Second, logger.NewNoOp())
	w.readBackoff = 20 * time.Millisecond

	start := time.Now()
	err := w.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 3, consumer.reads)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRun_CancelDuringBackoffStops(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := &flakyConsumer{failN: 1 << 30, cancel: cancel}
	w := New(consumer, nil, time.Second, logger.NewNoOp())
	w.readBackoff = time.Minute

	time.AfterFunc(30*time.Millisecond, cancel)

	start := time.Now()
	err := w.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 10*time.Second)
}
