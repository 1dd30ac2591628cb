package scheduler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsscraper/internal/config"
	"github.com/jonesrussell/newsscraper/internal/domain"
	"github.com/jonesrussell/newsscraper/internal/ledger"
	"github.com/jonesrussell/newsscraper/internal/logger"
	"github.com/jonesrussell/newsscraper/internal/queue"
	"github.com/jonesrussell/newsscraper/internal/scheduler"
)

type captureEnqueuer struct {
	jobs []*queue.ScrapeJob
	errs map[domain.Category]error
}

func (c *captureEnqueuer) Enqueue(_ context.Context, job *queue.ScrapeJob) (string, error) {
	if err := c.errs[job.Category]; err != nil {
		return "", err
	}
	c.jobs = append(c.jobs, job)
	return "1-0", nil
}

func TestNew_RejectsBadSpecAndCategory(t *testing.T) {
	t.Parallel()

	l := ledger.NewMemoryLedger()
	enq := &captureEnqueuer{}

	_, err := scheduler.New(config.ScheduleConfig{Spec: "not a cron", MaxPages: 1}, l, enq, logger.NewNoOp())
	assert.Error(t, err)

	_, err = scheduler.New(config.ScheduleConfig{
		Spec: "0 * * * *", Categories: []string{"weather"}, MaxPages: 1,
	}, l, enq, logger.NewNoOp())
	assert.Error(t, err)
}

func TestEnqueueAll_AllCategoriesByDefault(t *testing.T) {
	t.Parallel()

	l := ledger.NewMemoryLedger()
	enq := &captureEnqueuer{}

	s, err := scheduler.New(config.ScheduleConfig{Spec: "0 * * * *", MaxPages: 3}, l, enq, logger.NewNoOp())
	require.NoError(t, err)

	s.EnqueueAll(context.Background())

	require.Len(t, enq.jobs, 9)
	runs, err := l.List(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 9)
	for _, run := range runs {
		assert.Equal(t, domain.RunStatusPending, run.Status)
		assert.Equal(t, 3, run.MaxPages)
	}
}

func TestEnqueueAll_OneFailureDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	l := ledger.NewMemoryLedger()
	enq := &captureEnqueuer{
		errs: map[domain.Category]error{domain.CategorySports: errors.New("redis down")},
	}

	s, err := scheduler.New(config.ScheduleConfig{
		Spec:       "0 * * * *",
		Categories: []string{"politics", "sports-all", "world-all"},
		MaxPages:   2,
	}, l, enq, logger.NewNoOp())
	require.NoError(t, err)

	s.EnqueueAll(context.Background())

	require.Len(t, enq.jobs, 2)
	assert.Equal(t, domain.CategoryPolitics, enq.jobs[0].Category)
	assert.Equal(t, domain.CategoryWorld, enq.jobs[1].Category)
}
