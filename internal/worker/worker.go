// Package worker consumes scrape jobs from the queue and drives the
// pipeline, one run at a time.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonesrussell/newsscraper/internal/domain"
	"github.com/jonesrussell/newsscraper/internal/logger"
	"github.com/jonesrussell/newsscraper/internal/queue"
)

const (
	// DefaultJobTimeout bounds one full pipeline execution.
	DefaultJobTimeout = 30 * time.Minute

	// defaultReadBackoff is how long the worker waits after a failed queue
	// read, so a Redis outage does not turn into a hot retry loop.
	defaultReadBackoff = 2 * time.Second
)

// Executor runs the pipeline for one scrape job.
type Executor interface {
	Execute(ctx context.Context, runID string, category domain.Category, maxPages int) (domain.Outcome, error)
}

// Consumer is the queue surface the worker needs.
type Consumer interface {
	Read(ctx context.Context) ([]*queue.ConsumedJob, error)
	Acknowledge(ctx context.Context, job *queue.ConsumedJob) error
}

// Worker pulls jobs off the stream and executes them sequentially. Upstream
// pacing is per collector, so one job at a time keeps the site load bounded.
type Worker struct {
	consumer    Consumer
	executor    Executor
	jobTimeout  time.Duration
	readBackoff time.Duration
	logger      logger.Interface

	jobsProcessed atomic.Int64
	jobsSucceeded atomic.Int64
	jobsFailed    atomic.Int64
}

// New creates a worker.
func New(consumer Consumer, executor Executor, jobTimeout time.Duration, log logger.Interface) *Worker {
	if jobTimeout <= 0 {
		jobTimeout = DefaultJobTimeout
	}
	return &Worker{
		consumer:    consumer,
		executor:    executor,
		jobTimeout:  jobTimeout,
		readBackoff: defaultReadBackoff,
		logger:      log,
	}
}

// Run blocks consuming jobs until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Worker started", "job_timeout", w.jobTimeout)

	for {
		jobs, err := w.consumer.Read(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				w.logger.Info("Worker stopping",
					"processed", w.jobsProcessed.Load(),
					"succeeded", w.jobsSucceeded.Load(),
					"failed", w.jobsFailed.Load())
				return ctx.Err()
			}
			w.logger.Error("Failed to read from queue", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.readBackoff):
			}
			continue
		}

		for _, job := range jobs {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.process(ctx, job)
		}
	}
}

// process executes one job and acknowledges it. The message is acknowledged
// even when the run fails: the ledger holds the terminal status, so retrying
// a finalized run would only produce ErrRunFinalized noise.
func (w *Worker) process(ctx context.Context, consumed *queue.ConsumedJob) {
	if consumed == nil || consumed.Job == nil {
		return
	}
	job := consumed.Job

	log := w.logger.With("run_id", job.RunID, "category", job.Category)
	log.Info("Processing scrape job", "max_pages", job.MaxPages)

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	outcome, err := w.executor.Execute(jobCtx, job.RunID, job.Category, job.MaxPages)
	cancel()

	w.jobsProcessed.Add(1)
	switch {
	case err != nil:
		w.jobsFailed.Add(1)
		log.Error("Scrape job errored", "error", err)
	case outcome.Success:
		w.jobsSucceeded.Add(1)
	default:
		w.jobsFailed.Add(1)
		log.Warn("Scrape job failed", "error_message", outcome.ErrorMessage)
	}

	if ackErr := w.consumer.Acknowledge(ctx, consumed); ackErr != nil {
		log.Error("Failed to acknowledge job", "message_id", consumed.MessageID, "error", ackErr)
	}
}

// Stats returns the worker counters.
func (w *Worker) Stats() (processed, succeeded, failed int64) {
	return w.jobsProcessed.Load(), w.jobsSucceeded.Load(), w.jobsFailed.Load()
}

// String describes the worker for logs.
func (w *Worker) String() string {
	return fmt.Sprintf("worker(timeout=%s)", w.jobTimeout)
}
