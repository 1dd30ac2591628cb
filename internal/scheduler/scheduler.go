// Package scheduler enqueues recurring scrape runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/newsscraper/internal/config"
	"github.com/jonesrussell/newsscraper/internal/domain"
	"github.com/jonesrussell/newsscraper/internal/ledger"
	"github.com/jonesrussell/newsscraper/internal/logger"
	"github.com/jonesrussell/newsscraper/internal/queue"
)

// Enqueuer dispatches scrape jobs to workers.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *queue.ScrapeJob) (string, error)
}

// Scheduler fires one scrape run per configured category on each cron tick.
type Scheduler struct {
	cron       *cron.Cron
	ledger     ledger.Interface
	enqueuer   Enqueuer
	categories []domain.Category
	maxPages   int
	logger     logger.Interface
}

// New creates a scheduler from the schedule configuration. An empty category
// list means every supported category.
func New(
	cfg config.ScheduleConfig,
	runLedger ledger.Interface,
	enqueuer Enqueuer,
	log logger.Interface,
) (*Scheduler, error) {
	categories := domain.Categories()
	if len(cfg.Categories) > 0 {
		categories = make([]domain.Category, 0, len(cfg.Categories))
		for _, slug := range cfg.Categories {
			category, err := domain.ParseCategory(slug)
			if err != nil {
				return nil, fmt.Errorf("schedule: %w", err)
			}
			categories = append(categories, category)
		}
	}

	s := &Scheduler{
		cron:       cron.New(),
		ledger:     runLedger,
		enqueuer:   enqueuer,
		categories: categories,
		maxPages:   cfg.MaxPages,
		logger:     log,
	}

	if _, err := s.cron.AddFunc(cfg.Spec, s.tick); err != nil {
		return nil, fmt.Errorf("schedule: invalid cron spec %q: %w", cfg.Spec, err)
	}

	return s, nil
}

// Run starts the cron loop and blocks until the context is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Scheduler started",
		"categories", len(s.categories),
		"max_pages", s.maxPages)

	s.cron.Start()
	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done() // wait for a running tick to finish
	s.logger.Info("Scheduler stopped")
	return ctx.Err()
}

// EnqueueAll creates and enqueues one run per configured category. A failure
// for one category does not block the others.
func (s *Scheduler) EnqueueAll(ctx context.Context) {
	for _, category := range s.categories {
		if err := s.enqueueRun(ctx, category); err != nil {
			s.logger.Error("Failed to enqueue scheduled run",
				"category", category, "error", err)
		}
	}
}

func (s *Scheduler) tick() {
	s.logger.Info("Schedule tick, enqueueing runs")
	s.EnqueueAll(context.Background())
}

func (s *Scheduler) enqueueRun(ctx context.Context, category domain.Category) error {
	runID := uuid.NewString()

	if _, err := s.ledger.Create(ctx, runID, category, s.maxPages); err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	job := &queue.ScrapeJob{RunID: runID, Category: category, MaxPages: s.maxPages}
	if _, err := s.enqueuer.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue run: %w", err)
	}

	s.logger.Info("Enqueued scheduled run", "run_id", runID, "category", category)
	return nil
}
