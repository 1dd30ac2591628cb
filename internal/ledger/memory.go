package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonesrussell/newsscraper/internal/domain"
)

// MemoryLedger is an in-memory ledger for tests and local development.
type MemoryLedger struct {
	mu   sync.RWMutex
	runs map[string]*domain.Run
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{runs: make(map[string]*domain.Run)}
}

var _ Interface = (*MemoryLedger)(nil)

// Create registers a new PENDING run.
func (m *MemoryLedger) Create(
	_ context.Context, runID string, category domain.Category, maxPages int,
) (*domain.Run, error) {
	if maxPages < 1 {
		return nil, domain.ErrInvalidMaxPages
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[runID]; exists {
		return nil, ErrDuplicateRun
	}

	now := time.Now().UTC()
	run := &domain.Run{
		RunID:     runID,
		Category:  category,
		MaxPages:  maxPages,
		Status:    domain.RunStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.runs[runID] = run

	return copyRun(run), nil
}

// MarkRunning transitions the run to RUNNING.
func (m *MemoryLedger) MarkRunning(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, exists := m.runs[runID]
	if !exists {
		return ErrRunNotFound
	}
	if run.Status.IsTerminal() {
		return ErrRunFinalized
	}

	run.Status = domain.RunStatusRunning
	run.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete writes the terminal status, counters and archive handle atomically.
func (m *MemoryLedger) Complete(_ context.Context, runID string, outcome domain.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, exists := m.runs[runID]
	if !exists {
		return ErrRunNotFound
	}
	if run.Status.IsTerminal() {
		return ErrRunFinalized
	}

	run.Status = outcome.Status()
	run.TotalURLsDiscovered = outcome.TotalURLsDiscovered
	run.ArticlesScraped = outcome.ArticlesScraped
	run.ErrorMessage = outcome.ErrorMessage
	run.Indexed = outcome.Indexed
	run.Archived = outcome.Archived
	run.ArchiveURL = outcome.ArchiveURL
	run.ArchiveKey = outcome.ArchiveKey
	run.ArchivedAt = outcome.ArchivedAt
	run.UpdatedAt = time.Now().UTC()
	return nil
}

// Get returns the run for the given id.
func (m *MemoryLedger) Get(_ context.Context, runID string) (*domain.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, exists := m.runs[runID]
	if !exists {
		return nil, ErrRunNotFound
	}
	return copyRun(run), nil
}

// List returns all runs, newest first.
func (m *MemoryLedger) List(_ context.Context) ([]*domain.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]*domain.Run, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, copyRun(run))
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// ListByCategory returns up to limit runs for a category, newest first.
func (m *MemoryLedger) ListByCategory(
	ctx context.Context, category domain.Category, limit int,
) ([]*domain.Run, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	runs := make([]*domain.Run, 0, limit)
	for _, run := range all {
		if run.Category != category {
			continue
		}
		runs = append(runs, run)
		if limit > 0 && len(runs) == limit {
			break
		}
	}
	return runs, nil
}

func copyRun(run *domain.Run) *domain.Run {
	dup := *run
	return &dup
}
