// Package ledger persists run status records. The pipeline reports into the
// ledger but does not own its storage.
package ledger

import (
	"context"
	"errors"

	"github.com/jonesrussell/newsscraper/internal/domain"
)

// Common errors returned by ledger implementations.
var (
	// ErrRunNotFound is returned when no run exists for the given id.
	ErrRunNotFound = errors.New("run not found")
	// ErrDuplicateRun is returned when a run id is created twice.
	ErrDuplicateRun = errors.New("run already exists")
	// ErrRunFinalized is returned when a terminal run is updated again.
	ErrRunFinalized = errors.New("run already finalized")
)

// Interface is the run ledger contract. Create happens before dispatch;
// MarkRunning once at pipeline start; Complete exactly once at the end with
// counters and archive handle written atomically with the terminal status.
type Interface interface {
	Create(ctx context.Context, runID string, category domain.Category, maxPages int) (*domain.Run, error)
	MarkRunning(ctx context.Context, runID string) error
	Complete(ctx context.Context, runID string, outcome domain.Outcome) error
	Get(ctx context.Context, runID string) (*domain.Run, error)
	List(ctx context.Context) ([]*domain.Run, error)
	ListByCategory(ctx context.Context, category domain.Category, limit int) ([]*domain.Run, error)
}
