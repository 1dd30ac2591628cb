package domain

import (
	"errors"
	"time"
)

// RunStatus is the lifecycle state of a scrape run.
type RunStatus string

const (
	// RunStatusPending means the run has been created but not yet picked up.
	RunStatusPending RunStatus = "PENDING"
	// RunStatusRunning means a worker is executing the pipeline.
	RunStatusRunning RunStatus = "RUNNING"
	// RunStatusSuccess is the terminal state of a run whose discovery succeeded.
	RunStatusSuccess RunStatus = "SUCCESS"
	// RunStatusFailure is the terminal state of a run that found no URLs or panicked.
	RunStatusFailure RunStatus = "FAILURE"
)

// IsTerminal reports whether the status absorbs further transitions.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusSuccess || s == RunStatusFailure
}

// ErrInvalidMaxPages is returned when a run is requested with max_pages < 1.
var ErrInvalidMaxPages = errors.New("max_pages must be at least 1")

// Run is one execution of the scrape-index-archive pipeline for one category.
type Run struct {
	RunID               string     `json:"run_id" db:"run_id"`
	Category            Category   `json:"category" db:"category"`
	MaxPages            int        `json:"max_pages" db:"max_pages"`
	Status              RunStatus  `json:"status" db:"status"`
	TotalURLsDiscovered int        `json:"total_urls_discovered" db:"total_urls_discovered"`
	ArticlesScraped     int        `json:"articles_scraped" db:"articles_scraped"`
	ErrorMessage        string     `json:"error_message,omitempty" db:"error_message"`
	Indexed             bool       `json:"indexed" db:"indexed"`
	Archived            bool       `json:"archived" db:"archived"`
	ArchiveURL          string     `json:"archive_url,omitempty" db:"archive_url"`
	ArchiveKey          string     `json:"archive_key,omitempty" db:"archive_key"`
	ArchivedAt          *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// Outcome is the typed result of one pipeline execution. It carries the
// best-effort sink results so operators can tell "fully succeeded" apart
// from "succeeded but lost the archive".
type Outcome struct {
	Success             bool
	ErrorMessage        string
	TotalURLsDiscovered int
	ArticlesScraped     int
	Indexed             bool
	Archived            bool
	ArchiveURL          string
	ArchiveKey          string
	ArchivedAt          *time.Time
}

// Status maps the outcome to its terminal run status.
func (o Outcome) Status() RunStatus {
	if o.Success {
		return RunStatusSuccess
	}
	return RunStatusFailure
}
