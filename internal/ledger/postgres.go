package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonesrussell/newsscraper/internal/domain"
	"github.com/lib/pq"
)

const (
	// DefaultMaxOpenConns is the default maximum number of open connections.
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections.
	DefaultMaxIdleConns = 5
	// DefaultConnMaxLifetime is the default maximum connection lifetime.
	DefaultConnMaxLifetime = 5 * time.Minute
	// DefaultPingTimeout is the default timeout for ping operations.
	DefaultPingTimeout = 5 * time.Second
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// Config holds database connection settings.
type Config struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// NewConfig returns a database configuration with default values.
func NewConfig() *Config {
	return &Config{
		Host:    "localhost",
		Port:    "5432",
		User:    "newsscraper",
		DBName:  "newsscraper",
		SSLMode: "disable",
	}
}

// NewPostgresConnection creates a new PostgreSQL database connection.
func NewPostgresConnection(cfg *Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	return db, nil
}

// Schema creates the runs table if it does not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS scrape_runs (
	run_id                TEXT PRIMARY KEY,
	category              TEXT NOT NULL,
	max_pages             INTEGER NOT NULL,
	status                TEXT NOT NULL DEFAULT 'PENDING',
	total_urls_discovered INTEGER NOT NULL DEFAULT 0,
	articles_scraped      INTEGER NOT NULL DEFAULT 0,
	error_message         TEXT NOT NULL DEFAULT '',
	indexed               BOOLEAN NOT NULL DEFAULT FALSE,
	archived              BOOLEAN NOT NULL DEFAULT FALSE,
	archive_url           TEXT NOT NULL DEFAULT '',
	archive_key           TEXT NOT NULL DEFAULT '',
	archived_at           TIMESTAMPTZ,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_scrape_runs_category ON scrape_runs (category, created_at DESC);
`

// PostgresLedger persists runs in PostgreSQL.
type PostgresLedger struct {
	db *sqlx.DB
}

// NewPostgresLedger creates a ledger over an existing connection pool and
// ensures the schema exists.
func NewPostgresLedger(db *sqlx.DB) (*PostgresLedger, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("failed to ensure ledger schema: %w", err)
	}
	return &PostgresLedger{db: db}, nil
}

var _ Interface = (*PostgresLedger)(nil)

// Create registers a new PENDING run.
func (l *PostgresLedger) Create(
	ctx context.Context, runID string, category domain.Category, maxPages int,
) (*domain.Run, error) {
	if maxPages < 1 {
		return nil, domain.ErrInvalidMaxPages
	}

	query := `
		INSERT INTO scrape_runs (run_id, category, max_pages, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	run := &domain.Run{
		RunID:    runID,
		Category: category,
		MaxPages: maxPages,
		Status:   domain.RunStatusPending,
	}

	err := l.db.QueryRowContext(ctx, query, runID, category, maxPages, domain.RunStatusPending).
		Scan(&run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrDuplicateRun
		}
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return run, nil
}

// MarkRunning transitions a non-terminal run to RUNNING.
func (l *PostgresLedger) MarkRunning(ctx context.Context, runID string) error {
	query := `
		UPDATE scrape_runs
		SET status = $2, updated_at = NOW()
		WHERE run_id = $1 AND status NOT IN ($3, $4)
	`

	res, err := l.db.ExecContext(ctx, query, runID,
		domain.RunStatusRunning, domain.RunStatusSuccess, domain.RunStatusFailure)
	if err != nil {
		return fmt.Errorf("failed to mark run running: %w", err)
	}

	return l.checkAffected(ctx, res, runID)
}

// Complete writes the terminal status, counters and archive handle in one
// statement so the transition is atomic.
func (l *PostgresLedger) Complete(ctx context.Context, runID string, outcome domain.Outcome) error {
	query := `
		UPDATE scrape_runs
		SET status = $2,
		    total_urls_discovered = $3,
		    articles_scraped = $4,
		    error_message = $5,
		    indexed = $6,
		    archived = $7,
		    archive_url = $8,
		    archive_key = $9,
		    archived_at = $10,
		    updated_at = NOW()
		WHERE run_id = $1 AND status NOT IN ($11, $12)
	`

	res, err := l.db.ExecContext(ctx, query, runID,
		outcome.Status(),
		outcome.TotalURLsDiscovered,
		outcome.ArticlesScraped,
		outcome.ErrorMessage,
		outcome.Indexed,
		outcome.Archived,
		outcome.ArchiveURL,
		outcome.ArchiveKey,
		outcome.ArchivedAt,
		domain.RunStatusSuccess, domain.RunStatusFailure)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	return l.checkAffected(ctx, res, runID)
}

// checkAffected distinguishes a missing run from a finalized one when an
// update matched no rows.
func (l *PostgresLedger) checkAffected(ctx context.Context, res sql.Result, runID string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}

	if _, getErr := l.Get(ctx, runID); getErr != nil {
		return getErr
	}
	return ErrRunFinalized
}

// Get returns the run for the given id.
func (l *PostgresLedger) Get(ctx context.Context, runID string) (*domain.Run, error) {
	var run domain.Run
	err := l.db.GetContext(ctx, &run,
		`SELECT * FROM scrape_runs WHERE run_id = $1`, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// List returns all runs, newest first.
func (l *PostgresLedger) List(ctx context.Context) ([]*domain.Run, error) {
	var runs []*domain.Run
	err := l.db.SelectContext(ctx, &runs,
		`SELECT * FROM scrape_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// ListByCategory returns up to limit runs for a category, newest first.
func (l *PostgresLedger) ListByCategory(
	ctx context.Context, category domain.Category, limit int,
) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []*domain.Run
	err := l.db.SelectContext(ctx, &runs,
		`SELECT * FROM scrape_runs WHERE category = $1 ORDER BY created_at DESC LIMIT $2`,
		category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs by category: %w", err)
	}
	return runs, nil
}
