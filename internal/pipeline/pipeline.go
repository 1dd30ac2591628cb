// Package pipeline runs one scrape run end to end: discover listing URLs,
// extract each article, then hand the batch to the index and archive sinks
// and record the outcome in the run ledger.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/newsscraper/internal/archive"
	"github.com/jonesrussell/newsscraper/internal/domain"
	"github.com/jonesrussell/newsscraper/internal/ledger"
	"github.com/jonesrussell/newsscraper/internal/logger"
	"github.com/jonesrussell/newsscraper/internal/scraper"
)

// ErrNoURLs is recorded when discovery yields nothing to scrape.
var ErrNoURLs = errors.New("no article URLs found")

// URLDiscoverer walks the paginated listing API for a category.
type URLDiscoverer interface {
	DiscoverURLs(ctx context.Context, category domain.Category, maxPages int) ([]string, error)
}

// ArticleFetcher retrieves and extracts one article page.
type ArticleFetcher interface {
	Fetch(rawURL string, category domain.Category) (*domain.Article, error)
}

// Indexer writes a batch of articles to the search index.
type Indexer interface {
	BulkIndex(ctx context.Context, articles []*domain.Article) error
}

// BatchArchiver packages a batch and uploads it to object storage.
type BatchArchiver interface {
	Archive(ctx context.Context, articles []*domain.Article, runID string, category domain.Category) (*archive.Result, error)
}

// Orchestrator wires the discovery, extraction, index and archive stages.
// All collaborators are injected so each stage can be replaced in tests.
type Orchestrator struct {
	discoverer URLDiscoverer
	fetcher    ArticleFetcher
	indexer    Indexer
	archiver   BatchArchiver
	ledger     ledger.Interface
	logger     logger.Interface
}

// NewOrchestrator creates a pipeline orchestrator.
func NewOrchestrator(
	discoverer URLDiscoverer,
	fetcher ArticleFetcher,
	indexer Indexer,
	archiver BatchArchiver,
	runLedger ledger.Interface,
	log logger.Interface,
) *Orchestrator {
	return &Orchestrator{
		discoverer: discoverer,
		fetcher:    fetcher,
		indexer:    indexer,
		archiver:   archiver,
		ledger:     runLedger,
		logger:     log,
	}
}

// Execute runs the pipeline for one run and finalizes the ledger entry
// exactly once, including when a stage panics.
func (o *Orchestrator) Execute(
	ctx context.Context, runID string, category domain.Category, maxPages int,
) (domain.Outcome, error) {
	if err := o.ledger.MarkRunning(ctx, runID); err != nil {
		return domain.Outcome{}, fmt.Errorf("failed to mark run running: %w", err)
	}

	outcome := o.run(ctx, runID, category, maxPages)

	if err := o.ledger.Complete(ctx, runID, outcome); err != nil {
		return outcome, fmt.Errorf("failed to finalize run: %w", err)
	}
	return outcome, nil
}

// run executes the stages and converts panics into a FAILURE outcome so the
// run never strands in RUNNING.
func (o *Orchestrator) run(
	ctx context.Context, runID string, category domain.Category, maxPages int,
) (outcome domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Pipeline panicked",
				"run_id", runID,
				"category", category,
				"panic", r)
			outcome = domain.Outcome{
				Success:      false,
				ErrorMessage: fmt.Sprintf("pipeline panic: %v", r),
			}
		}
	}()

	log := o.logger.With("run_id", runID, "category", category)
	log.Info("Starting scrape run", "max_pages", maxPages)

	urls, err := o.discoverer.DiscoverURLs(ctx, category, maxPages)
	if err != nil {
		return domain.Outcome{Success: false, ErrorMessage: err.Error()}
	}
	if len(urls) == 0 {
		log.Warn("Discovery found no article URLs")
		return domain.Outcome{Success: false, ErrorMessage: ErrNoURLs.Error()}
	}

	articles := o.scrapeAll(log, urls, category)

	outcome = domain.Outcome{
		Success:             true,
		TotalURLsDiscovered: len(urls),
		ArticlesScraped:     len(articles),
	}

	if len(articles) == 0 {
		log.Warn("No articles extracted, skipping sinks", "urls", len(urls))
		return outcome
	}

	o.indexBatch(ctx, log, articles, &outcome)
	o.archiveBatch(ctx, log, articles, runID, category, &outcome)

	log.Info("Scrape run finished",
		"urls", outcome.TotalURLsDiscovered,
		"articles", outcome.ArticlesScraped,
		"indexed", outcome.Indexed,
		"archived", outcome.Archived)
	return outcome
}

// scrapeAll fetches every discovered URL in order. Unavailable articles are
// logged and skipped; one bad page never aborts the run.
func (o *Orchestrator) scrapeAll(
	log logger.Interface, urls []string, category domain.Category,
) []*domain.Article {
	articles := make([]*domain.Article, 0, len(urls))
	for _, rawURL := range urls {
		article, err := o.fetcher.Fetch(rawURL, category)
		if err != nil {
			if errors.Is(err, scraper.ErrArticleUnavailable) {
				log.Warn("Skipping unavailable article", "url", rawURL)
			} else {
				log.Error("Failed to scrape article", "url", rawURL, "error", err)
			}
			continue
		}
		articles = append(articles, article)
	}
	return articles
}

// indexBatch is best effort: an index failure is recorded on the outcome but
// does not fail the run.
func (o *Orchestrator) indexBatch(
	ctx context.Context, log logger.Interface, articles []*domain.Article, outcome *domain.Outcome,
) {
	if err := o.indexer.BulkIndex(ctx, articles); err != nil {
		log.Error("Failed to index batch", "articles", len(articles), "error", err)
		return
	}
	outcome.Indexed = true
}

// archiveBatch is best effort, same contract as indexBatch.
func (o *Orchestrator) archiveBatch(
	ctx context.Context,
	log logger.Interface,
	articles []*domain.Article,
	runID string,
	category domain.Category,
	outcome *domain.Outcome,
) {
	result, err := o.archiver.Archive(ctx, articles, runID, category)
	if err != nil {
		log.Error("Failed to archive batch", "articles", len(articles), "error", err)
		return
	}
	outcome.Archived = true
	outcome.ArchiveURL = result.URL
	outcome.ArchiveKey = result.Key
	uploadedAt := result.UploadedAt
	outcome.ArchivedAt = &uploadedAt
}
