// Package scrape implements the one-shot scrape command.
package scrape

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsscraper/cmd/common"
	"github.com/jonesrussell/newsscraper/internal/archive"
	"github.com/jonesrussell/newsscraper/internal/domain"
	"github.com/jonesrussell/newsscraper/internal/ledger"
	"github.com/jonesrussell/newsscraper/internal/pipeline"
	"github.com/jonesrussell/newsscraper/internal/scraper"
	"github.com/jonesrussell/newsscraper/internal/storage"
)

// Command returns the scrape command.
func Command() *cobra.Command {
	var maxPages int

	cmd := &cobra.Command{
		Use:   "scrape [category]",
		Short: "Run one scrape-index-archive pass for a category",
		Long: `Runs the full pipeline once for the given category: discover article
URLs, extract articles, index them into Elasticsearch and archive the batch
to MinIO. The run is tracked in memory; use the worker for durable runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := domain.ParseCategory(args[0])
			if err != nil {
				return err
			}
			return run(cmd, category, maxPages)
		},
	}

	cmd.Flags().IntVar(&maxPages, "max-pages", 5, "maximum listing pages to walk")
	return cmd
}

func run(cmd *cobra.Command, category domain.Category, maxPages int) error {
	cfg, err := common.LoadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := common.NewLogger(cfg)
	if err != nil {
		return err
	}

	esClient, err := storage.NewClient(cfg.Elasticsearch)
	if err != nil {
		return fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	store := storage.NewStorage(esClient, cfg.Elasticsearch.IndexName, log)

	archiver, err := archive.NewArchiver(cfg.MinIO, log)
	if err != nil {
		return fmt.Errorf("failed to create archiver: %w", err)
	}

	fetcher, err := scraper.NewFetcher(cfg.Scraper, log)
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}
	discoverer := scraper.NewDiscoverer(cfg.Scraper, log)

	runLedger := ledger.NewMemoryLedger()
	orchestrator := pipeline.NewOrchestrator(discoverer, fetcher, store, archiver, runLedger, log)

	ctx, cancel := common.SignalContext(cmd.Context())
	defer cancel()

	runID := uuid.NewString()
	if _, err = runLedger.Create(ctx, runID, category, maxPages); err != nil {
		return err
	}

	outcome, err := orchestrator.Execute(ctx, runID, category, maxPages)
	if err != nil {
		return err
	}

	printOutcome(runID, category, outcome)
	if !outcome.Success {
		return fmt.Errorf("scrape run failed: %s", outcome.ErrorMessage)
	}
	return nil
}

func printOutcome(runID string, category domain.Category, outcome domain.Outcome) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Run", "Category", "Status", "URLs", "Articles", "Indexed", "Archived", "Archive Key"})
	t.AppendRow(table.Row{
		runID,
		category,
		outcome.Status(),
		outcome.TotalURLsDiscovered,
		outcome.ArticlesScraped,
		outcome.Indexed,
		outcome.Archived,
		outcome.ArchiveKey,
	})
	t.Render()
}
