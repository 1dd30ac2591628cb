// Package runs implements the run listing command.
package runs

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsscraper/cmd/common"
	"github.com/jonesrussell/newsscraper/internal/domain"
	"github.com/jonesrussell/newsscraper/internal/ledger"
)

// Command returns the runs command.
func Command() *cobra.Command {
	var (
		category string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List scrape runs from the ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, category, limit)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category slug")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to show when filtering")
	return cmd
}

func run(cmd *cobra.Command, categorySlug string, limit int) error {
	cfg, err := common.LoadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := ledger.NewPostgresConnection(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	runLedger, err := ledger.NewPostgresLedger(db)
	if err != nil {
		return err
	}

	ctx, cancel := common.SignalContext(cmd.Context())
	defer cancel()

	var records []*domain.Run
	if categorySlug != "" {
		category, parseErr := domain.ParseCategory(categorySlug)
		if parseErr != nil {
			return parseErr
		}
		records, err = runLedger.ListByCategory(ctx, category, limit)
	} else {
		records, err = runLedger.List(ctx)
	}
	if err != nil {
		return err
	}

	render(records)
	return nil
}

func render(records []*domain.Run) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{
		"Run", "Category", "Status", "URLs", "Articles", "Indexed", "Archived", "Created", "Error",
	})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.RunID,
			r.Category,
			r.Status,
			r.TotalURLsDiscovered,
			r.ArticlesScraped,
			r.Indexed,
			r.Archived,
			r.CreatedAt.Format(time.RFC3339),
			r.ErrorMessage,
		})
	}
	t.Render()
}
