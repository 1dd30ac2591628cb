// Package cmd implements the command-line interface for the news scraper.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsscraper/cmd/httpd"
	"github.com/jonesrussell/newsscraper/cmd/index"
	"github.com/jonesrussell/newsscraper/cmd/runs"
	"github.com/jonesrussell/newsscraper/cmd/schedule"
	"github.com/jonesrussell/newsscraper/cmd/scrape"
	"github.com/jonesrussell/newsscraper/cmd/worker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "newsscraper",
	Short: "Scrape, index and archive Bengali news articles",
	Long: `newsscraper discovers article URLs from the upstream listing API,
extracts structured records from article pages, indexes them into
Elasticsearch and archives each batch to MinIO.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is ./config.yml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("newsscraper version %s\n", Version)
		},
	})

	rootCmd.AddCommand(scrape.Command())
	rootCmd.AddCommand(worker.Command())
	rootCmd.AddCommand(httpd.Command())
	rootCmd.AddCommand(schedule.Command())
	rootCmd.AddCommand(runs.Command())
	rootCmd.AddCommand(index.Command())
}
