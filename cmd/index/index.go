// Package index implements the index management command.
package index

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsscraper/cmd/common"
	"github.com/jonesrussell/newsscraper/internal/storage"
)

// Command returns the index command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the article index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create the article index with the Bengali analyzer mapping",
		RunE:  runCreate,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Check whether the article index exists",
		RunE:  runCheck,
	})

	return cmd
}

func runCreate(cmd *cobra.Command, _ []string) error {
	store, err := buildStorage(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := common.SignalContext(cmd.Context())
	defer cancel()

	if err = store.EnsureIndex(ctx); err != nil {
		return err
	}
	fmt.Printf("index %q is ready\n", store.IndexName())
	return nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	store, err := buildStorage(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := common.SignalContext(cmd.Context())
	defer cancel()

	if err = store.RequireIndex(ctx); err != nil {
		return err
	}
	fmt.Printf("index %q exists\n", store.IndexName())
	return nil
}

func buildStorage(cmd *cobra.Command) (*storage.Storage, error) {
	cfg, err := common.LoadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := common.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	esClient, err := storage.NewClient(cfg.Elasticsearch)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	return storage.NewStorage(esClient, cfg.Elasticsearch.IndexName, log), nil
}
