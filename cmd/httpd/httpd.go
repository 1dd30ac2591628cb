// Package httpd implements the HTTP API server command.
package httpd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsscraper/cmd/common"
	"github.com/jonesrussell/newsscraper/internal/api"
	"github.com/jonesrussell/newsscraper/internal/archive"
	"github.com/jonesrussell/newsscraper/internal/ledger"
	"github.com/jonesrussell/newsscraper/internal/queue"
	"github.com/jonesrussell/newsscraper/internal/storage"
)

// Command returns the httpd command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Serve the HTTP API",
		RunE:  run,
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := common.LoadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := common.NewLogger(cfg)
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

	esClient, err := storage.NewClient(cfg.Elasticsearch)
	if err != nil {
		return fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	store := storage.NewStorage(esClient, cfg.Elasticsearch.IndexName, log)

	archiver, err := archive.NewArchiver(cfg.MinIO, log)
	if err != nil {
		return fmt.Errorf("failed to create archiver: %w", err)
	}

	streams, err := queue.NewStreamsClient(cfg.Redis)
	if err != nil {
		return err
	}
	defer streams.Close()
	producer := queue.NewProducer(streams, queue.ProducerConfig{})

	handler := api.NewHandler(runLedger, store, producer, archiver, uuid.NewString, log)
	handler.AddHealthCheck("archive", archiver.HealthCheck)
	handler.AddHealthCheck("queue", streams.Ping)
	handler.AddHealthCheck("ledger", func(ctx context.Context) error { return db.PingContext(ctx) })
	router := api.SetupRouter(handler, log)
	server := api.NewServer(cfg.Server, router, log)

	ctx, cancel := common.SignalContext(cmd.Context())
	defer cancel()

	return server.Start(ctx)
}
