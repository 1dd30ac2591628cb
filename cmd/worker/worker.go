// Package worker implements the queue worker command.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsscraper/cmd/common"
	"github.com/jonesrussell/newsscraper/internal/archive"
	"github.com/jonesrussell/newsscraper/internal/ledger"
	"github.com/jonesrussell/newsscraper/internal/pipeline"
	"github.com/jonesrussell/newsscraper/internal/queue"
	"github.com/jonesrussell/newsscraper/internal/scraper"
	"github.com/jonesrussell/newsscraper/internal/storage"
	"github.com/jonesrussell/newsscraper/internal/worker"
)

// Command returns the worker command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume scrape jobs from the queue and execute them",
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

	fetcher, err := scraper.NewFetcher(cfg.Scraper, log)
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}
	discoverer := scraper.NewDiscoverer(cfg.Scraper, log)

	streams, err := queue.NewStreamsClient(cfg.Redis)
	if err != nil {
		return err
	}
	defer streams.Close()

	consumerID := cfg.Worker.ConsumerID
	if consumerID == "" {
		hostname, hostErr := os.Hostname()
		if hostErr != nil {
			hostname = "worker"
		}
		consumerID = fmt.Sprintf("%s-%d", hostname, os.Getpid())
	}

	consumer, err := queue.NewConsumer(streams, queue.ConsumerConfig{
		ConsumerGroup: cfg.Worker.ConsumerGroup,
		ConsumerID:    consumerID,
	})
	if err != nil {
		return err
	}

	ctx, cancel := common.SignalContext(cmd.Context())
	defer cancel()

	if err = consumer.Initialize(ctx); err != nil {
		return err
	}

	if depth, lenErr := streams.XLen(ctx, streams.StreamName()); lenErr == nil {
		log.Info("Queue depth at startup", "stream", streams.StreamName(), "depth", depth)
	}

	orchestrator := pipeline.NewOrchestrator(discoverer, fetcher, store, archiver, runLedger, log)
	w := worker.New(consumer, orchestrator, cfg.Worker.JobTimeout, log)

	if err = w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
