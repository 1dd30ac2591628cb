// Package schedule implements the cron scheduler command.
package schedule

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsscraper/cmd/common"
	"github.com/jonesrussell/newsscraper/internal/ledger"
	"github.com/jonesrussell/newsscraper/internal/queue"
	"github.com/jonesrussell/newsscraper/internal/scheduler"
)

// Command returns the schedule command.
func Command() *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Enqueue scrape runs on a cron schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, now)
		},
	}

	cmd.Flags().BoolVar(&now, "now", false, "enqueue one round of runs immediately and exit")
	return cmd
}

func run(cmd *cobra.Command, now bool) error {
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

	streams, err := queue.NewStreamsClient(cfg.Redis)
	if err != nil {
		return err
	}
	defer streams.Close()
	producer := queue.NewProducer(streams, queue.ProducerConfig{})

	s, err := scheduler.New(cfg.Schedule, runLedger, producer, log)
	if err != nil {
		return err
	}

	ctx, cancel := common.SignalContext(cmd.Context())
	defer cancel()

	if now {
		s.EnqueueAll(ctx)
		return nil
	}

	if err = s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
