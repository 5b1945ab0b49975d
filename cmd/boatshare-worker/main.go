package main

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"boatshare/internal/amqp"
	"boatshare/internal/cli"
	applog "boatshare/internal/log"
	"boatshare/internal/sheets"
	gsheet "boatshare/internal/sheets/google"
	"boatshare/internal/sheets/memory"
	"boatshare/internal/storage"
	"boatshare/internal/worker"
)

func main() {
	cfg, logger, err := cli.Bootstrap(applog.ComponentWorker)
	if err != nil {
		cli.Fatal(logger, "Failed to load calculator defaults", err, "path", cfg.DefaultsFile)
	}
	logger.Info("Starting boatshare-worker")

	if err := cfg.ValidateWorker(); err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize SQLite repository", err, "path", cfg.SQLiteDBPath)
	}
	defer repo.Close()

	// Without a spreadsheet the worker still drains events and keeps the
	// sync bookkeeping current against an in-process sheet.
	var exporter sheets.BoatExporter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, logger)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
		}
		exporter = client
		logger.Info("Google Sheets client initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	} else {
		exporter = memory.NewExporter()
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, exporting to an in-memory sheet")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, exporter, cfg.SyncBatchSize, logger)

	// Catch up on boats whose events were lost while the worker was down
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeBoatEvents(gctx, syncWorker.HandleBoatEvent)
	})
	g.Go(func() error {
		return syncWorker.Run(gctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		cli.Fatal(logger, "Worker stopped with error", err)
	}
	logger.Info("Worker shutdown complete")
}
