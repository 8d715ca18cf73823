package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"spendify/internal/amqp"
	"spendify/internal/cli"
	applog "spendify/internal/log"
	"spendify/internal/sheets"
	gsheet "spendify/internal/sheets/google"
	"spendify/internal/sheets/memory"
	"spendify/internal/worker"
)

func main() {
	logger, cfg := cli.Bootstrap(applog.ComponentWorker)

	logger.Info("Starting spendify-worker")

	repo := cli.OpenStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Without a spreadsheet the worker still runs against the in-memory
	// target, which keeps the export log settling in local setups.
	var target sheets.Ledger
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		target = client
		logger.Info("Google Sheets target initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		target = memory.New()
		logger.Warn("No GOOGLE_SPREADSHEET_ID set, exporting to in-memory target")
	}

	exportWorker := worker.NewExportWorker(repo, target, cfg.ExportBatchSize)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return amqpClient.ConsumeExports(gctx, exportWorker.HandleExportMessage)
		})
	} else {
		logger.Info("AMQP disabled, running backlog sweep only")
	}

	g.Go(func() error {
		return exportWorker.RunSweep(gctx, cfg.ExportInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
