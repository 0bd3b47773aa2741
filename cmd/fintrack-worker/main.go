package main

import (
	"context"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	memsheet "fintrack/internal/sheets/memory"
	"fintrack/internal/worker"
)

func main() {
	cfg, logger := cli.Setup()
	logger = logger.WithComponent(log.ComponentWorker)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	be := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if be.Cleanup != nil {
			_ = be.Cleanup()
		}
	}()
	if cfg.DataBackend == "memory" {
		logger.Warn("Worker is reading a private memory store; alerts and digests will not see server writes")
	}

	var exporter sheets.Exporter
	if cfg.GoogleSpreadsheetID != "" {
		gs, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			DigestSheetName: cfg.GoogleDigestSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", log.FieldError, err)
			os.Exit(1)
		}
		exporter = gs
	} else {
		logger.Info("GOOGLE_SPREADSHEET_ID not set, exporting to memory")
		exporter = memsheet.New()
	}

	w := worker.New(cli.Gateway(cfg, be.Store),
		worker.WithExporter(exporter),
		worker.WithThreshold(cfg.AlertThreshold),
		worker.WithLogger(logger),
	)

	var consumer worker.Consumer
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to connect to AMQP", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		consumer = client
	}

	logger.Info("Starting fintrack worker",
		"consumer", consumer != nil,
		"digest_schedule", cfg.DigestSchedule)
	if err := w.Run(ctx, consumer, cfg.DigestSchedule); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
