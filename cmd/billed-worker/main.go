package main

import (
	"os"

	"billed/internal/amqp"
	"billed/internal/cli"
	"billed/internal/log"
	"billed/internal/store/google"
	"billed/internal/worker"
)

func main() {
	cfg, logger := cli.Init(log.ComponentWorker, os.Stdout)
	logger.Info("Starting billed-worker")

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	creds, err := google.LoadCredentials(cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
	if err != nil {
		logger.Error("Missing Google credentials", log.FieldError, err)
		os.Exit(1)
	}
	sheetsClient, err := google.New(ctx, google.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		DriveFolderID:   cfg.GoogleDriveFolderID,
		CredentialsJSON: creds,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}

	// Without a broker the worker only runs the periodic sweep.
	var consumer worker.Consumer
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		consumer = amqpClient
	} else {
		logger.Info("AMQP disabled, relying on periodic sync only")
	}

	syncWorker := worker.NewSyncWorker(repo, sheetsClient, cfg.SyncBatchSize, logger)
	logger.Info("Worker running",
		"interval", cfg.SyncInterval.String(),
		"batch_size", cfg.SyncBatchSize,
		"amqp_enabled", consumer != nil)

	if err := syncWorker.Run(ctx, consumer, cfg.SyncInterval); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
