// Command casinha-worker delivers journaled entries to the spreadsheet when
// the bot runs in queued submit mode.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"casinha/internal/amqp"
	"casinha/internal/backend"
	"casinha/internal/cli"
	"casinha/internal/log"
	"casinha/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting casinha-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	// The worker only writes; snapshots are the bot's concern.
	bcfg.CacheTTL = 0
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("AMQP disabled, relying on the periodic sweep")
	}

	syncWorker := worker.NewSyncWorker(repo, res.Submitter, worker.Config{
		BatchSize:   cfg.SyncBatchSize,
		MaxAttempts: cfg.SyncMaxAttempts,
	})

	ctx, done := cli.GracefulShutdown(context.Background(), logger, 10*time.Second, func() {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", "error", err)
			}
		}
		if err := repo.Close(); err != nil {
			logger.Error("SQLite close error", "error", err)
		}
	})

	// Deliver anything left over from a previous run.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", "error", err)
	}

	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeEntrySync(ctx, syncWorker.HandleSyncMessage)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
			}
		}()
	}
	go syncWorker.Run(ctx, cfg.SyncInterval)

	if counts, err := repo.CountByStatus(ctx); err == nil {
		logger.Info("Worker is running", "interval", cfg.SyncInterval, "journal", counts)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
