package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/ellinstar/offering-app/internal/amqp"
	"github.com/ellinstar/offering-app/internal/config"
	applog "github.com/ellinstar/offering-app/internal/log"
	"github.com/ellinstar/offering-app/internal/mirror"
	"github.com/ellinstar/offering-app/internal/mirror/google"
	"github.com/ellinstar/offering-app/internal/mirror/memory"
	"github.com/ellinstar/offering-app/internal/storage"
	"github.com/ellinstar/offering-app/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.DefaultConfig().Level,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting offering-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var appender mirror.RecordAppender
	if cfg.MirrorEnabled() {
		client, err := google.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleCredentialsFile, cfg.GoogleCredentialsJSON)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets mirror", "error", err)
			os.Exit(1)
		}
		appender = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		appender = memory.New()
		logger.Info("Google Sheets disabled - mirroring to memory only")
	}

	mirrorWorker := worker.NewMirrorWorker(repo, appender, cfg.MirrorBatchSize)

	// Drain anything missed while the worker was down before consuming
	// new messages.
	if err := mirrorWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup mirror check failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			err := amqpClient.ConsumeBatchSaved(ctx, func(msg *amqp.BatchSavedMessage) error {
				return mirrorWorker.HandleBatchSaved(ctx, msg)
			})
			if err != nil && err != context.Canceled {
				return err
			}
			return nil
		})
	} else {
		logger.Info("AMQP disabled - relying on the periodic sweep only")
	}

	g.Go(func() error {
		ticker := time.NewTicker(cfg.MirrorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := mirrorWorker.ProcessPending(ctx); err != nil {
					logger.Error("Periodic mirror sweep failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
