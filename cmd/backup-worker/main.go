package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finledger/internal/amqp"
	"finledger/internal/config"
	applog "finledger/internal/log"
	"finledger/internal/sheets"
	gsheet "finledger/internal/sheets/google"
	"finledger/internal/storage"
	"finledger/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting backup-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the backup worker")
		os.Exit(1)
	}

	primaryKV, err := storage.NewSQLiteKV(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open primary store", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer primaryKV.Close()

	backupKV, err := storage.NewSQLiteKV(cfg.BackupDBPath)
	if err != nil {
		logger.Error("Failed to open backup store", applog.FieldError, err, "path", cfg.BackupDBPath)
		os.Exit(1)
	}
	defer backupKV.Close()

	// Summary export is optional.
	var summaryWriter sheets.SummaryWriter
	if cfg.ExportSummary {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		summaryWriter = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.NewBackupWorker(
		storage.NewSnapshotStore(primaryKV),
		storage.NewSnapshotStore(backupKV),
		summaryWriter,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.StartupBackupCheck(ctx); err != nil {
		logger.Error("Startup backup check failed", applog.FieldError, err)
		// Keep running; the periodic mirror will retry.
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := amqpClient.ConsumeLedgerChanges(gctx, func(msg *amqp.LedgerChangeMessage) error {
			return w.HandleChangeMessage(gctx, msg)
		})
		if err != nil && err != context.Canceled {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.BackupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := w.Mirror(gctx); err != nil {
					logger.Error("Periodic mirror failed", applog.FieldError, err)
				}
				if summaryWriter != nil {
					if err := w.ExportCurrentMonth(gctx, time.Now()); err != nil {
						logger.Error("Summary export failed", applog.FieldError, err)
					}
				}
			}
		}
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
