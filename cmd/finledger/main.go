package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finledger/internal/amqp"
	"finledger/internal/config"
	apphttp "finledger/internal/http"
	"finledger/internal/ledger"
	applog "finledger/internal/log"
	"finledger/internal/services"
	"finledger/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting finledger")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	// Choose snapshot backend.
	var kv storage.KV
	switch cfg.DataBackend {
	case "sqlite":
		sqliteKV, err := storage.NewSQLiteKV(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open SQLite store", applog.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer sqliteKV.Close()
		kv = sqliteKV
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)
	default:
		kv = storage.NewMemoryKV()
		logger.Info("Initialized memory backend")
	}
	snapshots := storage.NewSnapshotStore(kv)

	// Restore the last snapshot into the ledger.
	store := ledger.New()
	st, err := snapshots.LoadState(context.Background())
	if err != nil {
		logger.Error("Failed to load snapshot", applog.FieldError, err)
		os.Exit(1)
	}
	store.Restore(st)
	logger.Info("Ledger restored",
		"expenses", len(st.Expenses),
		"incomes", len(st.Incomes),
		"employees", len(st.Employees),
		"projects", len(st.Projects))

	// AMQP is optional; without it mutations are only persisted locally.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		events = amqpClient
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	syncer := services.NewSyncer(snapshots, events)
	salary := services.NewSalaryService(store, syncer)
	srv := apphttp.NewServer(":"+cfg.Port, store, apphttp.Services{
		Records:  services.NewRecordService(store, salary, syncer),
		Salary:   salary,
		Members:  services.NewMembershipService(store, syncer),
		Payments: services.NewPaymentService(store, syncer),
	})
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting finledger server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
