package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vwin2537-arch/MooBeauwNote/internal/amqp"
	"github.com/vwin2537-arch/MooBeauwNote/internal/backend"
	"github.com/vwin2537-arch/MooBeauwNote/internal/config"
	applog "github.com/vwin2537-arch/MooBeauwNote/internal/log"
	"github.com/vwin2537-arch/MooBeauwNote/internal/storage"
	"github.com/vwin2537-arch/MooBeauwNote/internal/worker"
)

func main() {
	// Load .env for local development; missing file is fine
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: "mubew-worker"})
	applog.SetDefault(logger)

	logger.Info("Starting mubew-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	store, err := storage.NewStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open ledger store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	remotes, err := backend.NewRemoteFactory(ctx, cfg, logger.WithComponent("backend"))
	if err != nil {
		logger.Error("Failed to initialize remote backend", "error", err, "backend", cfg.RemoteBackend)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(store, remotes)

	// Push once at startup to recover from messages missed while down
	if err := syncWorker.PushSnapshot(ctx); err != nil {
		logger.Error("Startup push failed", "error", err)
		// Keep running; the periodic push retries
	}

	go func() {
		if err := amqpClient.ConsumeLedgerChanges(ctx, func(msg *amqp.LedgerChangeMessage) error {
			return syncWorker.HandleChange(ctx, msg)
		}); err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
			cancel()
		}
	}()

	go func() {
		if err := syncWorker.RunPeriodicPush(ctx, cfg.PushInterval); err != nil && err != context.Canceled {
			logger.Error("Periodic push stopped", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Worker stopped")
}
