package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/vwin2537-arch/MooBeauwNote/internal/amqp"
	"github.com/vwin2537-arch/MooBeauwNote/internal/backend"
	"github.com/vwin2537-arch/MooBeauwNote/internal/config"
	apphttp "github.com/vwin2537-arch/MooBeauwNote/internal/http"
	applog "github.com/vwin2537-arch/MooBeauwNote/internal/log"
	"github.com/vwin2537-arch/MooBeauwNote/internal/services"
	"github.com/vwin2537-arch/MooBeauwNote/internal/storage"
)

func main() {
	// Load .env for local development; missing file is fine
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
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

	// Seed the endpoint URL from config on first run only; settings stay
	// authoritative afterwards
	if cfg.EndpointURL != "" {
		settings, err := store.Settings(ctx)
		if err == nil && settings.EndpointURL == "" {
			if err := store.SetEndpointURL(ctx, cfg.EndpointURL); err != nil {
				logger.Warn("Failed to seed endpoint URL", "error", err)
			}
		}
	}

	remotes, err := backend.NewRemoteFactory(ctx, cfg, logger.WithComponent("backend"))
	if err != nil {
		logger.Error("Failed to initialize remote backend", "error", err, "backend", cfg.RemoteBackend)
		os.Exit(1)
	}

	// AMQP is optional; the worker picks up changes when it is configured
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without it", "error", err)
		} else {
			defer amqpClient.Close()
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	ledger := services.NewLedgerService(store, amqpClient)
	syncSvc := services.NewSyncService(store, remotes)

	srv := apphttp.NewServer(":"+cfg.Port, ledger, syncSvc)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	// Auto-sync: every local change re-arms a debounced push
	autoSync := services.NewDebouncer(cfg.AutoSyncDelay, func() {
		if err := syncSvc.PushToCloud(context.Background()); err != nil {
			logger.Warn("Auto-sync push failed", "error", err)
		}
	})
	defer autoSync.Stop()

	ledger.SetOnChange(func() {
		srv.InvalidateSummaries()
		autoSync.Trigger()
	})
	syncSvc.SetOnRefresh(srv.InvalidateSummaries)

	// Pull once at startup so the ledger catches up with the remote
	go func() {
		if err := syncSvc.PullFromCloud(ctx); err != nil {
			logger.Warn("Startup pull failed", "error", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting mubew server", "port", cfg.Port, "backend", cfg.RemoteBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-gctx.Done():
			return gctx.Err()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
		return nil
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
