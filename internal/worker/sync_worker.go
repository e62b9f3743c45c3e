// Package worker runs the out-of-process sync path: it reacts to ledger
// change messages by pushing the current snapshot to the remote, and runs a
// periodic push as a backup in case messages are lost.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vwin2537-arch/MooBeauwNote/internal/amqp"
	"github.com/vwin2537-arch/MooBeauwNote/internal/cloud"
	"github.com/vwin2537-arch/MooBeauwNote/internal/core"
	"github.com/vwin2537-arch/MooBeauwNote/internal/storage"
)

type SyncWorker struct {
	store   *storage.Store
	remotes cloud.Factory
}

func NewSyncWorker(store *storage.Store, remotes cloud.Factory) *SyncWorker {
	return &SyncWorker{store: store, remotes: remotes}
}

// HandleChange processes a single ledger change message. The message only
// says "something changed"; the push always reads current state, so a burst
// of stale messages resolves to the same fresh snapshot.
func (w *SyncWorker) HandleChange(ctx context.Context, msg *amqp.LedgerChangeMessage) error {
	slog.InfoContext(ctx, "Processing ledger change message",
		"entity", msg.Entity,
		"id", msg.ID)

	return w.PushSnapshot(ctx)
}

// PushSnapshot exports the ledger and transmits it to the remote. An
// unconfigured endpoint is not an error for the worker; it just waits.
func (w *SyncWorker) PushSnapshot(ctx context.Context) error {
	settings, err := w.store.Settings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if settings.EndpointURL == "" {
		slog.WarnContext(ctx, "Remote endpoint not configured, skipping push")
		return nil
	}

	remote, err := w.remotes(settings.EndpointURL)
	if err != nil {
		return fmt.Errorf("bind remote backend: %w", err)
	}

	data, err := w.store.ExportAll(ctx)
	if err != nil {
		return fmt.Errorf("export ledger: %w", err)
	}

	if err := remote.Push(ctx, data); err != nil {
		return fmt.Errorf("push snapshot: %w", err)
	}

	if err := w.store.UpdateLastSync(ctx, core.Now()); err != nil {
		slog.ErrorContext(ctx, "Failed to record last sync", "error", err)
		// The push itself succeeded
	}

	slog.InfoContext(ctx, "Snapshot pushed",
		"transactions", len(data.Transactions))

	return nil
}

// RunPeriodicPush pushes on a fixed interval until the context ends. This
// is the backup for lost change messages.
func (w *SyncWorker) RunPeriodicPush(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping periodic push", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.PushSnapshot(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic push failed", "error", err)
			}
		}
	}
}
