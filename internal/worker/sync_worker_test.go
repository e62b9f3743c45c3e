package worker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vwin2537-arch/MooBeauwNote/internal/amqp"
	"github.com/vwin2537-arch/MooBeauwNote/internal/cloud"
	"github.com/vwin2537-arch/MooBeauwNote/internal/cloud/memory"
	"github.com/vwin2537-arch/MooBeauwNote/internal/core"
	"github.com/vwin2537-arch/MooBeauwNote/internal/storage"
)

func newWorkerFixture(t *testing.T) (*storage.Store, *memory.Remote, *SyncWorker) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	remote := memory.New()
	w := NewSyncWorker(store, func(string) (cloud.RemoteStore, error) {
		return remote, nil
	})
	return store, remote, w
}

func TestHandleChangePushesCurrentState(t *testing.T) {
	store, remote, w := newWorkerFixture(t)
	ctx := context.Background()

	store.SetEndpointURL(ctx, "https://example.com/exec")
	tx, _ := store.AddTransaction(ctx, core.TransactionDraft{Type: core.Expense, Amount: 33})

	msg := amqp.NewLedgerChangeMessage("transaction", tx.ID)
	if err := w.HandleChange(ctx, msg); err != nil {
		t.Fatalf("handle change: %v", err)
	}

	if remote.Pushes() != 1 {
		t.Errorf("pushes = %d", remote.Pushes())
	}
	snapshot, _ := remote.Pull(ctx)
	if len(snapshot.Transactions) != 1 || snapshot.Transactions[0].ID != tx.ID {
		t.Errorf("snapshot = %+v", snapshot.Transactions)
	}

	settings, _ := store.Settings(ctx)
	if settings.LastSync.IsZero() {
		t.Error("lastSync not recorded")
	}
}

func TestUnconfiguredEndpointSkipsPush(t *testing.T) {
	_, remote, w := newWorkerFixture(t)

	// Not an error: the worker waits for the endpoint to be configured
	if err := w.PushSnapshot(context.Background()); err != nil {
		t.Fatalf("push snapshot: %v", err)
	}
	if remote.Pushes() != 0 {
		t.Errorf("pushes = %d, want 0", remote.Pushes())
	}
}
