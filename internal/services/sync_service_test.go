package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vwin2537-arch/MooBeauwNote/internal/cloud"
	"github.com/vwin2537-arch/MooBeauwNote/internal/cloud/memory"
	"github.com/vwin2537-arch/MooBeauwNote/internal/core"
	"github.com/vwin2537-arch/MooBeauwNote/internal/storage"
)

func newSyncFixture(t *testing.T) (*storage.Store, *memory.Remote, *SyncService) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	remote := memory.New()
	svc := NewSyncService(store, func(string) (cloud.RemoteStore, error) {
		return remote, nil
	})
	if err := store.SetEndpointURL(context.Background(), "https://example.com/exec"); err != nil {
		t.Fatalf("set endpoint: %v", err)
	}
	return store, remote, svc
}

func TestPushToCloud(t *testing.T) {
	store, remote, svc := newSyncFixture(t)
	ctx := context.Background()

	store.AddTransaction(ctx, core.TransactionDraft{Type: core.Expense, Amount: 25})

	if err := svc.PushToCloud(ctx); err != nil {
		t.Fatalf("push: %v", err)
	}
	if status, _ := svc.Status(); status != StatusSuccess {
		t.Errorf("status = %s, want success", status)
	}
	if remote.Pushes() != 1 {
		t.Errorf("pushes = %d", remote.Pushes())
	}

	snapshot, _ := remote.Pull(ctx)
	if len(snapshot.Transactions) != 1 {
		t.Errorf("remote snapshot transactions = %d", len(snapshot.Transactions))
	}
	settings, _ := store.Settings(ctx)
	if settings.LastSync.IsZero() {
		t.Error("lastSync not recorded")
	}
}

func TestPushOffline(t *testing.T) {
	_, remote, svc := newSyncFixture(t)
	svc.SetOnline(false)

	err := svc.PushToCloud(context.Background())
	if !errors.Is(err, ErrOffline) {
		t.Fatalf("expected ErrOffline, got %v", err)
	}
	if status, _ := svc.Status(); status != StatusIdle {
		t.Errorf("precondition failure must leave status unchanged, got %s", status)
	}
	if remote.Pushes() != 0 {
		t.Error("nothing should reach the remote while offline")
	}
}

func TestPushUnconfigured(t *testing.T) {
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	svc := NewSyncService(store, func(string) (cloud.RemoteStore, error) {
		return memory.New(), nil
	})
	if err := svc.PushToCloud(context.Background()); !errors.Is(err, cloud.ErrNoEndpoint) {
		t.Errorf("expected ErrNoEndpoint, got %v", err)
	}
}

func TestPushFailureSurfacesError(t *testing.T) {
	_, remote, svc := newSyncFixture(t)
	remote.PushErr = errors.New("endpoint down")

	err := svc.PushToCloud(context.Background())
	if err == nil {
		t.Fatal("expected push failure")
	}
	status, msg := svc.Status()
	if status != StatusError {
		t.Errorf("status = %s, want error", status)
	}
	if msg != "endpoint down" {
		t.Errorf("error message = %q", msg)
	}

	// A later attempt must not be blocked by the failed one
	remote.PushErr = nil
	if err := svc.PushToCloud(context.Background()); err != nil {
		t.Errorf("recovery push failed: %v", err)
	}
}

func TestPullMergesAndRefreshes(t *testing.T) {
	store, remote, svc := newSyncFixture(t)
	ctx := context.Background()

	local, _ := store.AddTransaction(ctx, core.TransactionDraft{Type: core.Expense, Amount: 100})

	newer := local
	newer.Amount = 150
	newer.UpdatedAt = core.Timestamp{Time: local.UpdatedAt.Add(time.Hour)}
	remoteOnly := core.Transaction{
		ID: "remote-1", Type: core.Income, Amount: 50,
		CreatedAt: core.Now(), UpdatedAt: core.Now(),
	}
	remote.Seed(core.DataExport{Transactions: []core.Transaction{newer, remoteOnly}})

	var refreshed atomic.Int32
	svc.SetOnRefresh(func() { refreshed.Add(1) })

	if err := svc.PullFromCloud(ctx); err != nil {
		t.Fatalf("pull: %v", err)
	}
	if status, _ := svc.Status(); status != StatusSuccess {
		t.Errorf("status = %s, want success", status)
	}
	if refreshed.Load() != 1 {
		t.Errorf("refresh hook fired %d times", refreshed.Load())
	}

	txs, _ := store.Transactions(ctx)
	if len(txs) != 2 {
		t.Fatalf("merged transactions = %d, want 2", len(txs))
	}
	if txs[0].ID != local.ID || txs[0].Amount != 150 {
		t.Errorf("remote-newer entry should win in place: %+v", txs[0])
	}
	if txs[1].ID != "remote-1" {
		t.Errorf("remote-only entry should append: %+v", txs[1])
	}
}

func TestPullFailureDoesNotRefresh(t *testing.T) {
	_, remote, svc := newSyncFixture(t)
	remote.PullErr = errors.New("quota exceeded")

	var refreshed atomic.Int32
	svc.SetOnRefresh(func() { refreshed.Add(1) })

	if err := svc.PullFromCloud(context.Background()); err == nil {
		t.Fatal("expected pull failure")
	}
	if status, msg := svc.Status(); status != StatusError || msg != "quota exceeded" {
		t.Errorf("status = %s %q", status, msg)
	}
	if refreshed.Load() != 0 {
		t.Error("refresh hook must not fire on failure")
	}
}

// blockingRemote parks Push until released, to hold the syncing state open.
type blockingRemote struct {
	entered  chan struct{}
	released chan struct{}
}

func (b *blockingRemote) Push(ctx context.Context, _ core.DataExport) error {
	close(b.entered)
	select {
	case <-b.released:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *blockingRemote) Pull(context.Context) (core.DataExport, error) {
	return core.DataExport{}, nil
}

func TestConcurrentTriggerIsNoOp(t *testing.T) {
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	blocker := &blockingRemote{
		entered:  make(chan struct{}),
		released: make(chan struct{}),
	}
	svc := NewSyncService(store, func(string) (cloud.RemoteStore, error) {
		return blocker, nil
	})
	store.SetEndpointURL(context.Background(), "https://example.com/exec")

	done := make(chan error, 1)
	go func() { done <- svc.PushToCloud(context.Background()) }()
	<-blocker.entered

	if err := svc.PushToCloud(context.Background()); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("expected ErrSyncInProgress, got %v", err)
	}

	close(blocker.released)
	if err := <-done; err != nil {
		t.Errorf("first push failed: %v", err)
	}
	if status, _ := svc.Status(); status != StatusSuccess {
		t.Errorf("status stuck at %s", status)
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() { fired.Add(1) })
	defer d.Stop()

	for range 5 {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if fired.Load() != 1 {
		t.Errorf("burst should coalesce into one call, got %d", fired.Load())
	}

	d.Trigger()
	time.Sleep(100 * time.Millisecond)
	if fired.Load() != 2 {
		t.Errorf("later trigger should fire again, got %d", fired.Load())
	}
}

func TestDebouncerStop(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func() { fired.Add(1) })

	d.Trigger()
	d.Stop()
	time.Sleep(60 * time.Millisecond)
	if fired.Load() != 0 {
		t.Errorf("stopped debouncer fired %d times", fired.Load())
	}
}
