package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vwin2537-arch/MooBeauwNote/internal/cloud"
	"github.com/vwin2537-arch/MooBeauwNote/internal/core"
	"github.com/vwin2537-arch/MooBeauwNote/internal/storage"
)

// Status is the sync state machine. Exactly one transition path exists:
// idle/success/error -> syncing -> success or error.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

var (
	ErrOffline        = errors.New("offline")
	ErrSyncInProgress = errors.New("sync already in progress")
)

// SyncService drives push and pull exchanges with the remote endpoint. The
// remote backend is bound per attempt through the factory, so changing the
// endpoint URL in settings takes effect on the next sync.
type SyncService struct {
	store   *storage.Store
	remotes cloud.Factory

	mu      sync.Mutex
	status  Status
	lastErr string
	online  bool

	onRefresh func()
}

func NewSyncService(store *storage.Store, remotes cloud.Factory) *SyncService {
	return &SyncService{
		store:   store,
		remotes: remotes,
		status:  StatusIdle,
		online:  true,
	}
}

// SetOnRefresh registers the hook fired after a pull lands new data.
func (s *SyncService) SetOnRefresh(fn func()) {
	s.onRefresh = fn
}

func (s *SyncService) Status() (Status, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.lastErr
}

func (s *SyncService) SetOnline(online bool) {
	s.mu.Lock()
	s.online = online
	s.mu.Unlock()
}

func (s *SyncService) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// CanSync reports whether a sync attempt can start: the distinction between
// offline and unconfigured matters to the caller's error message.
func (s *SyncService) CanSync(ctx context.Context) error {
	if !s.Online() {
		return ErrOffline
	}
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if settings.EndpointURL == "" {
		return cloud.ErrNoEndpoint
	}
	return nil
}

// begin claims the state machine. A claim while syncing fails so manual
// triggers become no-ops, but whoever claimed it always releases it through
// finish, so the status can never stay stuck on syncing.
func (s *SyncService) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusSyncing {
		return ErrSyncInProgress
	}
	s.status = StatusSyncing
	s.lastErr = ""
	return nil
}

func (s *SyncService) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status = StatusError
		s.lastErr = err.Error()
		return
	}
	s.status = StatusSuccess
	s.lastErr = ""
}

func (s *SyncService) remote(ctx context.Context) (cloud.RemoteStore, error) {
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return s.remotes(settings.EndpointURL)
}

// PushToCloud serializes the full export and transmits it. Push is
// fire-and-forget: success means attempted, not confirmed delivered.
func (s *SyncService) PushToCloud(ctx context.Context) error {
	if err := s.CanSync(ctx); err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}
	err := s.push(ctx)
	s.finish(err)
	return err
}

func (s *SyncService) push(ctx context.Context) error {
	remote, err := s.remote(ctx)
	if err != nil {
		return err
	}
	data, err := s.store.ExportAll(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := remote.Push(ctx, data); err != nil {
		return err
	}
	if err := s.store.UpdateLastSync(ctx, core.Now()); err != nil {
		return fmt.Errorf("record last sync: %w", err)
	}
	slog.InfoContext(ctx, "Pushed snapshot to remote",
		"transactions", len(data.Transactions))
	return nil
}

// PullFromCloud fetches the remote snapshot, reconciles transactions with
// last-write-wins and overwrites the other record families wholesale.
func (s *SyncService) PullFromCloud(ctx context.Context) error {
	if err := s.CanSync(ctx); err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}
	err := s.pull(ctx)
	s.finish(err)
	if err == nil && s.onRefresh != nil {
		s.onRefresh()
	}
	return err
}

func (s *SyncService) pull(ctx context.Context) error {
	remote, err := s.remote(ctx)
	if err != nil {
		return err
	}
	data, err := remote.Pull(ctx)
	if err != nil {
		return err
	}
	if err := s.store.ImportAll(ctx, data, true); err != nil {
		return fmt.Errorf("persist merged snapshot: %w", err)
	}
	if err := s.store.UpdateLastSync(ctx, core.Now()); err != nil {
		return fmt.Errorf("record last sync: %w", err)
	}
	slog.InfoContext(ctx, "Pulled snapshot from remote",
		"transactions", len(data.Transactions))
	return nil
}
