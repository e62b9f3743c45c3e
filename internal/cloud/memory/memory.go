// Package memory is an in-process remote backend for tests and local runs.
package memory

import (
	"context"
	"sync"

	"github.com/vwin2537-arch/MooBeauwNote/internal/cloud"
	"github.com/vwin2537-arch/MooBeauwNote/internal/core"
)

type Remote struct {
	mu       sync.Mutex
	snapshot core.DataExport
	pushes   int

	// Fault injection for tests.
	PushErr error
	PullErr error
}

var _ cloud.RemoteStore = (*Remote)(nil)

func New() *Remote {
	return &Remote{}
}

func (r *Remote) Push(_ context.Context, data core.DataExport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.PushErr != nil {
		return r.PushErr
	}
	r.snapshot = data
	r.pushes++
	return nil
}

func (r *Remote) Pull(_ context.Context) (core.DataExport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.PullErr != nil {
		return core.DataExport{}, r.PullErr
	}
	return r.snapshot, nil
}

// Seed replaces the stored snapshot without counting as a push.
func (r *Remote) Seed(data core.DataExport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = data
}

func (r *Remote) Pushes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pushes
}
