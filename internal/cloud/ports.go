// Package cloud defines the ports for remote snapshot backends.
package cloud

import (
	"context"
	"errors"

	"github.com/vwin2537-arch/MooBeauwNote/internal/core"
)

// Ports for outbound adapters.
type (
	// Pusher transmits a full export to the remote endpoint. Push is
	// best-effort: a nil error means "attempted, not confirmed delivered".
	Pusher interface {
		Push(ctx context.Context, data core.DataExport) error
	}

	// Puller fetches the remote snapshot.
	Puller interface {
		Pull(ctx context.Context) (core.DataExport, error)
	}

	RemoteStore interface {
		Pusher
		Puller
	}
)

// Factory binds a remote backend to the endpoint URL held in settings at
// call time. Backends that carry their own addressing ignore the argument.
type Factory func(endpointURL string) (RemoteStore, error)

var (
	ErrNoEndpoint  = errors.New("remote endpoint not configured")
	ErrPullTimeout = errors.New("pull timed out")

	// ErrRemote wraps an error field reported inside an otherwise valid
	// pull response.
	ErrRemote = errors.New("remote reported error")
)
