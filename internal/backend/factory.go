// Package backend selects the remote sync backend from configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/vwin2537-arch/MooBeauwNote/internal/cloud"
	"github.com/vwin2537-arch/MooBeauwNote/internal/cloud/gas"
	"github.com/vwin2537-arch/MooBeauwNote/internal/cloud/google"
	"github.com/vwin2537-arch/MooBeauwNote/internal/cloud/memory"
	"github.com/vwin2537-arch/MooBeauwNote/internal/config"
	"github.com/vwin2537-arch/MooBeauwNote/internal/log"
)

// NewRemoteFactory builds the factory the sync paths use to bind a remote
// per attempt. The gas backend binds to the endpoint URL from settings at
// call time; sheets and memory carry their own addressing and ignore it.
func NewRemoteFactory(ctx context.Context, cfg *config.Config, logger *log.Logger) (cloud.Factory, error) {
	switch cfg.RemoteBackend {
	case "gas":
		logger.Info("Using Apps Script remote backend", "pull_timeout", cfg.PullTimeout)
		return func(endpointURL string) (cloud.RemoteStore, error) {
			return gas.New(endpointURL, gas.WithPullTimeout(cfg.PullTimeout)), nil
		}, nil

	case "sheets":
		cli, err := google.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets backend: %w", err)
		}
		logger.Info("Using Google Sheets remote backend", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		return func(string) (cloud.RemoteStore, error) {
			return cli, nil
		}, nil

	case "memory":
		remote := memory.New()
		logger.Info("Using in-memory remote backend")
		return func(string) (cloud.RemoteStore, error) {
			return remote, nil
		}, nil

	default:
		return nil, fmt.Errorf("unsupported remote backend: %s", cfg.RemoteBackend)
	}
}
