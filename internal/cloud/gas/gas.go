// Package gas talks to a Google Apps Script web-app endpoint. The endpoint
// is a dumb snapshot mirror: push writes the full export, pull reads it
// back, possibly wrapped in a script callback.
package gas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vwin2537-arch/MooBeauwNote/internal/cloud"
	"github.com/vwin2537-arch/MooBeauwNote/internal/core"
)

const (
	// DefaultPullTimeout bounds a pull exchange end to end.
	DefaultPullTimeout = 15 * time.Second

	// beaconTimeout bounds the fallback one-way send.
	beaconTimeout = 5 * time.Second

	// maxResponseBytes caps how much of a pull response is read.
	maxResponseBytes = 16 << 20
)

type Client struct {
	endpointURL string
	http        *http.Client
	pullTimeout time.Duration
}

var _ cloud.RemoteStore = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithPullTimeout(d time.Duration) Option {
	return func(c *Client) { c.pullTimeout = d }
}

func New(endpointURL string, opts ...Option) *Client {
	c := &Client{
		endpointURL: endpointURL,
		http:        &http.Client{},
		pullTimeout: DefaultPullTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type pushEnvelope struct {
	Action string          `json:"action"`
	Data   core.DataExport `json:"data"`
}

// Push transmits the export. The endpoint cannot acknowledge across the
// cross-origin boundary, so the response is ignored: any completed send
// counts as success. A direct request is attempted first, then a one-way
// beacon-style send.
func (c *Client) Push(ctx context.Context, data core.DataExport) error {
	if c.endpointURL == "" {
		return cloud.ErrNoEndpoint
	}

	body, err := json.Marshal(pushEnvelope{Action: "push", Data: data})
	if err != nil {
		return fmt.Errorf("encode push payload: %w", err)
	}

	if err := c.send(ctx, body); err != nil {
		slog.WarnContext(ctx, "Direct push failed, retrying as beacon", "error", err)
		if berr := c.sendBeacon(body); berr != nil {
			return fmt.Errorf("push: %w", err)
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	// text/plain keeps the request "simple" for the script endpoint
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send push request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	return nil
}

// sendBeacon mirrors the browser beacon fallback: a short one-way send
// detached from the caller's context so shutdown does not cancel it.
func (c *Client) sendBeacon(body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), beaconTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build beacon request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send beacon request: %w", err)
	}
	resp.Body.Close()
	return nil
}

// Pull fetches the remote snapshot, bounded by the pull timeout. A response
// carrying an explicit error field fails the pull even when it parses.
func (c *Client) Pull(ctx context.Context) (core.DataExport, error) {
	if c.endpointURL == "" {
		return core.DataExport{}, cloud.ErrNoEndpoint
	}

	ctx, cancel := context.WithTimeout(ctx, c.pullTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pullURL(), nil)
	if err != nil {
		return core.DataExport{}, fmt.Errorf("build pull request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return core.DataExport{}, cloud.ErrPullTimeout
		}
		return core.DataExport{}, fmt.Errorf("send pull request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return core.DataExport{}, cloud.ErrPullTimeout
		}
		return core.DataExport{}, fmt.Errorf("read pull response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return core.DataExport{}, fmt.Errorf("pull response status %d", resp.StatusCode)
	}

	data, err := ParsePullResponse(body)
	if err != nil {
		return core.DataExport{}, err
	}
	if data.Error != "" {
		return core.DataExport{}, fmt.Errorf("%w: %s", cloud.ErrRemote, data.Error)
	}
	return data, nil
}

// pullURL appends the pull query parameters. The callback name and cache
// buster match what the script endpoint expects.
func (c *Client) pullURL() string {
	u, err := url.Parse(c.endpointURL)
	if err != nil {
		return c.endpointURL
	}
	q := u.Query()
	q.Set("action", "pull")
	q.Set("callback", "handlePullResponse")
	q.Set("t", strconv.FormatInt(time.Now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}
