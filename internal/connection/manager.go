// Package connection owns the process-wide handle to the Stash server.
package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/olgasafonova/stash-mcp-server/internal/base"
	apierrors "github.com/olgasafonova/stash-mcp-server/internal/errors"
	"github.com/olgasafonova/stash-mcp-server/internal/stash"
	"github.com/olgasafonova/stash-mcp-server/metrics"
)

const (
	DefaultAttempts = 3
	DefaultDelay    = 1500 * time.Millisecond
)

// Dialer opens a new handle to the server. Returning an error that wraps
// apierrors.ErrClientUnavailable stops the retry loop immediately.
type Dialer func(ctx context.Context) (stash.Catalog, error)

// StashDialer builds a GraphQL client and pings the server with it
func StashDialer(endpoint, apiKey string, logger *slog.Logger, opts ...base.ClientOption) Dialer {
	return func(ctx context.Context) (stash.Catalog, error) {
		client, err := stash.NewClient(endpoint, apiKey, opts...)
		if err != nil {
			return nil, err
		}
		version, err := client.Ping(ctx)
		if err != nil {
			client.Close()
			return nil, err
		}
		if logger != nil {
			logger.Debug("Stash server answered", "endpoint", client.Endpoint(), "version", version)
		}
		return client, nil
	}
}

// Config controls the connect retry loop
type Config struct {
	Endpoint string
	Attempts int           // total tries; values below 1 become 1
	Delay    time.Duration // fixed pause between tries
}

// Manager lazily establishes one handle and keeps it until Disconnect.
// Connect calls are serialized, so concurrent first use dials once.
// IsConnected never waits on a dial in progress.
type Manager struct {
	mu        sync.Mutex
	handle    stash.Catalog
	connected atomic.Bool // mirrors handle != nil
	dial     Dialer
	endpoint string
	attempts int
	delay    time.Duration
	logger   *slog.Logger

	// onRetry is called before each pause between attempts
	onRetry func(err error, next time.Duration)
}

// NewManager creates a manager that dials with d
func NewManager(cfg Config, d Dialer, logger *slog.Logger) *Manager {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		dial:     d,
		endpoint: cfg.Endpoint,
		attempts: cfg.Attempts,
		delay:    cfg.Delay,
		logger:   logger,
	}
}

// Connect returns the live handle, dialing with retries if there is none.
// It returns nil when every attempt failed.
func (m *Manager) Connect(ctx context.Context) stash.Catalog {
	handle, _ := m.Catalog(ctx)
	return handle
}

// Catalog returns the live handle, dialing with retries if there is none.
// Failure is reported as a *apierrors.ConnectionUnavailableError.
func (m *Manager) Catalog(ctx context.Context) (stash.Catalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != nil {
		return m.handle, nil
	}

	attempt := 0
	op := func() (stash.Catalog, error) {
		attempt++
		m.logger.Info("Connecting to Stash",
			"attempt", attempt,
			"max_attempts", m.attempts,
			"endpoint", m.endpoint,
		)
		handle, err := m.dial(ctx)
		if err != nil {
			metrics.RecordConnectAttempt(false)
			if errors.Is(err, apierrors.ErrClientUnavailable) {
				m.logger.Error("Stash client cannot be created", "error", err)
				return nil, backoff.Permanent(err)
			}
			m.logger.Warn("Connection attempt failed", "attempt", attempt, "error", err)
			return nil, err
		}
		if handle == nil {
			metrics.RecordConnectAttempt(false)
			return nil, fmt.Errorf("dialer returned no handle")
		}
		metrics.RecordConnectAttempt(true)
		return handle, nil
	}

	handle, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(m.delay)),
		backoff.WithMaxTries(uint(m.attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			if m.onRetry != nil {
				m.onRetry(err, next)
			}
		}),
	)
	if err != nil {
		m.logger.Error("Failed to connect to Stash",
			"attempts", attempt,
			"endpoint", m.endpoint,
			"error", err,
		)
		return nil, &apierrors.ConnectionUnavailableError{
			Endpoint: m.endpoint,
			Attempts: attempt,
			Err:      err,
		}
	}

	m.handle = handle
	m.connected.Store(true)
	m.logger.Info("Connected to Stash", "endpoint", m.endpoint)
	return handle, nil
}

// IsConnected reports whether a handle is held
func (m *Manager) IsConnected() bool {
	return m.connected.Load()
}

// Disconnect drops the handle; the next use dials again
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.handle.(interface{ Close() }); ok {
		c.Close()
	}
	m.handle = nil
	m.connected.Store(false)
	m.logger.Info("Disconnected from Stash")
}

// Endpoint returns the configured endpoint
func (m *Manager) Endpoint() string {
	return m.endpoint
}
