// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	schederrors "github.com/wagomu-sim/elastisim-scheduler/pkg/errors"
	"github.com/wagomu-sim/elastisim-scheduler/pkg/logging"
	"github.com/wagomu-sim/elastisim-scheduler/pkg/retry"
)

// SnapshotSource is the narrow interface the driver's caller depends on: read one
// snapshot, reply with the mutations a tick produced. Nothing in the core scheduling
// packages imports this package directly — only a thin wiring layer (cmd) does, keeping the transport fully swappable per the "external collaborators
// consumed through a narrow interface" design note.
type SnapshotSource interface {
	Next(ctx context.Context) (Snapshot, error)
	Reply(ctx context.Context, mutation Mutation) error
	Close() error
}

// Channel is a SnapshotSource backed by a WebSocket connection dialed against a Unix
// domain socket. One Channel serves exactly one simulator session: SessionID is
// generated once at Dial time and threaded into every log line the channel emits, so a
// multi-session scheduler process can tell sessions' transport activity apart.
type Channel struct {
	conn      *websocket.Conn
	sessionID string
	logger    logging.Logger
	timeout   time.Duration
}

// DialOption configures Dial.
type DialOption func(*dialConfig)

type dialConfig struct {
	logger  logging.Logger
	timeout time.Duration
	retry   retry.Policy
}

// WithDialLogger sets the logger Dial and the resulting Channel use.
func WithDialLogger(logger logging.Logger) DialOption {
	return func(c *dialConfig) { c.logger = logger }
}

// WithDialTimeout bounds a single request/reply round-trip on the resulting Channel.
func WithDialTimeout(d time.Duration) DialOption {
	return func(c *dialConfig) { c.timeout = d }
}

// WithDialRetry sets the retry policy Dial uses for the initial connection attempt.
func WithDialRetry(policy retry.Policy) DialOption {
	return func(c *dialConfig) { c.retry = policy }
}

// Dial connects to the simulator's IPC channel at ipcURL (an "ipc://" address, see
// ParseUnixPath), retrying the initial connection per the configured policy. The
// returned Channel's SessionID is a fresh UUID logged under "session_id" on every
// subsequent log line.
func Dial(ctx context.Context, ipcURL string, opts ...DialOption) (*Channel, error) {
	cfg := dialConfig{
		logger:  logging.NoOpLogger{},
		timeout: 30 * time.Second,
		retry:   retry.NewExponentialBackoff(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	path, err := ParseUnixPath(ipcURL)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	logger := cfg.logger.With("session_id", sessionID, "ipc_url", ipcURL)

	dialer := websocket.Dialer{
		NetDialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", path)
		},
		HandshakeTimeout: cfg.timeout,
	}

	var conn *websocket.Conn
	attempt := 0
	for {
		conn, _, err = dialer.DialContext(ctx, "ws://unix/", nil)
		if err == nil {
			break
		}
		schedErr := schederrors.WrapTransportError(err)
		if !cfg.retry.ShouldRetry(ctx, schedErr, attempt) || attempt >= cfg.retry.MaxRetries() {
			return nil, fmt.Errorf("transport: dial %s: %w", ipcURL, schedErr)
		}
		logger.Warn("dial failed, retrying", "attempt", attempt, "error", schedErr)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.retry.WaitTime(attempt)):
		}
		attempt++
	}

	logger.Info("dialed simulator IPC channel")
	return &Channel{conn: conn, sessionID: sessionID, logger: logger, timeout: cfg.timeout}, nil
}

// SessionID returns the identifier generated for this channel at Dial time.
func (c *Channel) SessionID() string { return c.sessionID }

// Next blocks for the simulator's next snapshot, bounded by the channel's configured
// timeout.
func (c *Channel) Next(ctx context.Context) (Snapshot, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return Snapshot{}, schederrors.WrapTransportError(err)
	}

	var snap Snapshot
	if err := c.conn.ReadJSON(&snap); err != nil {
		return Snapshot{}, schederrors.WrapTransportError(err)
	}
	if snap.RequestID == "" {
		snap.RequestID = uuid.NewString()
	}
	c.logger.Debug("received snapshot", "request_id", snap.RequestID, "jobs", len(snap.Jobs), "nodes", len(snap.Nodes))
	return snap, nil
}

// Reply sends mutation back to the simulator, correlated by its RequestID.
func (c *Channel) Reply(ctx context.Context, mutation Mutation) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return schederrors.WrapTransportError(err)
	}
	if err := c.conn.WriteJSON(mutation); err != nil {
		return schederrors.WrapTransportError(err)
	}
	c.logger.Debug("sent mutation", "request_id", mutation.RequestID, "jobs", len(mutation.Jobs), "nodes", len(mutation.Nodes))
	return nil
}

// Close sends a close frame and closes the underlying connection.
func (c *Channel) Close() error {
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

var _ SnapshotSource = (*Channel)(nil)

// DecodeSnapshot unmarshals a raw JSON payload into a Snapshot, for callers that only
// hold the payload (e.g. a test double that doesn't go through a live Channel); pass the
// result to Decode to get domain records.
func DecodeSnapshot(raw []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("transport: decode snapshot: %w", err)
	}
	return snap, nil
}
