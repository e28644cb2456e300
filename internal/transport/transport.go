// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

// Package transport carries one scheduling tick across the process boundary between
// the scheduler and the simulator: a snapshot of jobs, nodes, and system state arrives
// as a request, and the mutations the driver performed (assignments, GPU counts) go
// back as the reply. The channel itself is a request/reply stream over a
// WebSocket connection dialed against a Unix domain socket — no environment variable
// overrides the address at runtime, per the deployment contract of one scheduler
// process per simulator session.
package transport

import (
	"fmt"
	"net/url"
)

// DefaultIPCURL is the compile-time default address of the simulator's IPC channel.
const DefaultIPCURL = "ipc:///tmp/elastisim.ipc"

// ParseUnixPath extracts the filesystem path of the Unix domain socket an "ipc://"
// URL names. The "ipc" scheme is this module's own convention (mirroring ZeroMQ-style
// IPC addressing); it always maps onto a "unix:"-dialable path, never a network
// address, so the scheduler can never be pointed at an arbitrary remote host by
// mistake.
func ParseUnixPath(ipcURL string) (string, error) {
	u, err := url.Parse(ipcURL)
	if err != nil {
		return "", fmt.Errorf("transport: parse ipc url %q: %w", ipcURL, err)
	}
	if u.Scheme != "ipc" {
		return "", fmt.Errorf("transport: unsupported scheme %q, want \"ipc\"", u.Scheme)
	}
	path := u.Path
	if path == "" {
		return "", fmt.Errorf("transport: ipc url %q has no path", ipcURL)
	}
	return path, nil
}
