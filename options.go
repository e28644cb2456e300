// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package elastisim

import (
	"github.com/wagomu-sim/elastisim-scheduler/internal/agreement"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
	"github.com/wagomu-sim/elastisim-scheduler/pkg/logging"
	"github.com/wagomu-sim/elastisim-scheduler/pkg/metrics"
)

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithSink sets the event sink the driver reports START/SHRINK/EXPAND/AGREEMENT_*
// events to. Defaults to an in-memory sink.
func WithSink(sink eventlog.Sink) Option {
	return func(d *Driver) { d.sink = sink }
}

// WithLogger sets the structured logger the driver uses for per-tick and debug
// state-dump logging. Defaults to a no-op logger.
func WithLogger(logger logging.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// WithMetrics sets the metrics collector the driver reports tick duration and errors
// to. Defaults to the process-wide collector.
func WithMetrics(collector metrics.Collector) Option {
	return func(d *Driver) { d.metrics = collector }
}

// WithStore seeds the driver with a pre-existing agreement store, e.g. when resuming
// a session a SessionPool already constructed one for.
func WithStore(store *agreement.Store) Option {
	return func(d *Driver) { d.store = store }
}

// WithDebugLogging gates Driver.LogState's per-tick job/node state dump behind the
// logger's debug level.
func WithDebugLogging(enabled bool) Option {
	return func(d *Driver) { d.debug = enabled }
}
