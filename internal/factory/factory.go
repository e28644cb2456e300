// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

// Package factory resolves a variant name (as configured via Config.Variant or the
// --variant CLI flag) into a constructed elastisim.Driver, the same way the teacher's
// client factory resolves a version string into a constructed API client: a name the
// caller doesn't recognize is a structured error, never a panic.
package factory

import (
	"sort"

	"github.com/wagomu-sim/elastisim-scheduler/internal/agreement"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
	schederrors "github.com/wagomu-sim/elastisim-scheduler/pkg/errors"
	"github.com/wagomu-sim/elastisim-scheduler/pkg/logging"
	"github.com/wagomu-sim/elastisim-scheduler/pkg/metrics"

	elastisim "github.com/wagomu-sim/elastisim-scheduler"
)

// BuildVariant resolves name against the registered variant constructors, returning a
// structured CodeUnknownVariant error for anything not registered.
func BuildVariant(name string) (elastisim.Variant, error) {
	ctor, ok := elastisim.Registry()[name]
	if !ok {
		return elastisim.Variant{}, schederrors.NewUnknownVariantError(name)
	}
	return ctor(), nil
}

// VariantNames returns every registered variant name in sorted order, for the CLI's
// "variants" listing subcommand.
func VariantNames() []string {
	registry := elastisim.Registry()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDriver resolves variantName and constructs a Driver for it, wiring in the given
// sink/logger/metrics/store via the same functional options elastisim.NewDriver
// accepts. This is the one place cmd/elastisim-scheduler needs to touch to go from a
// configured variant name to a runnable driver.
func NewDriver(variantName string, opts ...elastisim.Option) (*elastisim.Driver, error) {
	variant, err := BuildVariant(variantName)
	if err != nil {
		return nil, err
	}
	return elastisim.NewDriver(variant, opts...), nil
}

// DefaultOptions builds the standard option set (a fresh agreement store, a CSV event
// sink, and the process-wide metrics collector) a long-running scheduler process wants
// for a newly admitted session; callers needing a different sink (e.g. a
// watch.Broadcaster fan-out) should construct their own option slice instead.
func DefaultOptions(eventLogPath string, logger logging.Logger) ([]elastisim.Option, error) {
	sink, err := eventlog.NewCSVSink(eventLogPath, logger)
	if err != nil {
		return nil, err
	}
	return []elastisim.Option{
		elastisim.WithStore(agreement.NewStore()),
		elastisim.WithSink(sink),
		elastisim.WithLogger(logger),
		elastisim.WithMetrics(metrics.GetDefaultCollector()),
	}, nil
}
