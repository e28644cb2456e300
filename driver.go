// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

// Package elastisim drives one scheduling tick per invocation: it upgrades the raw
// job/node snapshot the simulator hands over, resolves deferred agreements, admits
// pending jobs (FCFS with optional EASY backfilling), and — for malleable-aware
// variants — plans new shrink agreements and expands running malleable jobs onto
// whatever nodes are still free. A Driver is the process-wide state for one
// simulator session: exactly one agreement store, mutated only here.
package elastisim

import (
	"fmt"
	"time"

	"github.com/wagomu-sim/elastisim-scheduler/api"
	"github.com/wagomu-sim/elastisim-scheduler/internal/admission"
	"github.com/wagomu-sim/elastisim-scheduler/internal/agreement"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
	"github.com/wagomu-sim/elastisim-scheduler/pkg/logging"
	"github.com/wagomu-sim/elastisim-scheduler/pkg/metrics"
)

// Driver runs one Variant against a single simulator session.
type Driver struct {
	variant Variant
	store   *agreement.Store
	sink    eventlog.Sink
	logger  logging.Logger
	metrics metrics.Collector
	debug   bool
}

// NewDriver constructs a Driver for variant with an empty agreement store, an
// in-memory sink, a no-op logger, and the process-wide metrics collector — override
// any of these with Option.
func NewDriver(variant Variant, opts ...Option) *Driver {
	d := &Driver{
		variant: variant,
		store:   agreement.NewStore(),
		sink:    eventlog.NewMemorySink(),
		logger:  logging.NoOpLogger{},
		metrics: metrics.GetDefaultCollector(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Variant returns the policy this driver runs.
func (d *Driver) Variant() Variant { return d.variant }

// Store returns the driver's agreement store, mainly for tests and introspection.
func (d *Driver) Store() *agreement.Store { return d.store }

// Tick runs exactly one scheduling invocation over jobs/nodes, mutating them in
// place through the api.Job/api.Node assignment operations. Any error is wrapped
// with the variant's name, per the propagation policy of surfacing the offending
// variant to the caller, and the tick's duration and outcome are reported to the
// configured metrics collector.
func (d *Driver) Tick(jobs []*api.Job, nodes []*api.Node, system api.System) (err error) {
	start := time.Now()
	defer func() {
		d.metrics.RecordTick(d.variant.Name, time.Since(start))
		if err != nil {
			d.metrics.RecordError(d.variant.Name)
			err = fmt.Errorf("%s: %w", d.variant.Name, err)
		}
	}()

	now := system.Time()

	jobViews, nodeViews, upErr := api.Upgrade(jobs, nodes)
	if upErr != nil {
		return upErr
	}

	if d.debug {
		d.LogState(jobViews, nodeViews)
	}

	pending, running, runningMalleable, free := partition(jobViews, nodeViews)
	if d.variant.QueueOrder != nil {
		d.variant.QueueOrder(pending)
	}

	if d.variant.Resolve != nil {
		d.variant.Resolve.Resolve(&pending, &free, d.store, d.sink, now)
	}

	admissiblePending, admissibleFree := excludeAgreements(pending, free, d.store)

	admission.Admit(&admissiblePending, running, &admissibleFree, now, d.variant.StartTarget, d.variant.EASY, d.sink)

	if len(admissiblePending) > 0 && len(runningMalleable) > 0 && d.variant.Shrink != nil {
		d.variant.Shrink.Plan(admissiblePending, runningMalleable, d.store, d.sink, now)
	}

	if len(admissibleFree) > 0 && len(runningMalleable) > 0 && d.variant.Expand != nil {
		d.variant.Expand.Plan(runningMalleable, &admissibleFree, d.sink, now)
	}

	return nil
}

// partition splits upgraded jobs/nodes into pending, running (all job types), running
// malleable, and free-node working sets — step 2 of the driver's per-tick order.
func partition(jobViews []*api.JobView, nodeViews []*api.NodeView) (pending, running, runningMalleable []*api.JobView, free []*api.NodeView) {
	for _, j := range jobViews {
		switch j.State {
		case api.JobStatePending:
			pending = append(pending, j)
		case api.JobStateRunning:
			running = append(running, j)
			if j.Type == api.JobTypeMalleable {
				runningMalleable = append(runningMalleable, j)
			}
		}
	}
	for _, n := range nodeViews {
		if n.State == api.NodeStateFree {
			free = append(free, n)
		}
	}
	return pending, running, runningMalleable, free
}

// excludeAgreements computes P' and F' — pending jobs and free nodes not already
// spoken for by an agreement the resolver could not fulfill this tick. Jobs/nodes
// still holding an agreement are left untouched until a later tick resolves them.
func excludeAgreements(pending []*api.JobView, free []*api.NodeView, store *agreement.Store) ([]*api.JobView, []*api.NodeView) {
	prime := make([]*api.JobView, 0, len(pending))
	for _, j := range pending {
		if !store.HasJob(j.ID) {
			prime = append(prime, j)
		}
	}
	freePrime := make([]*api.NodeView, 0, len(free))
	for _, n := range free {
		if !store.HasNode(n.ID) {
			freePrime = append(freePrime, n)
		}
	}
	return prime, freePrime
}

// LogState dumps jobs and nodes grouped by state at debug level, mirroring a
// recovered debug-introspection feature: useful for tracing a single tick's
// scheduling decisions without instrumenting the variant itself.
func (d *Driver) LogState(jobViews []*api.JobView, nodeViews []*api.NodeView) {
	byJobState := make(map[api.JobState][]string)
	for _, j := range jobViews {
		byJobState[j.State] = append(byJobState[j.State], j.String())
	}
	for state, jobs := range byJobState {
		d.logger.Debug("job state", "state", state.String(), "jobs", jobs)
	}

	byNodeState := make(map[api.NodeState][]string)
	for _, n := range nodeViews {
		byNodeState[n.State] = append(byNodeState[n.State], n.String())
	}
	for state, nodes := range byNodeState {
		d.logger.Debug("node state", "state", state.String(), "nodes", nodes)
	}
}
