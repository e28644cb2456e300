// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

// Package shrink selects nodes to reclaim from running malleable jobs so that pending
// jobs can be promised them via a deferred agreement. The three variants in this package
// differ only in which running job donates first and how many nodes a pending job is
// promised; all of them leave the actual node handoff to an agreement resolver on a
// later tick.
package shrink

import (
	"github.com/wagomu-sim/elastisim-scheduler/api"
	"github.com/wagomu-sim/elastisim-scheduler/internal/agreement"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
)

// Planner records new agreements against runningMalleable jobs, one pending job at a
// time in FCFS order, so that nodes those jobs give up can later satisfy the pending
// jobs via an agreement resolver. It mutates store and runningMalleable (shrinking the
// donors immediately) but leaves pendingJobs untouched — a shrink only ever produces a
// promise, never an immediate start.
type Planner interface {
	Plan(pendingJobs []*api.JobView, runningMalleable []*api.JobView, store *agreement.Store, sink eventlog.Sink, now float64)
}

// selection is one donor's contribution toward a single pending job's agreement.
type selection struct {
	donor *api.JobView
	nodes []*api.Node
}

// availableNodes returns job's assigned nodes beyond the first keep of them that carry
// no agreement yet, in assignment order. keep is the floor below which this variant
// refuses to shrink the job on this pass (NumNodesMin or NumNodesPref depending on
// variant and fallback tier).
func availableNodes(job *api.JobView, keep int, store *agreement.Store) []*api.Node {
	if keep >= len(job.AssignedNodes) {
		return nil
	}
	var out []*api.Node
	for _, n := range job.AssignedNodes[keep:] {
		if !store.HasNode(n.ID) {
			out = append(out, n)
		}
	}
	return out
}

// apply records the agreement between pendingJob and the donated nodes, shrinks donor
// immediately, and reports both the AGREEMENT_ADDED and SHRINK events.
func apply(pendingJob, donor *api.JobView, nodes []*api.Node, store *agreement.Store, sink eventlog.Sink, now float64) {
	ids := eventlog.NodeIDs(nodes, func(n *api.Node) int { return n.ID })

	store.Add(pendingJob.ID, ids)
	sink.Record(eventlog.Event{
		Time:  now,
		Kind:  eventlog.AgreementAdded,
		Jobs:  eventlog.AgreementRef(donor.ID, pendingJob.ID),
		Nodes: ids,
	})

	donor.Remove(nodes)
	sink.Record(eventlog.Event{
		Time:  now,
		Kind:  eventlog.Shrink,
		Jobs:  eventlog.JobRef(donor.ID),
		Nodes: ids,
	})
}
