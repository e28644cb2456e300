// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package agreement

import (
	"github.com/wagomu-sim/elastisim-scheduler/api"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
)

// Resolver consumes agreements recorded in a prior tick, starting whichever pending
// jobs it can from the nodes now available. It mutates pendingJobs and freeNodes in
// place, removing entries it admits, and reports the outcome to sink.
type Resolver interface {
	Resolve(pendingJobs *[]*api.JobView, freeNodes *[]*api.NodeView, store *Store, sink eventlog.Sink, now float64)
}

// targetJobs returns the subset of pendingJobs the store holds an agreement for, in
// the order they appear (FCFS order is preserved since pendingJobs is submit-time
// sorted by the caller).
func targetJobs(pendingJobs []*api.JobView, store *Store) []*api.JobView {
	var out []*api.JobView
	for _, j := range pendingJobs {
		if store.HasJob(j.ID) {
			out = append(out, j)
		}
	}
	return out
}

// nodesByID looks up NodeViews from freeNodes matching the given ids, preserving the
// order of ids.
func nodesByID(freeNodes []*api.NodeView, ids []int) []*api.NodeView {
	byID := make(map[int]*api.NodeView, len(freeNodes))
	for _, n := range freeNodes {
		byID[n.ID] = n
	}
	out := make([]*api.NodeView, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// apply starts job on nodes, removing job from pendingJobs and nodes from freeNodes,
// then emits an AGREEMENT_FULFILLED event. The caller is responsible for clearing the
// agreement from store.
func apply(job *api.JobView, nodes []*api.NodeView, pendingJobs *[]*api.JobView, freeNodes *[]*api.NodeView, sink eventlog.Sink, now float64) {
	plainNodes := make([]*api.Node, len(nodes))
	nodeIDs := make(map[int]struct{}, len(nodes))
	for i, n := range nodes {
		plainNodes[i] = n.Node
		nodeIDs[n.ID] = struct{}{}
	}

	job.Assign(plainNodes)
	job.AssignNumGPUsPerNode(job.NumGPUsPerNodeMax)

	*pendingJobs = removeJob(*pendingJobs, job.ID)
	*freeNodes = removeNodes(*freeNodes, nodeIDs)

	sink.Record(eventlog.Event{
		Time:  now,
		Kind:  eventlog.AgreementFulfilled,
		Jobs:  eventlog.JobRef(job.ID),
		Nodes: eventlog.NodeIDs(plainNodes, func(n *api.Node) int { return n.ID }),
	})
}

func removeJob(jobs []*api.JobView, id int) []*api.JobView {
	out := jobs[:0]
	for _, j := range jobs {
		if j.ID != id {
			out = append(out, j)
		}
	}
	return out
}

func removeNodes(nodes []*api.NodeView, ids map[int]struct{}) []*api.NodeView {
	out := nodes[:0]
	for _, n := range nodes {
		if _, drop := ids[n.ID]; !drop {
			out = append(out, n)
		}
	}
	return out
}
