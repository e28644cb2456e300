// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

// Package expand distributes nodes left free after admission and shrink planning to
// running malleable jobs, up to their maximum node count. The three variants differ only
// in which job is grown first and how far each is grown before moving to the next.
package expand

import (
	"github.com/wagomu-sim/elastisim-scheduler/api"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
)

// Planner hands out freeNodes to runningMalleable jobs immediately — unlike shrink
// planning, expansion needs no agreement: the nodes are already free, so a job simply
// grows onto them in place. Both runningMalleable and freeNodes are mutated.
type Planner interface {
	Plan(runningMalleable []*api.JobView, freeNodes *[]*api.NodeView, sink eventlog.Sink, now float64)
}

// assign grows job by the given nodes, removes them from freeNodes, and reports an
// EXPAND event.
func assign(job *api.JobView, nodes []*api.NodeView, freeNodes *[]*api.NodeView, sink eventlog.Sink, now float64) {
	plain := make([]*api.Node, len(nodes))
	taken := make(map[int]struct{}, len(nodes))
	for i, n := range nodes {
		plain[i] = n.Node
		taken[n.ID] = struct{}{}
	}
	job.Assign(plain)

	rest := (*freeNodes)[:0]
	for _, n := range *freeNodes {
		if _, drop := taken[n.ID]; !drop {
			rest = append(rest, n)
		}
	}
	*freeNodes = rest

	sink.Record(eventlog.Event{
		Time:  now,
		Kind:  eventlog.Expand,
		Jobs:  eventlog.JobRef(job.ID),
		Nodes: eventlog.NodeIDs(plain, func(n *api.Node) int { return n.ID }),
	})
}
