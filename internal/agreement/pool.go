// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package agreement

import (
	"github.com/wagomu-sim/elastisim-scheduler/api"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
)

// Pool resolves an agreement as soon as enough free nodes exist in total, drawing
// first from nodes earmarked by any agreement and then, if still short, from entirely
// unearmarked free nodes. It is the most permissive resolver: a job's wait time
// depends only on overall node availability, not on which specific nodes were
// earmarked for it. Earmarks borrowed from other jobs' agreements are released; the
// donor job simply waits for the shrink/expand planner to earmark it again.
type Pool struct{}

func (Pool) Resolve(pendingJobs *[]*api.JobView, freeNodes *[]*api.NodeView, store *Store, sink eventlog.Sink, now float64) {
	for _, job := range targetJobs(*pendingJobs, store) {
		if len(*freeNodes) == 0 {
			break
		}

		needed := len(store.NodesForJob(job.ID))
		if needed > len(*freeNodes) {
			continue
		}

		withAgreement, without := partitionByAgreement(*freeNodes, store)

		nodes := withAgreement
		if len(nodes) > needed {
			nodes = nodes[:needed]
		}
		if len(nodes) < needed {
			remaining := needed - len(nodes)
			if remaining > len(without) {
				remaining = len(without)
			}
			nodes = append(nodes, without[:remaining]...)
		}

		for _, n := range nodes {
			if owner, ok := store.JobForNode(n.ID); ok {
				store.Remove(owner, []int{n.ID})
			}
		}
		store.Remove(job.ID, nil)

		apply(job, nodes, pendingJobs, freeNodes, sink, now)
	}
}

// partitionByAgreement splits freeNodes into those earmarked by some agreement and
// those that are not, preserving relative order within each group.
func partitionByAgreement(freeNodes []*api.NodeView, store *Store) (withAgreement, without []*api.NodeView) {
	for _, n := range freeNodes {
		if store.HasNode(n.ID) {
			withAgreement = append(withAgreement, n)
		} else {
			without = append(without, n)
		}
	}
	return withAgreement, without
}
