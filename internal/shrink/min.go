// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package shrink

import (
	"sort"

	"github.com/wagomu-sim/elastisim-scheduler/api"
	"github.com/wagomu-sim/elastisim-scheduler/internal/agreement"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
)

// MinAnchored shrinks running malleable jobs toward their minimum node count. For each
// pending job in FCFS order it tries to reclaim exactly NumNodesMin nodes, preferring to
// take them from whichever malleable job currently holds the most nodes above its own
// minimum. A pending job's agreement is all-or-nothing: if the full amount cannot be
// assembled from running jobs' slack above minimum, nothing is reclaimed for it this
// tick.
type MinAnchored struct{}

func (MinAnchored) Plan(pendingJobs []*api.JobView, runningMalleable []*api.JobView, store *agreement.Store, sink eventlog.Sink, now float64) {
	for _, job := range pendingJobs {
		for _, sel := range selectShrinkJobsMin(runningMalleable, job.NumNodesMin, store) {
			apply(job, sel.donor, sel.nodes, store, sink, now)
		}
	}
}

func minPriority(job *api.JobView) int {
	return len(job.AssignedNodes) - job.NumNodesMin
}

// selectShrinkJobsMin assembles exactly required nodes (or none at all) from
// runningMalleable, visiting jobs with the most slack above their minimum first.
func selectShrinkJobsMin(rmJobs []*api.JobView, required int, store *agreement.Store) []selection {
	sorted := make([]*api.JobView, len(rmJobs))
	copy(sorted, rmJobs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return minPriority(sorted[i]) > minPriority(sorted[j])
	})

	var out []selection
	for _, job := range sorted {
		if required == 0 {
			break
		}
		avail := availableNodes(job, job.NumNodesMin, store)
		if len(avail) > required {
			avail = avail[:required]
		}
		if len(avail) > 0 {
			required -= len(avail)
			out = append(out, selection{donor: job, nodes: avail})
		}
	}
	if required != 0 {
		return nil
	}
	return out
}
