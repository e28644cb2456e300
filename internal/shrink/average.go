// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package shrink

import (
	"github.com/wagomu-sim/elastisim-scheduler/api"
	"github.com/wagomu-sim/elastisim-scheduler/internal/agreement"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
)

// AverageAnchored shrinks running malleable jobs one node at a time, always taking the
// next node from whichever job's fractional position between its minimum and maximum
// node count is currently highest. A job just drawn from still holds the node in
// AssignedNodes (the round plans all reclaimed nodes before anything is actually
// removed), and each node taken from it is counted once more on top of that, so its
// score rises as it donates: a job that starts donating keeps donating within the same
// round rather than spreading the reduction evenly — draining one source at a time instead of
// shaving every job a little. The whole round is cancelled if at any point no malleable
// job has a node left to give above its minimum.
type AverageAnchored struct{}

func (AverageAnchored) Plan(pendingJobs []*api.JobView, runningMalleable []*api.JobView, store *agreement.Store, sink eventlog.Sink, now float64) {
	for _, job := range pendingJobs {
		selections := selectShrinkJobsAverage(runningMalleable, job.NumNodesMin, store)
		for _, sel := range selections {
			if len(sel.nodes) == 0 {
				continue
			}
			apply(job, sel.donor, sel.nodes, store, sink, now)
		}
	}
}

// avgPriority scores how far job currently sits between its minimum and maximum node
// count, adding count (the nodes already taken from it this round) to its current
// AssignedNodes (see AverageAnchored's doc comment on why this keeps draining
// the same donor within a round instead of spreading the reduction evenly).
func avgPriority(job *api.JobView, count int) float64 {
	nodeRange := job.NumNodesMax - job.NumNodesMin
	if nodeRange == 0 {
		return 0
	}
	current := len(job.AssignedNodes) + count
	return float64(current-job.NumNodesMin) / float64(nodeRange)
}

// selectShrinkJobsAverage picks required nodes one at a time from runningMalleable,
// each time choosing whichever job currently scores highest by avgPriority among those
// still able to donate. It returns nil if the round cannot be completed in full.
func selectShrinkJobsAverage(rmJobs []*api.JobView, required int, store *agreement.Store) []selection {
	available := make(map[int][]*api.Node, len(rmJobs))
	taken := make(map[int]int, len(rmJobs))
	byID := make(map[int]*api.JobView, len(rmJobs))
	for _, job := range rmJobs {
		available[job.ID] = availableNodes(job, job.NumNodesMin, store)
		byID[job.ID] = job
	}

	order := make([]int, 0, len(rmJobs))
	picked := make(map[int][]*api.Node)

	for i := 0; i < required; i++ {
		var best *api.JobView
		bestScore := 0.0
		for _, job := range rmJobs {
			if taken[job.ID] >= len(available[job.ID]) {
				continue
			}
			score := avgPriority(job, taken[job.ID])
			if best == nil || score > bestScore {
				best = job
				bestScore = score
			}
		}
		if best == nil {
			return nil
		}
		if _, seen := picked[best.ID]; !seen {
			order = append(order, best.ID)
		}
		picked[best.ID] = append(picked[best.ID], available[best.ID][taken[best.ID]])
		taken[best.ID]++
	}

	out := make([]selection, 0, len(order))
	for _, id := range order {
		out = append(out, selection{donor: byID[id], nodes: picked[id]})
	}
	return out
}
