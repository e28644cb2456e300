// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

// Package admission implements first-come-first-served admission of pending jobs onto
// free nodes, with EASY backfilling: a job behind the head of the queue may start out
// of order as long as doing so would not delay the head job's own earliest possible
// start time.
package admission

import (
	"sort"

	"github.com/wagomu-sim/elastisim-scheduler/api"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
)

// Target computes how many nodes to request for job given the current free-node
// count. MinTarget and PrefTarget are the two variants named in scheduling
// components: min-anchored planners request NumNodesMin, pref-anchored planners
// request as much of NumNodesPref as nodes allow.
type Target func(job *api.JobView, freeCount int) int

// MinTarget always requests a job's minimum node count.
func MinTarget(job *api.JobView, freeCount int) int {
	return job.NumNodesMin
}

// PrefTarget requests as many nodes as the job prefers, capped by what is free.
func PrefTarget(job *api.JobView, freeCount int) int {
	if job.NumNodesPref < freeCount {
		return job.NumNodesPref
	}
	return freeCount
}

// Admit walks pendingJobs in FCFS order, starting each job that fits in the current
// free-node pool unless doing so (per EASY backfilling) would delay the first job in
// the queue beyond its own earliest possible start time. pendingJobs and freeNodes are
// mutated in place: admitted jobs and the nodes assigned to them are removed.
func Admit(pendingJobs *[]*api.JobView, runningJobs []*api.JobView, freeNodes *[]*api.NodeView, now float64, target Target, easy bool, sink eventlog.Sink) {
	jobs := *pendingJobs
	if len(jobs) == 0 {
		return
	}
	head := jobs[0]

	i := 0
	for i < len(jobs) {
		if len(*freeNodes) == 0 {
			break
		}
		job := jobs[i]

		reqNodes := target(job, len(*freeNodes))
		if reqNodes < job.NumNodesMin || reqNodes > len(*freeNodes) {
			i++
			continue
		}

		if easy && job != head && delaysHead(head, runningJobs, len(*freeNodes), now) {
			i++
			continue
		}

		assigned := (*freeNodes)[:reqNodes]
		plain := make([]*api.Node, len(assigned))
		for idx, n := range assigned {
			plain[idx] = n.Node
		}
		job.Assign(plain)
		job.AssignNumGPUsPerNode(job.NumGPUsPerNodeMax)

		*freeNodes = (*freeNodes)[reqNodes:]
		jobs = removePendingAt(jobs, i)
		*pendingJobs = jobs

		sink.Record(eventlog.Event{
			Time:  now,
			Kind:  eventlog.Start,
			Jobs:  eventlog.JobRef(job.ID),
			Nodes: eventlog.NodeIDs(plain, func(n *api.Node) int { return n.ID }),
		})

		if job == head && len(jobs) > 0 {
			head = jobs[0]
			i = 0
			continue
		}
	}
}

func removePendingAt(jobs []*api.JobView, i int) []*api.JobView {
	out := make([]*api.JobView, 0, len(jobs)-1)
	out = append(out, jobs[:i]...)
	out = append(out, jobs[i+1:]...)
	return out
}

// delaysHead reports whether admitting a non-head job now would push the queue head's
// own earliest possible start time later than it would otherwise be. It simulates
// running jobs finishing in order of soonest remaining runtime first, accumulating
// freed nodes against head's own node deficit (head.NumNodesMin beyond what is
// currently free), and compares the projected accumulation time against head's
// estimated runtime horizon: a head whose own runtime estimate is still comfortably
// ahead of its projected start time can tolerate the backfill, but once the projection
// catches up to or passes that horizon, backfilling is refused.
func delaysHead(head *api.JobView, runningJobs []*api.JobView, freeCount int, now float64) bool {
	sorted := make([]*api.JobView, len(runningJobs))
	copy(sorted, runningJobs)
	sort.Slice(sorted, func(i, j int) bool {
		return remainingRuntime(sorted[i], now) < remainingRuntime(sorted[j], now)
	})

	deficit := head.NumNodesMin - freeCount
	headStartTime := now
	for _, rj := range sorted {
		if deficit <= 0 {
			break
		}
		deficit -= len(rj.AssignedNodes)
		headStartTime = now + remainingRuntime(rj, now)
	}

	return deficit <= 0 && headStartTime >= now+head.EstimatedRuntime()
}

func remainingRuntime(job *api.JobView, now float64) float64 {
	return job.StartTime + job.EstimatedRuntime() - now
}
