// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package shrink

import (
	"sort"

	"github.com/wagomu-sim/elastisim-scheduler/api"
	"github.com/wagomu-sim/elastisim-scheduler/internal/agreement"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
)

// PrefAnchored shrinks running malleable jobs toward their preferred node count. For
// each pending job in FCFS order it tries three tiers in turn, falling through to the
// next only if the previous one could not assemble enough nodes:
//
//  1. Reclaim up to NumNodesPref nodes, keeping each donor at its own preferred count.
//  2. Reclaim up to NumNodesMin nodes, still keeping each donor at its preferred count.
//  3. Reclaim up to NumNodesMin nodes, keeping donors down to their own minimum.
//
// The first tier that can assemble the full requested amount wins; if none can, nothing
// is reclaimed for that job this tick.
type PrefAnchored struct{}

func (PrefAnchored) Plan(pendingJobs []*api.JobView, runningMalleable []*api.JobView, store *agreement.Store, sink eventlog.Sink, now float64) {
	for _, job := range pendingJobs {
		selections := selectShrinkJobsPref(runningMalleable, job.NumNodesPref, prefKeep, store)
		if selections == nil {
			selections = selectShrinkJobsPref(runningMalleable, job.NumNodesMin, prefKeep, store)
		}
		if selections == nil {
			selections = selectShrinkJobsPref(runningMalleable, job.NumNodesMin, minKeep, store)
		}
		for _, sel := range selections {
			apply(job, sel.donor, sel.nodes, store, sink, now)
		}
	}
}

func prefPriority(job *api.JobView) int {
	return len(job.AssignedNodes) - job.NumNodesPref
}

func prefKeep(job *api.JobView) int { return job.NumNodesPref }
func minKeep(job *api.JobView) int  { return job.NumNodesMin }

// selectShrinkJobsPref assembles exactly required nodes (or none at all), never taking
// a donor below keep(donor), visiting jobs with the most slack above their preferred
// count first.
func selectShrinkJobsPref(rmJobs []*api.JobView, required int, keep func(*api.JobView) int, store *agreement.Store) []selection {
	sorted := make([]*api.JobView, len(rmJobs))
	copy(sorted, rmJobs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return prefPriority(sorted[i]) > prefPriority(sorted[j])
	})

	var out []selection
	for _, job := range sorted {
		if required == 0 {
			break
		}
		avail := availableNodes(job, keep(job), store)
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
