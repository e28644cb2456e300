// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package expand

import (
	"sort"

	"github.com/wagomu-sim/elastisim-scheduler/api"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
)

// PrefAnchored grows running malleable jobs in two passes: first every job is filled
// toward its preferred node count (most nodes below preferred first), and only once no
// job wants more to reach preferred does a second pass fill remaining free nodes toward
// each job's maximum (same ordering, against the maximum target).
type PrefAnchored struct{}

func (PrefAnchored) Plan(runningMalleable []*api.JobView, freeNodes *[]*api.NodeView, sink eventlog.Sink, now float64) {
	fillToward(runningMalleable, freeNodes, sink, now, func(j *api.JobView) int { return j.NumNodesPref })
	fillToward(runningMalleable, freeNodes, sink, now, func(j *api.JobView) int { return j.NumNodesMax })
}

func prefPriority(job *api.JobView) int {
	return len(job.AssignedNodes) - job.NumNodesPref
}

// fillToward visits runningMalleable ordered by ascending len(AssignedNodes) -
// NumNodesPref, i.e. the job furthest below its preferred count first (the same
// ordering both passes use), and grows each job up to target(job).
func fillToward(runningMalleable []*api.JobView, freeNodes *[]*api.NodeView, sink eventlog.Sink, now float64, target func(*api.JobView) int) {
	sorted := make([]*api.JobView, len(runningMalleable))
	copy(sorted, runningMalleable)
	sort.SliceStable(sorted, func(i, j int) bool {
		return prefPriority(sorted[i]) < prefPriority(sorted[j])
	})

	for _, job := range sorted {
		if len(*freeNodes) == 0 {
			break
		}
		room := target(job) - len(job.AssignedNodes)
		if room <= 0 {
			continue
		}
		amount := room
		if amount > len(*freeNodes) {
			amount = len(*freeNodes)
		}
		assign(job, (*freeNodes)[:amount], freeNodes, sink, now)
	}
}
