// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package expand

import (
	"sort"

	"github.com/wagomu-sim/elastisim-scheduler/api"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
)

// MinAnchored grows running malleable jobs toward their maximum node count, visiting
// the job with the fewest nodes above its minimum first and giving it as many free
// nodes as it can take (up to its maximum) before moving to the next.
type MinAnchored struct{}

func (MinAnchored) Plan(runningMalleable []*api.JobView, freeNodes *[]*api.NodeView, sink eventlog.Sink, now float64) {
	sorted := make([]*api.JobView, len(runningMalleable))
	copy(sorted, runningMalleable)
	sort.SliceStable(sorted, func(i, j int) bool {
		return minPriority(sorted[i]) < minPriority(sorted[j])
	})

	for _, job := range sorted {
		if len(*freeNodes) == 0 {
			break
		}
		room := job.NumNodesMax - len(job.AssignedNodes)
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

func minPriority(job *api.JobView) int {
	return len(job.AssignedNodes) - job.NumNodesMin
}
