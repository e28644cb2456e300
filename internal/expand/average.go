// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package expand

import (
	"github.com/wagomu-sim/elastisim-scheduler/api"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
)

// AverageAnchored distributes free nodes virtually, one at a time, always giving the
// next node to whichever running malleable job currently sits lowest in its fractional
// position between minimum and maximum node count. Nodes already virtually given to a
// job earlier in the same round lower its score further, so the job that starts the
// round lowest keeps receiving nodes and can absorb every free node of the round rather
// than growth spreading across jobs. The virtual distribution is only applied to
// AssignedNodes once the whole round is planned.
type AverageAnchored struct{}

func (AverageAnchored) Plan(runningMalleable []*api.JobView, freeNodes *[]*api.NodeView, sink eventlog.Sink, now float64) {
	if len(runningMalleable) == 0 {
		return
	}

	expandAmount := make(map[int]int, len(runningMalleable))
	for _, job := range runningMalleable {
		expandAmount[job.ID] = 0
	}

	for i := 0; i < len(*freeNodes); i++ {
		best := runningMalleable[0]
		bestScore := avgPriority(best, expandAmount[best.ID])
		for _, job := range runningMalleable[1:] {
			score := avgPriority(job, expandAmount[job.ID])
			if score < bestScore {
				best = job
				bestScore = score
			}
		}
		if len(best.AssignedNodes) == best.NumNodesMax {
			break
		}
		expandAmount[best.ID]++
	}

	for _, job := range runningMalleable {
		amount := expandAmount[job.ID]
		if amount == 0 {
			continue
		}
		if room := job.NumNodesMax - len(job.AssignedNodes); amount > room {
			amount = room
		}
		if amount > len(*freeNodes) {
			amount = len(*freeNodes)
		}
		if amount == 0 {
			continue
		}
		assign(job, (*freeNodes)[:amount], freeNodes, sink, now)
	}
}

// avgPriority scores job's current fractional position between its minimum and maximum
// node count, with adjust (the nodes already virtually assigned to it this round)
// subtracted from its current count.
func avgPriority(job *api.JobView, adjust int) float64 {
	nodeRange := job.NumNodesMax - job.NumNodesMin
	if nodeRange == 0 {
		return 1
	}
	current := len(job.AssignedNodes) - adjust
	return float64(current-job.NumNodesMin) / float64(nodeRange)
}
