// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package elastisim

import (
	"sort"

	"github.com/wagomu-sim/elastisim-scheduler/api"
	"github.com/wagomu-sim/elastisim-scheduler/internal/admission"
	"github.com/wagomu-sim/elastisim-scheduler/internal/agreement"
	"github.com/wagomu-sim/elastisim-scheduler/internal/expand"
	"github.com/wagomu-sim/elastisim-scheduler/internal/shrink"
)

// Variant is a complete scheduling policy: how the pending queue is ordered, how many
// nodes a job is given on admission, whether EASY head protection applies, and —
// for malleable-aware variants — which resolver and which shrink/expand planners
// cooperate to rebalance nodes across ticks. Resolve, Shrink, and Expand are nil for
// the purely-rigid variants, which skip those driver steps entirely.
type Variant struct {
	Name        string
	QueueOrder  func([]*api.JobView)
	StartTarget admission.Target
	EASY        bool
	Resolve     agreement.Resolver
	Shrink      shrink.Planner
	Expand      expand.Planner
}

func bySubmitTime(jobs []*api.JobView) {
	sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].SubmitTime < jobs[j].SubmitTime })
}

func byEstimatedRuntime(jobs []*api.JobView) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].EstimatedRuntime() < jobs[j].EstimatedRuntime()
	})
}

// MinCommonPool rebalances malleable jobs toward their minimum node count: shrink
// reclaims down to num_nodes_min, expand grows the job with the least slack above
// its minimum first.
func MinCommonPool() Variant {
	return Variant{
		Name:        "min_common_pool",
		QueueOrder:  bySubmitTime,
		StartTarget: admission.MinTarget,
		EASY:        true,
		Resolve:     agreement.Direct{},
		Shrink:      shrink.MinAnchored{},
		Expand:      expand.MinAnchored{},
	}
}

// PrefCommonPool rebalances malleable jobs toward their preferred node count, falling
// back to their minimum only when preference cannot be honored.
func PrefCommonPool() Variant {
	return Variant{
		Name:        "pref_common_pool",
		QueueOrder:  bySubmitTime,
		StartTarget: admission.PrefTarget,
		EASY:        true,
		Resolve:     agreement.Pool{},
		Shrink:      shrink.PrefAnchored{},
		Expand:      expand.PrefAnchored{},
	}
}

// AverageStealAgreement rebalances malleable jobs to keep every job's fractional
// position between its minimum and maximum node count as close as possible, and
// resolves agreements by stealing nodes across donors to satisfy the earliest-queued
// pending job first.
func AverageStealAgreement() Variant {
	return Variant{
		Name:        "average_steal_agreement",
		QueueOrder:  bySubmitTime,
		StartTarget: admission.MinTarget,
		EASY:        true,
		Resolve:     agreement.Steal{},
		Shrink:      shrink.AverageAnchored{},
		Expand:      expand.AverageAnchored{},
	}
}

// Rigid admits rigid and moldable jobs strictly by submission order, backfilling
// behind the queue head as long as doing so would not delay it. No job is ever
// reassigned after start, so this variant has no resolver and no shrink/expand step.
func Rigid() Variant {
	return Variant{
		Name:        "rigid_easy_backfill",
		QueueOrder:  bySubmitTime,
		StartTarget: admission.PrefTarget,
		EASY:        true,
	}
}

// RigidSJF admits jobs strictly in order of ascending estimated runtime, ignoring
// submission order and EASY head protection entirely: a job earlier in this order
// always wins the nodes it fits in ahead of a later, longer job.
func RigidSJF() Variant {
	return Variant{
		Name:        "rigid_shortest_job_first",
		QueueOrder:  byEstimatedRuntime,
		StartTarget: admission.PrefTarget,
		EASY:        false,
	}
}

// Registry lists every variant this module ships, keyed by Name, for the CLI and
// for callers that select a variant by configuration string.
func Registry() map[string]func() Variant {
	return map[string]func() Variant{
		"min_common_pool":          MinCommonPool,
		"pref_common_pool":         PrefCommonPool,
		"average_steal_agreement":  AverageStealAgreement,
		"rigid_easy_backfill":      Rigid,
		"rigid_shortest_job_first": RigidSJF,
	}
}
