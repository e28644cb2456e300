// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package api

import "fmt"

// JobView is a thin, per-tick wrapper around a host-owned Job that adds the scheduler's
// derived attributes (estimated runtime, preferred node count) without ever mutating the
// host record. A JobView is built fresh by Upgrade on every invocation, so its memoized
// fields never outlive a single tick — the scheduler holds jobs only for the duration of
// one invocation.
type JobView struct {
	*Job

	// NumNodesMin shadows the host Job's own field: for rigid jobs it is resolved to
	// NumNodesMax (min == pref == max) without writing that back onto the host record,
	// which Upgrade used to do directly. Every other package reads it through this view
	// field rather than the embedded Job, exactly like NumNodesPref below.
	NumNodesMin int

	// NumNodesPref is the job's preferred node count: the host-provided value from
	// Arguments["num_nodes_pref"] if present, otherwise the integer mean of min/max for
	// non-rigid jobs, or NumNodesMax for rigid jobs (where min == pref == max).
	NumNodesPref int

	// arguments is a defensive deep copy of Job.Arguments taken at Upgrade time: every
	// derived attribute on this view reads from here rather than the host's own map, so
	// nothing under api ever risks aliasing (and, through some future helper, mutating)
	// the record the simulator still owns.
	arguments map[string]any

	estimatedRuntime *float64
}

// EstimatedRuntime returns (flops * iterations) / NumNodesMin, memoized on first read, or
// the host-supplied cached Arguments["runtime"] if one was provided.
func (v *JobView) EstimatedRuntime() float64 {
	if v.estimatedRuntime != nil {
		return *v.estimatedRuntime
	}
	var rt float64
	if cached, ok := v.arguments["runtime"]; ok {
		rt = toFloat(cached)
	} else {
		flops := toFloat(v.arguments["flops"])
		iterations := 1.0
		if it, ok := v.arguments["iterations"]; ok {
			iterations = toFloat(it)
		}
		if v.NumNodesMin > 0 {
			rt = (flops * iterations) / float64(v.NumNodesMin)
		}
	}
	v.estimatedRuntime = &rt
	return rt
}

func (v *JobView) String() string {
	if len(v.AssignedNodes) == 0 {
		return fmt.Sprintf("Job%d(%s) is %s", v.ID, v.Type, v.State)
	}
	ids := make([]int, len(v.AssignedNodes))
	for i, n := range v.AssignedNodes {
		ids[i] = n.ID
	}
	return fmt.Sprintf("Job%d(%s) is %s with Nodes %v assigned", v.ID, v.Type, v.State, ids)
}

// NodeView is the per-tick wrapper around a host-owned Node. It carries no derived
// attributes today but exists for symmetry with JobView and as an extension point: views
// model host-owned records without ever mutating them.
type NodeView struct {
	*Node
}

// Upgrade injects derived attributes into raw jobs/nodes exactly once per invocation. It
// asserts the per-job invariant num_nodes_min <= num_nodes_pref <= num_nodes_max,
// returning an error so the driver can prefix and re-raise it.
func Upgrade(jobs []*Job, nodes []*Node) ([]*JobView, []*NodeView, error) {
	jobViews := make([]*JobView, len(jobs))
	for i, j := range jobs {
		v := &JobView{Job: j, NumNodesMin: j.NumNodesMin, arguments: deepCopyArguments(j.Arguments)}
		switch {
		case j.Type == JobTypeRigid:
			v.NumNodesMin = j.NumNodesMax
			v.NumNodesPref = j.NumNodesMax
		default:
			if pref, ok := v.arguments["num_nodes_pref"]; ok {
				v.NumNodesPref = int(toFloat(pref))
			} else {
				v.NumNodesPref = (j.NumNodesMin + j.NumNodesMax) / 2
			}
		}
		if !(v.NumNodesMin <= v.NumNodesPref && v.NumNodesPref <= j.NumNodesMax) {
			return nil, nil, fmt.Errorf(
				"job %d: invariant violated: num_nodes_min <= num_nodes_pref <= num_nodes_max (got %d <= %d <= %d)",
				j.ID, v.NumNodesMin, v.NumNodesPref, j.NumNodesMax)
		}
		jobViews[i] = v
	}

	nodeViews := make([]*NodeView, len(nodes))
	for i, n := range nodes {
		nodeViews[i] = &NodeView{Node: n}
	}
	return jobViews, nodeViews, nil
}
