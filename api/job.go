// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package api

// Job is the host-owned record for a single simulated job. Its identity, type, and
// resource bounds are immutable from the scheduler's perspective; assignment state
// changes only through Assign, Remove, and AssignNumGPUsPerNode — the three operations
// the simulator exposes over the transport channel (see the transport package).
type Job struct {
	ID                int
	Type              JobType
	State             JobState
	NumNodesMin       int
	NumNodesMax       int
	NumGPUsPerNode    int
	NumGPUsPerNodeMax int
	SubmitTime        float64
	StartTime         float64
	AssignedNodes     []*Node
	// Arguments carries application-model parameters (flops, iterations, the optional
	// cached runtime, and an optional num_nodes_pref) exactly as the host supplies them.
	// The scheduler reads this map but never writes to it; derived values are cached on
	// a JobView instead (see view.go).
	Arguments map[string]any
}

// Assign hands the given nodes to this job. A pending job transitions to RUNNING on its
// first assignment; a running malleable job simply grows. Nodes not already assigned to
// this job are appended in the order given, matching the order they will appear in
// AssignedNodes for any caller inspecting node indices (the pref-anchored shrink planner
// relies on this ordering).
func (j *Job) Assign(nodes []*Node) {
	if len(nodes) == 0 {
		return
	}
	already := make(map[int]bool, len(j.AssignedNodes))
	for _, n := range j.AssignedNodes {
		already[n.ID] = true
	}
	for _, n := range nodes {
		if already[n.ID] {
			continue
		}
		n.State = NodeStateAllocated
		n.addJob(j.ID)
		j.AssignedNodes = append(j.AssignedNodes, n)
	}
	if j.State == JobStatePending {
		j.State = JobStateRunning
	}
}

// Remove releases the given nodes from this job, marking each FREE once no job
// references it. Only malleable jobs are expected to call this after start; rigid and
// moldable jobs keep a fixed assignment for their lifetime.
func (j *Job) Remove(nodes []*Node) {
	if len(nodes) == 0 {
		return
	}
	drop := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		drop[n.ID] = true
	}
	kept := j.AssignedNodes[:0]
	for _, n := range j.AssignedNodes {
		if drop[n.ID] {
			n.removeJob(j.ID)
			if len(n.AssignedJobIDs) == 0 {
				n.State = NodeStateFree
			}
		} else {
			kept = append(kept, n)
		}
	}
	j.AssignedNodes = kept
}

// AssignNumGPUsPerNode sets the number of GPUs per node this job will use; the admission
// policy always calls this with NumGPUsPerNodeMax on start.
func (j *Job) AssignNumGPUsPerNode(n int) {
	j.NumGPUsPerNode = n
}
