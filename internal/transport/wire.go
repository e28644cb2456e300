// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package transport

import "github.com/wagomu-sim/elastisim-scheduler/api"

// Snapshot is the wire envelope the simulator sends once per tick: the full job/node
// state plus system metadata. RequestID correlates this snapshot with the Mutation
// reply it expects.
type Snapshot struct {
	SessionID string         `json:"session_id"`
	RequestID string         `json:"request_id"`
	System    map[string]any `json:"system"`
	Jobs      []JobDTO       `json:"jobs"`
	Nodes     []NodeDTO      `json:"nodes"`
}

// JobDTO is the wire representation of api.Job.
type JobDTO struct {
	ID                int            `json:"id"`
	Type              int            `json:"type"`
	State             int            `json:"state"`
	NumNodesMin       int            `json:"num_nodes_min"`
	NumNodesMax       int            `json:"num_nodes_max"`
	NumGPUsPerNode    int            `json:"num_gpus_per_node"`
	NumGPUsPerNodeMax int            `json:"num_gpus_per_node_max"`
	SubmitTime        float64        `json:"submit_time"`
	StartTime         float64        `json:"start_time"`
	AssignedNodeIDs   []int          `json:"assigned_node_ids"`
	Arguments         map[string]any `json:"arguments"`
}

// NodeDTO is the wire representation of api.Node.
type NodeDTO struct {
	ID             int   `json:"id"`
	State          int   `json:"state"`
	AssignedJobIDs []int `json:"assigned_job_ids"`
}

// Mutation is the reply the scheduler sends back after a Driver.Tick: the post-tick
// assignment state of every job/node it touched, echoed under the same RequestID so
// the simulator can match it to the Snapshot that produced it.
type Mutation struct {
	RequestID string    `json:"request_id"`
	Jobs      []JobDTO  `json:"jobs"`
	Nodes     []NodeDTO `json:"nodes"`
}

// Decode converts a Snapshot into the host-owned domain records the driver operates
// on, resolving each job's AssignedNodeIDs against the accompanying node list so
// AssignedNodes point at the same *api.Node instances nodes[i] does — required for the
// driver's partition step, which relies on node identity rather than a copy.
func Decode(snap Snapshot) ([]*api.Job, []*api.Node, api.System) {
	nodes := make([]*api.Node, len(snap.Nodes))
	byID := make(map[int]*api.Node, len(snap.Nodes))
	for i, n := range snap.Nodes {
		node := &api.Node{
			ID:             n.ID,
			State:          api.NodeState(n.State),
			AssignedJobIDs: append([]int(nil), n.AssignedJobIDs...),
		}
		nodes[i] = node
		byID[n.ID] = node
	}

	jobs := make([]*api.Job, len(snap.Jobs))
	for i, j := range snap.Jobs {
		assigned := make([]*api.Node, 0, len(j.AssignedNodeIDs))
		for _, id := range j.AssignedNodeIDs {
			if n, ok := byID[id]; ok {
				assigned = append(assigned, n)
			}
		}
		jobs[i] = &api.Job{
			ID:                j.ID,
			Type:              api.JobType(j.Type),
			State:             api.JobState(j.State),
			NumNodesMin:       j.NumNodesMin,
			NumNodesMax:       j.NumNodesMax,
			NumGPUsPerNode:    j.NumGPUsPerNode,
			NumGPUsPerNodeMax: j.NumGPUsPerNodeMax,
			SubmitTime:        j.SubmitTime,
			StartTime:         j.StartTime,
			AssignedNodes:     assigned,
			Arguments:         j.Arguments,
		}
	}

	return jobs, nodes, api.System(snap.System)
}

// Encode converts the post-tick domain records back into their wire form for a
// Mutation reply.
func Encode(requestID string, jobs []*api.Job, nodes []*api.Node) Mutation {
	jobDTOs := make([]JobDTO, len(jobs))
	for i, j := range jobs {
		ids := make([]int, len(j.AssignedNodes))
		for k, n := range j.AssignedNodes {
			ids[k] = n.ID
		}
		jobDTOs[i] = JobDTO{
			ID:                j.ID,
			Type:              int(j.Type),
			State:             int(j.State),
			NumNodesMin:       j.NumNodesMin,
			NumNodesMax:       j.NumNodesMax,
			NumGPUsPerNode:    j.NumGPUsPerNode,
			NumGPUsPerNodeMax: j.NumGPUsPerNodeMax,
			SubmitTime:        j.SubmitTime,
			StartTime:         j.StartTime,
			AssignedNodeIDs:   ids,
			Arguments:         j.Arguments,
		}
	}

	nodeDTOs := make([]NodeDTO, len(nodes))
	for i, n := range nodes {
		nodeDTOs[i] = NodeDTO{
			ID:             n.ID,
			State:          int(n.State),
			AssignedJobIDs: append([]int(nil), n.AssignedJobIDs...),
		}
	}

	return Mutation{RequestID: requestID, Jobs: jobDTOs, Nodes: nodeDTOs}
}
