// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobAssignMarksNodesAllocated(t *testing.T) {
	job := &Job{ID: 1, State: JobStatePending, NumNodesMin: 2, NumNodesMax: 2}
	nodes := []*Node{{ID: 0, State: NodeStateFree}, {ID: 1, State: NodeStateFree}}

	job.Assign(nodes)

	assert.Equal(t, JobStateRunning, job.State)
	require.Len(t, job.AssignedNodes, 2)
	for _, n := range nodes {
		assert.Equal(t, NodeStateAllocated, n.State)
		assert.Equal(t, []int{1}, n.AssignedJobIDs)
	}
}

func TestJobAssignIsIdempotentForAlreadyAssignedNodes(t *testing.T) {
	job := &Job{ID: 1, State: JobStateRunning}
	n := &Node{ID: 0, State: NodeStateAllocated, AssignedJobIDs: []int{1}}
	job.AssignedNodes = []*Node{n}

	job.Assign([]*Node{n})

	assert.Len(t, job.AssignedNodes, 1)
	assert.Equal(t, []int{1}, n.AssignedJobIDs)
}

func TestJobRemoveFreesOnlyGivenNodes(t *testing.T) {
	job := &Job{ID: 1, State: JobStateRunning}
	keep := &Node{ID: 0, State: NodeStateAllocated, AssignedJobIDs: []int{1}}
	drop := &Node{ID: 1, State: NodeStateAllocated, AssignedJobIDs: []int{1}}
	job.AssignedNodes = []*Node{keep, drop}

	job.Remove([]*Node{drop})

	require.Len(t, job.AssignedNodes, 1)
	assert.Equal(t, keep, job.AssignedNodes[0])
	assert.Equal(t, NodeStateFree, drop.State)
	assert.Empty(t, drop.AssignedJobIDs)
	assert.Equal(t, NodeStateAllocated, keep.State)
}

func TestJobAssignNumGPUsPerNode(t *testing.T) {
	job := &Job{ID: 1, NumGPUsPerNodeMax: 4}
	job.AssignNumGPUsPerNode(job.NumGPUsPerNodeMax)
	assert.Equal(t, 4, job.NumGPUsPerNode)
}
