// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wagomu-sim/elastisim-scheduler/api"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
)

func malleable(id, min, pref, max int, nodeIDs ...int) *api.JobView {
	nodes := make([]*api.Node, len(nodeIDs))
	for i, nid := range nodeIDs {
		nodes[i] = &api.Node{ID: nid, State: api.NodeStateAllocated, AssignedJobIDs: []int{id}}
	}
	return &api.JobView{
		Job: &api.Job{
			ID: id, Type: api.JobTypeMalleable, State: api.JobStateRunning,
			NumNodesMin: min, NumNodesMax: max, AssignedNodes: nodes,
		},
		NumNodesMin:  min,
		NumNodesPref: pref,
	}
}

func freeNode(id int) *api.NodeView {
	return &api.NodeView{Node: &api.Node{ID: id, State: api.NodeStateFree}}
}

func TestMinAnchoredExpandsJobWithLeastSlackFirst(t *testing.T) {
	jobA := malleable(1, 2, 4, 8, 10, 11) // 2 assigned, at min: least slack
	jobB := malleable(2, 2, 4, 8, 20, 21, 22, 23) // 4 assigned, 2 above min
	free := []*api.NodeView{freeNode(30), freeNode(31)}
	sink := eventlog.NewMemorySink()

	MinAnchored{}.Plan([]*api.JobView{jobA, jobB}, &free, sink, 0)

	assert.Len(t, jobA.AssignedNodes, 4) // grown first, takes all free nodes up to its room
	assert.Len(t, jobB.AssignedNodes, 4) // untouched, free nodes already exhausted
	assert.Empty(t, free)
}

func TestMinAnchoredStopsAtMax(t *testing.T) {
	jobA := malleable(1, 2, 2, 3, 10, 11) // room for exactly 1 more
	free := []*api.NodeView{freeNode(30), freeNode(31)}
	sink := eventlog.NewMemorySink()

	MinAnchored{}.Plan([]*api.JobView{jobA}, &free, sink, 0)

	assert.Len(t, jobA.AssignedNodes, 3)
	assert.Len(t, free, 1)
}

func TestPrefAnchoredFillsToPrefBeforeMax(t *testing.T) {
	jobA := malleable(1, 2, 4, 8, 10, 11) // 2 assigned, needs 2 to reach pref
	free := []*api.NodeView{freeNode(30), freeNode(31), freeNode(32)}
	sink := eventlog.NewMemorySink()

	PrefAnchored{}.Plan([]*api.JobView{jobA}, &free, sink, 0)

	assert.Len(t, jobA.AssignedNodes, 5) // filled to pref (4), then one more toward max
	assert.Empty(t, free)
}

func TestPrefAnchoredSecondPassOnlyAfterAllReachPref(t *testing.T) {
	jobA := malleable(1, 2, 4, 8, 10, 11) // needs 2 to reach pref
	jobB := malleable(2, 2, 4, 8, 20, 21, 22) // needs 1 to reach pref
	free := []*api.NodeView{freeNode(30), freeNode(31), freeNode(32)}
	sink := eventlog.NewMemorySink()

	PrefAnchored{}.Plan([]*api.JobView{jobA, jobB}, &free, sink, 0)

	assert.Len(t, jobA.AssignedNodes, 4) // reached pref
	assert.Len(t, jobB.AssignedNodes, 4) // reached pref
	assert.Empty(t, free)
}

func TestAverageAnchoredSpreadsAcrossLowestPriorityJobsFirst(t *testing.T) {
	jobA := malleable(1, 2, 4, 8, 10, 11) // 2 assigned, min 2: priority 0
	jobB := malleable(2, 2, 4, 8, 20, 21, 22, 23, 24, 25) // 6 assigned, min 2: priority 4/6
	free := []*api.NodeView{freeNode(30), freeNode(31)}
	sink := eventlog.NewMemorySink()

	AverageAnchored{}.Plan([]*api.JobView{jobA, jobB}, &free, sink, 0)

	assert.Len(t, jobA.AssignedNodes, 4) // lowest priority, grows first
	assert.Len(t, jobB.AssignedNodes, 6) // untouched
	assert.Empty(t, free)
}

func TestAverageAnchoredStopsWhenAllJobsAtMax(t *testing.T) {
	jobA := malleable(1, 2, 2, 2, 10, 11) // already at max
	free := []*api.NodeView{freeNode(30)}
	sink := eventlog.NewMemorySink()

	AverageAnchored{}.Plan([]*api.JobView{jobA}, &free, sink, 0)

	assert.Len(t, jobA.AssignedNodes, 2)
	assert.Len(t, free, 1)
	assert.Empty(t, sink.Events())
}
