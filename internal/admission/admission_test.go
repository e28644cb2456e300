// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package admission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagomu-sim/elastisim-scheduler/api"
	"github.com/wagomu-sim/elastisim-scheduler/internal/eventlog"
)

func newJob(id int, min, max int, flops float64) *api.Job {
	return &api.Job{
		ID:          id,
		Type:        api.JobTypeMoldable,
		State:       api.JobStatePending,
		NumNodesMin: min,
		NumNodesMax: max,
		Arguments:   map[string]any{"flops": flops, "iterations": 1.0},
	}
}

func newJobWithRuntime(id int, min, max int, runtime float64) *api.Job {
	return &api.Job{
		ID:          id,
		Type:        api.JobTypeMoldable,
		State:       api.JobStatePending,
		NumNodesMin: min,
		NumNodesMax: max,
		Arguments:   map[string]any{"runtime": runtime},
	}
}

func newFreeNodes(ids ...int) []*api.NodeView {
	views := make([]*api.NodeView, len(ids))
	for i, id := range ids {
		views[i] = &api.NodeView{Node: &api.Node{ID: id, State: api.NodeStateFree}}
	}
	return views
}

func upgradeJobs(t *testing.T, jobs []*api.Job) []*api.JobView {
	t.Helper()
	views, _, err := api.Upgrade(jobs, nil)
	require.NoError(t, err)
	return views
}

func TestAdmitFCFSStartsFittingJobs(t *testing.T) {
	j1 := newJob(1, 2, 2, 200.0)
	pending := upgradeJobs(t, []*api.Job{j1})
	free := newFreeNodes(1, 2, 3, 4)
	sink := eventlog.NewMemorySink()

	Admit(&pending, nil, &free, 0, MinTarget, true, sink)

	assert.Empty(t, pending)
	assert.Len(t, free, 2)
	assert.Equal(t, api.JobStateRunning, j1.State)
	assert.Len(t, j1.AssignedNodes, 2)
	require.Len(t, sink.Events(), 1)
	assert.Equal(t, eventlog.Start, sink.Events()[0].Kind)
}

func TestAdmitSkipsJobThatDoesNotFit(t *testing.T) {
	j1 := newJob(1, 8, 8, 100.0)
	pending := upgradeJobs(t, []*api.Job{j1})
	free := newFreeNodes(1, 2)
	sink := eventlog.NewMemorySink()

	Admit(&pending, nil, &free, 0, MinTarget, true, sink)

	assert.Len(t, pending, 1)
	assert.Len(t, free, 2)
	assert.Empty(t, sink.Events())
}

func TestAdmitBackfillsBehindHeadWhenHeadUnaffected(t *testing.T) {
	head := newJob(1, 8, 8, 800.0) // needs 8 nodes, none free: stays pending
	j2 := newJob(2, 2, 2, 200.0)
	pending := upgradeJobs(t, []*api.Job{head, j2})
	free := newFreeNodes(1, 2)
	sink := eventlog.NewMemorySink()

	// No running jobs to project against, so head's node deficit can never be
	// shown to clear before head's own runtime horizon: backfilling is allowed.
	Admit(&pending, nil, &free, 0, MinTarget, true, sink)

	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].ID)
	assert.Empty(t, free)
	assert.Equal(t, api.JobStateRunning, j2.State)
}

func TestAdmitEASYBlocksBackfillWhenHeadRuntimeIsShort(t *testing.T) {
	head := newJobWithRuntime(1, 8, 8, 5.0) // short runtime: no cushion against the projection
	j2 := newJob(2, 2, 2, 1.0)
	pending := upgradeJobs(t, []*api.Job{head, j2})
	free := newFreeNodes(1, 2) // only 2 free, head needs 8: deficit of 6

	running := newJobWithRuntime(3, 8, 8, 50.0)
	running.AssignedNodes = []*api.Node{{ID: 100}, {ID: 101}, {ID: 102}, {ID: 103}, {ID: 104}, {ID: 105}, {ID: 106}, {ID: 107}}
	running.StartTime = 0
	runningViews := upgradeJobs(t, []*api.Job{running})

	sink := eventlog.NewMemorySink()
	Admit(&pending, runningViews, &free, 0, MinTarget, true, sink)

	// The running job's 8 nodes cover head's deficit of 6 at its projected finish
	// time (t=50), which has already caught up to head's own short runtime
	// horizon (5): backfilling j2 now would delay head, so it stays pending.
	assert.Equal(t, api.JobStatePending, j2.State)
	assert.Empty(t, sink.Events())
}

func TestAdmitEASYAllowsBackfillWhenHeadRuntimeIsLong(t *testing.T) {
	head := newJobWithRuntime(1, 8, 8, 5000.0) // long runtime: comfortable cushion
	j2 := newJob(2, 2, 2, 1.0)
	pending := upgradeJobs(t, []*api.Job{head, j2})
	free := newFreeNodes(1, 2)

	running := newJobWithRuntime(3, 8, 8, 50.0)
	running.AssignedNodes = []*api.Node{{ID: 100}, {ID: 101}, {ID: 102}, {ID: 103}, {ID: 104}, {ID: 105}, {ID: 106}, {ID: 107}}
	running.StartTime = 0
	runningViews := upgradeJobs(t, []*api.Job{running})

	sink := eventlog.NewMemorySink()
	Admit(&pending, runningViews, &free, 0, MinTarget, true, sink)

	// Head's projected finish time (t=50) still precedes its own long estimated
	// runtime horizon (5000), so backfilling j2 is safe.
	assert.Equal(t, api.JobStateRunning, j2.State)
}

func TestAdmitWithoutEASYIgnoresHeadProtection(t *testing.T) {
	head := newJob(1, 8, 8, 1.0)
	j2 := newJob(2, 2, 2, 200.0)
	pending := upgradeJobs(t, []*api.Job{head, j2})
	free := newFreeNodes(1, 2)
	sink := eventlog.NewMemorySink()

	Admit(&pending, nil, &free, 0, MinTarget, false, sink)

	assert.Equal(t, api.JobStateRunning, j2.State)
}

func TestPrefTargetCapsAtFreeCount(t *testing.T) {
	job := upgradeJobs(t, []*api.Job{newJob(1, 2, 8, 100.0)})[0]
	job.NumNodesPref = 6
	assert.Equal(t, 3, PrefTarget(job, 3))
	assert.Equal(t, 6, PrefTarget(job, 10))
}

func TestMinTargetAlwaysReturnsMinimum(t *testing.T) {
	job := upgradeJobs(t, []*api.Job{newJob(1, 3, 8, 100.0)})[0]
	assert.Equal(t, 3, MinTarget(job, 100))
}
