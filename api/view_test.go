// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpgradeImputesPreferredNodeCountForNonRigid(t *testing.T) {
	jobs := []*Job{
		{ID: 1, Type: JobTypeMalleable, NumNodesMin: 2, NumNodesMax: 8, Arguments: map[string]any{}},
	}
	views, _, err := Upgrade(jobs, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, views[0].NumNodesPref)
}

func TestUpgradeHonorsHostSuppliedPreferredNodeCount(t *testing.T) {
	jobs := []*Job{
		{ID: 1, Type: JobTypeMoldable, NumNodesMin: 2, NumNodesMax: 8,
			Arguments: map[string]any{"num_nodes_pref": 3}},
	}
	views, _, err := Upgrade(jobs, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, views[0].NumNodesPref)
}

func TestUpgradeRigidJobCollapsesBoundsToPrefWithoutMutatingHost(t *testing.T) {
	// The host supplies a min that differs from max (a caller not yet aware of the
	// rigid-job convention); Upgrade must resolve the view's bounds to max without
	// writing that normalization back onto the host-owned record.
	jobs := []*Job{{ID: 1, Type: JobTypeRigid, NumNodesMin: 1, NumNodesMax: 6}}
	views, _, err := Upgrade(jobs, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, views[0].NumNodesPref)
	assert.Equal(t, 6, views[0].NumNodesMin)
	assert.Equal(t, 1, jobs[0].NumNodesMin, "Upgrade must not mutate the host record's NumNodesMin")
}

func TestUpgradeRejectsViolatedBoundInvariant(t *testing.T) {
	jobs := []*Job{
		{ID: 1, Type: JobTypeMoldable, NumNodesMin: 4, NumNodesMax: 8,
			Arguments: map[string]any{"num_nodes_pref": 2}},
	}
	_, _, err := Upgrade(jobs, nil)
	assert.Error(t, err)
}

func TestEstimatedRuntimeMemoizesOnFirstRead(t *testing.T) {
	job := &Job{ID: 1, Type: JobTypeMoldable, NumNodesMin: 2, NumNodesMax: 2,
		Arguments: map[string]any{"flops": 100.0, "iterations": 2.0}}
	views, _, err := Upgrade([]*Job{job}, nil)
	require.NoError(t, err)
	view := views[0]

	got := view.EstimatedRuntime()
	assert.InDelta(t, 100.0, got, 1e-9)

	job.Arguments["flops"] = 999.0 // mutating the host map after Upgrade must not change the memoized value
	assert.InDelta(t, 100.0, view.EstimatedRuntime(), 1e-9)
}

func TestEstimatedRuntimeUsesHostCachedValueWhenPresent(t *testing.T) {
	job := &Job{ID: 1, Type: JobTypeMoldable, NumNodesMin: 2, NumNodesMax: 2,
		Arguments: map[string]any{"runtime": 42.0, "flops": 100.0}}
	views, _, err := Upgrade([]*Job{job}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 42.0, views[0].EstimatedRuntime(), 1e-9)
}
