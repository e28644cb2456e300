// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package factory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schederrors "github.com/wagomu-sim/elastisim-scheduler/pkg/errors"
	"github.com/wagomu-sim/elastisim-scheduler/pkg/logging"
)

func TestBuildVariantResolvesRegisteredName(t *testing.T) {
	variant, err := BuildVariant("min_common_pool")
	require.NoError(t, err)
	assert.Equal(t, "min_common_pool", variant.Name)
	assert.NotNil(t, variant.Shrink)
	assert.NotNil(t, variant.Expand)
	assert.NotNil(t, variant.Resolve)
}

func TestBuildVariantRejectsUnknownName(t *testing.T) {
	_, err := BuildVariant("does_not_exist")
	require.Error(t, err)
	assert.Equal(t, schederrors.CodeUnknownVariant, schederrors.GetCode(err))
}

func TestVariantNamesListsAllRegisteredSorted(t *testing.T) {
	names := VariantNames()
	assert.Equal(t, []string{
		"average_steal_agreement",
		"min_common_pool",
		"pref_common_pool",
		"rigid_easy_backfill",
		"rigid_shortest_job_first",
	}, names)
}

func TestNewDriverBuildsRunnableDriverForRegisteredVariant(t *testing.T) {
	d, err := NewDriver("rigid_easy_backfill")
	require.NoError(t, err)
	assert.Equal(t, "rigid_easy_backfill", d.Variant().Name)
}

func TestNewDriverRejectsUnknownVariant(t *testing.T) {
	_, err := NewDriver("nope")
	assert.Error(t, err)
}

func TestDefaultOptionsBuildsOptionsFromCSVSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.csv")
	opts, err := DefaultOptions(path, logging.NoOpLogger{})
	require.NoError(t, err)
	assert.Len(t, opts, 4)
}
