package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/explore-sim/explore-sim/explore"
)

func testDescriptor(t *testing.T) Descriptor {
	t.Helper()
	x0, err := explore.NewVaryingParameter("x0", 0.0, 15.0)
	require.NoError(t, err)
	x1, err := explore.NewVaryingParameter("x1", 0.0, 15.0)
	require.NoError(t, err)
	return Descriptor{
		VaryingParameters: []explore.VaryingParameter{x0, x1},
		Objectives:        []explore.Objective{{Name: "f", Minimize: true}},
	}
}

func openFresh(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(dir, testDescriptor(t), false)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, dir
}

func dispatchedTrial(idx int, worker int) *explore.Trial {
	return &explore.Trial{
		Index:          idx,
		Values:         map[string]float64{"x0": float64(idx), "x1": 1.0},
		Status:         explore.StatusDispatched,
		Worker:         worker,
		GenStartedTime: time.Now().Add(-time.Second),
		SimStartedTime: time.Now(),
	}
}

func TestStore_AppendAndLoad_RoundTrip(t *testing.T) {
	store, _ := openFresh(t)

	trial := dispatchedTrial(0, 1)
	require.NoError(t, store.Append(trial))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, trial.Index, got.Index)
	assert.Equal(t, trial.Status, got.Status)
	assert.Equal(t, trial.Worker, got.Worker)
	if diff := cmp.Diff(trial.Values, got.Values); diff != "" {
		t.Errorf("values round-trip mismatch (-want +got):\n%s", diff)
	}
	// Microsecond storage granularity.
	assert.WithinDuration(t, trial.SimStartedTime, got.SimStartedTime, time.Millisecond)
}

func TestStore_Append_DuplicateIndexRejected(t *testing.T) {
	store, _ := openFresh(t)
	require.NoError(t, store.Append(dispatchedTrial(0, 1)))
	assert.Error(t, store.Append(dispatchedTrial(0, 2)))
}

func TestStore_Update_InFlightRow(t *testing.T) {
	store, _ := openFresh(t)
	trial := dispatchedTrial(0, 1)
	require.NoError(t, store.Append(trial))

	trial.Status = explore.StatusCompleted
	trial.SimEndedTime = time.Now()
	trial.Objectives = map[string]float64{"f": 42.0}
	require.NoError(t, store.Update(trial))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, explore.StatusCompleted, loaded[0].Status)
	assert.Equal(t, 42.0, loaded[0].Objectives["f"])
}

func TestStore_Update_TerminalRowImmutable(t *testing.T) {
	store, _ := openFresh(t)
	trial := dispatchedTrial(0, 1)
	trial.Status = explore.StatusCompleted
	trial.Objectives = map[string]float64{"f": 1.0}
	require.NoError(t, store.Append(trial))

	trial.Objectives["f"] = 2.0
	err := store.Update(trial)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "immutable")
}

func TestStore_Update_UnknownTrial(t *testing.T) {
	store, _ := openFresh(t)
	err := store.Update(dispatchedTrial(7, 1))
	assert.Error(t, err)
}

func TestStore_Load_CommitOrderNotIndexOrder(t *testing.T) {
	// GIVEN trials committed out of submission order (1 finished before 0)
	store, _ := openFresh(t)
	t0, t1 := dispatchedTrial(0, 1), dispatchedTrial(1, 2)
	require.NoError(t, store.Append(t0))
	require.NoError(t, store.Append(t1))

	t1.Status = explore.StatusCompleted
	t1.Objectives = map[string]float64{"f": 1.0}
	require.NoError(t, store.Update(t1))

	t0.Status = explore.StatusCompleted
	t0.Objectives = map[string]float64{"f": 0.0}
	require.NoError(t, store.Update(t0))

	// WHEN the store is replayed
	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// THEN commit order is preserved: trial 1 first
	assert.Equal(t, 1, loaded[0].Index)
	assert.Equal(t, 0, loaded[1].Index)
}

func TestStore_Load_InFlightRowsAfterCommitted(t *testing.T) {
	store, _ := openFresh(t)
	running := dispatchedTrial(0, 1)
	require.NoError(t, store.Append(running))

	done := dispatchedTrial(1, 2)
	done.Status = explore.StatusCompleted
	done.Objectives = map[string]float64{"f": 1.0}
	require.NoError(t, store.Append(done))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, 1, loaded[0].Index, "committed row replays first")
	assert.Equal(t, 0, loaded[1].Index, "in-flight row replays last")
}

func TestStore_MaxIndex(t *testing.T) {
	store, _ := openFresh(t)

	idx, err := store.MaxIndex()
	require.NoError(t, err)
	assert.Equal(t, -1, idx, "empty store")

	require.NoError(t, store.Append(dispatchedTrial(4, 1)))
	idx, err = store.MaxIndex()
	require.NoError(t, err)
	assert.Equal(t, 4, idx)
}

func TestOpen_ExistingStoreWithoutResumeRefused(t *testing.T) {
	store, dir := openFresh(t)
	require.NoError(t, store.Append(dispatchedTrial(0, 1)))
	require.NoError(t, store.Close())

	_, err := Open(dir, testDescriptor(t), false)
	assert.Error(t, err)
}

func TestOpen_ResumeWithoutSidecarFails(t *testing.T) {
	_, err := Open(t.TempDir(), testDescriptor(t), true)
	var mismatch *explore.ResumeMismatchError
	assert.True(t, errors.As(err, &mismatch), "got %v", err)
}

func TestOpen_DescriptorMismatchFails(t *testing.T) {
	_, dir := openFresh(t)

	other := testDescriptor(t)
	other.Objectives = []explore.Objective{{Name: "g", Minimize: false}}
	_, err := Open(dir, other, true)
	var mismatch *explore.ResumeMismatchError
	assert.True(t, errors.As(err, &mismatch), "got %v", err)
}

func TestDescriptor_SidecarRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, sidecarFile)
	desc := testDescriptor(t)
	desc.Tasks = []explore.Task{{Name: "lofi", NInit: 10, NOpt: 3}}

	require.NoError(t, WriteDescriptor(path, desc))
	got, err := ReadDescriptor(path)
	require.NoError(t, err)

	if diff := cmp.Diff(desc, got); diff != "" {
		t.Errorf("descriptor round-trip mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, desc.Matches(got))
}
