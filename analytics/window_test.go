package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWindow_RejectsNonPositiveCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1, -50} {
		w, err := NewWindow(capacity)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Nil(t, w)
	}
}

func TestWindow_Empty(t *testing.T) {
	w, err := NewWindow(4)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(w.Average()), "average of an empty window is NaN")
	assert.Zero(t, w.Oldest())
	assert.Zero(t, w.Newest())
	assert.Zero(t, w.Sum())
	assert.Zero(t, w.Fill())
	assert.Equal(t, 4, w.Capacity())
	assert.Empty(t, w.Snapshot())
}

func TestWindow_CapacityThreeSequence(t *testing.T) {
	w, err := NewWindow(3)
	require.NoError(t, err)

	expected := map[int64][]int64{
		1: {1},
		2: {1, 2},
		3: {1, 2, 3},
		4: {2, 3, 4},
		5: {3, 4, 5},
		6: {4, 5, 6},
		7: {5, 6, 7},
		8: {6, 7, 8},
	}

	for v := int64(1); v <= 8; v++ {
		w.Add(v)
		snap := w.Snapshot()
		assert.Equal(t, expected[v], snap, "after adding %d", v)
		assert.Equal(t, snap[0], w.Oldest(), "after adding %d", v)
		assert.Equal(t, v, w.Newest())
	}

	assert.Equal(t, int64(21), w.Sum())
	assert.Equal(t, 3, w.Fill())
	assert.InDelta(t, 7.0, w.Average(), 1e-9)
}

func TestWindow_SumTracksLastSamples(t *testing.T) {
	samples := []int64{5, -3, 12, 0, 7, 7, -20, 100, 4, 9, -1, 33}

	for capacity := 1; capacity <= len(samples)+2; capacity++ {
		w, err := NewWindow(capacity)
		require.NoError(t, err)

		prevFill := 0
		for i, s := range samples {
			w.Add(s)

			start := max(0, i+1-capacity)
			var want int64
			for _, v := range samples[start : i+1] {
				want += v
			}

			require.Equal(t, want, w.Sum(), "capacity=%d after %d samples", capacity, i+1)
			require.LessOrEqual(t, w.Fill(), capacity)
			require.GreaterOrEqual(t, w.Fill(), prevFill)
			require.Len(t, w.Snapshot(), w.Fill())
			require.Equal(t, samples[start:i+1], w.Snapshot())
			require.InDelta(t, float64(w.Sum())/float64(w.Fill()), w.Average(), 1e-9)
			prevFill = w.Fill()
		}
	}
}

func TestWindow_OldestIsNextEvicted(t *testing.T) {
	w, err := NewWindow(2)
	require.NoError(t, err)

	w.Add(10)
	w.Add(20)
	assert.Equal(t, int64(10), w.Oldest())

	w.Add(30)
	assert.Equal(t, int64(20), w.Oldest())
	assert.Equal(t, int64(50), w.Sum())
}

func TestWindow_SnapshotIsCopy(t *testing.T) {
	w, err := NewWindow(2)
	require.NoError(t, err)
	w.Add(1)
	w.Add(2)

	snap := w.Snapshot()
	snap[0] = 99

	assert.Equal(t, []int64{1, 2}, w.Snapshot())
}
