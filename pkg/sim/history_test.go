package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistoryTrimsInBatches(t *testing.T) {
	h := NewHistory[int](10, 4)
	for i := 0; i < 14; i++ {
		h.Append(i)
	}
	require.Equal(t, 14, h.Len(), "no trim before exceeding max+batch")

	h.Append(14)
	require.Equal(t, 10, h.Len())
	require.Equal(t, []int{5, 6, 7, 8, 9, 10, 11, 12, 13, 14}, h.Items())
}

func TestHistoryNeverExceedsMaxPlusBatch(t *testing.T) {
	const limit, batch = 50, 7
	h := NewHistory[int](limit, batch)
	for i := 0; i < 1000; i++ {
		h.Append(i)
		require.LessOrEqual(t, h.Len(), limit+batch)
		items := h.Items()
		for n := 1; n < len(items); n++ {
			require.Equal(t, items[n-1]+1, items[n], "order preserved")
		}
		last, ok := h.Last()
		require.True(t, ok)
		require.Equal(t, i, last)
	}
}

func TestHistoryUnbounded(t *testing.T) {
	h := NewHistory[int](0, 10)
	for i := 0; i < 100; i++ {
		h.Append(i)
	}
	require.Equal(t, 100, h.Len())
}

func TestHistoryResetAndSnapshot(t *testing.T) {
	h := NewHistory[Pos2D](5, 1)
	h.Append(Pos2D{X: 1}, Pos2D{X: 2})
	snap := h.Snapshot()
	h.Reset(Pos2D{X: 9})
	require.Equal(t, []Pos2D{{X: 9}}, h.Items())
	require.Equal(t, []Pos2D{{X: 1}, {X: 2}}, snap)

	h.Reset()
	_, ok := h.Last()
	require.False(t, ok)
	require.Zero(t, h.Len())
}
