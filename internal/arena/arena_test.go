package arena_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wanderber/wanderber/internal/arena"
)

func TestAcquireReleaseChurnBound(t *testing.T) {
	const itemsPerBlob = 8
	const cycles = 500

	h := arena.New[int](itemsPerBlob)

	for i := 0; i < cycles; i++ {
		slots := make([]arena.Slot[int], 0, itemsPerBlob)
		for j := 0; j < itemsPerBlob; j++ {
			s, err := h.Acquire()
			require.NoError(t, err)
			*s.Value = j
			slots = append(slots, s)
		}

		for _, s := range slots {
			h.Release(s)
		}
	}

	maxBlobs := cycles + 20
	require.LessOrEqual(t, h.BlobCount(), maxBlobs)
}

func TestAcquireReusesFullyReleasedCurrentBlobInPlace(t *testing.T) {
	h := arena.New[int](4)

	var acquired []arena.Slot[int]
	for i := 0; i < 4; i++ {
		s, err := h.Acquire()
		require.NoError(t, err)
		acquired = append(acquired, s)
	}

	for _, s := range acquired {
		h.Release(s)
	}

	require.Equal(t, 1, h.BlobCount())

	s, err := h.Acquire()
	require.NoError(t, err)
	require.Zero(t, *s.Value)
	require.Equal(t, 1, h.BlobCount())
}

func TestDestroyRejectsFurtherUse(t *testing.T) {
	h := arena.New[int](4)
	h.Destroy()

	_, err := h.Acquire()
	require.Error(t, err)
}
