package heap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/format"
)

// newTestHeap creates a heap over an in-memory arena. limit caps the arena
// in bytes (0 = unbounded), which makes exhaustion reproducible.
func newTestHeap(t testing.TB, limit int) *Heap {
	t.Helper()
	h, err := New(arena.NewBuffer(limit), nil)
	require.NoError(t, err)
	return h
}

// mustAlloc allocates and fails the test on any error or zero ref.
func mustAlloc(t testing.TB, h *Heap, size int) (Ref, []byte) {
	t.Helper()
	ref, payload, err := h.Alloc(size)
	require.NoError(t, err)
	require.NotZero(t, ref)
	require.GreaterOrEqual(t, len(payload), size)
	return ref, payload
}

// requireInvariants runs the full invariant walk over the heap image.
func requireInvariants(t testing.TB, h *Heap) {
	t.Helper()
	require.NoError(t, verify.AllInvariants(h.Bytes(), h.FreeRoot()))
}

// blockSizeAt reads the total block size behind a ref.
func blockSizeAt(t testing.TB, h *Heap, ref Ref) int {
	t.Helper()
	size, _ := format.ReadTag(h.Bytes(), format.BlockOff(int(ref)))
	return size
}
