package heap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/internal/format"
)

func TestNew_InitialLayout(t *testing.T) {
	h := newTestHeap(t, 0)

	// 64KB chunk: prologue + one spanning free block + epilogue.
	data := h.Bytes()
	require.Len(t, data, format.DefaultChunkSize)

	size, allocated := format.ReadTag(data, 0)
	require.Equal(t, format.PrologueSize, size)
	require.True(t, allocated)

	size, allocated = format.ReadTag(data, format.PrologueSize)
	require.Equal(t, format.DefaultChunkSize-format.PrologueSize-format.EpilogueSize, size)
	require.False(t, allocated)
	require.Equal(t, format.PrologueSize, h.FreeRoot())

	size, allocated = format.ReadTag(data, len(data)-format.EpilogueSize)
	require.Zero(t, size)
	require.True(t, allocated)

	requireInvariants(t, h)
}

func TestNew_ArenaMustBeEmpty(t *testing.T) {
	a := arena.NewBuffer(0)
	require.NoError(t, a.Extend(64))
	_, err := New(a, nil)
	require.Error(t, err)
}

func TestNew_InitialChunkFailure(t *testing.T) {
	_, err := New(arena.NewBuffer(1024), nil)
	require.ErrorIs(t, err, ErrOutOfMemory)
}

func TestNew_ChunkTooSmall(t *testing.T) {
	_, err := New(arena.NewBuffer(0), &Config{ChunkSize: 16})
	require.Error(t, err)
}

func TestAlloc_SplitsFirstBlock(t *testing.T) {
	h := newTestHeap(t, 0)
	initial := format.DefaultChunkSize - format.PrologueSize - format.EpilogueSize

	// 16 requested + 16 overhead = 32 total, exactly the minimum block.
	ref, payload := mustAlloc(t, h, 16)
	require.Equal(t, Ref(16), ref) // payload of the block at offset 8
	require.Equal(t, 32, blockSizeAt(t, h, ref))
	require.Len(t, payload, 16)

	// Remainder keeps the rest.
	rem, allocated := format.ReadTag(h.Bytes(), 8+32)
	require.False(t, allocated)
	require.Equal(t, initial-32, rem)

	requireInvariants(t, h)
}

func TestAlloc_ZeroSizeIsNoop(t *testing.T) {
	h := newTestHeap(t, 0)
	before := h.Stats()

	ref, payload, err := h.Alloc(0)
	require.NoError(t, err)
	require.Zero(t, ref)
	require.Nil(t, payload)
	require.Equal(t, before.GrowCalls, h.Stats().GrowCalls)
	requireInvariants(t, h)
}

func TestAlloc_RejectsBadSizes(t *testing.T) {
	h := newTestHeap(t, 0)

	_, _, err := h.Alloc(-1)
	require.ErrorIs(t, err, ErrBadSize)

	_, _, err = h.Alloc(format.MaxBlockSize)
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestAlloc_Alignment(t *testing.T) {
	h := newTestHeap(t, 0)
	for _, size := range []int{1, 3, 8, 13, 100, 4096} {
		ref, _ := mustAlloc(t, h, size)
		require.Zero(t, int(ref)%8, "Alloc(%d) returned unaligned ref %d", size, ref)
	}
	requireInvariants(t, h)
}

func TestAlloc_MinimumBlockFloor(t *testing.T) {
	h := newTestHeap(t, 0)

	// A 1-byte request still produces a block able to host linkage.
	ref, _ := mustAlloc(t, h, 1)
	require.Equal(t, format.MinBlockSize, blockSizeAt(t, h, ref))
}

func TestAlloc_ReusesFreedBlock(t *testing.T) {
	h := newTestHeap(t, 0)

	_, _ = mustAlloc(t, h, 16)
	refB, _ := mustAlloc(t, h, 16)
	_, _ = mustAlloc(t, h, 16)

	require.NoError(t, h.Free(refB))

	// First fit finds B's hole before the unallocated tail.
	refB2, _ := mustAlloc(t, h, 16)
	require.Equal(t, refB, refB2)
	requireInvariants(t, h)
}

func TestAlloc_GrowsWhenNoFit(t *testing.T) {
	h := newTestHeap(t, 0)

	// Larger than everything the initial chunk can hold.
	ref, payload := mustAlloc(t, h, format.DefaultChunkSize)
	require.Len(t, payload, blockSizeAt(t, h, ref)-format.Overhead)
	require.Equal(t, 1, h.Stats().GrowCalls)
	require.Greater(t, len(h.Bytes()), format.DefaultChunkSize)
	requireInvariants(t, h)
}

func TestAlloc_GrowthFailureLeavesHeapUnchanged(t *testing.T) {
	h := newTestHeap(t, format.DefaultChunkSize) // arena cannot grow
	_, _ = mustAlloc(t, h, 64)

	snapshot := bytes.Clone(h.Bytes())
	root := h.FreeRoot()

	_, _, err := h.Alloc(format.DefaultChunkSize)
	require.ErrorIs(t, err, ErrOutOfMemory)

	require.Equal(t, snapshot, h.Bytes())
	require.Equal(t, root, h.FreeRoot())
	require.Zero(t, h.Stats().GrowCalls)
	requireInvariants(t, h)
}

func TestAlloc_PayloadsDoNotOverlap(t *testing.T) {
	h := newTestHeap(t, 0)

	sizes := []int{1, 16, 24, 100, 512, 8, 2048, 40, 7}
	refs := make([]Ref, len(sizes))
	for i, size := range sizes {
		ref, payload := mustAlloc(t, h, size)
		refs[i] = ref
		for j := range payload {
			payload[j] = byte(i + 1)
		}
	}

	// Every payload still carries its own pattern.
	data := h.Bytes()
	for i, ref := range refs {
		for j := 0; j < sizes[i]; j++ {
			require.Equal(t, byte(i+1), data[int(ref)+j],
				"payload %d corrupted at byte %d", i, j)
		}
	}

	// And the block ranges are pairwise disjoint.
	type span struct{ lo, hi int }
	spans := make([]span, len(refs))
	for i, ref := range refs {
		b := format.BlockOff(int(ref))
		spans[i] = span{b, b + blockSizeAt(t, h, ref)}
	}
	for i := range spans {
		for j := i + 1; j < len(spans); j++ {
			overlap := spans[i].lo < spans[j].hi && spans[j].lo < spans[i].hi
			require.False(t, overlap, "blocks %d and %d overlap", i, j)
		}
	}
	requireInvariants(t, h)
}

func TestFree_BadRefs(t *testing.T) {
	h := newTestHeap(t, 0)
	ref, _ := mustAlloc(t, h, 32)

	require.ErrorIs(t, h.Free(0), ErrBadRef)
	require.ErrorIs(t, h.Free(ref+4), ErrBadRef)             // misaligned
	require.ErrorIs(t, h.Free(Ref(1<<30)), ErrBadRef)        // out of bounds
	require.ErrorIs(t, h.Free(Ref(format.PrologueSize)), ErrBadRef) // prologue payload

	require.NoError(t, h.Free(ref))
	require.ErrorIs(t, h.Free(ref), ErrBadRef) // double free detected via flag
	requireInvariants(t, h)
}

func TestRealloc_GrowPreservesData(t *testing.T) {
	h := newTestHeap(t, 0)

	ref, payload := mustAlloc(t, h, 32)
	copy(payload, "the quick brown fox jumps over!!")

	newRef, newPayload, err := h.Realloc(ref, 512)
	require.NoError(t, err)
	require.NotEqual(t, ref, newRef)
	require.Equal(t, "the quick brown fox jumps over!!", string(newPayload[:32]))

	// Old block was freed.
	require.ErrorIs(t, h.Free(ref), ErrBadRef)
	requireInvariants(t, h)
}

func TestRealloc_ShrinkTruncatesCopy(t *testing.T) {
	h := newTestHeap(t, 0)

	ref, payload := mustAlloc(t, h, 64)
	for i := range payload {
		payload[i] = byte(i)
	}

	_, newPayload, err := h.Realloc(ref, 8)
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		require.Equal(t, byte(i), newPayload[i])
	}
	requireInvariants(t, h)
}

func TestRealloc_ZeroRefAllocates(t *testing.T) {
	h := newTestHeap(t, 0)

	ref, payload, err := h.Realloc(0, 40)
	require.NoError(t, err)
	require.NotZero(t, ref)
	require.GreaterOrEqual(t, len(payload), 40)
}

func TestRealloc_ZeroSizeFrees(t *testing.T) {
	h := newTestHeap(t, 0)
	ref, _ := mustAlloc(t, h, 40)

	newRef, payload, err := h.Realloc(ref, 0)
	require.NoError(t, err)
	require.Zero(t, newRef)
	require.Nil(t, payload)
	require.ErrorIs(t, h.Free(ref), ErrBadRef)
	requireInvariants(t, h)
}

func TestRealloc_FailurePropagatesAndKeepsOldBlock(t *testing.T) {
	h := newTestHeap(t, format.DefaultChunkSize)

	ref, payload := mustAlloc(t, h, 32)
	copy(payload, "survives a failed reallocation!!")

	_, _, err := h.Realloc(ref, format.DefaultChunkSize)
	require.ErrorIs(t, err, ErrOutOfMemory)

	// The old block is still live and intact.
	data := h.Bytes()
	require.Equal(t, "survives a failed reallocation!!", string(data[int(ref):int(ref)+32]))
	require.NoError(t, h.Free(ref))
	requireInvariants(t, h)
}

func TestRealloc_BadRef(t *testing.T) {
	h := newTestHeap(t, 0)
	_, _, err := h.Realloc(Ref(12), 64)
	require.ErrorIs(t, err, ErrBadRef)
}

func TestStats_Counters(t *testing.T) {
	h := newTestHeap(t, 0)

	ref, _ := mustAlloc(t, h, 16)
	require.NoError(t, h.Free(ref))

	s := h.Stats()
	require.Equal(t, 1, s.AllocCalls)
	require.Equal(t, 1, s.FreeCalls)
	require.Equal(t, 1, s.SplitCount)
	require.Equal(t, int64(32), s.BytesAllocated)
	require.Equal(t, int64(32), s.BytesFreed)
}
