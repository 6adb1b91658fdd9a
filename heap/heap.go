package heap

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Runtime debug flag for allocation logging - controlled by HEAP_LOG env var.
var logHeap = os.Getenv("HEAP_LOG") != ""

// Ref names an allocated block by its payload offset within the arena.
// The zero Ref is never a valid allocation.
type Ref = uint32

// Heap is a boundary-tag allocator over a single arena. Not thread-safe;
// the heap has exactly one logical owner at a time.
type Heap struct {
	arena arena.Arena
	root  int // free-list root block offset, 0 when the list is empty
	chunk int
	sink  io.Writer
	stats Stats
}

// minChunk is the smallest initial region that can hold both sentinels and
// one minimum free block.
const minChunk = format.PrologueSize + format.MinBlockSize + format.EpilogueSize

// New initializes a heap over an empty arena: one chunk is requested and
// laid out as prologue, a single free block spanning the remainder, and the
// epilogue. Returns ErrOutOfMemory when the arena cannot provide the
// initial chunk. config may be nil for defaults.
func New(a arena.Arena, config *Config) (*Heap, error) {
	if config == nil {
		config = &DefaultConfig
	}

	chunk := config.ChunkSize
	if chunk <= 0 {
		chunk = format.DefaultChunkSize
	}
	chunk = format.Align8(chunk)
	if chunk < minChunk {
		return nil, fmt.Errorf("heap: chunk size %d below minimum %d", chunk, minChunk)
	}

	sink := config.CheckSink
	if sink == nil {
		sink = os.Stdout
	}

	if a.Size() != 0 {
		return nil, fmt.Errorf("heap: arena not empty (%d bytes)", a.Size())
	}
	if err := a.Extend(chunk); err != nil {
		if errors.Is(err, arena.ErrExhausted) {
			return nil, ErrOutOfMemory
		}
		return nil, err
	}

	h := &Heap{
		arena: a,
		chunk: chunk,
		sink:  sink,
	}

	data := a.Bytes()

	// Prologue: header-only, permanently allocated. Its single word
	// doubles as the footer the first real block reads during backward
	// coalescing.
	format.PutTag(data, 0, format.PrologueSize, true)

	// One free block spanning everything between the sentinels.
	free := format.PrologueSize
	freeSize := chunk - format.PrologueSize - format.EpilogueSize
	format.PutTag(data, free, freeSize, false)
	format.PutTag(data, format.FooterOff(free, freeSize), freeSize, false)
	h.insertHead(free)

	// Epilogue: allocated, recorded size zero, the heap-walk terminator.
	format.PutTag(data, chunk-format.EpilogueSize, 0, true)

	return h, nil
}

// Alloc allocates a block with at least size usable bytes and returns its
// reference and payload slice. The payload is 8-byte aligned and not
// zeroed. size 0 is a no-op returning the zero Ref with no error. Returns
// ErrOutOfMemory when no free block fits and the arena cannot grow; the
// heap is unchanged in that case.
func (h *Heap) Alloc(size int) (Ref, []byte, error) {
	h.stats.AllocCalls++

	if size == 0 {
		return 0, nil, nil
	}
	if size < 0 {
		return 0, nil, ErrBadSize
	}
	if size > format.MaxBlockSize-format.Overhead {
		return 0, nil, ErrTooLarge
	}

	// Adjust: add tag overhead, round to the alignment granularity, raise
	// to the floor that guarantees the block can host linkage when freed.
	asize := format.Align8(size + format.Overhead)
	if asize < format.MinBlockSize {
		asize = format.MinBlockSize
	}

	b := h.findFit(asize)
	if b == 0 {
		if logHeap {
			fmt.Fprintf(os.Stderr, "[HEAP] no fit for %d bytes (adjusted %d), growing\n", size, asize)
		}
		grown, err := h.grow(asize)
		if err != nil {
			return 0, nil, err
		}
		b = grown
	}

	blockSize := h.place(b, asize)
	h.stats.BytesAllocated += int64(blockSize)

	data := h.arena.Bytes()
	payload := data[format.PayloadOff(b):format.FooterOff(b, blockSize)]
	return Ref(format.PayloadOff(b)), payload, nil
}

// Free releases the block named by ref. The reference must come from Alloc
// or Realloc and must not have been freed already; a cheap bounds, flag,
// and alignment check rejects obviously foreign or stale refs with
// ErrBadRef, but a ref that aliases live heap structure corrupts the heap
// and remains the caller's responsibility. The payload becomes invalid
// immediately.
func (h *Heap) Free(ref Ref) error {
	h.stats.FreeCalls++

	b, size, err := h.checkRef(ref)
	if err != nil {
		return err
	}
	h.stats.BytesFreed += int64(size)

	data := h.arena.Bytes()
	format.PutTag(data, b, size, false)
	format.PutTag(data, format.FooterOff(b, size), size, false)
	h.coalesce(b)
	return nil
}

// Realloc resizes the allocation named by ref by allocating a fresh block,
// copying min(old payload capacity, size) bytes, and freeing the old
// block. There is no in-place growth or shrink. A zero ref behaves as
// Alloc; size 0 frees and returns the zero Ref. Allocation failure
// propagates as an error and leaves the old block intact and owned by the
// caller.
func (h *Heap) Realloc(ref Ref, size int) (Ref, []byte, error) {
	if ref == 0 {
		return h.Alloc(size)
	}

	b, oldSize, err := h.checkRef(ref)
	if err != nil {
		return 0, nil, err
	}
	if size == 0 {
		return 0, nil, h.Free(ref)
	}

	newRef, payload, err := h.Alloc(size)
	if err != nil {
		return 0, nil, err
	}

	// Re-fetch: Alloc may have grown the arena and moved the backing
	// memory.
	data := h.arena.Bytes()
	n := oldSize - format.Overhead
	if size < n {
		n = size
	}
	copy(payload, data[format.PayloadOff(b):format.PayloadOff(b)+n])

	if err := h.Free(ref); err != nil {
		return 0, nil, err
	}
	return newRef, payload, nil
}

// Bytes exposes the raw heap image for diagnostics and verification.
func (h *Heap) Bytes() []byte {
	return h.arena.Bytes()
}

// FreeRoot returns the block offset at the head of the free list, 0 when
// the list is empty. Diagnostic only.
func (h *Heap) FreeRoot() int {
	return h.root
}

// grow extends the arena by at least min bytes, rounded to the alignment
// granularity and floored at the chunk size, and returns the free block
// covering the new space, already coalesced with a free predecessor and
// present in the free list. No tag is touched until the extension has
// succeeded, so a failed grow leaves the heap exactly as it was.
func (h *Heap) grow(min int) (int, error) {
	bytes := format.Align8(min)
	if bytes < h.chunk {
		bytes = h.chunk
	}

	oldSize := h.arena.Size()
	if oldSize+bytes > format.MaxBlockSize {
		// Tags could no longer encode a block spanning the new space.
		return 0, ErrOutOfMemory
	}
	if err := h.arena.Extend(bytes); err != nil {
		if errors.Is(err, arena.ErrExhausted) {
			return 0, ErrOutOfMemory
		}
		return 0, err
	}
	h.stats.GrowCalls++
	h.stats.GrowBytes += int64(bytes)
	if logHeap {
		fmt.Fprintf(os.Stderr, "[HEAP] grow #%d: +%d bytes (region now %d)\n",
			h.stats.GrowCalls, bytes, h.arena.Size())
	}

	data := h.arena.Bytes()

	// The old epilogue header becomes the header of the new free block.
	nb := oldSize - format.EpilogueSize
	format.PutTag(data, nb, bytes, false)
	format.PutTag(data, format.FooterOff(nb, bytes), bytes, false)

	// New epilogue at the new top.
	format.PutTag(data, len(data)-format.EpilogueSize, 0, true)

	return h.coalesce(nb), nil
}

// checkRef validates that ref names a live allocated block and returns its
// block offset and total size.
func (h *Heap) checkRef(ref Ref) (blockOff, size int, err error) {
	data := h.arena.Bytes()
	b := format.BlockOff(int(ref))
	if b < format.PrologueSize || !format.Aligned8(b) || !buf.Has(data, b, format.MinBlockSize) {
		return 0, 0, ErrBadRef
	}
	size, allocated := format.ReadTag(data, b)
	if !allocated || size < format.MinBlockSize || !buf.Has(data, b, size) {
		return 0, 0, ErrBadRef
	}
	return b, size, nil
}
