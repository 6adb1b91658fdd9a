// Package heap implements a dynamic memory allocator over a single
// contiguous, growable arena.
//
// # Overview
//
// The allocator manages boundary-tagged blocks: every block, free or
// allocated, carries a packed size/allocated tag in both a header and a
// footer word, so the physical neighbors of any block are reachable in O(1)
// in either direction. Free space is tracked by an explicit doubly-linked
// free list threaded through the payload bytes of the free blocks
// themselves, costing no extra space. Placement is first-fit; freed blocks
// are eagerly coalesced with free physical neighbors, so no two adjacent
// free blocks ever coexist between public calls.
//
// # Usage
//
//	h, err := heap.New(arena.NewBuffer(0), nil)
//	if err != nil {
//	    return err
//	}
//
//	ref, buf, err := h.Alloc(256)
//	if err != nil {
//	    return err
//	}
//
//	// Write to buf...
//
//	// Later, release the block.
//	err = h.Free(ref)
//
// Refs are payload offsets within the arena. A returned payload slice is
// valid until the next Alloc or Realloc; growth can move the backing
// memory.
//
// # Layout
//
// The region is bounded by two permanently allocated sentinels: a
// header-only prologue at the low end and a size-zero epilogue at the top.
// They remove every edge case from coalescing and terminate heap walks.
//
//	----------------------------------------------------
//	| prologue | blocks (free and allocated) | epilogue |
//	----------------------------------------------------
//
// When no free block satisfies a request, the arena is extended by at
// least one chunk (64KB by default); the old epilogue header becomes the
// header of the new free block and a fresh epilogue is written at the new
// top.
//
// # Thread Safety
//
// Heap instances are not thread-safe. The heap has exactly one logical
// owner at a time; callers needing shared access must synchronize
// externally.
//
// # Diagnostics
//
// Check walks the whole heap validating tag agreement, alignment, and
// free-list consistency, reporting findings to the configured sink. It
// never repairs anything and never runs on the allocation path. The verify
// subpackage provides the same checks as plain functions over a raw heap
// image, returning errors for use in tests.
package heap
