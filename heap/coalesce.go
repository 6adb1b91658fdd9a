package heap

import "github.com/joshuapare/heapkit/internal/format"

// coalesce merges the free block at b with any free physical neighbors
// and returns the offset of the merged block, which is the lowest-address
// block of the span and a free-list member on return.
//
// Precondition: b's tags are marked free and b is NOT in the free list.
// The neighbors' state is read from the boundary tags: the preceding
// block's footer sits directly below b's header, the following block's
// header directly above b's footer. The sentinels guarantee both reads are
// in bounds, and both sentinels are permanently allocated so they never
// merge.
//
// Four cases, all expressed through the uniform list primitives; a
// neighbor that survives under its own identity keeps its list position,
// a neighbor that is absorbed is unlinked first.
func (h *Heap) coalesce(b int) int {
	data := h.arena.Bytes()
	size, _ := format.ReadTag(data, b)
	prevSize, prevAlloc := format.ReadTag(data, b-format.FooterSize)
	next := format.NextOff(b, size)
	nextSize, nextAlloc := format.ReadTag(data, next)

	switch {
	case prevAlloc && nextAlloc:
		// No merge.
		h.insertHead(b)
		return b

	case prevAlloc && !nextAlloc:
		// Absorb the following block.
		h.stats.CoalesceNext++
		h.unlink(next)
		size += nextSize
		format.PutTag(data, b, size, false)
		format.PutTag(data, format.FooterOff(b, size), size, false)
		h.insertHead(b)
		return b

	case !prevAlloc && nextAlloc:
		// Fold b into the preceding block, which keeps its list
		// position; the result is the predecessor's identity.
		h.stats.CoalescePrev++
		prev := format.PrevOff(b, prevSize)
		size += prevSize
		format.PutTag(data, prev, size, false)
		format.PutTag(data, format.FooterOff(prev, size), size, false)
		return prev

	default:
		// Both neighbors free: unlink the follower, fold everything
		// into the predecessor.
		h.stats.CoalesceBoth++
		prev := format.PrevOff(b, prevSize)
		h.unlink(next)
		size += prevSize + nextSize
		format.PutTag(data, prev, size, false)
		format.PutTag(data, format.FooterOff(prev, size), size, false)
		return prev
	}
}
