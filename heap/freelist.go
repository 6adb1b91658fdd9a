package heap

import "github.com/joshuapare/heapkit/internal/format"

// Explicit free list.
//
// Linkage lives inside the payload bytes of free blocks: two uint64 words
// holding the block offsets of the list neighbors. Offset 0 is the
// prologue and can never be a free block, so 0 is the null sentinel for
// both the root and the link words. The list is unordered; insertion is
// LIFO at the head and no ordering is part of the contract.
//
// All list mutation in the allocator goes through the three primitives
// below. Placement and every coalescing case splice with the same code, so
// there is no per-case pointer patching to miswire.

func (h *Heap) linkNext(b int) int {
	return int(format.ReadU64(h.arena.Bytes(), b+format.NextLinkOff))
}

func (h *Heap) linkPrev(b int) int {
	return int(format.ReadU64(h.arena.Bytes(), b+format.PrevLinkOff))
}

func (h *Heap) setLinkNext(b, to int) {
	format.PutU64(h.arena.Bytes(), b+format.NextLinkOff, uint64(to))
}

func (h *Heap) setLinkPrev(b, to int) {
	format.PutU64(h.arena.Bytes(), b+format.PrevLinkOff, uint64(to))
}

// insertHead pushes b onto the head of the free list. b must not already
// be a member.
func (h *Heap) insertHead(b int) {
	h.setLinkNext(b, h.root)
	h.setLinkPrev(b, 0)
	if h.root != 0 {
		h.setLinkPrev(h.root, b)
	}
	h.root = b
}

// unlink removes member b from the free list, re-splicing its neighbors
// and the root. O(1): the neighbors are read from b's own link words.
func (h *Heap) unlink(b int) {
	next := h.linkNext(b)
	prev := h.linkPrev(b)
	if prev != 0 {
		h.setLinkNext(prev, next)
	} else {
		h.root = next
	}
	if next != 0 {
		h.setLinkPrev(next, prev)
	}
	h.setLinkNext(b, 0)
	h.setLinkPrev(b, 0)
}

// replaceNode substitutes nb into member old's list position, preserving
// old's neighbors. Used by splitting so the remainder inherits the split
// block's position and traversal cost is unaffected.
func (h *Heap) replaceNode(old, nb int) {
	next := h.linkNext(old)
	prev := h.linkPrev(old)
	h.setLinkNext(nb, next)
	h.setLinkPrev(nb, prev)
	if prev != 0 {
		h.setLinkNext(prev, nb)
	} else {
		h.root = nb
	}
	if next != 0 {
		h.setLinkPrev(next, nb)
	}
	h.setLinkNext(old, 0)
	h.setLinkPrev(old, 0)
}
