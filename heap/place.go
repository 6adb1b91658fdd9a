package heap

import "github.com/joshuapare/heapkit/internal/format"

// findFit returns the first free block of total size >= asize, scanning
// the free list from the root, or 0 when no block qualifies. Deliberately
// linear first-fit: no size classes and no best-fit, trading throughput on
// long lists for simplicity.
func (h *Heap) findFit(asize int) int {
	data := h.arena.Bytes()
	for b := h.root; b != 0; b = h.linkNext(b) {
		if size, _ := format.ReadTag(data, b); size >= asize {
			return b
		}
	}
	return 0
}

// place carves an allocation of asize bytes out of free-list member b and
// returns the final allocated block size.
//
// When the remainder would itself be a legal block it is split off as a
// new free block inheriting b's list position. Otherwise the whole block
// is consumed and the unusable remainder rides along as internal
// fragmentation, which is cheaper than polluting the list with a fragment
// too small to ever satisfy a request.
func (h *Heap) place(b, asize int) int {
	data := h.arena.Bytes()
	size, _ := format.ReadTag(data, b)
	rem := size - asize

	if rem >= format.MinBlockSize {
		h.stats.SplitCount++

		format.PutTag(data, b, asize, true)
		format.PutTag(data, format.FooterOff(b, asize), asize, true)

		nb := format.NextOff(b, asize)
		format.PutTag(data, nb, rem, false)
		format.PutTag(data, format.FooterOff(nb, rem), rem, false)
		h.replaceNode(b, nb)
		return asize
	}

	if rem > 0 {
		h.stats.Splinters++
	}
	h.unlink(b)
	format.PutTag(data, b, size, true)
	format.PutTag(data, format.FooterOff(b, size), size, true)
	return size
}
