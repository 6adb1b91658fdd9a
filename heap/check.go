package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Check walks the heap from prologue to epilogue and reports every
// violation it finds to the configured sink: sentinel damage, misaligned
// payloads, header/footer disagreement, adjacent free blocks, and
// free-flag/list-membership mismatches. verbose additionally prints every
// block. Advisory only: nothing is repaired and the allocator never calls
// this on its own.
func (h *Heap) Check(verbose bool) {
	data := h.arena.Bytes()

	if verbose {
		fmt.Fprintf(h.sink, "Heap (%d bytes, free root %d):\n", len(data), h.root)
	}

	if !buf.Has(data, 0, format.PrologueSize+format.EpilogueSize) {
		fmt.Fprintf(h.sink, "Heap image truncated (%d bytes)\n", len(data))
		return
	}

	size, allocated := format.ReadTag(data, 0)
	if size != format.PrologueSize || !allocated {
		fmt.Fprintf(h.sink, "Bad prologue header [%d:%c]\n", size, flagChar(allocated))
	}

	freeBlocks := 0
	prevFree := false
	off := format.PrologueSize
	for {
		if !buf.Has(data, off, format.HeaderSize) {
			fmt.Fprintf(h.sink, "Walk ran past the region at offset %d\n", off)
			return
		}
		size, allocated = format.ReadTag(data, off)
		if size == 0 {
			break // epilogue
		}
		if verbose {
			h.printBlock(off)
		}
		h.checkBlock(off)

		if !allocated {
			freeBlocks++
			if prevFree {
				fmt.Fprintf(h.sink, "Adjacent free blocks at offset %d\n", off)
			}
		}
		prevFree = !allocated

		next := format.NextOff(off, size)
		if next <= off {
			fmt.Fprintf(h.sink, "Non-advancing block size %d at offset %d\n", size, off)
			return
		}
		off = next
	}

	if !allocated {
		fmt.Fprintf(h.sink, "Bad epilogue header [%d:%c]\n", size, flagChar(allocated))
	}
	if off != len(data)-format.EpilogueSize {
		fmt.Fprintf(h.sink, "Epilogue at offset %d, expected %d\n", off, len(data)-format.EpilogueSize)
	}

	// A block is a free-list member iff its allocated flag is clear, so
	// the list length must match the free count from the physical walk.
	listed := 0
	for b := h.root; b != 0 && listed <= freeBlocks; b = h.linkNext(b) {
		listed++
		if !buf.Has(data, b, format.MinBlockSize) {
			fmt.Fprintf(h.sink, "Free list points outside the region: %d\n", b)
			return
		}
		if _, a := format.ReadTag(data, b); a {
			fmt.Fprintf(h.sink, "Allocated block %d on the free list\n", b)
		}
	}
	if listed != freeBlocks {
		fmt.Fprintf(h.sink, "Free list has %d entries, heap has %d free blocks\n", listed, freeBlocks)
	}
}

// checkBlock validates payload alignment and tag agreement for one block.
func (h *Heap) checkBlock(off int) {
	data := h.arena.Bytes()
	size, allocated := format.ReadTag(data, off)
	if !format.Aligned8(format.PayloadOff(off)) {
		fmt.Fprintf(h.sink, "Payload at offset %d is not aligned\n", format.PayloadOff(off))
	}
	if !buf.Has(data, off, size) {
		fmt.Fprintf(h.sink, "Block at offset %d extends past the region\n", off)
		return
	}
	fsize, fallocated := format.ReadTag(data, format.FooterOff(off, size))
	if size != fsize || allocated != fallocated {
		fmt.Fprintf(h.sink, "Header does not match footer at offset %d\n", off)
	}
}

func (h *Heap) printBlock(off int) {
	data := h.arena.Bytes()
	size, allocated := format.ReadTag(data, off)
	if size == 0 {
		fmt.Fprintf(h.sink, "%d: EOL\n", off)
		return
	}
	if !buf.Has(data, off, size) {
		fmt.Fprintf(h.sink, "%d: header: [%d:%c] footer: out of bounds\n",
			off, size, flagChar(allocated))
		return
	}
	fsize, fallocated := format.ReadTag(data, format.FooterOff(off, size))
	fmt.Fprintf(h.sink, "%d: header: [%d:%c] footer: [%d:%c]\n",
		off, size, flagChar(allocated), fsize, flagChar(fallocated))
}

func flagChar(allocated bool) byte {
	if allocated {
		return 'a'
	}
	return 'f'
}
