// Package verify provides validation functions for raw heap images.
// These helpers are used in tests to ensure allocator invariants are
// maintained after every operation.
package verify

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// ValidationError describes a single invariant violation with its offset.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates every heap invariant in one call: sentinels,
// per-block tag agreement and alignment, no adjacent free blocks, and
// free-list consistency against root. Returns the first violation, or nil.
func AllInvariants(data []byte, root int) error {
	if err := Sentinels(data); err != nil {
		return err
	}
	if err := Blocks(data); err != nil {
		return err
	}
	return FreeList(data, root)
}

// Sentinels validates the prologue and epilogue.
func Sentinels(data []byte) error {
	if len(data) < format.PrologueSize+format.MinBlockSize+format.EpilogueSize {
		return &ValidationError{
			Type:    "Sentinels",
			Message: fmt.Sprintf("image too small: %d bytes", len(data)),
			Offset:  -1,
		}
	}

	size, allocated := format.ReadTag(data, 0)
	if size != format.PrologueSize || !allocated {
		return &ValidationError{
			Type:    "Sentinels",
			Message: fmt.Sprintf("bad prologue: size=%d allocated=%v", size, allocated),
			Offset:  0,
		}
	}

	epi := len(data) - format.EpilogueSize
	size, allocated = format.ReadTag(data, epi)
	if size != 0 || !allocated {
		return &ValidationError{
			Type:    "Sentinels",
			Message: fmt.Sprintf("bad epilogue: size=%d allocated=%v", size, allocated),
			Offset:  epi,
		}
	}
	return nil
}

// Blocks walks the physical block sequence from the prologue to the
// epilogue, checking payload alignment, header/footer agreement, and that
// no two adjacent blocks are both free.
func Blocks(data []byte) error {
	off := format.PrologueSize
	prevFree := false

	for {
		if !buf.Has(data, off, format.HeaderSize) {
			return &ValidationError{
				Type:    "Blocks",
				Message: "walk ran past the region",
				Offset:  off,
			}
		}
		size, allocated := format.ReadTag(data, off)
		if size == 0 {
			if off != len(data)-format.EpilogueSize {
				return &ValidationError{
					Type:    "Blocks",
					Message: fmt.Sprintf("epilogue not at region top (%d)", len(data)-format.EpilogueSize),
					Offset:  off,
				}
			}
			return nil
		}
		if size < format.MinBlockSize || !format.Aligned8(size) {
			return &ValidationError{
				Type:    "Blocks",
				Message: fmt.Sprintf("illegal block size %d", size),
				Offset:  off,
			}
		}
		if !format.Aligned8(format.PayloadOff(off)) {
			return &ValidationError{
				Type:    "Blocks",
				Message: "payload not 8-byte aligned",
				Offset:  off,
			}
		}
		if !buf.Has(data, off, size) {
			return &ValidationError{
				Type:    "Blocks",
				Message: fmt.Sprintf("block of size %d extends past the region", size),
				Offset:  off,
			}
		}
		fsize, fallocated := format.ReadTag(data, format.FooterOff(off, size))
		if fsize != size || fallocated != allocated {
			return &ValidationError{
				Type: "Blocks",
				Message: fmt.Sprintf("header [%d:%v] does not match footer [%d:%v]",
					size, allocated, fsize, fallocated),
				Offset: off,
			}
		}
		if !allocated && prevFree {
			return &ValidationError{
				Type:    "Blocks",
				Message: "adjacent free blocks (coalescing missed)",
				Offset:  off,
			}
		}
		prevFree = !allocated
		off = format.NextOff(off, size)
	}
}

// FreeList validates the explicit free list against the physical heap: a
// block is a member iff its allocated flag is clear, each member appears
// exactly once, and the doubly-linked structure is symmetric.
func FreeList(data []byte, root int) error {
	// Collect free blocks from a physical walk.
	free := make(map[int]bool)
	off := format.PrologueSize
	for {
		if !buf.Has(data, off, format.HeaderSize) {
			break
		}
		size, allocated := format.ReadTag(data, off)
		if size == 0 {
			break
		}
		if !allocated {
			free[off] = true
		}
		off = format.NextOff(off, size)
	}

	seen := make(map[int]bool)
	prev := 0
	for b := root; b != 0; b = int(format.ReadU64(data, b+format.NextLinkOff)) {
		if !buf.Has(data, b, format.MinBlockSize) {
			return &ValidationError{
				Type:    "FreeList",
				Message: "link points outside the region",
				Offset:  b,
			}
		}
		if seen[b] {
			return &ValidationError{
				Type:    "FreeList",
				Message: "block listed twice (cycle)",
				Offset:  b,
			}
		}
		seen[b] = true
		if !free[b] {
			return &ValidationError{
				Type:    "FreeList",
				Message: "listed block is not a free heap block",
				Offset:  b,
			}
		}
		if got := int(format.ReadU64(data, b+format.PrevLinkOff)); got != prev {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("prev link is %d, want %d", got, prev),
				Offset:  b,
			}
		}
		prev = b
	}

	for b := range free {
		if !seen[b] {
			return &ValidationError{
				Type:    "FreeList",
				Message: "free block missing from the list",
				Offset:  b,
			}
		}
	}
	return nil
}
