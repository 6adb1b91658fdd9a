package format

// Binary layout constants for the heap image.
//
// The heap is a single contiguous byte region. Every block, free or
// allocated, is bracketed by a header word and a footer word carrying the
// same packed tag, so both physical neighbors of any block can be located
// in O(1) from the boundary tags alone.
const (
	// WordSize is the header/footer word size in bytes. The packed tag
	// occupies the low four bytes of the word; the high four are unused
	// padding that keeps payloads 8-byte aligned.
	WordSize = 8

	// HeaderSize and FooterSize are each one word.
	HeaderSize = WordSize
	FooterSize = WordSize

	// Overhead is the per-block bookkeeping cost: header plus footer.
	Overhead = HeaderSize + FooterSize

	// MinBlockSize is the smallest legal block: header, footer, and room
	// for the two free-list link words. Any adjusted request below this is
	// raised to it, so every free block can host linkage.
	MinBlockSize = Overhead + 2*WordSize

	// PrologueSize is the fixed size of the low sentinel block. It is
	// header-only and permanently allocated so coalescing never reads
	// before the region.
	PrologueSize = WordSize

	// EpilogueSize is the space reserved for the high sentinel: a single
	// allocated header of recorded size zero, the heap-walk terminator.
	EpilogueSize = WordSize

	// DefaultChunkSize is the default granularity for region growth.
	DefaultChunkSize = 1 << 16 // 64KB

	// AllocatedBit is the low bit of the packed tag. Block sizes are
	// multiples of 8, leaving the low three bits free; only bit 0 is used.
	AllocatedBit = 0x1

	// SizeMask extracts the size field from a packed tag.
	SizeMask = ^uint32(0x7)

	// MaxBlockSize is the largest encodable block size: the size field is
	// 31 bits wide and sizes are 8-byte aligned. Requests that would
	// exceed it are rejected before encoding; this is a hard ceiling, not
	// a defensive truncation.
	MaxBlockSize = 0x7FFFFFF8

	// Alignment and its mask, for rounding sizes up to 8 bytes.
	Alignment     = 8
	AlignmentMask = Alignment - 1

	// NextLinkOff and PrevLinkOff locate the free-list link words inside a
	// free block's payload, relative to the block start.
	NextLinkOff = HeaderSize
	PrevLinkOff = HeaderSize + WordSize
)
