package format

// Boundary tag codec.
//
// Tag layout (little-endian uint32 in the low half of an 8-byte word):
//
//	31           3   2 1 0
//	--------------------- -
//	|    size      |0 0|a|
//	--------------------- -
//
// a is 1 iff the block is allocated. The size field records the total block
// size including header and footer; sizes are multiples of 8, so the low
// three bits are always clear and bit 0 is free to carry the flag. The same
// tag is mirrored in the block's footer word, which is what makes backward
// neighbor lookup O(1).

// PackTag packs a block size and allocated flag into a raw tag.
// size must be a multiple of 8 and must not exceed MaxBlockSize; both are
// caller obligations enforced upstream of the codec.
func PackTag(size int, allocated bool) uint32 {
	raw := uint32(size)
	if allocated {
		raw |= AllocatedBit
	}
	return raw
}

// UnpackTag splits a raw tag into its size and allocated flag.
func UnpackTag(raw uint32) (size int, allocated bool) {
	return int(raw & SizeMask), raw&AllocatedBit != 0
}

// PutTag writes the tag word for a block at off. Only the low four bytes of
// the word carry data; the high four are zeroed so words compare cleanly.
func PutTag(b []byte, off, size int, allocated bool) {
	PutU32(b, off, PackTag(size, allocated))
	PutU32(b, off+4, 0)
}

// ReadTag decodes the tag word at off.
func ReadTag(b []byte, off int) (size int, allocated bool) {
	return UnpackTag(ReadU32(b, off))
}

// FooterOff returns the offset of the footer word for the block at off with
// the given total size.
func FooterOff(off, size int) int {
	return off + size - FooterSize
}

// PayloadOff returns the offset of the first payload byte of the block at off.
func PayloadOff(off int) int {
	return off + HeaderSize
}

// BlockOff returns the block offset for a payload offset. Inverse of
// PayloadOff.
func BlockOff(payload int) int {
	return payload - HeaderSize
}

// NextOff returns the offset of the physically following block.
func NextOff(off, size int) int {
	return off + size
}

// PrevOff returns the offset of the physically preceding block, given the
// size read from that block's footer (the word directly below off). Valid
// only because every block, free or allocated, carries both tags.
func PrevOff(off, prevSize int) int {
	return off - prevSize
}
