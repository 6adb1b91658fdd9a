package format

// Alignment utilities. Block sizes and payload addresses must be 8-byte
// aligned; the allocator rounds every adjusted request up through Align8.

// Align8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
//	Align8(16) = 16
func Align8(n int) int {
	return (n + AlignmentMask) & ^AlignmentMask
}

// Aligned8 reports whether n sits on an 8-byte boundary.
func Aligned8(n int) bool {
	return n&AlignmentMask == 0
}
