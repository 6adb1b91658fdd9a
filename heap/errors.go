package heap

import "errors"

var (
	// ErrOutOfMemory indicates the arena could not be extended to satisfy
	// a request. Growth is never retried; a single failed extension
	// surfaces immediately.
	ErrOutOfMemory = errors.New("heap: out of memory")

	// ErrTooLarge indicates the adjusted request size would not fit the
	// tag's 31-bit size field.
	ErrTooLarge = errors.New("heap: request exceeds maximum block size")

	// ErrBadSize indicates a negative allocation size.
	ErrBadSize = errors.New("heap: invalid allocation size")

	// ErrBadRef indicates a reference that does not name a live allocated
	// block: out of bounds, misaligned, or already freed.
	ErrBadRef = errors.New("heap: bad block reference")
)
