// Package arena provides the contiguous, growable byte region a heap
// manages. The arena is the allocator's only external collaborator: it
// either extends the region immediately or reports exhaustion, and the
// allocator never retries a failed extension.
//
// Backends:
//
//   - Buffer: plain in-memory slice, optionally capped. The cap makes
//     exhaustion reproducible in tests.
//   - Mmap: anonymous private mapping reserved at full capacity up front
//     (unix only; other platforms fall back to a Buffer).
//
// Extending may move the backing memory, so callers must re-fetch Bytes()
// after every Extend and never hold slices across one.
package arena

import "errors"

// ErrExhausted indicates the backend cannot provide more memory.
var ErrExhausted = errors.New("arena: no more memory")

// Arena is a contiguous byte region that can only grow.
type Arena interface {
	// Bytes returns the full backing slice. The slice is invalidated by
	// Extend.
	Bytes() []byte

	// Size returns the current region size in bytes.
	Size() int

	// Extend grows the region by n bytes of zero-filled memory,
	// immediately following the previously granted bytes. Returns
	// ErrExhausted when the backend is out of memory; the region is
	// unchanged on failure.
	Extend(n int) error
}
