//go:build !unix

package arena

import "fmt"

// Mmap on non-unix platforms is a capped Buffer; the name is kept so
// callers build unchanged.
type Mmap struct {
	Buffer
}

// NewMmap creates a heap-allocated arena capped at capacity bytes.
func NewMmap(capacity int) (*Mmap, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("arena: invalid mmap capacity %d", capacity)
	}
	return &Mmap{Buffer{limit: capacity}}, nil
}

// Close releases nothing on the fallback backend.
func (m *Mmap) Close() error { return nil }
