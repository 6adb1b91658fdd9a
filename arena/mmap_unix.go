//go:build unix

package arena

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Mmap is an arena backed by an anonymous private mapping. The full
// capacity is reserved at construction; Extend only advances the committed
// length, so the backing memory never moves and pages are faulted in
// lazily by the kernel.
type Mmap struct {
	mapped []byte
	length int
}

// NewMmap reserves capacity bytes of anonymous memory.
func NewMmap(capacity int) (*Mmap, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("arena: invalid mmap capacity %d", capacity)
	}
	data, err := unix.Mmap(-1, 0, capacity,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("arena: mmap: %w", err)
	}
	return &Mmap{mapped: data}, nil
}

// Bytes returns the committed portion of the mapping.
func (m *Mmap) Bytes() []byte { return m.mapped[:m.length] }

// Size returns the committed region size.
func (m *Mmap) Size() int { return m.length }

// Extend commits n more bytes of the reservation. Fails with ErrExhausted
// once the reserved capacity is used up.
func (m *Mmap) Extend(n int) error {
	if n <= 0 {
		return nil
	}
	if m.length+n > len(m.mapped) {
		return ErrExhausted
	}
	m.length += n
	return nil
}

// Close releases the mapping. Safe to call twice.
func (m *Mmap) Close() error {
	if m.mapped == nil {
		return nil
	}
	err := unix.Munmap(m.mapped)
	m.mapped = nil
	m.length = 0
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
