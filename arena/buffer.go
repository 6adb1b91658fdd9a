package arena

// Buffer is an in-memory arena backed by an ordinary slice.
type Buffer struct {
	data  []byte
	limit int
}

// NewBuffer creates an empty in-memory arena. limit caps the total region
// size in bytes; limit <= 0 means unbounded.
func NewBuffer(limit int) *Buffer {
	return &Buffer{limit: limit}
}

// Bytes returns the full backing slice.
func (b *Buffer) Bytes() []byte { return b.data }

// Size returns the current region size.
func (b *Buffer) Size() int { return len(b.data) }

// Extend appends n zero bytes to the region. Fails with ErrExhausted when
// the configured limit would be exceeded.
func (b *Buffer) Extend(n int) error {
	if n <= 0 {
		return nil
	}
	if b.limit > 0 && len(b.data)+n > b.limit {
		return ErrExhausted
	}
	b.data = append(b.data, make([]byte, n)...)
	return nil
}
