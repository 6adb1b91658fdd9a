package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer_Extend(t *testing.T) {
	b := NewBuffer(0)
	require.Zero(t, b.Size())

	require.NoError(t, b.Extend(64))
	require.Equal(t, 64, b.Size())
	require.Len(t, b.Bytes(), 64)

	// New bytes are zero-filled.
	for i, v := range b.Bytes() {
		require.Zero(t, v, "byte %d not zeroed", i)
	}
}

func TestBuffer_ExtendPreservesContents(t *testing.T) {
	b := NewBuffer(0)
	require.NoError(t, b.Extend(16))
	copy(b.Bytes(), "boundary tagged!")

	require.NoError(t, b.Extend(1 << 20))
	require.Equal(t, "boundary tagged!", string(b.Bytes()[:16]))
}

func TestBuffer_Limit(t *testing.T) {
	b := NewBuffer(128)
	require.NoError(t, b.Extend(128))

	err := b.Extend(1)
	require.ErrorIs(t, err, ErrExhausted)

	// Region unchanged after a failed extension.
	require.Equal(t, 128, b.Size())
}

func TestBuffer_ExtendZero(t *testing.T) {
	b := NewBuffer(8)
	require.NoError(t, b.Extend(0))
	require.NoError(t, b.Extend(-4))
	require.Zero(t, b.Size())
}
