package heap

import (
	"io"

	"github.com/joshuapare/heapkit/internal/format"
)

// Config carries heap tuning knobs. The zero value of any field falls back
// to its default.
type Config struct {
	// ChunkSize is the growth granularity in bytes: the arena is never
	// extended by less than this, amortizing extension calls. Rounded up
	// to 8 bytes. Default 64KB.
	ChunkSize int

	// CheckSink receives Check findings. Default os.Stdout.
	CheckSink io.Writer
}

// DefaultConfig is used when New receives a nil config.
var DefaultConfig = Config{
	ChunkSize: format.DefaultChunkSize,
}
