package heap

// Stats holds allocator counters for testing and instrumentation.
type Stats struct {
	AllocCalls int // Total Alloc() calls
	FreeCalls  int // Total Free() calls
	GrowCalls  int // Arena extensions
	GrowBytes  int64

	SplitCount int // Placements that split a free block
	Splinters  int // Whole-block placements that absorbed a remainder

	CoalesceNext int // Merges with a free following block only
	CoalescePrev int // Merges with a free preceding block only
	CoalesceBoth int // Merges with both neighbors

	BytesAllocated int64 // Total block bytes handed out (including overhead)
	BytesFreed     int64
}

// Stats returns a snapshot of the allocator counters.
func (h *Heap) Stats() Stats {
	return h.stats
}
