package heap

// Addr is a CPU address inside the emulated memory image.
type Addr = uint32

// Nil is the null address returned by failed allocations.
const Nil Addr = 0

// Block describes one block found while walking the arena.
type Block struct {
	Addr Addr   // Address of the header
	Size uint32 // Total size including header
	Prev uint32 // Backlink: size of the preceding block
	Used bool
}

// Payload returns the address handed out to callers for this block.
func (b Block) Payload() Addr { return b.Addr + headerSize }

// Stats holds allocator counters plus a snapshot of the arena layout.
type Stats struct {
	ArenaSize   uint32 // Bytes under management
	FreeBytes   uint32 // Sum of free block sizes (headers included)
	UsedBytes   uint32 // Sum of used block sizes (headers included)
	LargestFree uint32 // Largest free block, header included
	Blocks      int
	FreeBlocks  int
	UsedBlocks  int

	AllocCalls       int // Alloc calls, including those made by Calloc and Realloc
	FreeCalls        int // Successful Free calls
	ReallocCalls     int
	ReallocInPlace   int // Realloc calls satisfied by the existing block
	FailedAllocs     int // Allocations that found no block
	InvalidFrees     int // Free calls rejected with ErrBadPointer
	Splits           int
	CoalesceForward  int
	CoalesceBackward int
}

// allocatorStats holds the running counters; layout fields are computed on demand.
type allocatorStats struct {
	allocCalls       int
	freeCalls        int
	reallocCalls     int
	reallocInPlace   int
	failedAllocs     int
	invalidFrees     int
	splits           int
	coalesceForward  int
	coalesceBackward int
}
