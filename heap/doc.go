// Package heap provides the firmware's dynamic memory allocator over a single
// fixed arena.
//
// # Overview
//
// The arena is one contiguous, 8-byte aligned window of the emulated SDRAM
// image. Every byte of it belongs to exactly one block, and every block starts
// with an 8-byte boundary tag:
//
//	Offset  Size  Description
//	0x00    4     Total block size including header. Bit 0 = used flag.
//	0x04    4     Size of the preceding block (0 for the first block).
//	0x08    ...   Payload returned to the caller.
//
// There is no explicit free list. Free blocks are found by walking the arena
// from its start, block by block, and the first free block that is large
// enough wins (first-fit).
//
// # Allocator Interface
//
//   - Init(start, size): carve the arena and write one free block. Once only.
//   - Alloc(size): first-fit, split when the remainder can hold a block.
//   - Free(addr): clear the used flag, merge with free neighbours.
//   - Realloc(addr, size): keep the block when it already fits, else move.
//   - Calloc(count, elemSize): overflow-checked, zero-filled Alloc.
//
// # Usage Example
//
//	mem := sdram.New(board.SDRAMBase, board.SDRAMSize)
//	h := heap.New(mem)
//	if err := h.Init(board.HeapBase, board.HeapSize); err != nil {
//	    return err
//	}
//
//	p, payload, err := h.Alloc(256)
//	if err != nil {
//	    return err
//	}
//	copy(payload, weights)
//
//	// Later, release the block
//	_ = h.Free(p)
//
// # Failure Semantics
//
// Exhaustion is reported as Nil plus ErrNoSpace and never grows the arena.
// Bad pointers handed to Free are rejected with ErrBadPointer before any
// header is modified, so caller mistakes cannot corrupt the block chain.
//
// # Thread Safety
//
// Heap instances are not thread-safe and not reentrant. The firmware runs in
// a single execution context; callers that share a Heap must serialize
// access themselves.
package heap
