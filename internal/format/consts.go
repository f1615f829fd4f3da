// Package format describes the in-arena layout of heap blocks. The allocator,
// its verifier and the tooling all decode headers through this package.
package format

const (
	// Alignment is the required alignment of the arena bounds and of every
	// block size.
	Alignment = 8

	// AlignmentMask is Alignment - 1.
	AlignmentMask = Alignment - 1

	// BlockHeaderSize is the number of bytes used by the header preceding
	// every block (free or in-use).
	//
	// Block header layout (little-endian):
	//
	//	Offset  Size  Description
	//	0x00    4     Total block size including header. Bit 0 = used flag.
	//	0x04    4     Size of the block immediately before this one (0 if first).
	//	0x08    ...   Payload.
	BlockHeaderSize = 8

	// BlockSizeOffset is the offset of the size/flags word.
	BlockSizeOffset = 0x00

	// BlockPrevOffset is the offset of the backlink word.
	BlockPrevOffset = 0x04

	// MinBlockSize is the smallest block the allocator creates: a header plus
	// eight usable bytes. Every split remainder is at least this large.
	MinBlockSize = BlockHeaderSize + 8

	// BlockUsed is the used flag stored in bit 0 of the size word.
	BlockUsed = 0x1

	// BlockSizeMask clears the flag bits of the size word.
	BlockSizeMask = ^uint32(0x3)
)
