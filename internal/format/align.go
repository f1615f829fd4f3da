package format

// Align8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
func Align8(n uint32) uint32 {
	return (n + AlignmentMask) &^ AlignmentMask
}

// AlignDown8 returns n truncated to an 8-byte boundary.
func AlignDown8(n uint32) uint32 {
	return n &^ AlignmentMask
}

// BlockSizeFor returns the total block size needed to hold a payload of n
// bytes: header added, rounded up to 8 and floored at MinBlockSize.
// ok is false when the result does not fit in 32 bits.
func BlockSizeFor(n uint32) (uint32, bool) {
	if n > ^uint32(0)-BlockHeaderSize-AlignmentMask {
		return 0, false
	}
	total := n + BlockHeaderSize
	if total < MinBlockSize {
		total = MinBlockSize
	}
	return Align8(total), true
}
