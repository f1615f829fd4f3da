package format

import "github.com/joshuapare/pocketrt/internal/buf"

// Header is a decoded block header.
type Header struct {
	Size uint32 // Total size including header
	Prev uint32 // Size of the preceding block, 0 for the first block
	Used bool
}

// ReadHeader decodes the header at off. ok is false when the header does not
// fit in b.
func ReadHeader(b []byte, off int) (Header, bool) {
	if !buf.Has(b, off, BlockHeaderSize) {
		return Header{}, false
	}
	raw := buf.U32LE(b, off+BlockSizeOffset)
	return Header{
		Size: raw & BlockSizeMask,
		Prev: buf.U32LE(b, off+BlockPrevOffset),
		Used: raw&BlockUsed != 0,
	}, true
}

// WriteHeader encodes h at off.
func WriteHeader(b []byte, off int, h Header) bool {
	if !buf.Has(b, off, BlockHeaderSize) {
		return false
	}
	raw := h.Size & BlockSizeMask
	if h.Used {
		raw |= BlockUsed
	}
	buf.PutU32LE(b, off+BlockSizeOffset, raw)
	buf.PutU32LE(b, off+BlockPrevOffset, h.Prev)
	return true
}

// BlockSize returns the size of the block at off with the flag bits masked.
func BlockSize(b []byte, off int) uint32 {
	return buf.U32LE(b, off+BlockSizeOffset) & BlockSizeMask
}

// IsUsed reports whether the block at off carries the used flag.
func IsUsed(b []byte, off int) bool {
	return buf.U32LE(b, off+BlockSizeOffset)&BlockUsed != 0
}

// SetPrev rewrites only the backlink of the block at off.
func SetPrev(b []byte, off int, prev uint32) {
	buf.PutU32LE(b, off+BlockPrevOffset, prev)
}
