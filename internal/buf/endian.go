// Package buf contains bounds-checked little-endian field accessors used by
// the arena and slot decoders.
package buf

import "encoding/binary"

// U32LE reads a little-endian uint32 at off. Returns 0 when b is too short.
func U32LE(b []byte, off int) uint32 {
	if off < 0 || off+4 > len(b) {
		return 0
	}
	return binary.LittleEndian.Uint32(b[off:])
}

// PutU32LE writes v as little-endian at off. It reports false and writes
// nothing when the field does not fit.
func PutU32LE(b []byte, off int, v uint32) bool {
	if off < 0 || off+4 > len(b) {
		return false
	}
	binary.LittleEndian.PutUint32(b[off:], v)
	return true
}
