// Package sdram emulates the processor's flat physical address space: a byte
// image whose first byte lives at a fixed CPU address.
package sdram

import (
	"errors"
	"fmt"

	"github.com/joshuapare/pocketrt/internal/buf"
)

// ErrOutOfRange indicates an address range that is not backed by the image.
var ErrOutOfRange = errors.New("sdram: address out of range")

// Memory is a contiguous byte image mapped at Base.
type Memory struct {
	base uint32
	data []byte
}

// New allocates a zeroed image of size bytes mapped at base.
func New(base, size uint32) *Memory {
	return &Memory{base: base, data: make([]byte, size)}
}

// Wrap maps an existing byte slice at base. The slice is shared, not copied.
func Wrap(base uint32, data []byte) *Memory {
	return &Memory{base: base, data: data}
}

// Base returns the CPU address of the first byte.
func (m *Memory) Base() uint32 { return m.base }

// Size returns the number of bytes in the image.
func (m *Memory) Size() uint32 { return uint32(len(m.data)) }

// End returns the first address past the image.
func (m *Memory) End() uint64 { return uint64(m.base) + uint64(len(m.data)) }

// Bytes returns the whole image.
func (m *Memory) Bytes() []byte { return m.data }

// Contains reports whether [addr, addr+n) lies inside the image.
func (m *Memory) Contains(addr, n uint32) bool {
	return addr >= m.base && uint64(addr)+uint64(n) <= m.End()
}

// Offset converts a CPU address to an index into Bytes.
func (m *Memory) Offset(addr uint32) (int, bool) {
	if addr < m.base || uint64(addr) > m.End() {
		return 0, false
	}
	return int(addr - m.base), true
}

// Window returns the n bytes starting at addr, aliasing the image.
func (m *Memory) Window(addr, n uint32) ([]byte, error) {
	off, ok := m.Offset(addr)
	if !ok {
		return nil, fmt.Errorf("%w: 0x%08X", ErrOutOfRange, addr)
	}
	w, ok := buf.Slice(m.data, off, int(n))
	if !ok {
		return nil, fmt.Errorf("%w: 0x%08X+%d", ErrOutOfRange, addr, n)
	}
	return w, nil
}
