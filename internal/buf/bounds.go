package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulU32 multiplies a and b, returning ok = false when the product does not
// fit in 32 bits. The product is divided back to detect wraparound.
func MulU32(a, b uint32) (uint32, bool) {
	total := a * b
	if a != 0 && total/a != b {
		return 0, false
	}
	return total, true
}

// CheckRange validates that n bytes starting at off fit inside an object of
// the given size. Returns the end offset if valid.
//
//	end, err := buf.CheckRange(slotSize, off, uint32(len(p)))
//	if err != nil {
//	    return fmt.Errorf("read: %w", err)
//	}
func CheckRange(size, off, n uint32) (uint32, error) {
	end := uint64(off) + uint64(n)
	if end > math.MaxUint32 {
		return 0, fmt.Errorf("overflow: off=%d + n=%d", off, n)
	}
	if uint32(end) > size {
		return 0, fmt.Errorf("bounds: end=%d > size=%d", end, size)
	}
	return uint32(end), nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}
