package buf

import "testing"

func TestEndianHelpers(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

	if got := U32LE(data, 0); got != 0x67452301 {
		t.Fatalf("U32LE = 0x%x, want 0x67452301", got)
	}
	if got := U32LE(data, 4); got != 0xefcdab89 {
		t.Fatalf("U32LE(4) = 0x%x, want 0xefcdab89", got)
	}

	if U32LE(data, 5) != 0 || U32LE(data, -1) != 0 {
		t.Fatalf("short reads should return 0")
	}
}

func TestPutU32LE(t *testing.T) {
	data := make([]byte, 8)
	if !PutU32LE(data, 4, 0xdeadbeef) {
		t.Fatalf("PutU32LE at 4 should fit")
	}
	if got := U32LE(data, 4); got != 0xdeadbeef {
		t.Fatalf("round trip = 0x%x, want 0xdeadbeef", got)
	}
	if PutU32LE(data, 6, 1) {
		t.Fatalf("PutU32LE should refuse a field crossing the end")
	}
	if data[6] != 0xad || data[7] != 0xde {
		t.Fatalf("refused write must not touch the buffer: %x", data)
	}
}
