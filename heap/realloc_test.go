package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, h *Heap, p Addr, n uint32, seed byte) {
	t.Helper()
	b, err := h.Bytes(p, n)
	require.NoError(t, err)
	for i := range b {
		b[i] = seed + byte(i)
	}
}

func checkFill(t *testing.T, h *Heap, p Addr, n uint32, seed byte) {
	t.Helper()
	b, err := h.Bytes(p, n)
	require.NoError(t, err)
	for i := range b {
		require.Equal(t, seed+byte(i), b[i], "byte %d", i)
	}
}

func TestRealloc_NilActsAsAlloc(t *testing.T) {
	h := newTestHeap(t, 1024)

	p, err := h.Realloc(Nil, 100)
	require.NoError(t, err)
	assert.Equal(t, Addr(testBase+8), p)
	assert.Equal(t, []shape{{112, true}, {912, false}}, layout(h))
}

func TestRealloc_ZeroActsAsFree(t *testing.T) {
	h := newTestHeap(t, 1024)
	p := mustAlloc(t, h, 100)

	q, err := h.Realloc(p, 0)
	require.NoError(t, err)
	assert.Equal(t, Nil, q)
	assert.Equal(t, []shape{{1024, false}}, layout(h))
}

func TestRealloc_FitsKeepsBlock(t *testing.T) {
	h := newTestHeap(t, 1024)
	p := mustAlloc(t, h, 100)
	before := h.Blocks()

	for _, size := range []uint32{104, 100, 50, 1} {
		q, err := h.Realloc(p, size)
		require.NoError(t, err)
		assert.Equal(t, p, q, "size %d fits the existing block", size)
	}

	// no shrink, no split
	assert.Equal(t, before, h.Blocks())
	assert.Equal(t, 4, h.Stats().ReallocInPlace)
}

func TestRealloc_GrowMovesAndCopies(t *testing.T) {
	h := newTestHeap(t, 1024)
	p := mustAlloc(t, h, 100)
	_ = mustAlloc(t, h, 16) // blocks growth in place
	fill(t, h, p, 104, 7)

	q, err := h.Realloc(p, 300)
	require.NoError(t, err)
	assert.NotEqual(t, p, q)
	checkFill(t, h, q, 104, 7)

	// old block is free again
	assert.False(t, h.Blocks()[0].Used)
	assertInvariants(t, h)
}

func TestRealloc_FailureLeavesOriginal(t *testing.T) {
	h := newTestHeap(t, 256)
	p := mustAlloc(t, h, 100)
	_ = mustAlloc(t, h, 100)
	fill(t, h, p, 100, 42)
	before := h.Blocks()

	q, err := h.Realloc(p, 200)
	require.ErrorIs(t, err, ErrNoSpace)
	assert.Equal(t, Nil, q)

	assert.Equal(t, before, h.Blocks())
	checkFill(t, h, p, 100, 42)
	assertInvariants(t, h)
}

func TestRealloc_BadPointer(t *testing.T) {
	h := newTestHeap(t, 1024)
	_ = mustAlloc(t, h, 100)
	before := layout(h)

	q, err := h.Realloc(testBase+0x4000, 16)
	require.ErrorIs(t, err, ErrBadPointer)
	assert.Equal(t, Nil, q)
	assert.Equal(t, before, layout(h))
}
