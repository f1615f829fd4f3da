package heap

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pocketrt/internal/sdram"
)

// testBase mirrors the firmware heap window, which sits after the model slot.
const testBase = 0x12100000

// newTestHeap returns an initialized heap whose arena is exactly size bytes.
func newTestHeap(t testing.TB, size uint32) *Heap {
	t.Helper()
	h := newUninitialized(t, size)
	require.NoError(t, h.Init(testBase, size))
	return h
}

func newUninitialized(t testing.TB, size uint32) *Heap {
	t.Helper()
	mem := sdram.New(testBase, size)
	return New(mem,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithTrace(false))
}

// assertInvariants checks the block chain after a mutation and fails the
// test immediately on any violation.
func assertInvariants(t testing.TB, h *Heap) {
	t.Helper()
	require.NoError(t, h.Verify())

	var total uint32
	for _, b := range h.Blocks() {
		total += b.Size
	}
	require.Equal(t, h.Size(), total, "block sizes must sum to the arena size")
}

// shape reduces a layout to (size, used) pairs for compact comparisons.
type shape struct {
	Size uint32
	Used bool
}

func layout(h *Heap) []shape {
	var out []shape
	for _, b := range h.Blocks() {
		out = append(out, shape{b.Size, b.Used})
	}
	return out
}

func mustAlloc(t testing.TB, h *Heap, size uint32) Addr {
	t.Helper()
	p, payload, err := h.Alloc(size)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p)
	require.Len(t, payload, int(size))
	return p
}
