package vfs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pocketrt/dataslot"
	"github.com/joshuapare/pocketrt/heap"
	"github.com/joshuapare/pocketrt/internal/sdram"
)

const (
	testBase      = 0x10000000
	modelAddr     = testBase
	modelSize     = 1000
	tokenizerAddr = testBase + 0x1000
	tokenizerSize = 9000
	heapAddr      = testBase + 0x10000
	heapSize      = 0x30000
)

type fixture struct {
	mem    *sdram.Memory
	bridge *dataslot.Resident
	heap   *heap.Heap
	fs     *FS
}

func pattern(slot, i int) byte { return byte(slot*31 + i*7) }

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	mem := sdram.New(testBase, 0x40000)

	fill := func(slot int, addr, size uint32) {
		w, err := mem.Window(addr, size)
		require.NoError(t, err)
		for i := range w {
			w[i] = pattern(slot, i)
		}
	}
	fill(0, modelAddr, modelSize)
	fill(1, tokenizerAddr, tokenizerSize)

	r, err := dataslot.NewResident(mem, []dataslot.Slot{
		{ID: 0, Name: "model.bin", Addr: modelAddr, Size: modelSize},
		{ID: 1, Name: "tokenizer.bin", Addr: tokenizerAddr, Size: tokenizerSize},
	})
	require.NoError(t, err)
	r.MarkReady()

	h := heap.New(mem)
	require.NoError(t, h.Init(heapAddr, heapSize))

	return &fixture{mem: mem, bridge: r, heap: h, fs: New(r, h, opts...)}
}

func expected(slot, from, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = pattern(slot, from+i)
	}
	return out
}
