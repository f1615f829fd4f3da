package heap

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/joshuapare/pocketrt/internal/format"
)

// Blocks walks the arena in address order and returns every block.
// The walk stops early at the first undecodable header; Verify reports why.
func (h *Heap) Blocks() []Block {
	var blocks []Block
	for off := 0; off < len(h.data); {
		hdr, ok := format.ReadHeader(h.data, off)
		if !ok || hdr.Size < format.MinBlockSize {
			break
		}
		blocks = append(blocks, Block{
			Addr: h.start + Addr(off),
			Size: hdr.Size,
			Prev: hdr.Prev,
			Used: hdr.Used,
		})
		off += int(hdr.Size)
	}
	return blocks
}

// Verify checks the structural invariants of the arena:
//   - every block is at least MinBlockSize and a multiple of 8
//   - the walk from start visits every 8-byte granule exactly once and ends at end
//   - every backlink equals the size of the preceding block (0 for the first)
//   - no two address-adjacent blocks are both free
func (h *Heap) Verify() error {
	if !h.ready {
		return ErrNotInitialized
	}

	granules := uint(len(h.data) / format.Alignment)
	covered := bitset.New(granules)

	var prevSize uint32
	prevFree := false
	off := 0
	for off < len(h.data) {
		at := h.start + Addr(off)
		hdr, ok := format.ReadHeader(h.data, off)
		if !ok {
			return fmt.Errorf("%w: header at 0x%08X: %w", ErrCorrupt, at, format.ErrTruncated)
		}
		if hdr.Size < format.MinBlockSize || hdr.Size%format.Alignment != 0 {
			return fmt.Errorf("%w: block at 0x%08X has size %d", ErrCorrupt, at, hdr.Size)
		}
		if off+int(hdr.Size) > len(h.data) {
			return fmt.Errorf("%w: block at 0x%08X runs past arena end", ErrCorrupt, at)
		}
		if hdr.Prev != prevSize {
			return fmt.Errorf("%w: block at 0x%08X backlink %d, predecessor size %d",
				ErrCorrupt, at, hdr.Prev, prevSize)
		}
		if !hdr.Used && prevFree {
			return fmt.Errorf("%w: adjacent free blocks at 0x%08X", ErrCorrupt, at)
		}

		first := uint(off / format.Alignment)
		last := uint((off + int(hdr.Size)) / format.Alignment)
		for g := first; g < last; g++ {
			if covered.Test(g) {
				return fmt.Errorf("%w: granule %d covered twice", ErrCorrupt, g)
			}
			covered.Set(g)
		}

		prevSize = hdr.Size
		prevFree = !hdr.Used
		off += int(hdr.Size)
	}

	if off != len(h.data) {
		return fmt.Errorf("%w: walk ended at offset %d, arena is %d bytes", ErrCorrupt, off, len(h.data))
	}
	if !covered.All() {
		return fmt.Errorf("%w: %d of %d granules uncovered", ErrCorrupt, granules-covered.Count(), granules)
	}
	return nil
}

// Stats returns the running counters plus a fresh walk of the arena.
func (h *Heap) Stats() Stats {
	s := Stats{
		ArenaSize:        h.Size(),
		AllocCalls:       h.stats.allocCalls,
		FreeCalls:        h.stats.freeCalls,
		ReallocCalls:     h.stats.reallocCalls,
		ReallocInPlace:   h.stats.reallocInPlace,
		FailedAllocs:     h.stats.failedAllocs,
		InvalidFrees:     h.stats.invalidFrees,
		Splits:           h.stats.splits,
		CoalesceForward:  h.stats.coalesceForward,
		CoalesceBackward: h.stats.coalesceBackward,
	}

	for _, b := range h.Blocks() {
		s.Blocks++
		if b.Used {
			s.UsedBlocks++
			s.UsedBytes += b.Size
			continue
		}
		s.FreeBlocks++
		s.FreeBytes += b.Size
		s.LargestFree = max(s.LargestFree, b.Size)
	}
	return s
}
