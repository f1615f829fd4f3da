package main

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/joshuapare/pocketrt/heap"
)

// workload drives a heap with a reproducible mix of alloc, calloc, realloc
// and free calls, stamping every payload so corruption shows up on free.
type workload struct {
	h      *heap.Heap
	rng    *rand.Rand
	max    uint32
	verify bool

	live  []liveBlock
	fails int
}

type liveBlock struct {
	addr heap.Addr
	size uint32
	tag  byte
}

func newWorkload(h *heap.Heap, seed uint64, maxSize uint32, verify bool) *workload {
	return &workload{
		h:      h,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
		max:    max(maxSize, 1),
		verify: verify,
	}
}

// step performs one random operation.
func (w *workload) step() error {
	switch op := w.rng.IntN(10); {
	case op < 4 || len(w.live) == 0:
		if err := w.alloc(); err != nil {
			return err
		}
	case op < 5:
		if err := w.calloc(); err != nil {
			return err
		}
	case op < 7:
		if err := w.realloc(); err != nil {
			return err
		}
	default:
		if err := w.free(w.rng.IntN(len(w.live))); err != nil {
			return err
		}
	}
	if w.verify {
		return w.h.Verify()
	}
	return nil
}

func (w *workload) size() uint32 { return 1 + w.rng.Uint32N(w.max) }

func (w *workload) stamp(b liveBlock) error {
	p, err := w.h.Bytes(b.addr, b.size)
	if err != nil {
		return err
	}
	for i := range p {
		p[i] = b.tag
	}
	return nil
}

func (w *workload) check(b liveBlock) error {
	p, err := w.h.Bytes(b.addr, b.size)
	if err != nil {
		return err
	}
	for i, c := range p {
		if c != b.tag {
			return fmt.Errorf("block 0x%08X byte %d: got %02X, want %02X", b.addr, i, c, b.tag)
		}
	}
	return nil
}

func (w *workload) alloc() error {
	size := w.size()
	addr, _, err := w.h.Alloc(size)
	if errors.Is(err, heap.ErrNoSpace) {
		w.fails++
		return nil
	}
	if err != nil {
		return err
	}
	b := liveBlock{addr: addr, size: size, tag: byte(w.rng.Uint32())}
	w.live = append(w.live, b)
	return w.stamp(b)
}

func (w *workload) calloc() error {
	count, elem := 1+w.rng.Uint32N(16), 1+w.rng.Uint32N(max(w.max/16, 1))
	addr, err := w.h.Calloc(count, elem)
	if errors.Is(err, heap.ErrNoSpace) {
		w.fails++
		return nil
	}
	if err != nil {
		return err
	}
	b := liveBlock{addr: addr, size: count * elem, tag: 0}
	if err := w.check(b); err != nil {
		return fmt.Errorf("calloc not zeroed: %w", err)
	}
	w.live = append(w.live, b)
	return nil
}

func (w *workload) realloc() error {
	i := w.rng.IntN(len(w.live))
	b := w.live[i]
	size := w.size()

	addr, err := w.h.Realloc(b.addr, size)
	if errors.Is(err, heap.ErrNoSpace) {
		w.fails++
		return w.check(b)
	}
	if err != nil {
		return err
	}
	kept := liveBlock{addr: addr, size: min(b.size, size), tag: b.tag}
	if err := w.check(kept); err != nil {
		return fmt.Errorf("realloc lost data: %w", err)
	}
	w.live[i] = liveBlock{addr: addr, size: size, tag: b.tag}
	return w.stamp(w.live[i])
}

func (w *workload) free(i int) error {
	b := w.live[i]
	if err := w.check(b); err != nil {
		return err
	}
	w.live[i] = w.live[len(w.live)-1]
	w.live = w.live[:len(w.live)-1]
	return w.h.Free(b.addr)
}

// drain frees every live block.
func (w *workload) drain() error {
	for len(w.live) > 0 {
		if err := w.free(len(w.live) - 1); err != nil {
			return err
		}
	}
	return nil
}
