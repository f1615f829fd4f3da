package heap

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/joshuapare/pocketrt/internal/buf"
	"github.com/joshuapare/pocketrt/internal/format"
	"github.com/joshuapare/pocketrt/internal/logger"
	"github.com/joshuapare/pocketrt/internal/sdram"
)

const headerSize = format.BlockHeaderSize

// Heap is a first-fit, boundary-tagged allocator over one fixed arena.
type Heap struct {
	mem *sdram.Memory

	// data is the arena window; data[0] is the header of the first block.
	data  []byte
	start Addr
	end   Addr
	ready bool

	stats allocatorStats

	log   *slog.Logger
	trace bool // per-call debug records, see logger.AllocEnv

	onFree []func(Addr)
}

// Option configures a Heap.
type Option func(*Heap)

// WithLogger sets the logger used for allocation tracing.
func WithLogger(l *slog.Logger) Option {
	return func(h *Heap) { h.log = l }
}

// WithTrace forces per-call debug logging on or off, overriding the
// environment.
func WithTrace(on bool) Option {
	return func(h *Heap) { h.trace = on }
}

// New returns an uninitialized heap over mem. Call Init before use.
func New(mem *sdram.Memory, opts ...Option) *Heap {
	h := &Heap{
		mem:   mem,
		log:   logger.L,
		trace: logger.AllocLogging(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Init aligns start up and size down to 8 bytes and writes a single free
// block spanning the resulting arena. It must be called exactly once.
func (h *Heap) Init(start Addr, size uint32) error {
	if h.ready {
		return ErrInitialized
	}
	if start > math.MaxUint32-format.AlignmentMask {
		return fmt.Errorf("%w: start 0x%08X", ErrBadRegion, start)
	}

	aligned := format.Align8(start)
	pad := aligned - start
	if size < pad {
		return fmt.Errorf("%w: size %d smaller than alignment pad", ErrBadRegion, size)
	}
	size = format.AlignDown8(size - pad)
	if size < format.MinBlockSize {
		return fmt.Errorf("%w: %d bytes after alignment", ErrBadRegion, size)
	}

	window, err := h.mem.Window(aligned, size)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadRegion, err)
	}

	format.WriteHeader(window, 0, format.Header{Size: size})

	h.data = window
	h.start = aligned
	h.end = aligned + size
	h.ready = true

	h.log.Info("heap initialized",
		"start", fmt.Sprintf("0x%08X", h.start),
		"end", fmt.Sprintf("0x%08X", h.end),
		"size", size)
	return nil
}

// Start returns the address of the first block header.
func (h *Heap) Start() Addr { return h.start }

// End returns the first address past the arena.
func (h *Heap) End() Addr { return h.end }

// Size returns the arena size in bytes.
func (h *Heap) Size() uint32 { return h.end - h.start }

// Alloc returns the payload address of a block holding at least size bytes,
// together with a size-length view of the payload.
func (h *Heap) Alloc(size uint32) (Addr, []byte, error) {
	h.stats.allocCalls++

	if size == 0 {
		return Nil, nil, ErrZeroSize
	}
	if !h.ready {
		return Nil, nil, ErrNotInitialized
	}

	need, ok := format.BlockSizeFor(size)
	if !ok {
		h.stats.failedAllocs++
		return Nil, nil, ErrNoSpace
	}

	data := h.data
	for off := 0; off < len(data); {
		hdr, ok := format.ReadHeader(data, off)
		if !ok || hdr.Size < format.MinBlockSize {
			return Nil, nil, fmt.Errorf("%w: block at 0x%08X", ErrCorrupt, h.start+Addr(off))
		}

		if hdr.Used || hdr.Size < need {
			off += int(hdr.Size)
			continue
		}

		if rem := hdr.Size - need; rem >= format.MinBlockSize {
			tail := off + int(need)
			format.WriteHeader(data, tail, format.Header{Size: rem, Prev: need})
			if after := tail + int(rem); after < len(data) {
				format.SetPrev(data, after, rem)
			}
			hdr.Size = need
			h.stats.splits++
		}

		hdr.Used = true
		format.WriteHeader(data, off, hdr)

		addr := h.start + Addr(off) + headerSize
		if h.trace {
			h.log.Debug("alloc",
				"size", size,
				"block", hdr.Size,
				"addr", fmt.Sprintf("0x%08X", addr))
		}

		payload := off + headerSize
		return addr, data[payload : payload+int(size) : off+int(hdr.Size)], nil
	}

	h.stats.failedAllocs++
	if h.trace {
		h.log.Debug("alloc failed", "size", size, "need", need)
	}
	return Nil, nil, ErrNoSpace
}

// Calloc allocates count*elemSize zeroed bytes. The multiplication is checked
// for overflow before anything is allocated.
func (h *Heap) Calloc(count, elemSize uint32) (Addr, error) {
	total, ok := buf.MulU32(count, elemSize)
	if !ok {
		return Nil, ErrOverflow
	}
	p, payload, err := h.Alloc(total)
	if err != nil {
		return Nil, err
	}
	clear(payload)
	return p, nil
}

// Free releases the block at p and merges it with free neighbours.
// Nil is a no-op. Addresses that do not name a live block are rejected with
// ErrBadPointer and leave the arena untouched.
func (h *Heap) Free(p Addr) error {
	if p == Nil {
		return nil
	}

	off, hdr, err := h.lookup(p)
	if err != nil {
		h.stats.invalidFrees++
		return err
	}
	h.stats.freeCalls++

	data := h.data
	size := hdr.Size

	// Forward: absorb the next block when it is free.
	if next := off + int(size); next < len(data) && !format.IsUsed(data, next) {
		size += format.BlockSize(data, next)
		if after := off + int(size); after < len(data) {
			format.SetPrev(data, after, size)
		}
		h.stats.coalesceForward++
	}
	format.WriteHeader(data, off, format.Header{Size: size, Prev: hdr.Prev})

	// Backward: a zero backlink marks the first block.
	if hdr.Prev != 0 {
		prevOff := off - int(hdr.Prev)
		if prevOff >= 0 && !format.IsUsed(data, prevOff) {
			prev, _ := format.ReadHeader(data, prevOff)
			prev.Size += size
			format.WriteHeader(data, prevOff, prev)
			if after := prevOff + int(prev.Size); after < len(data) {
				format.SetPrev(data, after, prev.Size)
			}
			h.stats.coalesceBackward++
		}
	}

	if h.trace {
		h.log.Debug("free", "addr", fmt.Sprintf("0x%08X", p), "block", hdr.Size)
	}
	for _, fn := range h.onFree {
		fn(p)
	}
	return nil
}

// OnFree registers fn to run after every successful release of a block,
// including the release of the old block when Realloc moves data.
func (h *Heap) OnFree(fn func(Addr)) {
	h.onFree = append(h.onFree, fn)
}

// Realloc resizes the allocation at p. Nil p behaves as Alloc and a zero size
// behaves as Free. When size still fits the current block the same address is
// returned; the block is never shrunk or split in place. Otherwise the data
// moves to a new block and the old one is released. If the new allocation
// fails the old block is left untouched.
func (h *Heap) Realloc(p Addr, size uint32) (Addr, error) {
	h.stats.reallocCalls++

	if p == Nil {
		np, _, err := h.Alloc(size)
		return np, err
	}
	if size == 0 {
		return Nil, h.Free(p)
	}

	off, hdr, err := h.lookup(p)
	if err != nil {
		return Nil, err
	}

	if need, ok := format.BlockSizeFor(size); ok && need <= hdr.Size {
		h.stats.reallocInPlace++
		return p, nil
	}

	np, payload, err := h.Alloc(size)
	if err != nil {
		return Nil, err
	}

	old := h.data[off+headerSize : off+int(hdr.Size)]
	copy(payload, old)

	if err := h.Free(p); err != nil {
		return Nil, err
	}
	return np, nil
}

// Bytes returns a view of n payload bytes of the live block at p.
func (h *Heap) Bytes(p Addr, n uint32) ([]byte, error) {
	off, hdr, err := h.lookup(p)
	if err != nil {
		return nil, err
	}
	if n > hdr.Size-headerSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds usable %d", ErrBadPointer, n, hdr.Size-headerSize)
	}
	payload := off + headerSize
	return h.data[payload : payload+int(n) : off+int(hdr.Size)], nil
}

// UsableSize returns the payload capacity of the live block at p.
func (h *Heap) UsableSize(p Addr) (uint32, error) {
	_, hdr, err := h.lookup(p)
	if err != nil {
		return 0, err
	}
	return hdr.Size - headerSize, nil
}

// lookup validates that p is the payload address of a live block and returns
// the block's arena offset and header. Nothing is written.
func (h *Heap) lookup(p Addr) (int, format.Header, error) {
	if !h.ready {
		return 0, format.Header{}, ErrBadPointer
	}
	if uint64(p) < uint64(h.start)+headerSize || p-headerSize >= h.end {
		return 0, format.Header{}, fmt.Errorf("%w: 0x%08X outside arena", ErrBadPointer, p)
	}

	off := int(p - headerSize - h.start)
	if off%format.Alignment != 0 {
		return 0, format.Header{}, fmt.Errorf("%w: 0x%08X misaligned", ErrBadPointer, p)
	}

	hdr, ok := format.ReadHeader(h.data, off)
	if !ok || hdr.Size < format.MinBlockSize || off+int(hdr.Size) > len(h.data) {
		return 0, format.Header{}, fmt.Errorf("%w: 0x%08X has no valid header", ErrBadPointer, p)
	}
	if !hdr.Used {
		return 0, format.Header{}, fmt.Errorf("%w: 0x%08X is not allocated", ErrBadPointer, p)
	}
	if !h.linked(off, hdr) {
		return 0, format.Header{}, fmt.Errorf("%w: 0x%08X is not a block boundary", ErrBadPointer, p)
	}
	return off, hdr, nil
}

// linked reports whether the neighbours of the block at off agree with hdr:
// the next block's backlink must equal hdr.Size and the block hdr.Prev bytes
// back must have that size. Only the first block has a zero backlink.
func (h *Heap) linked(off int, hdr format.Header) bool {
	if next := off + int(hdr.Size); next < len(h.data) {
		nh, ok := format.ReadHeader(h.data, next)
		if !ok || nh.Prev != hdr.Size {
			return false
		}
	}
	if hdr.Prev == 0 {
		return off == 0
	}
	prevOff := off - int(hdr.Prev)
	if prevOff < 0 || prevOff%format.Alignment != 0 {
		return false
	}
	ph, ok := format.ReadHeader(h.data, prevOff)
	return ok && ph.Size == hdr.Prev
}
