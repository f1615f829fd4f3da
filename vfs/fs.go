package vfs

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/pocketrt/board"
	"github.com/joshuapare/pocketrt/dataslot"
	"github.com/joshuapare/pocketrt/heap"
	"github.com/joshuapare/pocketrt/internal/logger"
)

// FS is the file layer over one bridge and one heap.
type FS struct {
	bridge dataslot.Bridge
	heap   *heap.Heap
	names  NameTable
	log    *slog.Logger

	streams [board.MaxStreams]stream
	fds     [board.MaxDescriptors]descriptor

	// mappings holds the length of every live Mmap/Map buffer.
	mappings map[heap.Addr]uint32

	stats counters
}

type counters struct {
	opens        uint64
	openFailures uint64
	bridgeBytes  uint64
	bufferBytes  uint64
	maps         uint64
	unmaps       uint64
}

// Stats is a snapshot of the file layer.
type Stats struct {
	OpenStreams     int
	OpenDescriptors int
	Mappings        int
	MappedBytes     uint64

	Opens        uint64
	OpenFailures uint64
	BridgeBytes  uint64 // bytes copied out of slots
	BufferBytes  uint64 // bytes copied out of attached heap buffers
	Maps         uint64
	Unmaps       uint64
}

// Option configures an FS.
type Option func(*FS)

// WithNames replaces the default name table.
func WithNames(t NameTable) Option {
	return func(f *FS) { f.names = t }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *FS) { f.log = l }
}

// New returns a file layer reading slots through b and allocating mapping
// buffers from h.
func New(b dataslot.Bridge, h *heap.Heap, opts ...Option) *FS {
	f := &FS{
		bridge:   b,
		heap:     h,
		names:    DefaultNames(),
		log:      logger.L,
		mappings: make(map[heap.Addr]uint32),
	}
	for _, opt := range opts {
		opt(f)
	}
	h.OnFree(f.released)
	return f
}

// Names returns the resource table.
func (f *FS) Names() NameTable { return f.names }

// Available returns the number of unused stream handles.
func (f *FS) Available() int {
	n := 0
	for i := range f.streams {
		if !f.streams[i].used {
			n++
		}
	}
	return n
}

// Stats returns the current counters.
func (f *FS) Stats() Stats {
	s := Stats{
		Mappings:     len(f.mappings),
		Opens:        f.stats.opens,
		OpenFailures: f.stats.openFailures,
		BridgeBytes:  f.stats.bridgeBytes,
		BufferBytes:  f.stats.bufferBytes,
		Maps:         f.stats.maps,
		Unmaps:       f.stats.unmaps,
	}
	for i := range f.streams {
		if f.streams[i].used {
			s.OpenStreams++
		}
	}
	for i := range f.fds {
		if f.fds[i].used {
			s.OpenDescriptors++
		}
	}
	for _, n := range f.mappings {
		s.MappedBytes += uint64(n)
	}
	return s
}

// resolve maps a name to a slot and its current size.
func (f *FS) resolve(name string) (dataslot.SlotID, uint32, error) {
	id, ok := f.names.Resolve(name)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrNotExist, name)
	}
	size, err := f.bridge.Size(id)
	if err != nil {
		return 0, 0, fmt.Errorf("vfs: %q: %w", name, err)
	}
	return id, size, nil
}

// Mmap allocates a length-byte heap buffer and fills it from the descriptor's
// slot starting at offset. The descriptor position is not moved. The buffer
// stays valid after CloseFD and must be released with Munmap.
func (f *FS) Mmap(fd int, length, offset uint32) (heap.Addr, []byte, error) {
	d, err := f.descriptor(fd)
	if err != nil {
		return heap.Nil, nil, err
	}
	return f.mapSlot(d.slot, length, offset)
}

// Munmap releases a buffer returned by Mmap or File.Map. Streams that read
// through the buffer fall back to the bridge. Nil is a no-op. Releasing the
// buffer with Heap.Free directly has the same effect on streams.
func (f *FS) Munmap(addr heap.Addr) error {
	if addr == heap.Nil {
		return nil
	}
	if err := f.heap.Free(addr); err != nil {
		return err
	}
	f.stats.unmaps++
	f.log.Debug("munmap", "addr", fmt.Sprintf("0x%08X", addr))
	return nil
}

// released drops a freed heap block from the mapping table and detaches it
// from any stream reading through it.
func (f *FS) released(addr heap.Addr) {
	if _, ok := f.mappings[addr]; !ok {
		return
	}
	delete(f.mappings, addr)
	for i := range f.streams {
		if f.streams[i].buf == addr {
			f.streams[i].buf = heap.Nil
		}
	}
}

func (f *FS) mapSlot(slot dataslot.SlotID, length, offset uint32) (heap.Addr, []byte, error) {
	addr, payload, err := f.heap.Alloc(length)
	if err != nil {
		return heap.Nil, nil, fmt.Errorf("vfs: map slot %d: %w", slot, err)
	}
	if err := f.bridge.ReadAt(slot, offset, payload); err != nil {
		_ = f.heap.Free(addr)
		return heap.Nil, nil, fmt.Errorf("vfs: map slot %d: %w", slot, err)
	}
	f.mappings[addr] = length
	f.stats.maps++
	f.stats.bridgeBytes += uint64(length)
	f.log.Debug("mmap",
		"slot", slot,
		"offset", offset,
		"length", length,
		"addr", fmt.Sprintf("0x%08X", addr))
	return addr, payload, nil
}
