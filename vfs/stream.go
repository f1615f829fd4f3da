package vfs

import (
	"fmt"
	"io"

	"github.com/joshuapare/pocketrt/dataslot"
	"github.com/joshuapare/pocketrt/heap"
)

type stream struct {
	slot   dataslot.SlotID
	size   uint32
	offset uint32
	buf    heap.Addr // attached copy of the whole slot, or Nil
	used   bool
	gen    uint32
}

// File is an open stream. A File stays tied to the pool entry it was opened
// on; after Close every method reports ErrClosed even if the entry is reused.
type File struct {
	fs   *FS
	idx  int
	gen  uint32
	name string
}

var (
	_ io.ReadSeekCloser = (*File)(nil)
	_ io.Writer         = (*File)(nil)
)

// Open resolves name and takes a handle from the stream pool. The position
// starts at 0.
func (f *FS) Open(name string) (*File, error) {
	id, size, err := f.resolve(name)
	if err != nil {
		f.stats.openFailures++
		return nil, err
	}
	for i := range f.streams {
		s := &f.streams[i]
		if s.used {
			continue
		}
		s.slot = id
		s.size = size
		s.offset = 0
		s.buf = heap.Nil
		s.used = true
		f.stats.opens++
		f.log.Debug("open", "name", name, "slot", id, "size", size)
		return &File{fs: f, idx: i, gen: s.gen, name: name}, nil
	}
	f.stats.openFailures++
	return nil, fmt.Errorf("%w: %q", ErrTooManyOpen, name)
}

func (fl *File) state() (*stream, error) {
	if fl == nil || fl.fs == nil {
		return nil, ErrClosed
	}
	s := &fl.fs.streams[fl.idx]
	if !s.used || s.gen != fl.gen {
		return nil, ErrClosed
	}
	return s, nil
}

// Name returns the name the file was opened with.
func (fl *File) Name() string { return fl.name }

// Read implements io.Reader. Reads are truncated at the end of the slot.
func (fl *File) Read(p []byte) (int, error) {
	n, err := fl.ReadElems(p, 1)
	if err != nil {
		return n, err
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// ReadElems reads as many whole elemSize-byte elements as fit in p and
// remain in the slot, and returns the element count. Partial elements at the
// end of the slot are not read. A zero element size or a p shorter than one
// element reads nothing.
func (fl *File) ReadElems(p []byte, elemSize int) (int, error) {
	s, err := fl.state()
	if err != nil {
		return 0, err
	}
	if elemSize <= 0 || len(p) < elemSize {
		return 0, nil
	}

	count := len(p) / elemSize
	if avail := int(s.size - s.offset); count*elemSize > avail {
		count = avail / elemSize
	}
	total := count * elemSize
	if total == 0 {
		return 0, nil
	}

	if err := fl.fs.copyOut(s, p[:total]); err != nil {
		return 0, err
	}
	s.offset += uint32(total)
	return count, nil
}

// Seek implements io.Seeker. The resulting offset must lie in [0, Size].
func (fl *File) Seek(offset int64, whence int) (int64, error) {
	s, err := fl.state()
	if err != nil {
		return 0, err
	}
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(s.offset)
	case io.SeekEnd:
		base = int64(s.size)
	default:
		return 0, fmt.Errorf("%w: whence %d", ErrInvalidSeek, whence)
	}
	pos := base + offset
	if pos < 0 || pos > int64(s.size) {
		return 0, fmt.Errorf("%w: offset %d outside [0, %d]", ErrInvalidSeek, pos, s.size)
	}
	s.offset = uint32(pos)
	return pos, nil
}

// Tell returns the current position.
func (fl *File) Tell() (int64, error) {
	s, err := fl.state()
	if err != nil {
		return 0, err
	}
	return int64(s.offset), nil
}

// Rewind moves the position back to 0.
func (fl *File) Rewind() error {
	_, err := fl.Seek(0, io.SeekStart)
	return err
}

// EOF reports whether the position is at the end of the slot. A closed file
// is always at EOF.
func (fl *File) EOF() bool {
	s, err := fl.state()
	if err != nil {
		return true
	}
	return s.offset >= s.size
}

// Size returns the slot size captured at Open.
func (fl *File) Size() uint32 {
	s, err := fl.state()
	if err != nil {
		return 0
	}
	return s.size
}

// Slot returns the backing slot id.
func (fl *File) Slot() dataslot.SlotID {
	s, err := fl.state()
	if err != nil {
		return 0
	}
	return s.slot
}

// Write always fails; slots are read-only.
func (fl *File) Write(p []byte) (int, error) {
	if _, err := fl.state(); err != nil {
		return 0, err
	}
	return 0, ErrReadOnly
}

// Flush is a no-op on an open file.
func (fl *File) Flush() error {
	_, err := fl.state()
	return err
}

// Map copies the whole slot into a heap buffer and attaches it, so later reads
// copy from memory instead of the bridge. Calling Map again returns the same
// buffer. The buffer outlives Close; release it with Munmap or Heap.Free.
func (fl *File) Map() (heap.Addr, error) {
	s, err := fl.state()
	if err != nil {
		return heap.Nil, err
	}
	if s.buf != heap.Nil {
		return s.buf, nil
	}
	addr, _, err := fl.fs.mapSlot(s.slot, s.size, 0)
	if err != nil {
		return heap.Nil, err
	}
	s.buf = addr
	return addr, nil
}

// Close returns the handle to the pool. An attached buffer is not released.
func (fl *File) Close() error {
	s, err := fl.state()
	if err != nil {
		return err
	}
	s.used = false
	s.buf = heap.Nil
	s.gen++
	fl.fs.log.Debug("close", "name", fl.name, "slot", s.slot)
	return nil
}

// copyOut fills p from the stream's current position.
func (f *FS) copyOut(s *stream, p []byte) error {
	if s.buf != heap.Nil {
		src, err := f.heap.Bytes(s.buf, s.size)
		if err != nil {
			return fmt.Errorf("vfs: attached buffer: %w", err)
		}
		copy(p, src[s.offset:])
		f.stats.bufferBytes += uint64(len(p))
		return nil
	}
	if err := f.bridge.ReadAt(s.slot, s.offset, p); err != nil {
		return err
	}
	f.stats.bridgeBytes += uint64(len(p))
	return nil
}
