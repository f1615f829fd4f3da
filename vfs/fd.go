package vfs

import (
	"fmt"
	"io"
	"math"

	"github.com/joshuapare/pocketrt/board"
	"github.com/joshuapare/pocketrt/dataslot"
)

type descriptor struct {
	slot   dataslot.SlotID
	size   uint32
	offset uint32
	used   bool
}

// FDForSlot returns the descriptor number for a slot.
func FDForSlot(slot dataslot.SlotID) int { return -int(slot) - 1 }

// SlotForFD is the inverse of FDForSlot. It reports false for numbers that
// cannot name a descriptor table entry.
func SlotForFD(fd int) (dataslot.SlotID, bool) {
	slot := -fd - 1
	if slot < 0 || slot >= board.MaxDescriptors {
		return 0, false
	}
	return dataslot.SlotID(slot), true
}

// OpenFD resolves name and opens a descriptor on its slot. Only slots below
// board.MaxDescriptors have descriptor entries, and each slot can be open
// once.
func (f *FS) OpenFD(name string) (int, error) {
	id, size, err := f.resolve(name)
	if err != nil {
		f.stats.openFailures++
		return 0, err
	}
	if int(id) >= board.MaxDescriptors {
		f.stats.openFailures++
		return 0, fmt.Errorf("%w: slot %d has no descriptor entry", ErrNotExist, id)
	}
	d := &f.fds[id]
	if d.used {
		f.stats.openFailures++
		return 0, fmt.Errorf("%w: slot %d", ErrBusy, id)
	}
	*d = descriptor{slot: id, size: size, used: true}
	f.stats.opens++
	fd := FDForSlot(id)
	f.log.Debug("openfd", "name", name, "slot", id, "fd", fd)
	return fd, nil
}

func (f *FS) descriptor(fd int) (*descriptor, error) {
	slot, ok := SlotForFD(fd)
	if !ok || !f.fds[slot].used {
		return nil, fmt.Errorf("%w: %d", ErrBadFD, fd)
	}
	return &f.fds[slot], nil
}

// CloseFD releases a descriptor. Mappings made through it stay valid.
func (f *FS) CloseFD(fd int) error {
	d, err := f.descriptor(fd)
	if err != nil {
		return err
	}
	d.used = false
	f.log.Debug("closefd", "fd", fd)
	return nil
}

// ReadFD copies up to len(p) bytes from the descriptor position and advances
// it. At or past the end of the slot it returns 0 and a nil error.
func (f *FS) ReadFD(fd int, p []byte) (int, error) {
	d, err := f.descriptor(fd)
	if err != nil {
		return 0, err
	}
	if d.offset >= d.size || len(p) == 0 {
		return 0, nil
	}
	n := min(uint64(len(p)), uint64(d.size-d.offset))
	if err := f.bridge.ReadAt(d.slot, d.offset, p[:n]); err != nil {
		return 0, err
	}
	d.offset += uint32(n)
	f.stats.bridgeBytes += n
	return int(n), nil
}

// SeekFD moves the descriptor position. Positions past the end are allowed;
// reads there return 0.
func (f *FS) SeekFD(fd int, offset int64, whence int) (int64, error) {
	d, err := f.descriptor(fd)
	if err != nil {
		return 0, err
	}
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(d.offset)
	case io.SeekEnd:
		base = int64(d.size)
	default:
		return 0, fmt.Errorf("%w: whence %d", ErrInvalidSeek, whence)
	}
	pos := base + offset
	if pos < 0 || pos > math.MaxUint32 {
		return 0, fmt.Errorf("%w: offset %d", ErrInvalidSeek, pos)
	}
	d.offset = uint32(pos)
	return pos, nil
}
