package dataslot

import (
	"fmt"
	"math"
	"runtime"
	"slices"
	"sync/atomic"

	"github.com/joshuapare/pocketrt/internal/buf"
	"github.com/joshuapare/pocketrt/internal/sdram"
)

// Slot describes one loaded slot image.
type Slot struct {
	ID   SlotID
	Name string
	Addr uint32 // SDRAM address of the first byte
	Size uint32 // Bytes loaded
}

// Resident serves slots that are already present in an SDRAM image.
type Resident struct {
	mem   *sdram.Memory
	slots map[SlotID]Slot
	ready atomic.Bool
}

var _ Bridge = (*Resident)(nil)

// NewResident validates that every slot lies inside mem and that no two
// slots overlap. The returned bridge is not ready until MarkReady.
func NewResident(mem *sdram.Memory, slots []Slot) (*Resident, error) {
	r := &Resident{mem: mem, slots: make(map[SlotID]Slot, len(slots))}

	sorted := slices.Clone(slots)
	slices.SortFunc(sorted, func(a, b Slot) int {
		switch {
		case a.Addr < b.Addr:
			return -1
		case a.Addr > b.Addr:
			return 1
		default:
			return 0
		}
	})

	var prevEnd uint64
	for i, s := range sorted {
		if _, dup := r.slots[s.ID]; dup {
			return nil, fmt.Errorf("dataslot: slot %d declared twice", s.ID)
		}
		if !mem.Contains(s.Addr, s.Size) {
			return nil, fmt.Errorf("slot %d at 0x%08X+%d: %w", s.ID, s.Addr, s.Size, sdram.ErrOutOfRange)
		}
		if i > 0 && uint64(s.Addr) < prevEnd {
			return nil, fmt.Errorf("%w: slot %d at 0x%08X", ErrOverlap, s.ID, s.Addr)
		}
		prevEnd = uint64(s.Addr) + uint64(s.Size)
		r.slots[s.ID] = s
	}
	return r, nil
}

// MarkReady raises the completion flag.
func (r *Resident) MarkReady() { r.ready.Store(true) }

// Ready reports whether the completion flag is set.
func (r *Resident) Ready() bool { return r.ready.Load() }

// WaitReady spins until MarkReady has been called.
func (r *Resident) WaitReady() {
	for !r.ready.Load() {
		runtime.Gosched()
	}
}

// Slots returns the slot table ordered by id.
func (r *Resident) Slots() []Slot {
	out := make([]Slot, 0, len(r.slots))
	for _, s := range r.slots {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Slot) int { return int(a.ID) - int(b.ID) })
	return out
}

// Size returns the loaded size of slot id.
func (r *Resident) Size(id SlotID) (uint32, error) {
	s, ok := r.slots[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrNoSlot, id)
	}
	return s.Size, nil
}

// ReadAt copies len(p) bytes at off within slot id. The whole range must lie
// inside the slot; nothing is copied otherwise.
func (r *Resident) ReadAt(id SlotID, off uint32, p []byte) error {
	s, ok := r.slots[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoSlot, id)
	}
	if uint64(len(p)) > math.MaxUint32 {
		return fmt.Errorf("%w: slot %d: %d byte read", ErrOutOfRange, id, len(p))
	}
	if _, err := buf.CheckRange(s.Size, off, uint32(len(p))); err != nil {
		return fmt.Errorf("%w: slot %d: %w", ErrOutOfRange, id, err)
	}
	src, err := r.mem.Window(s.Addr+off, uint32(len(p)))
	if err != nil {
		return err
	}
	copy(p, src)
	return nil
}

// View returns the resident bytes of slot id without copying.
func (r *Resident) View(id SlotID) ([]byte, error) {
	s, ok := r.slots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoSlot, id)
	}
	return r.mem.Window(s.Addr, s.Size)
}

func (r *Resident) Load(SlotID, []byte) (int, error) { return 0, ErrNotSupported }

func (r *Resident) LoadToAddr(SlotID, uint32) (int, error) { return 0, ErrNotSupported }
