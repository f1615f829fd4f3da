package clock

import "time"

// HostCounter emulates the cycle counter from the host's monotonic clock.
type HostCounter struct {
	start time.Time
	hz    uint64
}

// NewHostCounter returns a counter at zero that ticks hz times per second.
func NewHostCounter(hz uint64) *HostCounter {
	return &HostCounter{start: time.Now(), hz: hz}
}

func (h *HostCounter) cycles() uint64 {
	d := time.Since(h.start)
	sec := uint64(d / time.Second)
	ns := uint64(d % time.Second)
	return sec*h.hz + ns*h.hz/uint64(time.Second)
}

// Hi returns the upper 32 bits of the emulated counter.
func (h *HostCounter) Hi() uint32 { return uint32(h.cycles() >> 32) }

// Lo returns the lower 32 bits of the emulated counter.
func (h *HostCounter) Lo() uint32 { return uint32(h.cycles()) }
