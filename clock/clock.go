// Package clock derives time from the free-running 64-bit cycle counter.
package clock

import (
	"time"

	"github.com/joshuapare/pocketrt/board"
)

// Counter exposes the two 32-bit halves of the cycle counter.
type Counter interface {
	Hi() uint32
	Lo() uint32
}

// Clock converts cycle counts to time at a fixed core frequency.
type Clock struct {
	c  Counter
	hz uint64
}

// New returns a clock over c ticking at hz. A zero hz selects board.CPUFreqHz.
func New(c Counter, hz uint64) *Clock {
	if hz == 0 {
		hz = board.CPUFreqHz
	}
	return &Clock{c: c, hz: hz}
}

// Hz returns the counter frequency.
func (c *Clock) Hz() uint64 { return c.hz }

// Cycles reads the counter. The high half is read on both sides of the low
// half and the read repeats until they agree, so a carry between the halves
// never produces a torn value.
func (c *Clock) Cycles() uint64 {
	for {
		hi := c.c.Hi()
		lo := c.c.Lo()
		if c.c.Hi() == hi {
			return uint64(hi)<<32 | uint64(lo)
		}
	}
}

// Seconds returns whole seconds since the counter started.
func (c *Clock) Seconds() uint64 { return c.Cycles() / c.hz }

// Elapsed returns the time since the counter started.
func (c *Clock) Elapsed() time.Duration { return c.Duration(c.Cycles()) }

// Since returns the time elapsed since an earlier Cycles reading.
func (c *Clock) Since(start uint64) time.Duration {
	return c.Duration(c.Cycles() - start)
}

// Duration converts a cycle count to a duration with nanosecond resolution.
func (c *Clock) Duration(cycles uint64) time.Duration {
	sec := cycles / c.hz
	rem := cycles % c.hz
	return time.Duration(sec)*time.Second + time.Duration(rem*uint64(time.Second)/c.hz)
}
