package dataslot

import (
	"time"

	"golang.org/x/time/rate"
)

// Throttled paces ReadAt to a fixed byte rate, emulating the bandwidth of the
// bridge between the host and SDRAM.
type Throttled struct {
	Bridge
	lim *rate.Limiter
}

// Throttle wraps b so that reads proceed at bytesPerSec. A non-positive rate
// returns b's reads unpaced.
func Throttle(b Bridge, bytesPerSec int) *Throttled {
	if bytesPerSec <= 0 {
		return &Throttled{Bridge: b, lim: rate.NewLimiter(rate.Inf, 0)}
	}
	return &Throttled{Bridge: b, lim: rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec)}
}

// ReadAt reads through the wrapped bridge, then blocks until len(p) bytes of
// budget have accrued.
func (t *Throttled) ReadAt(id SlotID, off uint32, p []byte) error {
	if err := t.Bridge.ReadAt(id, off, p); err != nil {
		return err
	}
	t.wait(len(p))
	return nil
}

func (t *Throttled) wait(n int) {
	if t.lim.Limit() == rate.Inf {
		return
	}
	burst := t.lim.Burst()
	for n > 0 {
		chunk := min(n, burst)
		r := t.lim.ReserveN(time.Now(), chunk)
		time.Sleep(r.Delay())
		n -= chunk
	}
}
