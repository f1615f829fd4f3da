// Package firmware boots the runtime: it waits for the slot bridge, brings up
// the heap over SDRAM and builds the file layer, terminal and clock on top.
//
// Every subsystem hangs off one System value instead of package globals, so
// several emulated boards can live in one process.
package firmware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/joshuapare/pocketrt/board"
	"github.com/joshuapare/pocketrt/clock"
	"github.com/joshuapare/pocketrt/dataslot"
	"github.com/joshuapare/pocketrt/heap"
	"github.com/joshuapare/pocketrt/internal/logger"
	"github.com/joshuapare/pocketrt/internal/sdram"
	"github.com/joshuapare/pocketrt/term"
	"github.com/joshuapare/pocketrt/vfs"
)

// System is one booted board.
type System struct {
	Mem    *sdram.Memory
	Bridge dataslot.Bridge
	Heap   *heap.Heap
	FS     *vfs.FS
	Term   *term.Terminal
	Clock  *clock.Clock

	bootCycles uint64
	log        *slog.Logger
}

type readier interface {
	Ready() bool
}

// Boot waits for the bridge to finish pre-loading, initializes the heap once
// over mem and assembles the remaining subsystems. The wait honours ctx when
// the bridge can report readiness without blocking.
func Boot(ctx context.Context, cfg Config, mem *sdram.Memory, bridge dataslot.Bridge) (*System, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.L
	}

	if err := waitReady(ctx, bridge); err != nil {
		return nil, fmt.Errorf("firmware: waiting for data slots: %w", err)
	}

	h := heap.New(mem, heap.WithLogger(log), heap.WithTrace(cfg.HeapTrace || logger.AllocLogging()))
	if err := h.Init(cfg.HeapBase, cfg.HeapSize); err != nil {
		return nil, fmt.Errorf("firmware: heap: %w", err)
	}

	fsOpts := []vfs.Option{vfs.WithLogger(log)}
	if cfg.Names != nil {
		fsOpts = append(fsOpts, vfs.WithNames(cfg.Names))
	}

	hz := cfg.ClockHz
	if hz == 0 {
		hz = board.CPUFreqHz
	}
	counter := cfg.Counter
	if counter == nil {
		counter = clock.NewHostCounter(hz)
	}

	sys := &System{
		Mem:    mem,
		Bridge: bridge,
		Heap:   h,
		FS:     vfs.New(bridge, h, fsOpts...),
		Term:   term.New(),
		Clock:  clock.New(counter, hz),
		log:    log,
	}
	sys.bootCycles = sys.Clock.Cycles()

	if cfg.Banner != "" {
		_, _ = sys.Term.WriteString(cfg.Banner)
	}

	log.Info("boot complete",
		"heap_start", fmt.Sprintf("0x%08X", h.Start()),
		"heap_size", h.Size())
	return sys, nil
}

func waitReady(ctx context.Context, b dataslot.Bridge) error {
	r, ok := b.(readier)
	if !ok {
		b.WaitReady()
		return nil
	}
	for !r.Ready() {
		if err := ctx.Err(); err != nil {
			return err
		}
		runtime.Gosched()
	}
	return nil
}

// Uptime returns the time elapsed since Boot returned.
func (s *System) Uptime() time.Duration {
	return s.Clock.Since(s.bootCycles)
}

// Snapshot returns heap and file-layer statistics.
func (s *System) Snapshot() (heap.Stats, vfs.Stats) {
	return s.Heap.Stats(), s.FS.Stats()
}
