package firmware

import (
	"log/slog"

	"github.com/joshuapare/pocketrt/board"
	"github.com/joshuapare/pocketrt/clock"
	"github.com/joshuapare/pocketrt/vfs"
)

// Config selects the heap window and the pieces Boot wires together.
type Config struct {
	// HeapBase and HeapSize bound the allocator arena. Both are aligned to
	// 8 bytes by the heap itself.
	HeapBase uint32
	HeapSize uint32

	// Names is the resource table. Nil selects the board table.
	Names vfs.NameTable

	// Counter drives the clock. Nil selects a host-time counter.
	Counter clock.Counter
	ClockHz uint64

	// Banner is printed on the terminal after boot. Empty disables it.
	Banner string

	// HeapTrace enables per-call allocator debug logs.
	HeapTrace bool

	Logger *slog.Logger
}

// DefaultConfig returns the board layout.
func DefaultConfig() Config {
	return Config{
		HeapBase: board.HeapBase,
		HeapSize: board.HeapSize,
		ClockHz:  board.CPUFreqHz,
		Banner:   "VexRiscv on Analogue Pocket\n===========================\n\n",
	}
}
