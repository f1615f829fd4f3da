// Package board holds the compile-time configuration of the target: the
// SDRAM window, where the pre-loaded slots and the heap live inside it, the
// resource name table, and the fixed table capacities.
package board

// Memory layout. The bridge copies slot 0 to 0x10000000 and slot 1 to
// 0x12000000 before the CPU leaves reset.
//
//	0x10000000  Model slot (up to 32 MiB)
//	0x12000000  Tokenizer slot (up to 1 MiB)
//	0x12100000  Heap
//	0x14000000  End of SDRAM
const (
	SDRAMBase = 0x10000000
	SDRAMEnd  = 0x14000000
	SDRAMSize = SDRAMEnd - SDRAMBase

	HeapBase = 0x12100000
	HeapEnd  = SDRAMEnd
	HeapSize = HeapEnd - HeapBase

	// TerminalBase is the character-cell display buffer.
	TerminalBase = 0x20000000
)

// Slot identifiers and their SDRAM load addresses.
const (
	SlotModel     = 0
	SlotTokenizer = 1

	ModelAddr     = 0x10000000
	TokenizerAddr = 0x12000000
)

// Fixed table capacities of the file layer.
const (
	// MaxStreams is the number of stream handles that may be open at once.
	MaxStreams = 4

	// MaxDescriptors is the size of the descriptor table, indexed by slot id.
	MaxDescriptors = 16
)

// CPUFreqHz is the core clock that drives the cycle counter (12.288 MHz).
const CPUFreqHz = 12288000

// Terminal geometry: 320x240 with an 8x8 font.
const (
	TermCols = 40
	TermRows = 30
)

// Names maps every resource name the firmware can open to its slot.
var Names = map[string]uint16{
	"model.bin":     SlotModel,
	"tokenizer.bin": SlotTokenizer,
}
