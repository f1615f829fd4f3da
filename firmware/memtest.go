package firmware

import (
	"context"
	"fmt"
	"io"

	"github.com/joshuapare/pocketrt/clock"
	"github.com/joshuapare/pocketrt/internal/buf"
	"github.com/joshuapare/pocketrt/internal/sdram"
)

// MemTestPatterns are the XOR seeds of the test passes. Word i of a pass
// holds pattern^i.
var MemTestPatterns = []uint32{0x5A5A5A5A, 0xFFFFFFFF, 0x00000000}

const (
	memTestChunk    = 64 * 1024
	memTestDotEvery = 4
	speedTestWords  = 1024
	sanityWord      = 0xDEADBEEF
)

// Fault is one word that did not read back as written.
type Fault struct {
	Addr  uint32
	Wrote uint32
	Read  uint32
}

// PassResult summarizes one pattern pass.
type PassResult struct {
	Pattern uint32
	Errors  uint32
	First   *Fault
}

// MemTestReport is the outcome of MemTest.
type MemTestReport struct {
	Start uint32
	Size  uint32

	Passes []PassResult

	ReadCyclesPerWord  float64
	WriteCyclesPerWord float64
}

// Errors returns the total faulty words across passes.
func (r MemTestReport) Errors() uint32 {
	var n uint32
	for _, p := range r.Passes {
		n += p.Errors
	}
	return n
}

// OK reports whether every pass read back clean.
func (r MemTestReport) OK() bool { return r.Errors() == 0 }

// MemTest destructively tests [start, start+size) of mem in 64 KiB chunks,
// one pass per pattern, then times word reads and writes with clk. Progress
// is printed to out. size is rounded down to whole words. The region must
// not hold the heap or any slot the caller still needs.
func MemTest(ctx context.Context, mem *sdram.Memory, clk *clock.Clock, out io.Writer, start, size uint32) (MemTestReport, error) {
	size &^= 3
	if start%4 != 0 || size == 0 {
		return MemTestReport{}, fmt.Errorf("firmware: memtest region 0x%08X+%d is not word aligned", start, size)
	}
	region, err := mem.Window(start, size)
	if err != nil {
		return MemTestReport{}, fmt.Errorf("firmware: memtest: %w", err)
	}

	report := MemTestReport{Start: start, Size: size}
	fmt.Fprintf(out, "=== SDRAM Test ===\n\n")
	fmt.Fprintf(out, "Region: 0x%08X-0x%08X (%d KiB)\n\n", start, uint64(start)+uint64(size), size/1024)

	buf.PutU32LE(region, 0, sanityWord)
	if got := buf.U32LE(region, 0); got != sanityWord {
		fmt.Fprintf(out, "FAIL: basic read/write broken\n")
		report.Passes = append(report.Passes, PassResult{
			Errors: 1,
			First:  &Fault{Addr: start, Wrote: sanityWord, Read: got},
		})
		return report, nil
	}
	fmt.Fprintf(out, "Basic R/W: OK\n\n")

	for pass, pattern := range MemTestPatterns {
		res := PassResult{Pattern: pattern}
		fmt.Fprintf(out, "Pass %d (0x%08X): ", pass+1, pattern)

		for chunk, off := 0, 0; off < len(region); chunk, off = chunk+1, off+memTestChunk {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			end := min(off+memTestChunk, len(region))
			w := region[off:end]
			firstWord := uint32(off / 4)

			writeChunk(w, pattern, firstWord)
			n, first := verifyChunk(w, pattern, firstWord, start+uint32(off))
			if n > 0 && res.First == nil {
				res.First = first
				fmt.Fprintf(out, "\n ERR@0x%08X w=%08X r=%08X", first.Addr, first.Wrote, first.Read)
			}
			res.Errors += n

			if chunk%memTestDotEvery == 0 {
				fmt.Fprint(out, ".")
			}
		}

		if res.Errors == 0 {
			fmt.Fprintf(out, " OK\n")
		} else {
			fmt.Fprintf(out, " %d errs\n", res.Errors)
		}
		report.Passes = append(report.Passes, res)
	}

	report.ReadCyclesPerWord, report.WriteCyclesPerWord = speedTest(region, clk)
	fmt.Fprintf(out, "\nSpeed: R=%.1f W=%.1f cyc/word\n", report.ReadCyclesPerWord, report.WriteCyclesPerWord)

	fmt.Fprintf(out, "\n===================\n")
	if report.OK() {
		fmt.Fprintf(out, "ALL TESTS PASSED!\n%d KiB verified OK\n", size/1024)
	} else {
		fmt.Fprintf(out, "FAILED: %d errors\n", report.Errors())
	}
	return report, nil
}

func writeChunk(w []byte, pattern, firstWord uint32) {
	for i := 0; i+4 <= len(w); i += 4 {
		buf.PutU32LE(w, i, pattern^(firstWord+uint32(i/4)))
	}
}

// verifyChunk counts words that differ from the pattern and returns the
// first one. base is the CPU address of w[0].
func verifyChunk(w []byte, pattern, firstWord, base uint32) (uint32, *Fault) {
	var (
		errs  uint32
		first *Fault
	)
	for i := 0; i+4 <= len(w); i += 4 {
		want := pattern ^ (firstWord + uint32(i/4))
		got := buf.U32LE(w, i)
		if got == want {
			continue
		}
		if first == nil {
			first = &Fault{Addr: base + uint32(i), Wrote: want, Read: got}
		}
		errs++
	}
	return errs, first
}

func speedTest(region []byte, clk *clock.Clock) (read, write float64) {
	words := min(speedTestWords, len(region)/4)
	if words == 0 || clk == nil {
		return 0, 0
	}
	for i := range words {
		buf.PutU32LE(region, i*4, uint32(i))
	}

	start := clk.Cycles()
	var sum uint32
	for i := range words {
		sum += buf.U32LE(region, i*4)
	}
	readCycles := clk.Cycles() - start
	_ = sum

	start = clk.Cycles()
	for i := range words {
		buf.PutU32LE(region, i*4, uint32(i))
	}
	writeCycles := clk.Cycles() - start

	return float64(readCycles) / float64(words), float64(writeCycles) / float64(words)
}
