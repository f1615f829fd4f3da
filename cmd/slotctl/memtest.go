package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pocketrt/board"
	"github.com/joshuapare/pocketrt/clock"
	"github.com/joshuapare/pocketrt/firmware"
	"github.com/joshuapare/pocketrt/internal/sdram"
	"github.com/joshuapare/pocketrt/term"
)

var (
	memtestStart string
	memtestSize  string
	memtestTerm  bool
)

func init() {
	rootCmd.AddCommand(newMemtestCmd())
}

func newMemtestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memtest",
		Short: "Run the SDRAM pattern test over the heap region",
		Long: `The memtest command runs the firmware's destructive SDRAM test on a
fresh emulated image: a read/write sanity check, three XOR pattern passes in
64 KiB chunks, and a word read/write timing.

Example:
  slotctl memtest
  slotctl memtest --start 0x12100000 --size 0x400000 --term`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMemtest(cmd)
		},
	}
	cmd.Flags().StringVar(&memtestStart, "start", fmt.Sprintf("0x%08X", board.HeapBase), "First address to test")
	cmd.Flags().StringVar(&memtestSize, "size", "0x100000", "Bytes to test")
	cmd.Flags().BoolVar(&memtestTerm, "term", false, "Print progress on the emulated display instead of stdout")
	return cmd
}

func runMemtest(cmd *cobra.Command) error {
	start, err := parseU32(memtestStart)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	size, err := parseU32(memtestSize)
	if err != nil {
		return fmt.Errorf("invalid --size: %w", err)
	}

	mem := sdram.New(board.SDRAMBase, board.SDRAMSize)
	clk := clock.New(clock.NewHostCounter(board.CPUFreqHz), board.CPUFreqHz)

	var out io.Writer = stdout
	var display *term.Terminal
	switch {
	case memtestTerm:
		display = term.New()
		out = display
	case jsonOut || quiet:
		out = io.Discard
	}

	rep, err := firmware.MemTest(cmd.Context(), mem, clk, out, start, size)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(rep)
	}
	if display != nil {
		printInfo("%s\n", plain(screenStyle).Width(term.Cols+2).Render(display.String()))
	}
	if !rep.OK() {
		return fmt.Errorf("memtest found %d faulty words", rep.Errors())
	}
	return nil
}
