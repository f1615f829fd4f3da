package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pocketrt/firmware"
	"github.com/joshuapare/pocketrt/internal/writer"
)

var (
	dumpRegion string
	dumpOps    int
)

func init() {
	rootCmd.AddCommand(newDumpCmd())
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <output>",
		Short: "Write a memory region of the booted board to a file",
		Long: `The dump command boots the runtime, optionally runs a heap workload,
and writes one region of the emulated memory to a file. Regions are "heap"
(the allocator arena), "display" (the 40x30 glyph cells) or "slot:<id>".

Example:
  slotctl dump heap.img --region heap --ops 1000
  slotctl dump tokenizer.img --region slot:1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd, args)
		},
	}
	cmd.Flags().StringVar(&dumpRegion, "region", "heap", "Region to dump: heap, display or slot:<id>")
	cmd.Flags().IntVar(&dumpOps, "ops", 0, "Heap operations to run before dumping")
	return cmd
}

func runDump(cmd *cobra.Command, args []string) error {
	sys, _, err := bootBoard(cmd.Context())
	if err != nil {
		return err
	}

	if dumpOps > 0 {
		w := newWorkload(sys.Heap, heapSeed, heapMaxSize, false)
		for i := range dumpOps {
			if err := w.step(); err != nil {
				return fmt.Errorf("operation %d: %w", i, err)
			}
		}
	}

	img, err := regionBytes(sys, dumpRegion)
	if err != nil {
		return err
	}
	if err := dumpTo(&writer.FileSink{Path: args[0]}, img); err != nil {
		return fmt.Errorf("failed to write %s: %w", args[0], err)
	}
	printInfo("Wrote %s of %s to %s\n", formatSize(uint64(len(img))), dumpRegion, args[0])
	return nil
}

func dumpTo(s writer.Sink, img []byte) error { return s.WriteImage(img) }

func regionBytes(sys *firmware.System, region string) ([]byte, error) {
	switch {
	case region == "heap":
		return sys.Mem.Window(sys.Heap.Start(), sys.Heap.Size())
	case region == "display":
		return sys.Term.Cells(), nil
	case strings.HasPrefix(region, "slot:"):
		id, err := strconv.ParseUint(strings.TrimPrefix(region, "slot:"), 0, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid slot in region %q: %w", region, err)
		}
		size, err := sys.Bridge.Size(uint16(id))
		if err != nil {
			return nil, err
		}
		img := make([]byte, size)
		if err := sys.Bridge.ReadAt(uint16(id), 0, img); err != nil {
			return nil, err
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unknown region %q", region)
	}
}
