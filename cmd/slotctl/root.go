package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pocketrt/board"
	"github.com/joshuapare/pocketrt/dataslot"
	"github.com/joshuapare/pocketrt/firmware"
	"github.com/joshuapare/pocketrt/internal/logger"
	"github.com/joshuapare/pocketrt/internal/sdram"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	noColor bool

	// Board flags
	manifestPath string
	slotDir      string
	heapBase     string
	heapSize     string
	bandwidth    int
	logLevel     string
)

// stdout is swapped by tests.
var stdout io.Writer = os.Stdout

var rootCmd = &cobra.Command{
	Use:   "slotctl",
	Short: "Boot an emulated Pocket firmware image and inspect its data slots",
	Long: `slotctl pre-loads data slot files into an emulated SDRAM image,
boots the firmware runtime over it, and lets you inspect slots, read them
through the file layer, exercise the heap, and export runtime metrics.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "", "Write runtime logs to stderr at this level (debug, info, warn, error)")

	// Board flags
	rootCmd.PersistentFlags().
		StringVarP(&manifestPath, "manifest", "m", "", "data.json describing the slots (default: built-in layout)")
	rootCmd.PersistentFlags().StringVarP(&slotDir, "dir", "d", ".", "Directory holding the slot files")
	rootCmd.PersistentFlags().
		StringVar(&heapBase, "heap-base", fmt.Sprintf("0x%08X", board.HeapBase), "Heap start address")
	rootCmd.PersistentFlags().
		StringVar(&heapSize, "heap-size", fmt.Sprintf("0x%X", board.HeapSize), "Heap size in bytes")
	rootCmd.PersistentFlags().
		IntVar(&bandwidth, "bandwidth", 0, "Throttle slot reads to this many bytes per second (0 = unlimited)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

func initLogging() error {
	if logLevel == "" {
		logger.Init(logger.Options{Enabled: logger.AllocLogging(), JSON: jsonOut})
		return nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	logger.Init(logger.Options{Enabled: true, Level: level, JSON: jsonOut})
	return nil
}

// bootBoard pre-loads the slots named by the manifest into a fresh SDRAM
// image and boots the runtime over it.
func bootBoard(ctx context.Context) (*firmware.System, *dataslot.Resident, error) {
	m := dataslot.DefaultManifest()
	if manifestPath != "" {
		var err error
		if m, err = dataslot.LoadManifest(manifestPath); err != nil {
			return nil, nil, fmt.Errorf("failed to load manifest: %w", err)
		}
	}

	cfg := firmware.DefaultConfig()
	cfg.Banner = ""
	base, err := parseU32(heapBase)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --heap-base: %w", err)
	}
	size, err := parseU32(heapSize)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --heap-size: %w", err)
	}
	cfg.HeapBase, cfg.HeapSize = base, size

	printVerbose("Pre-loading slots from %s\n", slotDir)
	mem := sdram.New(board.SDRAMBase, board.SDRAMSize)
	resident, err := dataslot.Preload(ctx, mem, m, slotDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to pre-load slots: %w", err)
	}

	var bridge dataslot.Bridge = resident
	if bandwidth > 0 {
		printVerbose("Throttling slot reads to %d B/s\n", bandwidth)
		bridge = dataslot.Throttle(resident, bandwidth)
	}

	sys, err := firmware.Boot(ctx, cfg, mem, bridge)
	if err != nil {
		return nil, nil, err
	}
	printVerbose("Heap: 0x%08X-0x%08X (%d bytes)\n", sys.Heap.Start(), sys.Heap.End(), sys.Heap.Size())
	return sys, resident, nil
}

func parseU32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// formatSize renders a byte count the way info output shows file sizes.
func formatSize(size uint64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d bytes", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	}
}
