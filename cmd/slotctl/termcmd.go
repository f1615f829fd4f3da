package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/joshuapare/pocketrt/firmware"
	"github.com/joshuapare/pocketrt/term"
)

var (
	termLimit int64
	termRaw   bool
)

func init() {
	rootCmd.AddCommand(newTermCmd())
}

func newTermCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "term [name]",
		Short: "Render the 40x30 display after boot",
		Long: `The term command boots the runtime and shows its character display.
With a resource name, the resource is streamed onto the display first, the
way firmware printing a text file would; older lines scroll off the top.

Example:
  slotctl term
  slotctl term notes.txt --limit 2048
  slotctl term --raw`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTerm(cmd, args)
		},
	}
	cmd.Flags().Int64Var(&termLimit, "limit", 4096, "Bytes of the resource to print")
	cmd.Flags().BoolVar(&termRaw, "raw", false, "Print the display without a frame")
	return cmd
}

func runTerm(cmd *cobra.Command, args []string) error {
	sys, _, err := bootBoard(cmd.Context())
	if err != nil {
		return err
	}

	t := sys.Term
	if len(args) == 0 {
		bootScreen(sys)
	} else if err := printResource(sys, args[0]); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(struct {
			Lines []string `json:"lines"`
		}{t.Lines()})
	}

	if termRaw {
		printInfo("%s\n", t.String())
		return nil
	}
	printInfo("%s\n", renderScreen(t, sys))
	return nil
}

func bootScreen(sys *firmware.System) {
	t := sys.Term
	_, _ = t.WriteString(firmware.DefaultConfig().Banner)
	t.Printf("Heap: 0x%08X-0x%08X\n", sys.Heap.Start(), sys.Heap.End())
	names := sys.FS.Names()
	for _, name := range slices.Sorted(maps.Keys(names)) {
		id := names[name]
		size, err := sys.Bridge.Size(id)
		if err != nil {
			continue
		}
		t.Printf("Slot %d %-14s ", id, name)
		t.PutHex(size, 8)
		t.PutChar('\n')
	}
}

func printResource(sys *firmware.System, name string) error {
	f, err := sys.FS.Open(name)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	var r io.Reader = f
	if termLimit >= 0 {
		r = io.LimitReader(f, termLimit)
	}
	n, err := io.Copy(sys.Term, r)
	printVerbose("Printed %d bytes of %s\n", n, name)
	return err
}

func renderScreen(t *term.Terminal, sys *firmware.System) string {
	body := strings.Join(t.Lines(), "\n")
	screen := plain(screenStyle).Width(term.Cols + 2).Render(body)

	row, col := t.Pos()
	status := plain(statusStyle).Render(
		fmt.Sprintf("cursor %d,%d  uptime %s", row, col, sys.Uptime()))

	return lipgloss.JoinVertical(lipgloss.Left,
		plain(titleStyle).Render("Pocket display"),
		screen,
		status,
	)
}
