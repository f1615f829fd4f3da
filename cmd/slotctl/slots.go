package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newSlotsCmd())
}

func newSlotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Pre-load the data slots and list where they landed",
		Long: `The slots command pre-loads every slot named by the manifest into the
emulated SDRAM image and prints each slot's id, name, load address and size,
together with the name the file layer resolves to it.

Example:
  slotctl slots --dir ./assets
  slotctl slots --manifest data.json --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlots(cmd)
		},
	}
	return cmd
}

type slotInfo struct {
	ID      uint16   `json:"id"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Size    uint32   `json:"size"`
	Files   []string `json:"files,omitempty"`
}

func runSlots(cmd *cobra.Command) error {
	sys, resident, err := bootBoard(cmd.Context())
	if err != nil {
		return err
	}

	byslot := make(map[uint16][]string)
	for name, id := range sys.FS.Names() {
		byslot[id] = append(byslot[id], name)
	}
	for _, names := range byslot {
		slices.Sort(names)
	}

	var infos []slotInfo
	for _, s := range resident.Slots() {
		infos = append(infos, slotInfo{
			ID:      s.ID,
			Name:    s.Name,
			Address: fmt.Sprintf("0x%08X", s.Addr),
			Size:    s.Size,
			Files:   byslot[s.ID],
		})
	}

	if jsonOut {
		return printJSON(infos)
	}

	printInfo("\nData Slots:\n")
	for _, s := range infos {
		printInfo("  [%d] %-10s %s  %s\n", s.ID, s.Name, s.Address, formatSize(uint64(s.Size)))
		for _, f := range s.Files {
			printVerbose("      file: %s\n", f)
		}
	}
	printInfo("\nBridge ready: %v\n", resident.Ready())
	return nil
}
