package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/joshuapare/pocketrt/vfs"
)

var (
	catOffset int64
	catLength int64
	catHex    bool
	catMmap   bool
)

func init() {
	rootCmd.AddCommand(newCatCmd())
}

func newCatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat <name>",
		Short: "Read a resource through the file layer",
		Long: `The cat command boots the runtime and copies a resource to stdout
through the stream API, or through a descriptor mapping with --mmap.

Example:
  slotctl cat tokenizer.bin --length 64 --hex
  slotctl cat /sd/model.bin --offset 28 --length 16 --hex --mmap`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCat(cmd, args)
		},
	}
	cmd.Flags().Int64Var(&catOffset, "offset", 0, "Start offset")
	cmd.Flags().Int64Var(&catLength, "length", -1, "Bytes to read (-1 = to end)")
	cmd.Flags().BoolVar(&catHex, "hex", false, "Print a hex dump instead of raw bytes")
	cmd.Flags().BoolVar(&catMmap, "mmap", false, "Read through OpenFD and Mmap instead of a stream")
	return cmd
}

func runCat(cmd *cobra.Command, args []string) error {
	name := args[0]

	sys, _, err := bootBoard(cmd.Context())
	if err != nil {
		return err
	}

	var data []byte
	if catMmap {
		data, err = catMapped(sys.FS, name)
	} else {
		data, err = catStream(sys.FS, name)
	}
	if err != nil {
		return err
	}
	printVerbose("Read %d bytes from %s\n", len(data), name)

	if catHex {
		dumper := hex.Dumper(stdout)
		defer dumper.Close()
		_, err = dumper.Write(data)
		return err
	}
	_, err = stdout.Write(data)
	return err
}

func catStream(fs *vfs.FS, name string) ([]byte, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	if _, err := f.Seek(catOffset, io.SeekStart); err != nil {
		return nil, err
	}
	var r io.Reader = f
	if catLength >= 0 {
		r = io.LimitReader(f, catLength)
	}
	return io.ReadAll(r)
}

func catMapped(fs *vfs.FS, name string) ([]byte, error) {
	fd, err := fs.OpenFD(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer fs.CloseFD(fd)

	size, err := fs.SeekFD(fd, 0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if catOffset < 0 || catOffset > size {
		return nil, fmt.Errorf("offset %d outside [0, %d]", catOffset, size)
	}
	length := size - catOffset
	if catLength >= 0 {
		length = min(length, catLength)
	}
	if length == 0 {
		return nil, nil
	}

	addr, p, err := fs.Mmap(fd, uint32(length), uint32(catOffset))
	if err != nil {
		return nil, fmt.Errorf("failed to map %s: %w", name, err)
	}
	out := append([]byte(nil), p...)
	return out, fs.Munmap(addr)
}
