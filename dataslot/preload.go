package dataslot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/pocketrt/internal/logger"
	"github.com/joshuapare/pocketrt/internal/mmfile"
	"github.com/joshuapare/pocketrt/internal/sdram"
)

// Preload copies every slot named by m from dir into mem, the way the host
// does before releasing the CPU from reset, and returns a ready bridge.
//
// For a slot file "model.bin" the loader accepts model.bin, model.bin.zst or
// model.bin.lz4, in that order. Slots are loaded concurrently.
func Preload(ctx context.Context, mem *sdram.Memory, m *Manifest, dir string) (*Resident, error) {
	specs, err := m.Slots()
	if err != nil {
		return nil, err
	}
	limits, err := windowLimits(mem, specs)
	if err != nil {
		return nil, err
	}

	slots := make([]Slot, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := loadSlot(mem, spec, limits[i], dir)
			if err != nil {
				return fmt.Errorf("slot %d (%s): %w", spec.ID, spec.Filename, err)
			}
			slots[i] = Slot{ID: spec.ID, Name: spec.Name, Addr: spec.Addr, Size: n}
			logger.L.Debug("slot loaded",
				"id", spec.ID,
				"file", spec.Filename,
				"addr", fmt.Sprintf("0x%08X", spec.Addr),
				"size", n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r, err := NewResident(mem, slots)
	if err != nil {
		return nil, err
	}
	r.MarkReady()
	return r, nil
}

// windowLimits sizes every slot's load window before anything is written.
// A slot without a maximum size runs up to the next slot or the end of SDRAM.
// Windows that share bytes are rejected with ErrOverlap.
func windowLimits(mem *sdram.Memory, specs []SlotSpec) ([]uint32, error) {
	order := make([]int, len(specs))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		switch {
		case specs[a].Addr < specs[b].Addr:
			return -1
		case specs[a].Addr > specs[b].Addr:
			return 1
		default:
			return 0
		}
	})

	limits := make([]uint32, len(specs))
	for k, i := range order {
		spec := specs[i]
		if !mem.Contains(spec.Addr, 0) {
			return nil, fmt.Errorf("slot %d at 0x%08X: %w", spec.ID, spec.Addr, sdram.ErrOutOfRange)
		}
		end := mem.End()
		if spec.MaxSize != 0 {
			end = uint64(spec.Addr) + uint64(spec.MaxSize)
		}
		if k+1 < len(order) {
			next := specs[order[k+1]]
			switch {
			case next.Addr == spec.Addr || (spec.MaxSize != 0 && end > uint64(next.Addr)):
				return nil, fmt.Errorf("%w: slot %d at 0x%08X and slot %d at 0x%08X",
					ErrOverlap, spec.ID, spec.Addr, next.ID, next.Addr)
			case spec.MaxSize == 0:
				end = uint64(next.Addr)
			}
		}
		limits[i] = uint32(end - uint64(spec.Addr))
	}
	return limits, nil
}

// loadSlot fills the slot's window with the decoded image and returns its size.
func loadSlot(mem *sdram.Memory, spec SlotSpec, limit uint32, dir string) (uint32, error) {
	window, err := mem.Window(spec.Addr, limit)
	if err != nil {
		return 0, err
	}

	base := filepath.Join(dir, spec.Filename)
	for _, path := range []string{base, base + ".zst", base + ".lz4"} {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return 0, err
		}
		switch {
		case strings.HasSuffix(path, ".zst"):
			return loadCompressed(path, window, func(r io.Reader) (io.Reader, func(), error) {
				dec, err := zstd.NewReader(r)
				if err != nil {
					return nil, nil, err
				}
				return dec, dec.Close, nil
			})
		case strings.HasSuffix(path, ".lz4"):
			return loadCompressed(path, window, func(r io.Reader) (io.Reader, func(), error) {
				return lz4.NewReader(r), func() {}, nil
			})
		default:
			return loadPlain(path, window)
		}
	}
	return 0, fmt.Errorf("%s: %w", base, os.ErrNotExist)
}

func loadPlain(path string, window []byte) (uint32, error) {
	data, release, err := mmfile.Map(path)
	if err != nil {
		return 0, err
	}
	defer release()

	if len(data) > len(window) {
		return 0, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(data), len(window))
	}
	return uint32(copy(window, data)), nil
}

func loadCompressed(path string, window []byte, open func(io.Reader) (io.Reader, func(), error)) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r, done, err := open(f)
	if err != nil {
		return 0, err
	}
	defer done()

	return readInto(r, window)
}

// readInto decodes r into window and fails if the stream holds more bytes
// than the window can take.
func readInto(r io.Reader, window []byte) (uint32, error) {
	n, err := io.ReadFull(r, window)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return uint32(n), nil
	case err != nil:
		return 0, err
	}

	var probe [1]byte
	if m, _ := io.ReadFull(r, probe[:]); m > 0 {
		return 0, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, len(window))
	}
	return uint32(n), nil
}
