package dataslot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joshuapare/pocketrt/board"
)

// Manifest is the subset of data.json the loader understands.
//
//	{"data": {"magic": "APF_VER_1", "data_slots": [
//	  {"id": 0, "name": "Model", "filename": "model.bin",
//	   "address": "0x10000000", "size_maximum": "0x2000000"}
//	]}}
type Manifest struct {
	Data struct {
		Magic     string         `json:"magic"`
		DataSlots []ManifestSlot `json:"data_slots"`
	} `json:"data"`
}

// ManifestSlot is one entry of data.data_slots.
type ManifestSlot struct {
	ID          SlotID `json:"id"`
	Name        string `json:"name"`
	Filename    string `json:"filename"`
	Address     string `json:"address"`
	SizeMaximum string `json:"size_maximum,omitempty"`
}

// SlotSpec is a decoded manifest entry.
type SlotSpec struct {
	ID       SlotID
	Name     string
	Filename string
	Addr     uint32
	MaxSize  uint32 // 0 = up to the end of SDRAM
}

// ParseManifest decodes data.json from r.
func ParseManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := json.NewDecoder(r)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadManifest, err)
	}
	if _, err := m.Slots(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifest reads and decodes the data.json at path.
func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseManifest(f)
}

// DefaultManifest describes the two slots the firmware ships with.
func DefaultManifest() *Manifest {
	var m Manifest
	m.Data.Magic = "APF_VER_1"
	m.Data.DataSlots = []ManifestSlot{
		{
			ID:          board.SlotModel,
			Name:        "Model",
			Filename:    "model.bin",
			Address:     fmt.Sprintf("0x%08X", board.ModelAddr),
			SizeMaximum: fmt.Sprintf("0x%X", board.TokenizerAddr-board.ModelAddr),
		},
		{
			ID:          board.SlotTokenizer,
			Name:        "Tokenizer",
			Filename:    "tokenizer.bin",
			Address:     fmt.Sprintf("0x%08X", board.TokenizerAddr),
			SizeMaximum: fmt.Sprintf("0x%X", board.HeapBase-board.TokenizerAddr),
		},
	}
	return &m
}

// Slots decodes the hex address fields of every entry.
func (m *Manifest) Slots() ([]SlotSpec, error) {
	specs := make([]SlotSpec, 0, len(m.Data.DataSlots))
	for _, s := range m.Data.DataSlots {
		if s.Filename == "" {
			return nil, fmt.Errorf("%w: slot %d has no filename", ErrBadManifest, s.ID)
		}
		addr, err := strconv.ParseUint(s.Address, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: slot %d address %q: %w", ErrBadManifest, s.ID, s.Address, err)
		}
		var maxSize uint64
		if s.SizeMaximum != "" {
			maxSize, err = strconv.ParseUint(s.SizeMaximum, 0, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: slot %d size %q: %w", ErrBadManifest, s.ID, s.SizeMaximum, err)
			}
		}
		specs = append(specs, SlotSpec{
			ID:       s.ID,
			Name:     s.Name,
			Filename: s.Filename,
			Addr:     uint32(addr),
			MaxSize:  uint32(maxSize),
		})
	}
	return specs, nil
}
