package dataslot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pocketrt/board"
)

const sampleManifest = `{
  "data": {
    "magic": "APF_VER_1",
    "data_slots": [
      {"id": 0, "name": "Model", "filename": "model.bin", "address": "0x10000000", "size_maximum": "0x2000000"},
      {"id": 1, "name": "Tokenizer", "filename": "tokenizer.bin", "address": "0x12000000"}
    ]
  }
}`

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest(strings.NewReader(sampleManifest))
	require.NoError(t, err)
	assert.Equal(t, "APF_VER_1", m.Data.Magic)

	specs, err := m.Slots()
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, SlotSpec{ID: 0, Name: "Model", Filename: "model.bin", Addr: 0x10000000, MaxSize: 0x2000000}, specs[0])
	assert.Equal(t, uint32(0x12000000), specs[1].Addr)
	assert.Zero(t, specs[1].MaxSize)
}

func TestParseManifest_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"bad address", `{"data":{"data_slots":[{"id":0,"filename":"a.bin","address":"nowhere"}]}}`},
		{"bad size", `{"data":{"data_slots":[{"id":0,"filename":"a.bin","address":"0x0","size_maximum":"big"}]}}`},
		{"no filename", `{"data":{"data_slots":[{"id":0,"address":"0x0"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest(strings.NewReader(tt.doc))
			require.ErrorIs(t, err, ErrBadManifest)
		})
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Len(t, m.Data.DataSlots, 2)
}

func TestDefaultManifestMatchesBoard(t *testing.T) {
	specs, err := DefaultManifest().Slots()
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, uint32(board.ModelAddr), specs[0].Addr)
	assert.Equal(t, uint32(board.TokenizerAddr), specs[1].Addr)
	assert.Equal(t, uint32(board.TokenizerAddr), specs[0].Addr+specs[0].MaxSize, "model window ends at the tokenizer")
	assert.Equal(t, uint32(board.HeapBase), specs[1].Addr+specs[1].MaxSize, "tokenizer window ends at the heap")
}
