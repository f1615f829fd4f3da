package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameTable_Resolve(t *testing.T) {
	names := DefaultNames()

	tests := []struct {
		path string
		slot uint16
		ok   bool
	}{
		{"model.bin", 0, true},
		{"tokenizer.bin", 1, true},
		{"/data/model.bin", 0, true},
		{"a/b/c/tokenizer.bin", 1, true},
		{"model.bin/", 0, false},
		{"MODEL.BIN", 0, false},
		{"weights.bin", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			slot, ok := names.Resolve(tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.slot, slot)
			}
		})
	}
}

func TestDefaultNames_IsACopy(t *testing.T) {
	a := DefaultNames()
	a["extra.bin"] = 7

	b := DefaultNames()
	_, ok := b.Resolve("extra.bin")
	assert.False(t, ok)
}
