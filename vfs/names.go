package vfs

import (
	"maps"
	"strings"

	"github.com/joshuapare/pocketrt/board"
	"github.com/joshuapare/pocketrt/dataslot"
)

// NameTable maps resource names to slot ids.
type NameTable map[string]dataslot.SlotID

// DefaultNames returns a copy of the board's name table.
func DefaultNames() NameTable {
	return NameTable(maps.Clone(board.Names))
}

// Resolve returns the slot for path. A path matches when it equals a known
// name or when its last '/'-separated component does.
func (t NameTable) Resolve(path string) (dataslot.SlotID, bool) {
	if id, ok := t[path]; ok {
		return id, true
	}
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		id, ok := t[path[i+1:]]
		return id, ok
	}
	return 0, false
}
