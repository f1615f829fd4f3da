package dataslot

import "errors"

var (
	// ErrNotSupported indicates a staged, runtime-driven load was requested.
	ErrNotSupported = errors.New("dataslot: manual loading not supported")

	// ErrNoSlot indicates an unknown slot id.
	ErrNoSlot = errors.New("dataslot: no such slot")

	// ErrOutOfRange indicates a read past the end of a slot.
	ErrOutOfRange = errors.New("dataslot: read out of range")

	// ErrOverlap indicates two slots claim the same SDRAM bytes.
	ErrOverlap = errors.New("dataslot: slot windows overlap")

	// ErrTooLarge indicates a slot image bigger than its window.
	ErrTooLarge = errors.New("dataslot: image exceeds slot window")

	// ErrBadManifest indicates a malformed data.json.
	ErrBadManifest = errors.New("dataslot: bad manifest")
)
