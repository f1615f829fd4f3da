package heap

import "errors"

var (
	// ErrNoSpace indicates that no free block large enough was found.
	ErrNoSpace = errors.New("heap: no free block large enough")

	// ErrZeroSize indicates a request for zero bytes.
	ErrZeroSize = errors.New("heap: zero-size request")

	// ErrOverflow indicates count * elemSize does not fit in 32 bits.
	ErrOverflow = errors.New("heap: size computation overflows")

	// ErrBadPointer indicates an address that does not name a live block.
	ErrBadPointer = errors.New("heap: bad pointer")

	// ErrInitialized indicates a second Init on the same heap.
	ErrInitialized = errors.New("heap: already initialized")

	// ErrNotInitialized indicates use of a heap before Init.
	ErrNotInitialized = errors.New("heap: not initialized")

	// ErrBadRegion indicates an arena window that is not backed by memory or
	// is too small to hold a single block.
	ErrBadRegion = errors.New("heap: bad arena region")

	// ErrCorrupt indicates the block chain failed verification.
	ErrCorrupt = errors.New("heap: arena corrupt")
)
