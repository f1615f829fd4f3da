package vfs

import "errors"

var (
	// ErrNotExist indicates a name outside the resource table.
	ErrNotExist = errors.New("vfs: no such resource")

	// ErrTooManyOpen indicates every stream handle is in use.
	ErrTooManyOpen = errors.New("vfs: stream pool exhausted")

	// ErrBusy indicates the slot is already open through a descriptor.
	ErrBusy = errors.New("vfs: descriptor already open")

	// ErrBadFD indicates a descriptor that is not open.
	ErrBadFD = errors.New("vfs: bad descriptor")

	// ErrClosed indicates use of a closed stream.
	ErrClosed = errors.New("vfs: file already closed")

	// ErrInvalidSeek indicates a bad whence or a resulting offset out of range.
	ErrInvalidSeek = errors.New("vfs: invalid seek")

	// ErrReadOnly is returned by every write.
	ErrReadOnly = errors.New("vfs: read-only file")
)
