// Package vfs turns pre-loaded data slots into files.
//
// A closed table maps resource names to slot ids. Two independent access
// styles sit on top of it:
//
//   - Streams: Open returns a *File drawn from a pool of board.MaxStreams
//     handles. Files implement io.Reader, io.Seeker, io.Writer and io.Closer;
//     ReadElems adds whole-element reads.
//   - Descriptors: OpenFD returns a small negative integer derived from the
//     slot id (fd = -slot-1). The table has board.MaxDescriptors entries and
//     is indexed by slot, so a slot can be open through at most one descriptor.
//
// Mmap emulates a mapping by allocating a heap buffer and copying the
// requested range into it in one go. The buffer belongs to the caller until
// Munmap. File.Map does the same for a whole stream and attaches the buffer so
// later reads copy from memory; closing the file does not release it.
//
// Everything is read-only. Write always reports zero bytes.
//
// An FS is not safe for concurrent use.
package vfs
