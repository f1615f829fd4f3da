package vfs

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pocketrt/heap"
)

func TestOpen_SequentialReadsTruncateAtEnd(t *testing.T) {
	fx := newFixture(t)

	f, err := fx.fs.Open("model.bin")
	require.NoError(t, err)
	defer f.Close()

	p := make([]byte, 400)
	n, err := f.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 400, n)
	assert.Equal(t, expected(0, 0, 400), p)

	p = make([]byte, 800)
	n, err = f.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 600, n)
	assert.Equal(t, expected(0, 400, 600), p[:600])
	assert.True(t, f.EOF())

	n, err = f.Read(p)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestOpen_UnknownNameLeavesPoolUntouched(t *testing.T) {
	fx := newFixture(t)
	before := fx.fs.Available()

	f, err := fx.fs.Open("weights.bin")
	assert.Nil(t, f)
	assert.ErrorIs(t, err, ErrNotExist)
	assert.Equal(t, before, fx.fs.Available())
	assert.Equal(t, uint64(1), fx.fs.Stats().OpenFailures)
}

func TestOpen_PathResolvesByBasename(t *testing.T) {
	fx := newFixture(t)

	f, err := fx.fs.Open("/sd/models/tokenizer.bin")
	require.NoError(t, err)
	assert.Equal(t, uint16(1), f.Slot())
	assert.Equal(t, uint32(tokenizerSize), f.Size())
	assert.Equal(t, "/sd/models/tokenizer.bin", f.Name())
}

func TestOpen_PoolExhaustion(t *testing.T) {
	fx := newFixture(t)

	var files []*File
	for range 4 {
		f, err := fx.fs.Open("model.bin")
		require.NoError(t, err)
		files = append(files, f)
	}
	assert.Equal(t, 0, fx.fs.Available())

	_, err := fx.fs.Open("model.bin")
	assert.ErrorIs(t, err, ErrTooManyOpen)

	require.NoError(t, files[2].Close())
	assert.Equal(t, 1, fx.fs.Available())

	f, err := fx.fs.Open("tokenizer.bin")
	require.NoError(t, err)
	assert.Equal(t, uint16(1), f.Slot())
}

func TestFile_CloseInvalidatesHandle(t *testing.T) {
	fx := newFixture(t)

	f, err := fx.fs.Open("model.bin")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.ErrorIs(t, f.Close(), ErrClosed)
	_, err = f.Read(make([]byte, 4))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = f.Seek(0, io.SeekStart)
	assert.ErrorIs(t, err, ErrClosed)
	assert.True(t, f.EOF())

	// The pool entry is reused; the stale handle must not reach it.
	g, err := fx.fs.Open("tokenizer.bin")
	require.NoError(t, err)
	_, err = f.Tell()
	assert.ErrorIs(t, err, ErrClosed)

	pos, err := g.Tell()
	require.NoError(t, err)
	assert.Zero(t, pos)
}

func TestFile_Seek(t *testing.T) {
	fx := newFixture(t)
	f, err := fx.fs.Open("model.bin")
	require.NoError(t, err)

	pos, err := f.Seek(100, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(100), pos)

	pos, err = f.Seek(-50, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(50), pos)

	pos, err = f.Seek(-10, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(990), pos)

	p := make([]byte, 32)
	n, err := f.Read(p)
	require.NoError(t, err)
	assert.Equal(t, expected(0, 990, 10), p[:n])

	pos, err = f.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(modelSize), pos)

	for _, bad := range []struct {
		off    int64
		whence int
	}{
		{-1, io.SeekStart},
		{modelSize + 1, io.SeekStart},
		{1, io.SeekEnd},
		{0, 7},
	} {
		_, err := f.Seek(bad.off, bad.whence)
		assert.ErrorIs(t, err, ErrInvalidSeek, "off=%d whence=%d", bad.off, bad.whence)
	}

	tell, err := f.Tell()
	require.NoError(t, err)
	assert.Equal(t, int64(modelSize), tell, "failed seeks keep the position")

	require.NoError(t, f.Rewind())
	assert.False(t, f.EOF())
}

func TestFile_ReadElems(t *testing.T) {
	fx := newFixture(t)
	f, err := fx.fs.Open("model.bin")
	require.NoError(t, err)

	_, err = f.Seek(990, io.SeekStart)
	require.NoError(t, err)

	// 10 bytes remain: two whole 4-byte elements.
	p := make([]byte, 16)
	n, err := f.ReadElems(p, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, expected(0, 990, 8), p[:8])

	tell, _ := f.Tell()
	assert.Equal(t, int64(998), tell)

	n, err = f.ReadElems(p, 4)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.ReadElems(p, 0)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.ReadElems(p[:3], 4)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFile_WriteIsRejected(t *testing.T) {
	fx := newFixture(t)
	f, err := fx.fs.Open("model.bin")
	require.NoError(t, err)

	n, err := f.Write([]byte("hello"))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.NoError(t, f.Flush())
}

func TestFile_MapAttachesBuffer(t *testing.T) {
	fx := newFixture(t)
	f, err := fx.fs.Open("model.bin")
	require.NoError(t, err)

	addr, err := f.Map()
	require.NoError(t, err)
	require.NotEqual(t, heap.Nil, addr)

	again, err := f.Map()
	require.NoError(t, err)
	assert.Equal(t, addr, again)

	// Scribble over the slot; reads must now come from the heap copy.
	w, err := fx.mem.Window(modelAddr, modelSize)
	require.NoError(t, err)
	clear(w)

	p := make([]byte, 64)
	_, err = f.Seek(100, io.SeekStart)
	require.NoError(t, err)
	n, err := f.Read(p)
	require.NoError(t, err)
	assert.Equal(t, expected(0, 100, 64), p[:n])
	assert.Equal(t, uint64(64), fx.fs.Stats().BufferBytes)

	require.NoError(t, f.Close())
	used, err := fx.heap.UsableSize(addr)
	require.NoError(t, err, "close must not release the buffer")
	assert.GreaterOrEqual(t, used, uint32(modelSize))

	require.NoError(t, fx.fs.Munmap(addr))
	require.NoError(t, fx.heap.Verify())
}

func TestFile_MunmapDetachesStream(t *testing.T) {
	fx := newFixture(t)
	f, err := fx.fs.Open("tokenizer.bin")
	require.NoError(t, err)

	addr, err := f.Map()
	require.NoError(t, err)
	require.NoError(t, fx.fs.Munmap(addr))

	p := make([]byte, 16)
	n, err := f.Read(p)
	require.NoError(t, err)
	assert.Equal(t, expected(1, 0, 16), p[:n])
	assert.Zero(t, fx.fs.Stats().BufferBytes)
}

func TestFile_HeapFreeDetachesStream(t *testing.T) {
	fx := newFixture(t)
	f, err := fx.fs.Open("tokenizer.bin")
	require.NoError(t, err)

	addr, err := f.Map()
	require.NoError(t, err)
	require.NoError(t, fx.heap.Free(addr))
	assert.Zero(t, fx.fs.Stats().Mappings)

	// The next allocation takes the freed block; the stream must not see it.
	reused, payload, err := fx.heap.Alloc(tokenizerSize)
	require.NoError(t, err)
	assert.Equal(t, addr, reused)
	for i := range payload {
		payload[i] = 0xAA
	}

	p := make([]byte, 16)
	n, err := f.Read(p)
	require.NoError(t, err)
	assert.Equal(t, expected(1, 0, 16), p[:n])
	assert.Zero(t, fx.fs.Stats().BufferBytes)
	assert.Zero(t, fx.fs.Stats().Unmaps)
}

func TestFile_CopyToDiscard(t *testing.T) {
	fx := newFixture(t)
	f, err := fx.fs.Open("tokenizer.bin")
	require.NoError(t, err)

	n, err := io.Copy(io.Discard, f)
	require.NoError(t, err)
	assert.Equal(t, int64(tokenizerSize), n)
}
