package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSink_WritesAndReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "heap.img")
	s := &FileSink{Path: path}

	require.NoError(t, s.WriteImage([]byte("first image")))
	require.NoError(t, s.WriteImage([]byte("second")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileSink_MissingDirectory(t *testing.T) {
	s := &FileSink{Path: filepath.Join(t.TempDir(), "nope", "x.img")}
	assert.Error(t, s.WriteImage([]byte{1}))
}

func TestMemSink_Copies(t *testing.T) {
	var s MemSink
	src := []byte{1, 2, 3}
	require.NoError(t, s.WriteImage(src))
	src[0] = 9

	assert.Equal(t, []byte{1, 2, 3}, s.Buf)
	assert.Equal(t, 1, s.Writes)
}
