// Package writer provides sinks for memory image dumps.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives a complete image.
type Sink interface {
	WriteImage(b []byte) error
}

// FileSink writes an image to a filesystem path atomically.
type FileSink struct {
	Path string
}

var _ Sink = (*FileSink)(nil)

// WriteImage writes b to a temp file next to Path, syncs it and renames it
// into place, so readers never see a partial dump.
func (w *FileSink) WriteImage(b []byte) error {
	dir := filepath.Dir(w.Path)
	tmp, err := os.CreateTemp(dir, ".pocketrt-dump-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(b); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	tmp = nil

	if err := os.Rename(tmpPath, w.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
