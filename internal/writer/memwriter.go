package writer

// MemSink keeps the last image in memory.
type MemSink struct {
	Buf    []byte
	Writes int
}

var _ Sink = (*MemSink)(nil)

// WriteImage copies b into Buf.
func (w *MemSink) WriteImage(b []byte) error {
	w.Buf = append(w.Buf[:0], b...)
	w.Writes++
	return nil
}
