// Package term renders text into the 40x30 character-cell display.
//
// Cells hold glyph ROM codes. The ROM follows code page 437, so runes outside
// ASCII are encoded through charmap.CodePage437 and runes the ROM has no glyph
// for become '?'. The cursor advances left to right and the grid scrolls up
// one row when output runs past the bottom line.
package term

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/joshuapare/pocketrt/board"
)

const (
	Cols = board.TermCols
	Rows = board.TermRows
	Size = Cols * Rows

	tabStop = 4
)

const blank = ' '

// Terminal is one display buffer and its cursor. It is not safe for
// concurrent use.
type Terminal struct {
	cells [Size]byte
	pos   int
}

// New returns a cleared terminal with the cursor at the origin.
func New() *Terminal {
	t := &Terminal{}
	t.Clear()
	return t
}

// Clear blanks every cell and homes the cursor.
func (t *Terminal) Clear() {
	for i := range t.cells {
		t.cells[i] = blank
	}
	t.pos = 0
}

// SetPos moves the cursor, clamping row and col into the grid.
func (t *Terminal) SetPos(row, col int) {
	row = min(max(row, 0), Rows-1)
	col = min(max(col, 0), Cols-1)
	t.pos = row*Cols + col
}

// Pos returns the cursor row and column.
func (t *Terminal) Pos() (row, col int) {
	return t.pos / Cols, t.pos % Cols
}

func (t *Terminal) scroll() {
	copy(t.cells[:], t.cells[Cols:])
	for i := Size - Cols; i < Size; i++ {
		t.cells[i] = blank
	}
}

func (t *Terminal) newline() {
	row := t.pos/Cols + 1
	if row >= Rows {
		t.scroll()
		row = Rows - 1
	}
	t.pos = row * Cols
}

func (t *Terminal) put(glyph byte) {
	t.cells[t.pos] = glyph
	t.pos++
	if t.pos >= Size {
		t.scroll()
		t.pos = (Rows - 1) * Cols
	}
}

// PutChar writes one ASCII byte. '\n', '\r' and '\t' move the cursor;
// printable characters are stored; every other byte is ignored.
func (t *Terminal) PutChar(c byte) {
	switch {
	case c == '\n':
		t.newline()
	case c == '\r':
		t.pos -= t.pos % Cols
	case c == '\t':
		col := (t.pos%Cols + tabStop) &^ (tabStop - 1)
		if col >= Cols {
			t.newline()
			return
		}
		t.pos = t.pos - t.pos%Cols + col
	case c >= 0x20 && c < 0x7F:
		t.put(c)
	}
}

// PutRune writes r, translating non-ASCII runes to their glyph ROM code.
func (t *Terminal) PutRune(r rune) {
	if r < utf8.RuneSelf {
		t.PutChar(byte(r))
		return
	}
	glyph, ok := charmap.CodePage437.EncodeRune(r)
	if !ok {
		glyph = '?'
	}
	t.put(glyph)
}

// Write implements io.Writer. p is decoded as UTF-8; invalid sequences are
// written as '?'. It always consumes all of p.
func (t *Terminal) Write(p []byte) (int, error) {
	for i := 0; i < len(p); {
		r, n := utf8.DecodeRune(p[i:])
		if r == utf8.RuneError && n <= 1 {
			r = '?'
		}
		t.PutRune(r)
		i += n
	}
	return len(p), nil
}

// WriteString is Write for a string.
func (t *Terminal) WriteString(s string) (int, error) {
	for _, r := range s {
		if r == utf8.RuneError {
			r = '?'
		}
		t.PutRune(r)
	}
	return len(s), nil
}

// Println writes s followed by a newline.
func (t *Terminal) Println(s string) {
	_, _ = t.WriteString(s)
	t.PutChar('\n')
}

// Printf formats into the terminal.
func (t *Terminal) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t, format, args...)
}

// PutHex writes the low digits hex digits of val in upper case. digits is
// clamped to [1, 8].
func (t *Terminal) PutHex(val uint32, digits int) {
	const hex = "0123456789ABCDEF"
	digits = min(max(digits, 1), 8)
	for i := digits - 1; i >= 0; i-- {
		t.PutChar(hex[(val>>(uint(i)*4))&0xF])
	}
}

// Cells returns a copy of the raw glyph codes in row-major order.
func (t *Terminal) Cells() []byte {
	out := make([]byte, Size)
	copy(out, t.cells[:])
	return out
}

// Line returns row decoded to Unicode with trailing blanks removed.
func (t *Terminal) Line(row int) string {
	if row < 0 || row >= Rows {
		return ""
	}
	var b strings.Builder
	for _, c := range t.cells[row*Cols : (row+1)*Cols] {
		b.WriteRune(charmap.CodePage437.DecodeByte(c))
	}
	return strings.TrimRight(b.String(), " ")
}

// Lines returns every row, see Line.
func (t *Terminal) Lines() []string {
	out := make([]string, Rows)
	for i := range out {
		out[i] = t.Line(i)
	}
	return out
}

// String returns the rows up to the last non-blank one, joined by newlines.
func (t *Terminal) String() string {
	lines := t.Lines()
	last := len(lines)
	for last > 0 && lines[last-1] == "" {
		last--
	}
	return strings.Join(lines[:last], "\n")
}
