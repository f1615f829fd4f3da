package term

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsBlank(t *testing.T) {
	tm := New()
	assert.Equal(t, "", tm.String())
	row, col := tm.Pos()
	assert.Zero(t, row)
	assert.Zero(t, col)
	assert.Equal(t, strings.Repeat(" ", Size), string(tm.Cells()))
}

func TestPutChar_ControlCharacters(t *testing.T) {
	tm := New()
	tm.Printf("abc\rX")
	assert.Equal(t, "Xbc", tm.Line(0))

	tm.PutChar('\n')
	row, col := tm.Pos()
	assert.Equal(t, 1, row)
	assert.Zero(t, col)

	tm.PutChar(0x07)
	tm.PutChar(0x7F)
	tm.PutChar(0xC8)
	_, col = tm.Pos()
	assert.Zero(t, col, "non-printable bytes are ignored")
}

func TestPutChar_Tab(t *testing.T) {
	tm := New()
	tm.Printf("a\tb")
	assert.Equal(t, "a   b", tm.Line(0))

	tm.SetPos(0, 4)
	tm.PutChar('\t')
	_, col := tm.Pos()
	assert.Equal(t, 8, col, "a tab on a stop moves to the next one")

	tm.SetPos(2, 37)
	tm.PutChar('\t')
	row, col := tm.Pos()
	assert.Equal(t, 3, row, "a tab past the last column wraps")
	assert.Zero(t, col)
}

func TestPutChar_WrapAndScroll(t *testing.T) {
	tm := New()
	tm.Printf("%s", strings.Repeat("x", Cols+2))
	assert.Equal(t, strings.Repeat("x", Cols), tm.Line(0))
	assert.Equal(t, "xx", tm.Line(1))

	tm.Clear()
	for i := range Rows {
		tm.Printf("line %d\n", i)
	}
	// The final newline scrolled "line 0" off the top.
	assert.Equal(t, "line 1", tm.Line(0))
	assert.Equal(t, "line 29", tm.Line(Rows-2))
	assert.Equal(t, "", tm.Line(Rows-1))
	row, col := tm.Pos()
	assert.Equal(t, Rows-1, row)
	assert.Zero(t, col)
}

func TestPutChar_FillLastCellScrolls(t *testing.T) {
	tm := New()
	tm.SetPos(Rows-1, Cols-1)
	tm.PutChar('Z')
	assert.Equal(t, strings.Repeat(" ", Cols-1)+"Z", tm.Line(Rows-2))
	row, col := tm.Pos()
	assert.Equal(t, Rows-1, row)
	assert.Zero(t, col)
	assert.Equal(t, "", tm.Line(Rows-1))
}

func TestSetPos_Clamps(t *testing.T) {
	tm := New()
	tm.SetPos(-3, 99)
	row, col := tm.Pos()
	assert.Zero(t, row)
	assert.Equal(t, Cols-1, col)

	tm.SetPos(99, -1)
	row, col = tm.Pos()
	assert.Equal(t, Rows-1, row)
	assert.Zero(t, col)
}

func TestPutHex(t *testing.T) {
	tm := New()
	tm.PutHex(0xDEADBEEF, 8)
	tm.PutChar(' ')
	tm.PutHex(0x1F, 4)
	tm.PutChar(' ')
	tm.PutHex(0xABC, 0)
	tm.PutChar(' ')
	tm.PutHex(0x12345678, 12)
	assert.Equal(t, "DEADBEEF 001F C 12345678", tm.Line(0))
}

func TestWrite_CodePage437(t *testing.T) {
	tm := New()
	n, err := tm.Write([]byte("é░π☃"))
	require.NoError(t, err)
	assert.Equal(t, len("é░π☃"), n)

	cells := tm.Cells()
	assert.Equal(t, byte(0x82), cells[0])
	assert.Equal(t, byte(0xB0), cells[1])
	assert.Equal(t, byte(0xE3), cells[2])
	assert.Equal(t, byte('?'), cells[3], "runes without a glyph become '?'")
	assert.Equal(t, "é░π?", tm.Line(0))
}

func TestWrite_InvalidUTF8(t *testing.T) {
	tm := New()
	_, err := tm.Write([]byte{'a', 0xFF, 'b'})
	require.NoError(t, err)
	assert.Equal(t, "a?b", tm.Line(0))
}

func TestString_TrimsTrailingBlankRows(t *testing.T) {
	tm := New()
	tm.Println("VexRiscv on Analogue Pocket")
	tm.Println("===========================")
	assert.Equal(t, "VexRiscv on Analogue Pocket\n===========================", tm.String())
	assert.Len(t, tm.Lines(), Rows)
	assert.Equal(t, "", tm.Line(-1))
	assert.Equal(t, "", tm.Line(Rows))
}
