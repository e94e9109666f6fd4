package parseit

import "unicode/utf8"

// Cursor is an immutable read position over the input text. Advancing never
// mutates a cursor; it returns a new one, which is what makes backtracking a
// matter of simply not adopting a failed branch's cursor.
type Cursor struct {
	input string
	pos   int
}

// NewCursor returns a cursor at the start of input.
func NewCursor(input string) Cursor {
	return Cursor{input: input}
}

// Pos returns the byte offset of the cursor.
func (c Cursor) Pos() int { return c.pos }

// EOF reports whether the cursor is past the last rune.
func (c Cursor) EOF() bool { return c.pos >= len(c.input) }

// Peek returns the rune at the cursor and its width in bytes, or (0, 0) at
// end of input.
func (c Cursor) Peek() (rune, int) {
	if c.EOF() {
		return 0, 0
	}

	return utf8.DecodeRuneInString(c.input[c.pos:])
}

// Advance returns a cursor moved n bytes forward.
func (c Cursor) Advance(n int) Cursor {
	return Cursor{input: c.input, pos: c.pos + n}
}

// Rest returns the unread portion of the input.
func (c Cursor) Rest() string { return c.input[c.pos:] }
