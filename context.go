package parseit

import (
	"fmt"
	"sort"
)

// Context is the auxiliary state threaded through every parse attempt: the
// indent stack plus bookkeeping for diagnostics. A fresh Context is created
// for each top-level Run, so parses never interfere with one another.
type Context struct {
	newlines []int // byte offsets of '\n' in the input
	indents  []int
	errPos   int
	errMsg   string
	maxDepth int
	depth    int
}

func newContext(input string, maxDepth int) *Context {
	ctx := &Context{errPos: -1, maxDepth: maxDepth}
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			ctx.newlines = append(ctx.newlines, i)
		}
	}

	return ctx
}

// Line returns the zero-based line number of a byte offset.
func (ctx *Context) Line(pos int) int {
	return sort.SearchInts(ctx.newlines, pos)
}

// Col returns the zero-based column of a byte offset.
func (ctx *Context) Col(pos int) int {
	line := ctx.Line(pos)
	if line == 0 {
		return pos
	}

	return pos - ctx.newlines[line-1] - 1
}

// Indents returns a copy of the indent stack, innermost level last. It is
// empty outside any WithIndent scope.
func (ctx *Context) Indents() []int {
	return append([]int(nil), ctx.indents...)
}

// CurrentIndent returns the innermost required indentation column, or zero
// when no WithIndent scope is active.
func (ctx *Context) CurrentIndent() int {
	if len(ctx.indents) == 0 {
		return 0
	}

	return ctx.indents[len(ctx.indents)-1]
}

func (ctx *Context) pushIndent(col int) {
	ctx.indents = append(ctx.indents, col)
}

func (ctx *Context) popIndent() {
	ctx.indents = ctx.indents[:len(ctx.indents)-1]
}

// Fail records a match failure at cur and returns the error a Parser
// implementation should surface. The furthest failure wins the record, which
// is what Run reports when the whole parse comes up empty. Leaf parsers
// implemented outside this package use Fail to take part in that reporting.
func (ctx *Context) Fail(cur Cursor, expected string) error {
	if cur.pos >= ctx.errPos {
		ctx.errPos = cur.pos
		ctx.errMsg = expected
	}

	return &MatchError{Pos: cur.pos, Expected: expected}
}

// describe renders the furthest recorded failure with a one-based line and
// column, the way grammar users expect to read it.
func (ctx *Context) describe(err error) error {
	if ctx.errPos < 0 {
		return err
	}

	line := ctx.Line(ctx.errPos) + 1
	col := ctx.Col(ctx.errPos) + 1

	return fmt.Errorf("at line %d column %d: expected %s: %w", line, col, ctx.errMsg, err)
}
