package parseit

import (
	"fmt"
	"strings"
)

// IndentScope makes the wrapped parser's matching sensitive to source
// indentation. Entering the scope skips whitespace, pushes the column of the
// first real rune onto the context's indent stack, runs the child from that
// rune, and pops the pushed level again on every exit path. Each syntactic
// re-entry (a nested block reached through the grammar, usually via Forward)
// pushes its own level, so the stack holds one required indentation per
// active nesting depth. Leaves below the scope read the stack top through
// the Context to decide whether a line still belongs to the current block.
type IndentScope struct {
	Child Parser
}

// WithIndent wraps p in an IndentScope.
func WithIndent(p Parser) *IndentScope { return &IndentScope{Child: p} }

func (w *IndentScope) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	start := skipWhitespace(cur)

	ctx.pushIndent(ctx.Col(start.Pos()))
	defer ctx.popIndent()

	value, n, err := w.Child.Parse(start, ctx)
	if err != nil {
		return nil, cur, err
	}

	return value, n, nil
}

func skipWhitespace(cur Cursor) Cursor {
	for {
		r, width := cur.Peek()
		if width == 0 || !strings.ContainsRune(whitespaceChars, r) {
			return cur
		}

		cur = cur.Advance(width)
	}
}

type sameIndent struct{}

// SameIndent matches the run of spaces that places the rest of the line
// exactly at the current required indentation level. It is the leaf that
// grammars put after a line break to accept sibling lines of the current
// block: a dedented line leaves the run short and a deeper line overshoots,
// so both fail without consuming input.
var SameIndent Parser = sameIndent{}

func (sameIndent) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	next := cur
	count := 0

	for {
		r, width := next.Peek()
		if r != ' ' {
			break
		}

		next = next.Advance(width)
		count++
	}

	required := ctx.CurrentIndent()
	if ctx.Col(cur.Pos())+count != required {
		return nil, cur, ctx.Fail(cur, fmt.Sprintf("indentation of %d", required))
	}

	return strings.Repeat(" ", count), next, nil
}
