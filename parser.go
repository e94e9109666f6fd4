// Package parseit is a small combinator library for parsing simple, context
// free grammars and grammars that need knowledge of indentation.
//
// The design is top down recursive descent with backtracking. Fancy
// optimizations such as packrat memoization are left out on purpose: the goal
// is a small engine that is still sufficient for describing non-standard
// configuration dialects. If the input is YAML, XML, or JSON, use a dedicated
// parser instead.
//
// Grammars are trees of Parser values built with Seq, Choice, Many, Opt, and
// friends. A grammar is executed with Run, which threads an immutable Cursor
// and a per-run Context through every attempt. Failure never consumes input:
// a combinator that fails hands its caller the cursor the caller already had.
package parseit

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrNoMatch is wrapped by every recoverable parse failure.
	ErrNoMatch = errors.New("no match")
	// ErrTrailingInput is returned by Run when the grammar matched but did
	// not consume the whole input.
	ErrTrailingInput = errors.New("unexpected trailing input")
	// ErrCritical marks failures that backtracking combinators must not
	// absorb; Choice, Many, and Opt re-raise it instead of recovering.
	ErrCritical = errors.New("critical parse failure")
	// ErrTooDeep is produced when grammar recursion exceeds Options.MaxDepth.
	ErrTooDeep = errors.New("maximum recursion depth exceeded")
)

// Parser is the core abstraction: anything that can attempt a match at a
// cursor position. Implementations must be deterministic, keep no state
// between calls, and never let a failed attempt advance a cursor the caller
// goes on to use.
type Parser interface {
	// Parse attempts a match at cur. On success it returns the matched value
	// and the cursor after the match. On failure the returned cursor is the
	// caller's own cur; any advancement made while searching is discarded.
	Parse(cur Cursor, ctx *Context) (any, Cursor, error)
}

// ParserFunc adapts a plain function to the Parser interface, which is the
// cheapest way to write a one-off leaf matcher.
type ParserFunc func(cur Cursor, ctx *Context) (any, Cursor, error)

func (f ParserFunc) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	return f(cur, ctx)
}

// MatchError is the recoverable failure produced when a parser does not
// match at a position. It unwraps to ErrNoMatch.
type MatchError struct {
	Pos      int
	Expected string
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("expected %s at offset %d", e.Expected, e.Pos)
}

func (e *MatchError) Unwrap() error { return ErrNoMatch }

func isFatal(err error) bool { return errors.Is(err, ErrCritical) }

// Options tune a top-level parse.
type Options struct {
	// MaxDepth limits grammar recursion through Forward parsers. Zero means
	// no limit. Exceeding the limit is a fatal ErrTooDeep, not a parse
	// failure, so ordered choice cannot mask runaway recursion.
	MaxDepth int
}

// Run parses input with p. The grammar must consume the whole input;
// anything left over is reported as ErrTrailingInput.
func Run(p Parser, input string) (any, error) {
	return RunWith(p, input, Options{})
}

// RunWith is Run with explicit Options.
func RunWith(p Parser, input string, opts Options) (any, error) {
	ctx := newContext(input, opts.MaxDepth)

	value, rest, err := p.Parse(NewCursor(input), ctx)
	if err != nil {
		if isFatal(err) {
			return nil, err
		}

		return nil, ctx.describe(err)
	}

	if !rest.EOF() {
		err := ctx.Fail(rest, "end of input")
		return nil, ctx.describe(fmt.Errorf("%w: %w", ErrTrailingInput, err))
	}

	return value, nil
}
