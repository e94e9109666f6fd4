package parseit

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

// attempt runs p over input from scratch and also reports the cursor it
// stopped at, which is what most combinator assertions care about.
func attempt(t *testing.T, p Parser, input string) (any, Cursor, error) {
	t.Helper()

	cur := NewCursor(input)

	return p.Parse(cur, newContext(input, 0))
}

func TestSeq(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []any
		fails    bool
	}{
		{name: "both match", input: "ab", expected: []any{"a", "b"}},
		{name: "wrong order", input: "ba", fails: true},
		{name: "first only", input: "ax", fails: true},
		{name: "empty input", input: "", fails: true},
	}

	p := Seq(Char('a'), Char('b'))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, next, err := attempt(t, p, tt.input)
			if tt.fails {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrNoMatch))
				assert.Equal(t, 0, next.Pos())

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, value.([]any))
			assert.Equal(t, len(tt.input), next.Pos())
		})
	}
}

func TestSeqFlattens(t *testing.T) {
	inner := Seq(Char('a'), Char('b'))
	outer := Seq(inner, Char('c'))

	assert.Equal(t, 3, len(outer.Children))

	value, next, err := attempt(t, outer, "abc")
	assert.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, value.([]any))
	assert.Equal(t, 3, next.Pos())
}

// recorder counts attempts so ordered-choice short circuiting is observable.
type recorder struct {
	calls *int
	inner Parser
}

func (r recorder) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	*r.calls++
	return r.inner.Parse(cur, ctx)
}

func TestChoiceFirstMatchWins(t *testing.T) {
	var aCalls, bCalls int

	p := Choice(
		recorder{calls: &aCalls, inner: Literal("a")},
		recorder{calls: &bCalls, inner: Literal("ab")},
	)

	value, next, err := attempt(t, p, "ab")
	assert.NoError(t, err)
	assert.Equal(t, "a", value.(string))
	assert.Equal(t, 1, next.Pos())
	assert.Equal(t, 1, aCalls)
	assert.Equal(t, 0, bCalls)
}

func TestChoiceBacktracks(t *testing.T) {
	p := Choice(Literal("ax"), Literal("ab"))

	value, next, err := attempt(t, p, "ab")
	assert.NoError(t, err)
	assert.Equal(t, "ab", value.(string))
	assert.Equal(t, 2, next.Pos())
}

func TestChoiceAllFail(t *testing.T) {
	p := Choice(Char('x'), Char('y'))

	_, next, err := attempt(t, p, "ab")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoMatch))
	assert.Equal(t, 0, next.Pos())
}

func TestMany(t *testing.T) {
	value, next, err := attempt(t, Many(Char('x')), "xxxxb")
	assert.NoError(t, err)
	assert.Equal(t, []any{"x", "x", "x", "x"}, value.([]any))
	assert.Equal(t, 4, next.Pos())
}

func TestManyAlwaysFailingChild(t *testing.T) {
	value, next, err := attempt(t, Many(Char('z')), "abc")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(value.([]any)))
	assert.Equal(t, 0, next.Pos())
}

func TestManyStopsOnZeroWidthMatch(t *testing.T) {
	value, next, err := attempt(t, Many(Nothing), "abc")
	assert.NoError(t, err)
	assert.Equal(t, []any{nil}, value.([]any))
	assert.Equal(t, 0, next.Pos())
}

func TestMany1(t *testing.T) {
	_, next, err := attempt(t, Many1(Char('x')), "abc")
	assert.Error(t, err)
	assert.Equal(t, 0, next.Pos())

	value, _, err := attempt(t, Many1(Char('x')), "xab")
	assert.NoError(t, err)
	assert.Equal(t, []any{"x"}, value.([]any))
}

func TestFollowedBy(t *testing.T) {
	p := FollowedBy(Char('a'), Char('b'))

	value, next, err := attempt(t, p, "ab")
	assert.NoError(t, err)
	assert.Equal(t, "a", value.(string))
	// The lookahead's consumption leaves no trace on the cursor.
	assert.Equal(t, 1, next.Pos())

	_, next, err = attempt(t, p, "ac")
	assert.Error(t, err)
	assert.Equal(t, 0, next.Pos())
}

func TestNotFollowedBy(t *testing.T) {
	p := NotFollowedBy(Char('a'), Char('b'))

	value, next, err := attempt(t, p, "ac")
	assert.NoError(t, err)
	assert.Equal(t, "a", value.(string))
	assert.Equal(t, 1, next.Pos())

	_, next, err = attempt(t, p, "ab")
	assert.Error(t, err)
	assert.Equal(t, 0, next.Pos())
}

func TestLookaheadSkippedWhenPrimaryFails(t *testing.T) {
	var aheadCalls int

	p := FollowedBy(Char('a'), recorder{calls: &aheadCalls, inner: Char('b')})

	_, _, err := attempt(t, p, "xb")
	assert.Error(t, err)
	assert.Equal(t, 0, aheadCalls)
}

func TestKeepLeftKeepRight(t *testing.T) {
	left := KeepLeft(Char('a'), Char('b'))
	right := KeepRight(Char('a'), Char('b'))

	value, next, err := attempt(t, left, "ab")
	assert.NoError(t, err)
	assert.Equal(t, "a", value.(string))
	assert.Equal(t, 2, next.Pos())

	value, next, err = attempt(t, right, "ab")
	assert.NoError(t, err)
	assert.Equal(t, "b", value.(string))
	assert.Equal(t, 2, next.Pos())

	// Both operands must match; failure restores the original cursor.
	_, next, err = attempt(t, left, "ax")
	assert.Error(t, err)
	assert.Equal(t, 0, next.Pos())
}

func TestOpt(t *testing.T) {
	value, next, err := attempt(t, OptDefault(Char('a'), "fallback"), "xyz")
	assert.NoError(t, err)
	assert.Equal(t, "fallback", value.(string))
	assert.Equal(t, 0, next.Pos())

	value, next, err = attempt(t, OptDefault(Char('a'), "fallback"), "abc")
	assert.NoError(t, err)
	assert.Equal(t, "a", value.(string))
	assert.Equal(t, 1, next.Pos())

	absent, next, err := attempt(t, Opt(Char('a')), "xyz")
	assert.NoError(t, err)
	assert.Equal(t, Absent, absent)
	assert.Equal(t, 0, next.Pos())
}

func TestMapRoundTrip(t *testing.T) {
	p := Map(Seq(Char('h'), Char('i'), Char('!')), func(v any) any {
		var out string
		for _, part := range v.([]any) {
			out += part.(string)
		}

		return out
	})

	value, err := Run(p, "hi!")
	assert.NoError(t, err)
	assert.Equal(t, "hi!", value.(string))
}

func TestLift(t *testing.T) {
	add := func(vs ...any) any {
		return vs[0].(string) + vs[1].(string)
	}

	value, next, err := attempt(t, Lift(add, Char('a'), Char('b')), "ab")
	assert.NoError(t, err)
	assert.Equal(t, "ab", value.(string))
	assert.Equal(t, 2, next.Pos())

	_, next, err = attempt(t, Lift(add, Char('a'), Char('b')), "ax")
	assert.Error(t, err)
	assert.Equal(t, 0, next.Pos())
}

func TestSepBy(t *testing.T) {
	p := SepBy(Digits, Char(','))

	tests := []struct {
		name     string
		input    string
		expected []any
		consumed int
	}{
		{name: "three items", input: "1,22,333", expected: []any{"1", "22", "333"}, consumed: 8},
		{name: "single item", input: "7", expected: []any{"7"}, consumed: 1},
		{name: "empty", input: "x", expected: []any{}, consumed: 0},
		{name: "trailing separator not consumed", input: "1,2,", expected: []any{"1", "2"}, consumed: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, next, err := attempt(t, p, tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, value.([]any))
			assert.Equal(t, tt.consumed, next.Pos())
		})
	}
}

func TestBetween(t *testing.T) {
	p := Between(Digits, Char('|'))

	value, next, err := attempt(t, p, "|42|")
	assert.NoError(t, err)
	assert.Equal(t, "42", value.(string))
	assert.Equal(t, 4, next.Pos())
}
