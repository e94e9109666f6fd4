package parseit

import "fmt"

// Sequence applies its children left to right, threading the cursor forward,
// and collects their values in order. Chained sequencing stays flat: Seq
// concatenates nested Sequences instead of nesting their value lists.
type Sequence struct {
	Children []Parser
}

// Seq composes parsers into a Sequence.
func Seq(ps ...Parser) *Sequence {
	children := make([]Parser, 0, len(ps))
	for _, p := range ps {
		if s, ok := p.(*Sequence); ok {
			children = append(children, s.Children...)
		} else {
			children = append(children, p)
		}
	}

	return &Sequence{Children: children}
}

func (s *Sequence) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	results := make([]any, 0, len(s.Children))
	next := cur

	for _, c := range s.Children {
		value, n, err := c.Parse(next, ctx)
		if err != nil {
			return nil, cur, err
		}

		results = append(results, value)
		next = n
	}

	return results, next, nil
}

// Alt is ordered choice: children are tried in order from the same starting
// cursor and the first match wins, even when a later alternative could match
// more input.
type Alt struct {
	Children []Parser
}

// Choice composes parsers into an Alt.
func Choice(ps ...Parser) *Alt {
	children := make([]Parser, 0, len(ps))
	for _, p := range ps {
		if a, ok := p.(*Alt); ok {
			children = append(children, a.Children...)
		} else {
			children = append(children, p)
		}
	}

	return &Alt{Children: children}
}

func (a *Alt) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	var lastErr error

	for _, c := range a.Children {
		value, n, err := c.Parse(cur, ctx)
		if err == nil {
			return value, n, nil
		}

		if isFatal(err) {
			return nil, cur, err
		}

		lastErr = err
	}

	if lastErr == nil {
		lastErr = ctx.Fail(cur, "a non-empty choice")
	}

	return nil, cur, lastErr
}

// Repeat applies its child until the child fails, collecting the matched
// values. Min is the required number of matches: zero for Many, one for
// Many1.
type Repeat struct {
	Child Parser
	Min   int
}

// Many matches p zero or more times and never fails.
func Many(p Parser) *Repeat { return &Repeat{Child: p} }

// Many1 matches p one or more times.
func Many1(p Parser) *Repeat { return &Repeat{Child: p, Min: 1} }

func (r *Repeat) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	results := []any{}
	next := cur

	for {
		value, n, err := r.Child.Parse(next, ctx)
		if err != nil {
			if isFatal(err) {
				return nil, cur, err
			}

			break
		}

		results = append(results, value)

		// A match that consumed nothing would repeat forever; keep the
		// value and stop.
		if n.Pos() == next.Pos() {
			next = n
			break
		}

		next = n
	}

	if len(results) < r.Min {
		return nil, cur, ctx.Fail(cur, fmt.Sprintf("at least %d matches", r.Min))
	}

	return results, next, nil
}

// Peek runs Child and then tries Ahead at the resulting position without
// keeping Ahead's consumption. With Negate set it succeeds only when Ahead
// fails there.
type Peek struct {
	Child  Parser
	Ahead  Parser
	Negate bool
}

// FollowedBy matches p only when ahead also matches right after it. The
// lookahead leaves no trace on the cursor.
func FollowedBy(p, ahead Parser) *Peek { return &Peek{Child: p, Ahead: ahead} }

// NotFollowedBy matches p only when ahead fails right after it.
func NotFollowedBy(p, ahead Parser) *Peek { return &Peek{Child: p, Ahead: ahead, Negate: true} }

func (l *Peek) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	value, n, err := l.Child.Parse(cur, ctx)
	if err != nil {
		return nil, cur, err
	}

	_, _, aerr := l.Ahead.Parse(n, ctx)
	if aerr != nil && isFatal(aerr) {
		return nil, cur, aerr
	}

	if l.Negate {
		if aerr == nil {
			return nil, cur, ctx.Fail(n, "lookahead to fail")
		}

		return value, n, nil
	}

	if aerr != nil {
		return nil, cur, aerr
	}

	return value, n, nil
}

// Keep is a two-parser sequence that produces only one operand's value. Both
// operands must match, with the same rollback rules as Sequence.
type Keep struct {
	Left  Parser
	Right Parser
	Tail  bool // keep Right's value instead of Left's
}

// KeepLeft matches left then right and keeps left's value.
func KeepLeft(left, right Parser) *Keep { return &Keep{Left: left, Right: right} }

// KeepRight matches left then right and keeps right's value.
func KeepRight(left, right Parser) *Keep { return &Keep{Left: left, Right: right, Tail: true} }

func (k *Keep) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	left, n, err := k.Left.Parse(cur, ctx)
	if err != nil {
		return nil, cur, err
	}

	right, n, err := k.Right.Parse(n, ctx)
	if err != nil {
		return nil, cur, err
	}

	if k.Tail {
		return right, n, nil
	}

	return left, n, nil
}

// Absent is the sentinel value produced by Opt when the wrapped parser fails
// and no explicit default was supplied.
var Absent any = absentValue{}

type absentValue struct{}

func (absentValue) String() string { return "<absent>" }

// Optional wraps a parser so it can never fail: when the child does not
// match, the result is Default and the cursor stays put.
type Optional struct {
	Child   Parser
	Default any
}

// Opt matches p or nothing; the missing case yields Absent.
func Opt(p Parser) *Optional { return &Optional{Child: p, Default: Absent} }

// OptDefault matches p or nothing; the missing case yields def.
func OptDefault(p Parser, def any) *Optional { return &Optional{Child: p, Default: def} }

func (o *Optional) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	value, n, err := o.Child.Parse(cur, ctx)
	if err != nil {
		if isFatal(err) {
			return nil, cur, err
		}

		return o.Default, cur, nil
	}

	return value, n, nil
}

// Mapper applies a total transformation to the child's matched value.
// Failures pass through untouched; the function cannot turn a success into a
// failure.
type Mapper struct {
	Child Parser
	Func  func(any) any
}

// Map transforms p's value with f on success.
func Map(p Parser, f func(any) any) *Mapper { return &Mapper{Child: p, Func: f} }

func (m *Mapper) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	value, n, err := m.Child.Parse(cur, ctx)
	if err != nil {
		return nil, cur, err
	}

	return m.Func(value), n, nil
}

// Lifted adapts an n-ary function to n parsers run in sequence, passing the
// matched values as positional arguments.
type Lifted struct {
	Func     func(...any) any
	Children []Parser
}

// Lift applies f over the values of ps run in sequence.
func Lift(f func(...any) any, ps ...Parser) *Lifted {
	return &Lifted{Func: f, Children: ps}
}

func (l *Lifted) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	results := make([]any, 0, len(l.Children))
	next := cur

	for _, c := range l.Children {
		value, n, err := c.Parse(next, ctx)
		if err != nil {
			return nil, cur, err
		}

		results = append(results, value)
		next = n
	}

	return l.Func(results...), next, nil
}

// SepBy matches zero or more p separated by sep.
func SepBy(p, sep Parser) Parser {
	return Lift(accumulate, Opt(p), Many(KeepRight(sep, p)))
}

func accumulate(vs ...any) any {
	rest := vs[1].([]any)

	results := make([]any, 0, len(rest)+1)
	if vs[0] != Absent {
		results = append(results, vs[0])
	}

	return append(results, rest...)
}

// Between matches p fenced by fence on both sides, keeping p's value.
func Between(p, fence Parser) Parser {
	return KeepRight(fence, KeepLeft(p, fence))
}
