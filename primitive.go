package parseit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Character classes used by the stock primitives. ASCII only: Unicode-aware
// classification is out of scope, and explicit sets cover the dialects this
// library targets.
const (
	asciiLetters    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	asciiDigits     = "0123456789"
	punctuation     = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
	whitespaceChars = " \t\n\r\v\f"
	printableChars  = asciiLetters + asciiDigits + punctuation + whitespaceChars
)

// CharLit matches one exact rune and yields it as a string.
type CharLit struct {
	R rune
}

// Char matches the single rune r.
func Char(r rune) *CharLit { return &CharLit{R: r} }

func (c *CharLit) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	r, width := cur.Peek()
	if width == 0 || r != c.R {
		return nil, cur, ctx.Fail(cur, strconv.QuoteRune(c.R))
	}

	return string(c.R), cur.Advance(width), nil
}

// Set matches one rune drawn from Chars. Name, when set, is used in failure
// messages instead of the raw character list.
type Set struct {
	Chars string
	Name  string
}

// InSet matches any single rune in chars.
func InSet(chars, name string) *Set { return &Set{Chars: chars, Name: name} }

func (s *Set) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	r, width := cur.Peek()
	if width == 0 || !strings.ContainsRune(s.Chars, r) {
		return nil, cur, ctx.Fail(cur, s.label())
	}

	return string(r), cur.Advance(width), nil
}

func (s *Set) label() string {
	if s.Name != "" {
		return s.Name
	}

	return "one of " + strconv.Quote(s.Chars)
}

// CharRun greedily matches a run of runes drawn from Chars, honoring
// backslash escapes for runes listed in Escapes, and yields the accumulated
// text with escapes resolved. At least Min runes must be collected.
type CharRun struct {
	Chars   string
	Escapes string
	Min     int
	Name    string
}

// RunOf matches a greedy run of at least min runes from chars, resolving
// backslash escapes for runes in escapes.
func RunOf(chars, escapes string, min int) *CharRun {
	return &CharRun{Chars: chars, Escapes: escapes, Min: min}
}

func (r *CharRun) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	var sb strings.Builder

	next := cur
	count := 0

	for {
		ch, width := next.Peek()
		if width == 0 {
			break
		}

		if ch == '\\' {
			esc, ew := next.Advance(width).Peek()
			if ew != 0 && strings.ContainsRune(r.Escapes, esc) {
				sb.WriteRune(esc)
				next = next.Advance(width + ew)
				count++

				continue
			}
		}

		if !strings.ContainsRune(r.Chars, ch) {
			break
		}

		sb.WriteRune(ch)
		next = next.Advance(width)
		count++
	}

	if count < r.Min {
		return nil, cur, ctx.Fail(cur, r.label())
	}

	return sb.String(), next, nil
}

func (r *CharRun) label() string {
	if r.Name != "" {
		return r.Name
	}

	return fmt.Sprintf("a run of at least %d of %s", r.Min, strconv.Quote(r.Chars))
}

// Lit matches an exact string. With Fold set the comparison is case
// insensitive while the value keeps Lit's own spelling.
type Lit struct {
	Text string
	Fold bool
}

// Literal matches s exactly.
func Literal(s string) *Lit { return &Lit{Text: s} }

// LiteralFold matches s ignoring case.
func LiteralFold(s string) *Lit { return &Lit{Text: s, Fold: true} }

func (l *Lit) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	rest := cur.Rest()
	n := len(l.Text)

	if len(rest) >= n {
		if l.Fold && strings.EqualFold(rest[:n], l.Text) || !l.Fold && rest[:n] == l.Text {
			return l.Text, cur.Advance(n), nil
		}
	}

	return nil, cur, ctx.Fail(cur, strconv.Quote(l.Text))
}

// Word matches an exact string like Lit but yields a fixed value instead of
// the matched text, which is how keywords map onto semantic values.
type Word struct {
	Text  string
	Value any
	Fold  bool
}

// Keyword matches s and yields value.
func Keyword(s string, value any) *Word { return &Word{Text: s, Value: value} }

// KeywordFold matches s ignoring case and yields value.
func KeywordFold(s string, value any) *Word { return &Word{Text: s, Value: value, Fold: true} }

func (w *Word) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	rest := cur.Rest()
	n := len(w.Text)

	if len(rest) >= n {
		if w.Fold && strings.EqualFold(rest[:n], w.Text) || !w.Fold && rest[:n] == w.Text {
			return w.Value, cur.Advance(n), nil
		}
	}

	return nil, cur, ctx.Fail(cur, strconv.Quote(w.Text))
}

type endOfInput struct{}

// EOF succeeds only at end of input and consumes nothing.
var EOF Parser = endOfInput{}

func (endOfInput) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	if !cur.EOF() {
		return nil, cur, ctx.Fail(cur, "end of input")
	}

	return nil, cur, nil
}

type empty struct{}

// Nothing always succeeds without consuming anything.
var Nothing Parser = empty{}

func (empty) Parse(cur Cursor, _ *Context) (any, Cursor, error) {
	return nil, cur, nil
}

// Stock grammar pieces.
var (
	EOL = InSet("\n\r", "end of line")

	LeftCurly    = Char('{')
	RightCurly   = Char('}')
	LeftBracket  = Char('[')
	RightBracket = Char(']')
	LeftParen    = Char('(')
	RightParen   = Char(')')
	Colon        = Char(':')
	SemiColon    = Char(';')
	Comma        = Char(',')

	AnyChar = InSet(printableChars, "any character")
	Digit   = InSet(asciiDigits, "digit")
	Digits  = &CharRun{Chars: asciiDigits, Min: 1, Name: "digits"}
	WSChar  = InSet(" \t\v\f", "whitespace")
	WS      = Many(InSet(whitespaceChars, "whitespace"))

	// Number matches an optionally signed decimal literal, yielding int64
	// when there is no fractional part and float64 otherwise.
	Number = Map(numberText(), makeNumber)

	// DecimalNumber matches the same shape as Number but yields an exact
	// decimal.Decimal, which configuration grammars tend to prefer over
	// binary floats.
	DecimalNumber = Map(numberText(), makeDecimal)

	SingleQuotedString = Between(RunOf(excludeChar(printableChars, '\''), "'", 1), Char('\''))
	DoubleQuotedString = Between(RunOf(excludeChar(printableChars, '"'), `"`, 1), Char('"'))
	QuotedString       = Choice(DoubleQuotedString, SingleQuotedString)
)

// numberText assembles the raw text of a signed decimal literal.
func numberText() Parser {
	return Lift(joinNumber,
		OptDefault(Char('-'), ""),
		Digits,
		Opt(Seq(Char('.'), Digits)),
	)
}

func joinNumber(vs ...any) any {
	text := vs[0].(string) + vs[1].(string)
	if frac, ok := vs[2].([]any); ok {
		text += frac[0].(string) + frac[1].(string)
	}

	return text
}

func makeNumber(v any) any {
	text := v.(string)
	if strings.Contains(text, ".") {
		f, _ := strconv.ParseFloat(text, 64)
		return f
	}

	n, _ := strconv.ParseInt(text, 10, 64)

	return n
}

func makeDecimal(v any) any {
	d, _ := decimal.NewFromString(v.(string))
	return d
}

func excludeChar(chars string, r rune) string {
	return strings.ReplaceAll(chars, string(r), "")
}

// EnclosedComment matches a comment fenced by start and end markers,
// yielding the raw text including both fences.
func EnclosedComment(start, end string) Parser {
	s := Literal(start)
	e := Literal(end)

	return Map(Seq(s, Many(NotFollowedBy(AnyChar, e)), AnyChar, e), joinParts)
}

// OneLineComment matches from a start marker through the end of the line or
// input.
func OneLineComment(start string) Parser {
	s := Literal(start)
	body := Many(InSet(excludeChar(excludeChar(printableChars, '\n'), '\r'), "comment text"))
	end := Choice(EOL, EOF)

	return Map(Seq(s, body, end), joinParts)
}

func joinParts(v any) any {
	var sb strings.Builder

	for _, part := range v.([]any) {
		switch t := part.(type) {
		case string:
			sb.WriteString(t)
		case []any:
			for _, inner := range t {
				sb.WriteString(inner.(string))
			}
		}
	}

	return sb.String()
}
