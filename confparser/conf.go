// Package confparser parses a small indentation based configuration
// dialect, the kind of non-standard file this library is meant for:
//
//	server:
//	    host: example.com
//	    ports:
//	        http: 80
//	        https: 443
//	logging:
//	    level: debug
//
// A line is either "name: value" or "name:" opening a block of entries
// indented deeper than the opening line. Blocks nest through the grammar's
// own recursion, so the engine's indent stack carries one required column
// per nesting depth. Values are quoted strings, booleans, exact decimal
// numbers, or bare words.
package confparser

import (
	"github.com/parseit/parseit"
)

const (
	nameChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"
	wordChars = nameChars + "./:@#"
)

var (
	hspace   = parseit.Many(parseit.InSet(" \t", "blank"))
	lineEnd  = parseit.Seq(hspace, parseit.EOL)
	newlines = parseit.Many1(lineEnd)

	name = parseit.RunOf(nameChars, "", 1)

	wordChar = parseit.InSet(wordChars, "word character")
	bareWord = parseit.RunOf(wordChars, "", 1)

	// A literal followed by more word characters ("80x", "1.2.3", "truety")
	// is a bare word, not a number or boolean.
	boolValue = parseit.NotFollowedBy(parseit.Choice(
		parseit.Keyword("true", true),
		parseit.Keyword("false", false),
	), wordChar)
	numberValue = parseit.NotFollowedBy(parseit.DecimalNumber, wordChar)

	value = parseit.Choice(parseit.QuotedString, boolValue, numberValue, bareWord)

	entries = parseit.NewForward()

	// block opens a nested scope: WithIndent records the column of the
	// first entry, and the guard rejects blocks that fail to indent past
	// their parent.
	block = parseit.WithIndent(parseit.KeepRight(deeperGuard{}, entries))

	keyValue = parseit.Lift(makeEntry,
		parseit.KeepLeft(name, parseit.Seq(hspace, parseit.Colon, hspace)),
		value,
	)

	section = parseit.Lift(makeEntry,
		parseit.KeepLeft(name, parseit.Seq(hspace, parseit.Colon)),
		block,
	)

	entry = parseit.Choice(keyValue, section)

	rowSep = parseit.KeepLeft(newlines, parseit.SameIndent)

	document = parseit.KeepLeft(block, parseit.WS)
)

func init() {
	entries.Define(parseit.Map(parseit.SepBy(entry, rowSep), mergeEntries))
}

// deeperGuard is a zero-width leaf that checks the indent stack the engine
// threads through every attempt: a block's recorded column must be strictly
// deeper than its parent's, otherwise a dedented line would be adopted as
// the first child of an empty block.
type deeperGuard struct{}

func (deeperGuard) Parse(cur parseit.Cursor, ctx *parseit.Context) (any, parseit.Cursor, error) {
	indents := ctx.Indents()
	if len(indents) >= 2 && indents[len(indents)-1] <= indents[len(indents)-2] {
		return nil, cur, ctx.Fail(cur, "a deeper indented block")
	}

	return nil, cur, nil
}

type confEntry struct {
	name  string
	value any
}

func makeEntry(vs ...any) any {
	return confEntry{name: vs[0].(string), value: vs[1]}
}

func mergeEntries(v any) any {
	items := v.([]any)

	m := make(map[string]any, len(items))
	for _, item := range items {
		e := item.(confEntry)
		m[e.name] = e.value
	}

	return m
}

// Parse reads a configuration document into nested maps. Section values are
// map[string]any; leaf values are string, bool, or decimal.Decimal.
func Parse(input string) (map[string]any, error) {
	return ParseWith(input, parseit.Options{})
}

// ParseWith is Parse with explicit parse options, typically a recursion
// bound for deeply nested documents.
func ParseWith(input string, opts parseit.Options) (map[string]any, error) {
	v, err := parseit.RunWith(document, input, opts)
	if err != nil {
		return nil, err
	}

	return v.(map[string]any), nil
}
