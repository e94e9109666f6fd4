// Package jsonparser is a demonstration grammar: a JSON subset built
// entirely from the public combinator surface. It only vaguely conforms to
// the JSON spec and exists to exercise the engine (mutual recursion through
// Forward, separated lists, ordered choice), not to replace encoding/json.
package jsonparser

import (
	"github.com/parseit/parseit"
)

var (
	ws = parseit.WS

	object = parseit.NewForward()
	array  = parseit.NewForward()

	jsonTrue  = parseit.Keyword("true", true)
	jsonFalse = parseit.Keyword("false", false)
	jsonNull  = parseit.Keyword("null", nil)

	simpleValue = parseit.Choice(
		parseit.QuotedString,
		parseit.Number,
		object,
		array,
		jsonTrue,
		jsonFalse,
		jsonNull,
	)

	// Value is the grammar root: any JSON value with surrounding whitespace.
	Value parseit.Parser = parseit.KeepLeft(parseit.KeepRight(ws, simpleValue), ws)

	key = parseit.KeepLeft(parseit.QuotedString, parseit.Colon)

	pair = parseit.Lift(makePair, parseit.KeepRight(ws, key), Value)

	pairs = parseit.SepBy(pair, parseit.Comma)
)

func init() {
	object.Define(parseit.KeepRight(
		parseit.LeftCurly,
		parseit.KeepLeft(parseit.Map(pairs, makeObject), parseit.RightCurly),
	))

	array.Define(parseit.KeepRight(
		parseit.LeftBracket,
		parseit.KeepLeft(parseit.SepBy(Value, parseit.Comma), parseit.RightBracket),
	))
}

type keyValue struct {
	key   string
	value any
}

func makePair(vs ...any) any {
	return keyValue{key: vs[0].(string), value: vs[1]}
}

func makeObject(v any) any {
	items := v.([]any)

	m := make(map[string]any, len(items))
	for _, item := range items {
		kv := item.(keyValue)
		m[kv.key] = kv.value
	}

	return m
}

// Loads parses data as a JSON document. Objects decode to map[string]any,
// arrays to []any, and numbers to int64 or float64.
func Loads(data string) (any, error) {
	return parseit.Run(Value, data)
}

// LoadsWith is Loads with explicit parse options, typically a recursion
// bound for deeply nested documents.
func LoadsWith(data string, opts parseit.Options) (any, error) {
	return parseit.RunWith(Value, data, opts)
}
