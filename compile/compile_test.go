package compile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parseit/parseit"
	"github.com/parseit/parseit/jsonparser"
)

// runBoth parses input with the tree interpreter and with the compiled
// program, requiring the same outcome from both.
func runBoth(t *testing.T, p parseit.Parser, input string) (any, error) {
	t.Helper()

	prog, err := Compile(p)
	require.NoError(t, err)

	treeValue, treeErr := parseit.Run(p, input)
	vmValue, vmErr := prog.Run(input)

	if treeErr != nil {
		require.Error(t, vmErr)
		return nil, treeErr
	}

	require.NoError(t, vmErr)
	require.Equal(t, treeValue, vmValue)

	return vmValue, nil
}

func TestCompileLeaves(t *testing.T) {
	tests := []struct {
		name     string
		parser   parseit.Parser
		input    string
		expected any
		fails    bool
	}{
		{name: "char", parser: parseit.Char('a'), input: "a", expected: "a"},
		{name: "char mismatch", parser: parseit.Char('a'), input: "b", fails: true},
		{name: "set", parser: parseit.InSet("+-", "sign"), input: "-", expected: "-"},
		{name: "run", parser: parseit.RunOf("ab", "", 1), input: "abba", expected: "abba"},
		{name: "run with escape", parser: parseit.RunOf("ab", "c", 1), input: `a\cb`, expected: "acb"},
		{name: "literal", parser: parseit.Literal("if"), input: "if", expected: "if"},
		{name: "literal folded", parser: parseit.LiteralFold("TRUE"), input: "true", expected: "TRUE"},
		{name: "keyword", parser: parseit.Keyword("null", nil), input: "null", expected: nil},
		{name: "keyword mismatch", parser: parseit.Keyword("null", nil), input: "nil", fails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := runBoth(t, tt.parser, tt.input)
			if tt.fails {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.expected, value)
		})
	}
}

func TestCompileCombinators(t *testing.T) {
	tests := []struct {
		name   string
		parser parseit.Parser
		inputs []string
	}{
		{
			name:   "sequence",
			parser: parseit.Seq(parseit.Char('a'), parseit.Char('b')),
			inputs: []string{"ab", "ba", "a", ""},
		},
		{
			name:   "choice prefers earlier alternatives",
			parser: parseit.Choice(parseit.Literal("a"), parseit.Literal("ab")),
			inputs: []string{"a", "b"},
		},
		{
			name:   "choice backtracks",
			parser: parseit.Choice(parseit.Literal("ax"), parseit.Literal("ab")),
			inputs: []string{"ab", "ax", "ay"},
		},
		{
			name:   "many",
			parser: parseit.Seq(parseit.Many(parseit.Char('x')), parseit.Char('b')),
			inputs: []string{"xxxxb", "b", "xxa"},
		},
		{
			name:   "many1",
			parser: parseit.Many1(parseit.Char('x')),
			inputs: []string{"xxx", ""},
		},
		{
			name:   "zero width child stops repetition",
			parser: parseit.Many(parseit.Opt(parseit.Char('a'))),
			inputs: []string{"aab", ""},
		},
		{
			name:   "keep left",
			parser: parseit.KeepLeft(parseit.Char('a'), parseit.Char('b')),
			inputs: []string{"ab", "ax", "x"},
		},
		{
			name:   "keep right",
			parser: parseit.KeepRight(parseit.Char('a'), parseit.Char('b')),
			inputs: []string{"ab", "ax"},
		},
		{
			name:   "optional",
			parser: parseit.Seq(parseit.Opt(parseit.Char('a')), parseit.Char('b')),
			inputs: []string{"ab", "b", "c"},
		},
		{
			name:   "optional with default",
			parser: parseit.Seq(parseit.OptDefault(parseit.Char('a'), "?"), parseit.Char('b')),
			inputs: []string{"ab", "b"},
		},
		{
			name:   "separated list",
			parser: parseit.SepBy(parseit.Digits, parseit.Char(',')),
			inputs: []string{"1,22,333", "7", ""},
		},
		{
			name:   "number",
			parser: parseit.Number,
			inputs: []string{"42", "-3.5", "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, input := range tt.inputs {
				_, _ = runBoth(t, tt.parser, input)
			}
		})
	}
}

func TestCompiledArithmetic(t *testing.T) {
	expr := parseit.NewForward()

	toFloat := parseit.Map(parseit.Number, func(v any) any {
		if n, ok := v.(int64); ok {
			return float64(n)
		}

		return v
	})

	parens := parseit.KeepRight(parseit.LeftParen, parseit.KeepLeft(expr, parseit.RightParen))
	primary := parseit.Choice(toFloat, parens)

	fold := func(vs ...any) any {
		acc := vs[0].(float64)

		for _, pair := range vs[1].([]any) {
			p := pair.([]any)
			rhs := p[1].(float64)

			switch p[0].(string) {
			case "+":
				acc += rhs
			case "-":
				acc -= rhs
			case "*":
				acc *= rhs
			case "/":
				acc /= rhs
			}
		}

		return acc
	}

	term := parseit.Lift(fold, primary, parseit.Many(parseit.Seq(parseit.InSet("*/", "operator"), primary)))
	expr.Define(parseit.Lift(fold, term, parseit.Many(parseit.Seq(parseit.InSet("+-", "operator"), term))))

	tests := []struct {
		input    string
		expected float64
	}{
		{input: "1+2+3", expected: 6},
		{input: "2+3*4", expected: 14},
		{input: "(1+2)*3", expected: 9},
		{input: "2*(3+4)/3+4", expected: 8.666666666666668},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			value, err := runBoth(t, expr, tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.expected, value.(float64))
		})
	}

	for _, input := range []string{"", "1+", "(1+2", "*3"} {
		t.Run("reject "+input, func(t *testing.T) {
			_, err := runBoth(t, expr, input)
			require.Error(t, err)
		})
	}
}

func TestCompiledJSONGrammar(t *testing.T) {
	inputs := []string{
		`"hello"`,
		"42",
		"-3.25",
		"true",
		"null",
		"[]",
		`[1, 2.5, "three", true, null]`,
		`{"name": "orion", "port": 8080}`,
		`{"server": {"ports": [80, 443]}, "ok": true}`,
		`{"a": 1`,
		"not json",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, _ = runBoth(t, jsonparser.Value, input)
		})
	}
}

func TestCompileNotCompilable(t *testing.T) {
	tests := []struct {
		name   string
		parser parseit.Parser
	}{
		{name: "lookahead", parser: parseit.FollowedBy(parseit.Char('a'), parseit.Char('b'))},
		{name: "negative lookahead", parser: parseit.NotFollowedBy(parseit.Char('a'), parseit.Char('b'))},
		{name: "indent scope", parser: parseit.WithIndent(parseit.Char('a'))},
		{name: "eof", parser: parseit.EOF},
		{name: "buried in a sequence", parser: parseit.Seq(parseit.Char('a'), parseit.EOF)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.parser)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrNotCompilable)
		})
	}
}

func TestCompileUnboundForward(t *testing.T) {
	f := parseit.NewForward()

	require.Panics(t, func() {
		_, _ = Compile(f)
	})
}

func TestProgramErrors(t *testing.T) {
	prog, err := Compile(parseit.Literal("hello"))
	require.NoError(t, err)

	_, err = prog.Run("hello world")
	require.ErrorIs(t, err, parseit.ErrTrailingInput)

	_, err = prog.Run("help")
	require.ErrorIs(t, err, parseit.ErrNoMatch)
	require.Contains(t, err.Error(), `"hello"`)
}

func TestDisassemble(t *testing.T) {
	prog, err := Compile(parseit.Many(parseit.Char('x')))
	require.NoError(t, err)

	listing := prog.Disassemble()
	require.Contains(t, listing, "CREATE_ACC")
	require.Contains(t, listing, "LIT")
	require.Contains(t, listing, "JUMP_IF_FAILURE")
	require.Contains(t, listing, "LOAD_ACC")
}
