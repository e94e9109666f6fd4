package parseit

import "fmt"

// Forward is a placeholder for a parser that is defined after construction,
// which is what makes directly or mutually recursive grammars expressible.
// The placeholder is usable as a Parser immediately; Define binds it exactly
// once, and every Parse call indirects through the binding so recursive
// references resolve at call time.
type Forward struct {
	def Parser
}

// NewForward returns an unbound placeholder parser.
func NewForward() *Forward { return &Forward{} }

// Define binds the placeholder to its real definition. Binding twice is a
// grammar-authoring bug and panics.
func (f *Forward) Define(p Parser) {
	if f.def != nil {
		panic("parseit: Forward defined twice")
	}

	f.def = p
}

// Definition returns the bound parser, or nil before Define.
func (f *Forward) Definition() Parser { return f.def }

func (f *Forward) Parse(cur Cursor, ctx *Context) (any, Cursor, error) {
	if f.def == nil {
		panic("parseit: Forward used before Define")
	}

	if ctx.maxDepth > 0 {
		ctx.depth++
		defer func() { ctx.depth-- }()

		if ctx.depth > ctx.maxDepth {
			return nil, cur, fmt.Errorf("%w: %w (limit %d)", ErrCritical, ErrTooDeep, ctx.maxDepth)
		}
	}

	return f.def.Parse(cur, ctx)
}
