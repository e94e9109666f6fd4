// Package compile translates parseit grammar trees into flat instruction
// programs run by a small virtual machine. A compiled Program gives the same
// outcomes as interpreting the tree, but executes as jump-threaded opcodes
// over explicit position and accumulator stacks instead of nested calls;
// only Forward references still dispatch recursively.
//
// Not every tree is compilable: lookahead (FollowedBy, NotFollowedBy) and
// indentation scopes (WithIndent) have no opcode encoding and stay
// interpreter-only.
package compile

import (
	"errors"
	"fmt"

	"github.com/parseit/parseit"
)

// ErrNotCompilable is returned for grammar nodes the compiler has no
// encoding for.
var ErrNotCompilable = errors.New("parser tree is not compilable")

// Compile translates a grammar tree into a Program.
func Compile(p parseit.Parser) (*Program, error) {
	c := &compiler{
		futures: make(map[*parseit.Forward][]op),
		seen:    make(map[*parseit.Forward]bool),
	}

	code, err := c.comp(p)
	if err != nil {
		return nil, err
	}

	return &Program{code: code, futures: c.futures}, nil
}

type compiler struct {
	futures map[*parseit.Forward][]op
	seen    map[*parseit.Forward]bool
}

func (c *compiler) comp(p parseit.Parser) ([]op, error) {
	switch t := p.(type) {
	case *parseit.CharLit:
		return []op{{code: opLit, s1: string(t.R)}}, nil

	case *parseit.Set:
		return []op{{code: opSet, s1: t.Chars, name: t.Name}}, nil

	case *parseit.CharRun:
		return []op{{code: opRun, s1: t.Chars, s2: t.Escapes, n: t.Min, name: t.Name}}, nil

	case *parseit.Lit:
		return []op{{code: opLit, s1: t.Text, fold: t.Fold}}, nil

	case *parseit.Word:
		return []op{{code: opWord, s1: t.Text, val: t.Value, fold: t.Fold}}, nil

	case *parseit.Sequence:
		return c.compSequence(t.Children, nil)

	case *parseit.Lifted:
		return c.compSequence(t.Children, t.Func)

	case *parseit.Alt:
		return c.compChoice(t.Children)

	case *parseit.Repeat:
		return c.compRepeat(t)

	case *parseit.Keep:
		return c.compKeep(t)

	case *parseit.Optional:
		return c.compOptional(t)

	case *parseit.Mapper:
		sub, err := c.comp(t.Child)
		if err != nil {
			return nil, err
		}

		return append(sub, op{code: opMap, fn: t.Func}), nil

	case *parseit.Forward:
		return c.compForward(t)

	default:
		return nil, fmt.Errorf("%w: %T", ErrNotCompilable, p)
	}
}

// compSequence emits the shared shape of Sequence and Lift: match every
// child, pushing each value onto a fresh accumulator, then reduce. A nil
// reduce leaves the collected values as the result.
func (c *compiler) compSequence(children []parseit.Parser, reduce func(...any) any) ([]op, error) {
	prog := []op{{code: opCreateAcc}, {code: opPushPos}}

	var pending []int

	for _, child := range children {
		sub, err := c.comp(child)
		if err != nil {
			return nil, err
		}

		prog = append(prog, sub...)
		pending = append(pending, len(prog))
		prog = append(prog, op{code: opJumpIfFailure}, op{code: opPush})
	}

	prog = append(prog, op{code: opLoadAcc, n: len(children), name: "sequence"})
	if reduce != nil {
		prog = append(prog, op{code: opLift, lift: reduce})
	}

	prog = append(prog,
		op{code: opClearPos},
		op{code: opJump, n: 3},
		op{code: opPopPos},
		op{code: opDeleteAcc},
	)

	fail := len(prog) - 2
	for _, idx := range pending {
		prog[idx].n = fail - idx
	}

	return prog, nil
}

func (c *compiler) compChoice(children []parseit.Parser) ([]op, error) {
	prog := []op{{code: opPushPos}}

	var pending []int

	for i, child := range children {
		sub, err := c.comp(child)
		if err != nil {
			return nil, err
		}

		prog = append(prog, sub...)
		pending = append(pending, len(prog))
		prog = append(prog, op{code: opJumpIfSuccess})

		if i < len(children)-1 {
			prog = append(prog, op{code: opPopPushPos})
		} else {
			prog = append(prog, op{code: opPopPos})
		}
	}

	prog = append(prog, op{code: opJump, n: 2}, op{code: opClearPos})

	ok := len(prog) - 1
	for _, idx := range pending {
		prog[idx].n = ok - idx
	}

	return prog, nil
}

func (c *compiler) compRepeat(r *parseit.Repeat) ([]op, error) {
	sub, err := c.comp(r.Child)
	if err != nil {
		return nil, err
	}

	prog := []op{{code: opCreateAcc}}
	loop := len(prog)
	prog = append(prog, op{code: opPushPos})
	prog = append(prog, sub...)

	jif := len(prog)
	prog = append(prog, op{code: opJumpIfFailure}, op{code: opPush})

	// Stop the loop after a match that consumed nothing; it would never
	// terminate otherwise.
	stuck := len(prog)
	prog = append(prog, op{code: opJumpIfStuck})

	prog = append(prog, op{code: opClearPos})
	prog = append(prog, op{code: opJump, n: loop - len(prog)})

	exit := len(prog)
	prog = append(prog, op{code: opPopPos}, op{code: opLoadAcc, n: r.Min, name: "repetition"})

	prog[jif].n = exit - jif
	prog[stuck].n = exit - stuck

	return prog, nil
}

func (c *compiler) compKeep(k *parseit.Keep) ([]op, error) {
	left, err := c.comp(k.Left)
	if err != nil {
		return nil, err
	}

	right, err := c.comp(k.Right)
	if err != nil {
		return nil, err
	}

	if k.Tail {
		// Keep the right value: it is already in the register when the
		// right operand matches.
		prog := []op{{code: opPushPos}}
		prog = append(prog, left...)
		jif1 := len(prog)
		prog = append(prog, op{code: opJumpIfFailure})
		prog = append(prog, right...)
		jif2 := len(prog)
		prog = append(prog,
			op{code: opJumpIfFailure},
			op{code: opClearPos},
			op{code: opJump, n: 2},
			op{code: opPopPos},
		)
		fail := len(prog) - 1
		prog[jif1].n = fail - jif1
		prog[jif2].n = fail - jif2

		return prog, nil
	}

	// Keep the left value: park it on an accumulator while the right
	// operand matches, then pop it back into the register.
	prog := []op{{code: opCreateAcc}, {code: opPushPos}}
	prog = append(prog, left...)
	jif1 := len(prog)
	prog = append(prog, op{code: opJumpIfFailure}, op{code: opPush})
	prog = append(prog, right...)
	jif2 := len(prog)
	prog = append(prog,
		op{code: opJumpIfFailure},
		op{code: opPop},
		op{code: opClearPos},
		op{code: opJump, n: 2},
		op{code: opPopPos},
		op{code: opDeleteAcc},
	)
	fail := len(prog) - 2
	prog[jif1].n = fail - jif1
	prog[jif2].n = fail - jif2

	return prog, nil
}

func (c *compiler) compOptional(o *parseit.Optional) ([]op, error) {
	sub, err := c.comp(o.Child)
	if err != nil {
		return nil, err
	}

	prog := []op{{code: opPushPos}}
	prog = append(prog, sub...)

	jis := len(prog)
	prog = append(prog,
		op{code: opJumpIfSuccess},
		op{code: opPopPos},
		op{code: opOpt, val: o.Default},
		op{code: opJump, n: 2},
		op{code: opClearPos},
	)

	prog[jis].n = len(prog) - 1 - jis

	return prog, nil
}

func (c *compiler) compForward(f *parseit.Forward) ([]op, error) {
	if c.seen[f] {
		return []op{{code: opForward, fwd: f}}, nil
	}

	if f.Definition() == nil {
		panic("compile: Forward used before Define")
	}

	c.seen[f] = true

	sub, err := c.comp(f.Definition())
	if err != nil {
		return nil, err
	}

	c.futures[f] = sub

	return sub, nil
}
