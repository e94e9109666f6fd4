package compile

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/parseit/parseit"
)

type opcode int

const (
	opSet opcode = iota
	opRun
	opLit
	opWord
	opMap
	opLift
	opOpt
	opJump
	opJumpIfFailure
	opJumpIfSuccess
	opJumpIfStuck
	opPushPos
	opPopPos
	opClearPos
	opPopPushPos
	opPush
	opPop
	opLoadAcc
	opCreateAcc
	opDeleteAcc
	opForward
)

var opNames = map[opcode]string{
	opSet:           "SET",
	opRun:           "RUN",
	opLit:           "LIT",
	opWord:          "WORD",
	opMap:           "MAP",
	opLift:          "LIFT",
	opOpt:           "OPT",
	opJump:          "JUMP",
	opJumpIfFailure: "JUMP_IF_FAILURE",
	opJumpIfSuccess: "JUMP_IF_SUCCESS",
	opJumpIfStuck:   "JUMP_IF_STUCK",
	opPushPos:       "PUSH_POS",
	opPopPos:        "POP_POS",
	opClearPos:      "CLEAR_POS",
	opPopPushPos:    "POP_PUSH_POS",
	opPush:          "PUSH",
	opPop:           "POP",
	opLoadAcc:       "LOAD_ACC",
	opCreateAcc:     "CREATE_ACC",
	opDeleteAcc:     "DELETE_ACC",
	opForward:       "FORWARD",
}

type op struct {
	code opcode
	n    int    // jump offset or minimum match count
	s1   string // match text or character set
	s2   string // escape set
	fold bool
	val  any
	fn   func(any) any
	lift func(...any) any
	fwd  *parseit.Forward
	name string
}

// Program is a compiled parser: a flat instruction list plus the compiled
// bodies of every Forward it references.
type Program struct {
	code    []op
	futures map[*parseit.Forward][]op
}

// Run executes the program over input. The whole input must be consumed,
// with the same outcome contract as parseit.Run.
func (p *Program) Run(input string) (any, error) {
	m := &machine{input: input, futures: p.futures}

	ok, reg, pos := m.exec(0, p.code)
	if !ok {
		msg, _ := reg.(string)
		return nil, fmt.Errorf("%w: %s", parseit.ErrNoMatch, msg)
	}

	if pos < len(input) {
		return nil, fmt.Errorf("%w at offset %d", parseit.ErrTrailingInput, pos)
	}

	return reg, nil
}

// Disassemble renders the instruction list for debugging.
func (p *Program) Disassemble() string {
	var sb strings.Builder

	for idx, o := range p.code {
		switch o.code {
		case opJump, opJumpIfFailure, opJumpIfSuccess, opJumpIfStuck:
			fmt.Fprintf(&sb, "%3d| %s to %d\n", idx, opNames[o.code], idx+o.n)
		case opLit, opWord, opSet, opRun:
			fmt.Fprintf(&sb, "%3d| %s %s\n", idx, opNames[o.code], strconv.Quote(o.s1))
		default:
			fmt.Fprintf(&sb, "%3d| %s\n", idx, opNames[o.code])
		}
	}

	return sb.String()
}

type machine struct {
	input   string
	futures map[*parseit.Forward][]op
}

// exec interprets one instruction list. It reports the final status, the
// result register, and the input position.
func (m *machine) exec(pos int, prog []op) (bool, any, int) {
	var (
		acc      [][]any
		posStack []int
		reg      any
	)

	status := true
	ip := 0

	for ip < len(prog) {
		o := prog[ip]

		switch o.code {
		case opJump:
			ip += o.n
			continue

		case opJumpIfFailure:
			if !status {
				ip += o.n
				continue
			}

		case opJumpIfSuccess:
			if status {
				ip += o.n
				continue
			}

		case opJumpIfStuck:
			if pos == posStack[len(posStack)-1] {
				ip += o.n
				continue
			}

		case opPushPos:
			posStack = append(posStack, pos)

		case opPopPos:
			pos = posStack[len(posStack)-1]
			posStack = posStack[:len(posStack)-1]

		case opClearPos:
			posStack = posStack[:len(posStack)-1]

		case opPopPushPos:
			pos = posStack[len(posStack)-1]

		case opCreateAcc:
			acc = append(acc, nil)

		case opDeleteAcc:
			acc = acc[:len(acc)-1]

		case opPush:
			acc[len(acc)-1] = append(acc[len(acc)-1], reg)
			status = true

		case opPop:
			top := acc[len(acc)-1]
			reg = top[len(top)-1]
			acc[len(acc)-1] = top[:len(top)-1]
			status = true

		case opLoadAcc:
			values := acc[len(acc)-1]
			acc = acc[:len(acc)-1]

			if len(values) >= o.n {
				status = true
				if values == nil {
					values = []any{}
				}
				reg = values
			} else {
				status = false
				reg = fmt.Sprintf("expected at least %d of %s at offset %d", o.n, o.name, pos)
			}

		case opOpt:
			status = true
			reg = o.val

		case opMap:
			if status {
				reg = o.fn(reg)
			}

		case opLift:
			if status {
				reg = o.lift(reg.([]any)...)
			}

		case opSet:
			status, reg, pos = m.matchSet(o, pos)

		case opRun:
			status, reg, pos = m.matchRun(o, pos)

		case opLit:
			status, reg, pos = m.matchText(o, pos, o.s1)

		case opWord:
			status, reg, pos = m.matchText(o, pos, o.val)

		case opForward:
			st, r, np := m.exec(pos, m.futures[o.fwd])

			status, reg = st, r
			if st {
				pos = np
			}
		}

		ip++
	}

	return status, reg, pos
}

func (m *machine) matchSet(o op, pos int) (bool, any, int) {
	r, width := m.peek(pos)
	if width == 0 || !strings.ContainsRune(o.s1, r) {
		return false, fmt.Sprintf("expected %s at offset %d", setLabel(o), pos), pos
	}

	return true, string(r), pos + width
}

func (m *machine) matchRun(o op, pos int) (bool, any, int) {
	var sb strings.Builder

	cur := pos
	count := 0

	for {
		r, width := m.peek(cur)
		if width == 0 {
			break
		}

		if r == '\\' {
			esc, ew := m.peek(cur + width)
			if ew != 0 && strings.ContainsRune(o.s2, esc) {
				sb.WriteRune(esc)
				cur += width + ew
				count++

				continue
			}
		}

		if !strings.ContainsRune(o.s1, r) {
			break
		}

		sb.WriteRune(r)
		cur += width
		count++
	}

	if count < o.n {
		return false, fmt.Sprintf("expected at least %d of %s at offset %d", o.n, setLabel(o), pos), pos
	}

	return true, sb.String(), cur
}

// matchText matches an exact string, loading value into the register on
// success. Lit loads the text itself; Word loads its mapped value.
func (m *machine) matchText(o op, pos int, value any) (bool, any, int) {
	text := o.s1
	end := pos + len(text)

	if end <= len(m.input) {
		rest := m.input[pos:end]
		if o.fold && strings.EqualFold(rest, text) || !o.fold && rest == text {
			return true, value, end
		}
	}

	return false, fmt.Sprintf("expected %s at offset %d", strconv.Quote(text), pos), pos
}

func (m *machine) peek(pos int) (rune, int) {
	if pos >= len(m.input) {
		return 0, 0
	}

	return utf8.DecodeRuneInString(m.input[pos:])
}

func setLabel(o op) string {
	if o.name != "" {
		return o.name
	}

	return "one of " + strconv.Quote(o.s1)
}
