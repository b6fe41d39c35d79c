package regex

import "strings"

// Op identifies the kind of a postfix token.
type Op uint8

const (
	OpLiteral Op = iota
	OpAny
	OpConcat
	OpAlt
	OpQuest
	OpStar
	OpPlus
)

// Token is one element of a postfix stream.
type Token struct {
	Op   Op
	Char byte // OpLiteral only
}

func (t Token) String() string {
	switch t.Op {
	case OpLiteral:
		var b strings.Builder
		quote(&b, t.Char)
		return b.String()
	case OpAny:
		return "."
	case OpConcat:
		return ","
	case OpAlt:
		return "|"
	case OpQuest:
		return "?"
	case OpStar:
		return "*"
	case OpPlus:
		return "+"
	}
	return "!"
}

// FormatPostfix renders a postfix stream, concatenation shown as ','.
func FormatPostfix(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.String())
	}
	return b.String()
}

// level tracks the pending operands of one parenthesis nesting level.
type level struct {
	atoms int
	alts  int
}

type postfixer struct {
	out   []Token
	stack []level
	cur   level
}

func (p *postfixer) emit(t Token) {
	p.out = append(p.out, t)
}

// atom flushes one pending concatenation when two atoms are waiting and
// counts a new atom.
func (p *postfixer) atom(t Token) {
	if p.cur.atoms > 1 {
		p.cur.atoms--
		p.emit(Token{Op: OpConcat})
	}
	p.emit(t)
	p.cur.atoms++
}

func (p *postfixer) flushConcat() {
	for ; p.cur.atoms > 1; p.cur.atoms-- {
		p.emit(Token{Op: OpConcat})
	}
	p.cur.atoms = 0
}

func (p *postfixer) flushAlt() {
	for ; p.cur.alts > 0; p.cur.alts-- {
		p.emit(Token{Op: OpAlt})
	}
}

// Postfix converts an infix pattern (classes already rewritten) into a
// postfix token stream with explicit concatenation.
func Postfix(pattern string) ([]Token, error) {
	p := &postfixer{}

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '(':
			if p.cur.atoms > 1 {
				p.cur.atoms--
				p.emit(Token{Op: OpConcat})
			}
			p.stack = append(p.stack, p.cur)
			p.cur = level{}

		case ')':
			if len(p.stack) == 0 {
				return nil, newError(pattern, i, ErrUnmatchedRParen)
			}
			if p.cur.atoms == 0 {
				return nil, newError(pattern, i, ErrMissingOperand)
			}
			p.flushConcat()
			p.flushAlt()
			p.cur = p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.cur.atoms++

		case '|':
			if p.cur.atoms == 0 {
				return nil, newError(pattern, i, ErrMissingOperand)
			}
			p.flushConcat()
			p.cur.alts++

		case '*', '+', '?':
			if p.cur.atoms == 0 {
				return nil, newError(pattern, i, ErrMissingOperand)
			}
			op := OpStar
			switch c {
			case '+':
				op = OpPlus
			case '?':
				op = OpQuest
			}
			p.emit(Token{Op: op})

		case '.':
			p.atom(Token{Op: OpAny})

		case '\\':
			if i+1 >= len(pattern) {
				return nil, newError(pattern, i, ErrTrailingBackslash)
			}
			i++
			p.atom(Token{Op: OpLiteral, Char: unescape(pattern[i])})

		default:
			p.atom(Token{Op: OpLiteral, Char: c})
		}
	}

	if len(p.stack) > 0 {
		return nil, newError(pattern, strings.LastIndexByte(pattern, '('), ErrUnmatchedLParen)
	}
	p.flushConcat()
	p.flushAlt()
	return p.out, nil
}
