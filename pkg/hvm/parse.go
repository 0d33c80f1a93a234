package hvm

import (
	"fmt"
	"strings"
	"unicode"

	"lukechampine.com/uint128"
)

// SyntaxError reports where source text stopped making sense.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// Parse reads rules from source and groups them into functions by the name
// on their left-hand side, in order of first appearance.
//
//	rule := term "=" term
//	term := var | "#" digits | "@" var term
//	      | "{" Name term* "}" | "(" Name term* ")"
//	      | "(" "!" term term ")" | "(" op term term ")"
//
// Variables start with a lowercase letter or '_', constructor and function
// names with an uppercase letter. "//" starts a comment.
func Parse(source string) ([]Func, error) {
	p := &parser{src: source, line: 1, col: 1}

	var funcs []Func
	index := make(map[string]int)

	for {
		p.skip()
		if p.eof() {
			return funcs, nil
		}
		line, col := p.line, p.col
		lhs, err := p.term()
		if err != nil {
			return nil, err
		}
		head, ok := lhs.(Fun)
		if !ok {
			return nil, &SyntaxError{Line: line, Col: col, Msg: "rule must start with a function call"}
		}
		if err := p.expect('='); err != nil {
			return nil, err
		}
		rhs, err := p.term()
		if err != nil {
			return nil, err
		}

		i, ok := index[head.Name]
		if !ok {
			i = len(funcs)
			index[head.Name] = i
			funcs = append(funcs, Func{})
		}
		funcs[i].Rules = append(funcs[i].Rules, Rule{Lhs: lhs, Rhs: rhs})
	}
}

type parser struct {
	src  string
	pos  int
	line int
	col  int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) advance() byte {
	c := p.src[p.pos]
	p.pos++
	if c == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return c
}

func (p *parser) fail(format string, args ...any) error {
	return &SyntaxError{Line: p.line, Col: p.col, Msg: fmt.Sprintf(format, args...)}
}

// skip consumes whitespace and comments.
func (p *parser) skip() {
	for !p.eof() {
		switch {
		case unicode.IsSpace(rune(p.peek())):
			p.advance()
		case strings.HasPrefix(p.src[p.pos:], "//"):
			for !p.eof() && p.peek() != '\n' {
				p.advance()
			}
		default:
			return
		}
	}
}

func (p *parser) expect(c byte) error {
	p.skip()
	if p.eof() {
		return p.fail("expected %q, found end of input", c)
	}
	if p.peek() != c {
		return p.fail("expected %q, found %q", c, p.peek())
	}
	p.advance()
	return nil
}

func isNameByte(c byte) bool {
	return c == '.' || c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func (p *parser) name() (string, error) {
	p.skip()
	start := p.pos
	for !p.eof() && isNameByte(p.peek()) {
		p.advance()
	}
	name := p.src[start:p.pos]
	if !ValidName(name) {
		return "", p.fail("invalid name %q", name)
	}
	return name, nil
}

func (p *parser) term() (Term, error) {
	p.skip()
	if p.eof() {
		return nil, p.fail("expected term, found end of input")
	}

	switch c := p.peek(); {
	case c == '#':
		p.advance()
		start := p.pos
		for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
			p.advance()
		}
		value, err := uint128.FromString(p.src[start:p.pos])
		if err != nil {
			return nil, p.fail("invalid number %q", p.src[start:p.pos])
		}
		return Num{Value: value}, nil

	case c == '@':
		p.advance()
		name, err := p.name()
		if err != nil {
			return nil, err
		}
		body, err := p.term()
		if err != nil {
			return nil, err
		}
		return Lam{Name: name, Body: body}, nil

	case c == '{':
		p.advance()
		name, args, err := p.call('}')
		if err != nil {
			return nil, err
		}
		return Ctr{Name: name, Args: args}, nil

	case c == '(':
		p.advance()
		p.skip()
		if p.peek() == '!' && !strings.HasPrefix(p.src[p.pos:], "!=") {
			p.advance()
			return p.app()
		}
		if oper, ok := p.oper(); ok {
			return p.op2(oper)
		}
		name, args, err := p.call(')')
		if err != nil {
			return nil, err
		}
		return Fun{Name: name, Args: args}, nil

	case c == '_' || c >= 'a' && c <= 'z':
		name, err := p.name()
		if err != nil {
			return nil, err
		}
		return Var{Name: name}, nil

	default:
		return nil, p.fail("unexpected %q", c)
	}
}

// call parses "Name term* <close>" after the opening bracket.
func (p *parser) call(closing byte) (string, []Term, error) {
	p.skip()
	if c := p.peek(); c < 'A' || c > 'Z' {
		return "", nil, p.fail("expected uppercase name")
	}
	name, err := p.name()
	if err != nil {
		return "", nil, err
	}
	var args []Term
	for {
		p.skip()
		if p.eof() {
			return "", nil, p.fail("expected %q, found end of input", closing)
		}
		if p.peek() == closing {
			p.advance()
			return name, args, nil
		}
		arg, err := p.term()
		if err != nil {
			return "", nil, err
		}
		args = append(args, arg)
	}
}

func (p *parser) app() (Term, error) {
	fn, err := p.term()
	if err != nil {
		return nil, err
	}
	arg, err := p.term()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return App{Func: fn, Argm: arg}, nil
}

// oper consumes an operator symbol if one starts at the cursor, preferring
// two-character symbols.
func (p *parser) oper() (Oper, bool) {
	rest := p.src[p.pos:]
	for _, width := range []int{2, 1} {
		if len(rest) < width {
			continue
		}
		if oper, ok := ParseOper(rest[:width]); ok {
			for i := 0; i < width; i++ {
				p.advance()
			}
			return oper, true
		}
	}
	return 0, false
}

func (p *parser) op2(oper Oper) (Term, error) {
	val0, err := p.term()
	if err != nil {
		return nil, err
	}
	val1, err := p.term()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return Op2{Oper: oper, Val0: val0, Val1: val1}, nil
}
