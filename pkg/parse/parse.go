// Package parse reads infix surface syntax into expression trees.
//
// Precedence, tightest first: function call and parentheses, ^ (right
// associative), unary minus, * and / (left associative), + and - (left
// associative).
package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/wildfunctions/derivada/pkg/expr"
)

var (
	// ErrSyntax is matched by every malformed-input error.
	ErrSyntax = errors.New("syntax error")

	// ErrTooDeep is returned when the input nests deeper than the limit
	// given to ParseLimit or ParseQueryLimit.
	ErrTooDeep = errors.New("expression too deep")
)

// SyntaxError describes malformed input.
type SyntaxError struct {
	Msg string
	Pos int // byte offset into the input
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// QueryFunctor is the name of the derivative query predicate.
const QueryFunctor = "derivada"

// Query is a parsed derivative query: derivada(Expr, Variable, Output).
type Query struct {
	Expr     expr.Expr
	Variable string
	Output   string
}

type parser struct {
	s   scanner.Scanner
	tok rune
	err error

	maxDepth int // 0 = unlimited
	nest     int
}

func newParser(src string, maxDepth int) *parser {
	p := &parser{maxDepth: maxDepth}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats
	p.s.Error = func(s *scanner.Scanner, msg string) {
		p.fail(s.Position.Offset, "%s", msg)
	}
	p.next()
	return p
}

func (p *parser) next() {
	p.tok = p.s.Scan()
}

func (p *parser) fail(pos int, format string, args ...any) {
	if p.err == nil {
		p.err = &SyntaxError{Msg: fmt.Sprintf(format, args...), Pos: pos}
	}
}

func (p *parser) pos() int {
	return p.s.Position.Offset
}

func (p *parser) text() string {
	if p.tok == scanner.EOF {
		return "end of input"
	}
	return strconv.Quote(p.s.TokenText())
}

func (p *parser) expect(tok rune) {
	if p.tok != tok {
		p.fail(p.pos(), "expected %q, found %s", tok, p.text())
		return
	}
	p.next()
}

// Parse parses a single expression.
func Parse(src string) (expr.Expr, error) {
	return ParseLimit(src, 0)
}

// ParseLimit is Parse, failing with ErrTooDeep as soon as the tree being
// built or the parser's own recursion passes maxDepth. A maxDepth <= 0
// disables the limit.
func ParseLimit(src string, maxDepth int) (expr.Expr, error) {
	p := newParser(src, maxDepth)
	e, _ := p.expression()
	if p.err == nil && p.tok != scanner.EOF {
		p.fail(p.pos(), "unexpected %s", p.text())
	}
	if p.err != nil {
		return nil, p.err
	}
	return e, nil
}

// ParseQuery parses "derivada(<expr>, <var>, <Out>)" with an optional
// trailing period.
func ParseQuery(src string) (Query, error) {
	return ParseQueryLimit(src, 0)
}

// ParseQueryLimit is ParseQuery with the expression depth bounded as in
// ParseLimit.
func ParseQueryLimit(src string, maxDepth int) (Query, error) {
	p := newParser(src, maxDepth)
	var q Query

	if p.tok != scanner.Ident || p.s.TokenText() != QueryFunctor {
		p.fail(p.pos(), "expected %s(...), found %s", QueryFunctor, p.text())
		return q, p.err
	}
	p.next()
	p.expect('(')
	q.Expr, _ = p.expression()
	p.expect(',')
	q.Variable = p.ident()
	p.expect(',')
	q.Output = p.ident()
	p.expect(')')
	if p.tok == '.' {
		p.next()
	}
	if p.err == nil && p.tok != scanner.EOF {
		p.fail(p.pos(), "unexpected %s", p.text())
	}
	if p.err != nil {
		return Query{}, p.err
	}
	return q, nil
}

func (p *parser) ident() string {
	if p.tok != scanner.Ident {
		p.fail(p.pos(), "expected identifier, found %s", p.text())
		return ""
	}
	name := p.s.TokenText()
	p.next()
	return name
}

func (p *parser) expression() (expr.Expr, int) {
	e, d := p.term()
	for p.err == nil && (p.tok == '+' || p.tok == '-') {
		op := p.tok
		p.next()
		r, rd := p.term()
		if op == '+' {
			e = expr.Add(e, r)
		} else {
			e = expr.Sub(e, r)
		}
		d = p.grow(d, rd)
	}
	return e, d
}

func (p *parser) term() (expr.Expr, int) {
	e, d := p.unary()
	for p.err == nil && (p.tok == '*' || p.tok == '/') {
		op := p.tok
		p.next()
		r, rd := p.unary()
		if op == '*' {
			e = expr.Mul(e, r)
		} else {
			e = expr.Div(e, r)
		}
		d = p.grow(d, rd)
	}
	return e, d
}

// unary handles prefix minus. A minus directly before a numeric literal
// yields a negative number, so "-2^2" is (-2)^2.
//
// Every recursive path of the grammar passes through unary, so this is
// where nesting is bounded.
func (p *parser) unary() (expr.Expr, int) {
	p.nest++
	defer func() { p.nest-- }()
	if p.err != nil || p.exceeds(p.nest) {
		return expr.Num(0), 1
	}

	if p.tok != '-' {
		return p.power()
	}
	p.next()
	if p.tok == scanner.Int || p.tok == scanner.Float {
		return p.exponent(expr.Num(-p.number()), 1)
	}
	c, d := p.unary()
	return expr.Neg(c), p.grow(d, 0)
}

func (p *parser) power() (expr.Expr, int) {
	base, d := p.primary()
	return p.exponent(base, d)
}

func (p *parser) exponent(base expr.Expr, d int) (expr.Expr, int) {
	if p.err != nil || p.tok != '^' {
		return base, d
	}
	p.next()
	r, rd := p.unary()
	return expr.Pow(base, r), p.grow(d, rd)
}

// grow returns the depth of a node over children of depth a and b, failing
// once it passes the limit.
func (p *parser) grow(a, b int) int {
	d := 1 + max(a, b)
	p.exceeds(d)
	return d
}

// exceeds records ErrTooDeep and reports true when depth is over the limit.
func (p *parser) exceeds(depth int) bool {
	if p.maxDepth <= 0 || depth <= p.maxDepth {
		return false
	}
	if p.err == nil {
		p.err = fmt.Errorf("%w: nesting exceeds limit %d at offset %d", ErrTooDeep, p.maxDepth, p.pos())
	}
	return true
}

func (p *parser) number() float64 {
	v, err := strconv.ParseFloat(p.s.TokenText(), 64)
	if err != nil {
		p.fail(p.pos(), "bad number %s", p.text())
	}
	p.next()
	return v
}

func (p *parser) primary() (expr.Expr, int) {
	switch p.tok {
	case scanner.Int, scanner.Float:
		return expr.Num(p.number()), 1
	case scanner.Ident:
		name := p.s.TokenText()
		p.next()
		if p.tok != '(' {
			return expr.Sym(name), 1
		}
		p.next()
		arg, d := p.expression()
		p.expect(')')
		return expr.Call(name, arg), p.grow(d, 0)
	case '(':
		p.next()
		e, d := p.expression()
		p.expect(')')
		return e, d
	default:
		p.fail(p.pos(), "unexpected %s", p.text())
		p.next()
		return expr.Num(0), 1
	}
}
