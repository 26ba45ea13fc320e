package expr

import (
	"fmt"
	"strconv"
)

type precedence int

const (
	precSum precedence = iota + 1
	precProduct
	precNeg
	precPow
	precAtom
)

var binaryOpNames = map[BinaryOp]string{
	OpAdd: "add",
	OpSub: "sub",
	OpMul: "mul",
	OpDiv: "div",
	OpPow: "pow",
}

var binaryOpSymbols = map[BinaryOp]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpPow: "^",
}

var binaryOpPrec = map[BinaryOp]precedence{
	OpAdd: precSum,
	OpSub: precSum,
	OpMul: precProduct,
	OpDiv: precProduct,
	OpPow: precPow,
}

var funcLaTeX = map[string]string{
	FnSen:    `\sin`,
	FnCos:    `\cos`,
	FnTan:    `\tan`,
	FnArctan: `\arctan`,
	FnExp:    `\exp`,
	FnLn:     `\ln`,
}

func (c *NumNode) prec() precedence {
	if c.Val < 0 {
		return precNeg
	}
	return precAtom
}
func (s *SymNode) prec() precedence    { return precAtom }
func (b *BinaryNode) prec() precedence { return binaryOpPrec[b.Op] }
func (f *FuncNode) prec() precedence   { return precAtom }
func (u *NegNode) prec() precedence    { return precNeg }

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// wrap renders child, parenthesized when its binding is looser than level.
func wrap(child Expr, level precedence) string {
	s := child.String()
	if child.prec() < level {
		return "(" + s + ")"
	}
	return s
}

// String methods

func (c *NumNode) String() string {
	return formatNum(c.Val)
}

func (s *SymNode) String() string {
	return s.Name
}

func (f *FuncNode) String() string {
	return fmt.Sprintf("%s(%s)", f.Name, f.Arg.String())
}

// String parenthesizes a child that prints with a leading unsigned number,
// since "-3" and "-3^2" read back as negative literals.
func (u *NegNode) String() string {
	if leadsWithNumber(u.Child) {
		return "-(" + u.Child.String() + ")"
	}
	return "-" + wrap(u.Child, precNeg)
}

func leadsWithNumber(e Expr) bool {
	switch n := e.(type) {
	case *NumNode:
		return n.Val >= 0
	case *BinaryNode:
		return n.prec() >= precNeg && leadsWithNumber(n.Left)
	default:
		return false
	}
}

// String renders b in infix form. + - * / are left-associative and ^ is
// right-associative, so the operand on the associative side accepts its own
// level and the other side needs one level tighter.
func (b *BinaryNode) String() string {
	p := binaryOpPrec[b.Op]
	if b.Op == OpPow {
		return wrap(b.Left, p+1) + "^" + wrap(b.Right, p)
	}
	return fmt.Sprintf("%s %s %s", wrap(b.Left, p), binaryOpSymbols[b.Op], wrap(b.Right, p+1))
}

// LaTeX methods

func (c *NumNode) LaTeX() string {
	return formatNum(c.Val)
}

func (s *SymNode) LaTeX() string {
	return s.Name
}

func (f *FuncNode) LaTeX() string {
	name, ok := funcLaTeX[f.Name]
	if !ok {
		name = `\operatorname{` + f.Name + `}`
	}
	return fmt.Sprintf("%s{\\left(%s\\right)}", name, f.Arg.LaTeX())
}

func (u *NegNode) LaTeX() string {
	return fmt.Sprintf("-{%s}", latexWrap(u.Child, precNeg))
}

func (b *BinaryNode) LaTeX() string {
	p := binaryOpPrec[b.Op]
	switch b.Op {
	case OpAdd:
		return fmt.Sprintf("{%s} + {%s}", latexWrap(b.Left, p), latexWrap(b.Right, p))
	case OpSub:
		return fmt.Sprintf("{%s} - {%s}", latexWrap(b.Left, p), latexWrap(b.Right, p+1))
	case OpMul:
		return fmt.Sprintf("{%s} \\cdot {%s}", latexWrap(b.Left, p), latexWrap(b.Right, p))
	case OpDiv:
		return fmt.Sprintf("\\frac{%s}{%s}", b.Left.LaTeX(), b.Right.LaTeX())
	case OpPow:
		return fmt.Sprintf("{%s}^{%s}", latexWrap(b.Left, p+1), b.Right.LaTeX())
	default:
		return ""
	}
}

func latexWrap(child Expr, level precedence) string {
	s := child.LaTeX()
	if child.prec() < level {
		return `\left(` + s + `\right)`
	}
	return s
}
