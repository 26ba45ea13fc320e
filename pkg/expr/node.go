package expr

// Expr is the interface for all expression tree nodes.
//
// Nodes are immutable once built. Sub-trees may be shared between several
// parents, so nothing in this module ever writes to a node after construction.
type Expr interface {
	String() string
	LaTeX() string
	Equal(other Expr) bool
	NodeCount() int
	Depth() int
	prec() precedence
}

// BinaryOp identifies a binary operation.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
)

// Function names understood by the rule table.
const (
	FnSen    = "sen"
	FnCos    = "cos"
	FnTan    = "tan"
	FnArctan = "arctan"
	FnExp    = "exp"
	FnLn     = "ln"
)

var knownFuncs = map[string]bool{
	FnSen:    true,
	FnCos:    true,
	FnTan:    true,
	FnArctan: true,
	FnExp:    true,
	FnLn:     true,
}

// KnownFunc reports whether name is one of the supported unary functions.
func KnownFunc(name string) bool {
	return knownFuncs[name]
}

// NumNode represents a numeric literal.
type NumNode struct {
	Val float64
}

// SymNode represents an atomic identifier: a variable or an opaque constant.
type SymNode struct {
	Name string
}

// BinaryNode applies a binary operation to two child expressions.
type BinaryNode struct {
	Op          BinaryOp
	Left, Right Expr
}

// FuncNode applies a named unary function to its argument. The name is not
// restricted to the supported set; unknown functions simply have no rule.
type FuncNode struct {
	Name string
	Arg  Expr
}

// NegNode is unary negation.
type NegNode struct {
	Child Expr
}

func Num(v float64) Expr   { return &NumNode{Val: v} }
func Sym(name string) Expr { return &SymNode{Name: name} }
func Add(a, b Expr) Expr   { return &BinaryNode{Op: OpAdd, Left: a, Right: b} }
func Sub(a, b Expr) Expr   { return &BinaryNode{Op: OpSub, Left: a, Right: b} }
func Mul(a, b Expr) Expr   { return &BinaryNode{Op: OpMul, Left: a, Right: b} }
func Div(a, b Expr) Expr   { return &BinaryNode{Op: OpDiv, Left: a, Right: b} }
func Pow(a, b Expr) Expr   { return &BinaryNode{Op: OpPow, Left: a, Right: b} }
func Neg(e Expr) Expr      { return &NegNode{Child: e} }

// Call builds a function application. Any name is accepted.
func Call(name string, arg Expr) Expr { return &FuncNode{Name: name, Arg: arg} }

func Sen(arg Expr) Expr    { return Call(FnSen, arg) }
func Cos(arg Expr) Expr    { return Call(FnCos, arg) }
func Tan(arg Expr) Expr    { return Call(FnTan, arg) }
func Arctan(arg Expr) Expr { return Call(FnArctan, arg) }
func Exp(arg Expr) Expr    { return Call(FnExp, arg) }
func Ln(arg Expr) Expr     { return Call(FnLn, arg) }

// Shape names the node kind of e, as used in error messages.
func Shape(e Expr) string {
	switch n := e.(type) {
	case *NumNode:
		return "number"
	case *SymNode:
		return "symbol " + n.Name
	case *BinaryNode:
		return binaryOpNames[n.Op]
	case *FuncNode:
		return "func " + n.Name
	case *NegNode:
		return "neg"
	case nil:
		return "nil"
	default:
		return "unknown"
	}
}
