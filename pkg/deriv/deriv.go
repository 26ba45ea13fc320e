// Package deriv computes symbolic derivatives by rewriting an expression tree
// with a fixed table of calculus rules.
//
// Output is never simplified: multiplications by one, additions of zero and
// similar terms are kept exactly as each rule builds them.
package deriv

import "github.com/wildfunctions/derivada/pkg/expr"

// Derive returns the derivative of e with respect to variable.
//
// Each node shape is covered by at most one rule. A node with no rule (a
// symbol other than variable, a power with a non-numeric exponent, a negation
// or an unsupported function) aborts the whole call with an error matching
// ErrNoRuleMatched.
func Derive(e expr.Expr, variable string) (expr.Expr, error) {
	return DeriveTraced(e, variable, nil)
}

// DeriveTraced is Derive, additionally calling fn for every rule that fires.
// Calls happen before the rule's sub-derivatives are computed, so they arrive
// in pre-order. fn may be nil.
func DeriveTraced(e expr.Expr, variable string, fn func(Rule, expr.Expr)) (expr.Expr, error) {
	d := deriver{variable: variable, trace: fn}
	return d.derive(e)
}

type deriver struct {
	variable string
	trace    func(Rule, expr.Expr)
}

func (d *deriver) fire(r Rule, node expr.Expr) {
	if d.trace != nil {
		d.trace(r, node)
	}
}

func (d *deriver) derive(e expr.Expr) (expr.Expr, error) {
	switch n := e.(type) {
	case *expr.NumNode:
		d.fire(RuleConst, n)
		return expr.Num(0), nil
	case *expr.SymNode:
		if n.Name != d.variable {
			return nil, noRule(n)
		}
		d.fire(RuleVar, n)
		return expr.Num(1), nil
	case *expr.BinaryNode:
		return d.binary(n)
	case *expr.FuncNode:
		return d.call(n)
	default:
		return nil, noRule(e)
	}
}

func (d *deriver) binary(n *expr.BinaryNode) (expr.Expr, error) {
	a, b := n.Left, n.Right

	if n.Op == expr.OpPow {
		power, ok := b.(*expr.NumNode)
		if !ok {
			return nil, noRule(n)
		}
		d.fire(RulePower, n)
		du, err := d.derive(a)
		if err != nil {
			return nil, err
		}
		return expr.Mul(expr.Mul(power, expr.Pow(a, expr.Num(power.Val-1))), du), nil
	}

	var rule Rule
	switch n.Op {
	case expr.OpAdd:
		rule = RuleSum
	case expr.OpSub:
		rule = RuleDiff
	case expr.OpMul:
		rule = RuleProduct
	case expr.OpDiv:
		rule = RuleQuotient
	default:
		return nil, noRule(n)
	}
	d.fire(rule, n)

	da, err := d.derive(a)
	if err != nil {
		return nil, err
	}
	db, err := d.derive(b)
	if err != nil {
		return nil, err
	}

	switch rule {
	case RuleSum:
		return expr.Add(da, db), nil
	case RuleDiff:
		return expr.Sub(da, db), nil
	case RuleProduct:
		return expr.Add(expr.Mul(da, b), expr.Mul(a, db)), nil
	default:
		num := expr.Sub(expr.Mul(da, b), expr.Mul(a, db))
		return expr.Div(num, expr.Pow(b, expr.Num(2))), nil
	}
}

var funcRules = map[string]Rule{
	expr.FnSen:    RuleSen,
	expr.FnCos:    RuleCos,
	expr.FnTan:    RuleTan,
	expr.FnArctan: RuleArctan,
	expr.FnExp:    RuleExp,
	expr.FnLn:     RuleLn,
}

// call applies the chain rule for a unary function application.
func (d *deriver) call(n *expr.FuncNode) (expr.Expr, error) {
	rule, ok := funcRules[n.Name]
	if !ok {
		return nil, noRule(n)
	}
	d.fire(rule, n)

	u := n.Arg
	du, err := d.derive(u)
	if err != nil {
		return nil, err
	}

	switch rule {
	case RuleSen:
		return expr.Mul(expr.Cos(u), du), nil
	case RuleCos:
		return expr.Mul(expr.Neg(expr.Sen(u)), du), nil
	case RuleTan:
		return expr.Mul(expr.Add(expr.Num(1), expr.Pow(n, expr.Num(2))), du), nil
	case RuleArctan:
		return expr.Div(du, expr.Add(expr.Num(1), expr.Pow(u, expr.Num(2)))), nil
	case RuleExp:
		return expr.Mul(n, du), nil
	default: // RuleLn
		return expr.Div(du, u), nil
	}
}
