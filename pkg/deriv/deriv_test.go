package deriv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfunctions/derivada/pkg/expr"
)

var (
	x   = expr.Sym("x")
	one = expr.Num(1)
)

func mustDerive(t *testing.T, e expr.Expr) expr.Expr {
	t.Helper()
	d, err := Derive(e, "x")
	require.NoError(t, err, "Derive(%s)", e)
	return d
}

func TestDerive_Constant(t *testing.T) {
	for _, c := range []float64{0, 5, -2.5, 1e9} {
		d := mustDerive(t, expr.Num(c))
		assert.True(t, d.Equal(expr.Num(0)), "d/dx %v = %s", c, d)
	}
}

func TestDerive_Variable(t *testing.T) {
	for _, name := range []string{"x", "y", "theta"} {
		d, err := Derive(expr.Sym(name), name)
		require.NoError(t, err)
		assert.True(t, d.Equal(one))
	}
}

func TestDerive_ForeignSymbol(t *testing.T) {
	_, err := Derive(expr.Sym("y"), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoRuleMatched)

	var nr *NoRuleMatchedError
	require.True(t, errors.As(err, &nr))
	assert.Equal(t, "symbol y", nr.Shape)
}

func TestDerive_Linearity(t *testing.T) {
	a := expr.Mul(x, expr.Sen(x))
	b := expr.Pow(x, expr.Num(3))

	da := mustDerive(t, a)
	db := mustDerive(t, b)

	sum := mustDerive(t, expr.Add(a, b))
	assert.True(t, sum.Equal(expr.Add(da, db)), "got %s", sum)

	diff := mustDerive(t, expr.Sub(a, b))
	assert.True(t, diff.Equal(expr.Sub(da, db)), "got %s", diff)
}

func TestDerive_NoSimplification(t *testing.T) {
	d := mustDerive(t, expr.Mul(x, expr.Add(x, expr.Num(1))))
	want := expr.Add(
		expr.Mul(one, expr.Add(x, expr.Num(1))),
		expr.Mul(x, expr.Add(one, expr.Num(0))),
	)
	assert.True(t, d.Equal(want), "got %s", d)
	assert.Equal(t, "1 * (x + 1) + x * (1 + 0)", d.String())
}

func TestDerive_VariableExponent(t *testing.T) {
	_, err := Derive(expr.Pow(x, expr.Sym("n")), "x")
	require.ErrorIs(t, err, ErrNoRuleMatched)

	var nr *NoRuleMatchedError
	require.ErrorAs(t, err, &nr)
	assert.Equal(t, "pow", nr.Shape)
}

func TestDerive_Unsupported(t *testing.T) {
	tests := []struct {
		name  string
		node  expr.Expr
		shape string
	}{
		{"unknown function", expr.Call("sqrt", x), "func sqrt"},
		{"negation", expr.Neg(x), "neg"},
		{"nested foreign symbol", expr.Add(x, expr.Mul(expr.Num(2), expr.Sym("a"))), "symbol a"},
		{"inside chain", expr.Sen(expr.Pow(x, x)), "pow"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Derive(tc.node, "x")
			assert.Nil(t, d, "no partial result on failure")

			var nr *NoRuleMatchedError
			require.ErrorAs(t, err, &nr)
			assert.Equal(t, tc.shape, nr.Shape)
		})
	}
}

func TestDerive_Scenarios(t *testing.T) {
	xp1 := expr.Add(x, one)
	quot := expr.Div(xp1, x)

	tests := []struct {
		name string
		in   expr.Expr
		want string
	}{
		{"power", expr.Pow(x, expr.Num(2)), "2 * x^1 * 1"},
		{"sen of power", expr.Sen(expr.Pow(x, expr.Num(2))), "cos(x^2) * (2 * x^1 * 1)"},
		{"quotient", expr.Div(x, xp1), "(1 * (x + 1) - x * (1 + 0)) / (x + 1)^2"},
		{
			"ln of sen of quotient",
			expr.Ln(expr.Sen(quot)),
			"cos((x + 1) / x) * (((1 + 0) * x - (x + 1) * 1) / x^2) / sen((x + 1) / x)",
		},
		{"exp", expr.Exp(expr.Mul(expr.Num(3), x)), "exp(3 * x) * (0 * x + 3 * 1)"},
		{
			"sen of exp",
			expr.Sen(expr.Exp(expr.Mul(expr.Num(3), x))),
			"cos(exp(3 * x)) * (exp(3 * x) * (0 * x + 3 * 1))",
		},
		{"cos", expr.Cos(x), "-sen(x) * 1"},
		{"tan", expr.Tan(x), "(1 + tan(x)^2) * 1"},
		{"arctan", expr.Arctan(xp1), "(1 + 0) / (1 + (x + 1)^2)"},
		{"ln", expr.Ln(x), "1 / x"},
		{"fractional power", expr.Pow(x, expr.Num(0.5)), "0.5 * x^(-0.5) * 1"},
		{"numeric base", expr.Pow(expr.Num(2), expr.Num(3)), "3 * 2^2 * 0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := mustDerive(t, tc.in)
			assert.Equal(t, tc.want, d.String())
		})
	}
}

func TestDerive_ProductSharesOperands(t *testing.T) {
	b := expr.Sen(x)
	d := mustDerive(t, expr.Mul(x, b))

	sum, ok := d.(*expr.BinaryNode)
	require.True(t, ok)
	left, ok := sum.Left.(*expr.BinaryNode)
	require.True(t, ok)
	assert.Same(t, b, left.Right, "product rule reuses B unchanged")
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	in := expr.Div(expr.Sen(x), expr.Add(x, expr.Pow(x, expr.Num(2))))
	before := in.String()
	mustDerive(t, in)
	assert.Equal(t, before, in.String())
}

func TestDeriveTraced(t *testing.T) {
	var fired []Rule
	_, err := DeriveTraced(expr.Sen(expr.Pow(x, expr.Num(2))), "x", func(r Rule, _ expr.Expr) {
		fired = append(fired, r)
	})
	require.NoError(t, err)
	assert.Equal(t, []Rule{RuleSen, RulePower, RuleVar}, fired)
}

func TestDeriveTraced_Quotient(t *testing.T) {
	var fired []Rule
	_, err := DeriveTraced(expr.Div(x, expr.Add(x, one)), "x", func(r Rule, _ expr.Expr) {
		fired = append(fired, r)
	})
	require.NoError(t, err)
	assert.Equal(t, []Rule{RuleQuotient, RuleVar, RuleSum, RuleVar, RuleConst}, fired)
}

func TestRules(t *testing.T) {
	rules := Rules()
	require.Len(t, rules, 13)
	assert.Equal(t, RuleConst, rules[0])
	assert.Equal(t, RuleLn, rules[len(rules)-1])

	assert.Equal(t, "quotient", RuleQuotient.String())
	assert.Equal(t, "U^N", RulePower.Pattern())
	assert.Equal(t, "-sen(U) * dU", RuleCos.Result())
	assert.Equal(t, "Rule(42)", Rule(42).String())
}
