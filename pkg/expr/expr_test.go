package expr

import "testing"

func TestNumNode(t *testing.T) {
	cases := []struct {
		val  float64
		want string
	}{
		{2, "2"}, {0, "0"}, {0.5, "0.5"}, {-3, "-3"}, {1e6, "1e+06"},
	}
	for _, tc := range cases {
		if got := Num(tc.val).String(); got != tc.want {
			t.Errorf("Num(%v).String() = %q, want %q", tc.val, got, tc.want)
		}
	}
}

func TestSymNode(t *testing.T) {
	s := Sym("x")
	if s.String() != "x" {
		t.Errorf("Sym.String() = %q, want \"x\"", s.String())
	}
	if s.NodeCount() != 1 {
		t.Errorf("Sym.NodeCount() = %d, want 1", s.NodeCount())
	}
}

func TestString(t *testing.T) {
	x := Sym("x")
	xp1 := Add(x, Num(1))

	tests := []struct {
		name string
		node Expr
		want string
	}{
		{"sum", xp1, "x + 1"},
		{"left assoc mul", Mul(Mul(Num(2), Pow(x, Num(1))), Num(1)), "2 * x^1 * 1"},
		{"right operand of mul", Mul(Num(1), xp1), "1 * (x + 1)"},
		{"right operand of sub", Sub(x, Sub(x, Num(1))), "x - (x - 1)"},
		{"left operand of sub", Sub(Sub(x, Num(1)), x), "x - 1 - x"},
		{"div over product", Div(Mul(x, x), Num(2)), "x * x / 2"},
		{"product over div", Mul(x, Div(x, Num(2))), "x * (x / 2)"},
		{"pow base sum", Pow(xp1, Num(2)), "(x + 1)^2"},
		{"pow right assoc", Pow(x, Pow(x, Num(2))), "x^x^2"},
		{"pow left nested", Pow(Pow(x, Num(2)), Num(3)), "(x^2)^3"},
		{"pow negative exponent", Pow(x, Num(-1)), "x^(-1)"},
		{"negative base", Pow(Num(-1), Num(2)), "(-1)^2"},
		{"call", Sen(Pow(x, Num(2))), "sen(x^2)"},
		{"neg call", Mul(Neg(Sen(x)), Num(1)), "-sen(x) * 1"},
		{"neg sum", Neg(xp1), "-(x + 1)"},
		{"neg number", Neg(Num(3)), "-(3)"},
		{"neg negative number", Neg(Num(-3)), "--3"},
		{"neg numeric power", Neg(Pow(Num(3), Num(2))), "-(3^2)"},
		{"neg symbolic power", Neg(Pow(x, Num(2))), "-x^2"},
		{"unknown func", Call("sqrt", x), "sqrt(x)"},
		{
			"quotient rule output",
			Div(Sub(Mul(Num(1), xp1), Mul(x, Add(Num(1), Num(0)))), Pow(xp1, Num(2))),
			"(1 * (x + 1) - x * (1 + 0)) / (x + 1)^2",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.node.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLaTeX(t *testing.T) {
	x := Sym("x")
	tree := Div(Num(1), Add(Num(1), Pow(x, Num(2))))
	if s := tree.LaTeX(); s != `\frac{1}{{1} + {{x}^{2}}}` {
		t.Errorf("LaTeX() = %q", s)
	}
	if s := Mul(Cos(x), Sym("y")).LaTeX(); s != `{\cos{\left(x\right)}} \cdot {y}` {
		t.Errorf("LaTeX() = %q", s)
	}
	if s := Pow(Add(x, Num(1)), Num(2)).LaTeX(); s != `{\left({x} + {1}\right)}^{2}` {
		t.Errorf("LaTeX() = %q", s)
	}
}

func TestEqual(t *testing.T) {
	a := Mul(Sen(Sym("x")), Add(Num(1), Num(0)))
	b := Mul(Sen(Sym("x")), Add(Num(1), Num(0)))
	if !a.Equal(b) {
		t.Error("structurally identical trees should be equal")
	}

	different := []Expr{
		Mul(Cos(Sym("x")), Add(Num(1), Num(0))),
		Mul(Sen(Sym("y")), Add(Num(1), Num(0))),
		Mul(Sen(Sym("x")), Sub(Num(1), Num(0))),
		Mul(Sen(Sym("x")), Add(Num(1), Num(2))),
		Neg(a),
	}
	for _, d := range different {
		if a.Equal(d) {
			t.Errorf("%s should not equal %s", a, d)
		}
	}

	if Num(1).Equal(Sym("1")) {
		t.Error("number and symbol must differ")
	}
}

func TestEqual_SharedSubtree(t *testing.T) {
	shared := Add(Sym("x"), Num(1))
	a := Mul(shared, shared)
	b := Mul(Add(Sym("x"), Num(1)), Add(Sym("x"), Num(1)))
	if !a.Equal(b) {
		t.Error("sharing must not affect equality")
	}
}

func TestComplexity(t *testing.T) {
	tree := Add(Sym("x"), Mul(Num(2), Sen(Sym("x"))))
	if tree.NodeCount() != 6 {
		t.Errorf("tree.NodeCount() = %d, want 6", tree.NodeCount())
	}
	if tree.Depth() != 4 {
		t.Errorf("tree.Depth() = %d, want 4", tree.Depth())
	}
}

func TestShape(t *testing.T) {
	tests := []struct {
		node Expr
		want string
	}{
		{Num(1), "number"},
		{Sym("y"), "symbol y"},
		{Pow(Sym("x"), Sym("n")), "pow"},
		{Call("sqrt", Sym("x")), "func sqrt"},
		{Neg(Sym("x")), "neg"},
	}
	for _, tc := range tests {
		if got := Shape(tc.node); got != tc.want {
			t.Errorf("Shape(%s) = %q, want %q", tc.node, got, tc.want)
		}
	}
}

func TestSymbols(t *testing.T) {
	tree := Add(Mul(Sym("a"), Sym("x")), Sen(Add(Sym("x"), Neg(Sym("b")))))
	got := Symbols(tree)
	want := []string{"a", "x", "b"}
	if len(got) != len(want) {
		t.Fatalf("Symbols() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Symbols()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestKnownFunc(t *testing.T) {
	for _, name := range []string{"sen", "cos", "tan", "arctan", "exp", "ln"} {
		if !KnownFunc(name) {
			t.Errorf("KnownFunc(%q) = false", name)
		}
	}
	if KnownFunc("sin") {
		t.Error("KnownFunc(\"sin\") should be false")
	}
}
