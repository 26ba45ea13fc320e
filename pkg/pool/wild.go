package pool

import (
	"math/rand"

	"github.com/wildfunctions/derivada/pkg/expr"
)

func init() {
	Register("wild", func() Pool { return &WildPool{} })
}

// WildPool extends the covered shapes with foreign symbols, unsupported
// functions and symbolic exponents, none of which have a rule.
type WildPool struct {
	covered CoveredPool
}

func (p *WildPool) Name() string { return "wild" }

var wildSymbols = []string{"a", "b", "k"}

func (p *WildPool) RandomLeaf(rng *rand.Rand) expr.Expr {
	if rng.Float64() < 0.2 {
		return expr.Sym(pick(rng, wildSymbols))
	}
	return p.covered.RandomLeaf(rng)
}

var wildFuncs = []string{"sqrt", "sinh", "abs"}

func (p *WildPool) RandomFunc(rng *rand.Rand) string {
	if rng.Float64() < 0.2 {
		return pick(rng, wildFuncs)
	}
	return p.covered.RandomFunc(rng)
}

func (p *WildPool) RandomBinary(rng *rand.Rand) expr.BinaryOp {
	return p.covered.RandomBinary(rng)
}

func (p *WildPool) RandomExponent(rng *rand.Rand) expr.Expr {
	if rng.Float64() < 0.3 {
		return expr.Sym(pick(rng, wildSymbols))
	}
	return p.covered.RandomExponent(rng)
}

func (p *WildPool) RandomTree(rng *rand.Rand, maxDepth int) expr.Expr {
	return randomTree(p, rng, maxDepth)
}
