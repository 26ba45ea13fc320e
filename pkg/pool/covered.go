package pool

import (
	"math/rand"

	"github.com/wildfunctions/derivada/pkg/expr"
)

func init() {
	Register("covered", func() Pool { return &CoveredPool{} })
}

// CoveredPool only builds shapes the rule table covers, so every tree it
// produces is differentiable with respect to Variable.
type CoveredPool struct{}

func (p *CoveredPool) Name() string { return "covered" }

func (p *CoveredPool) RandomLeaf(rng *rand.Rand) expr.Expr {
	if rng.Float64() < 0.5 {
		return expr.Sym(Variable)
	}
	return expr.Num(float64(rng.Intn(10) + 1))
}

var coveredFuncs = []string{
	expr.FnSen,
	expr.FnCos,
	expr.FnTan,
	expr.FnArctan,
	expr.FnExp,
	expr.FnLn,
}

func (p *CoveredPool) RandomFunc(rng *rand.Rand) string {
	return pick(rng, coveredFuncs)
}

var coveredBinary = []expr.BinaryOp{
	expr.OpAdd,
	expr.OpSub,
	expr.OpMul,
	expr.OpDiv,
	expr.OpPow,
}

func (p *CoveredPool) RandomBinary(rng *rand.Rand) expr.BinaryOp {
	return pick(rng, coveredBinary)
}

func (p *CoveredPool) RandomExponent(rng *rand.Rand) expr.Expr {
	return expr.Num(float64(rng.Intn(5) + 2))
}

func (p *CoveredPool) RandomTree(rng *rand.Rand, maxDepth int) expr.Expr {
	return randomTree(p, rng, maxDepth)
}
