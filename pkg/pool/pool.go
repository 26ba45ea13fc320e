// Package pool generates random expression trees, used for sampling and
// property tests of the derivative engine.
package pool

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/wildfunctions/derivada/pkg/expr"
)

// Variable is the differentiation variable every pool builds trees over.
const Variable = "x"

// Pool provides random building blocks for constructing expression trees.
type Pool interface {
	Name() string
	RandomLeaf(rng *rand.Rand) expr.Expr
	RandomFunc(rng *rand.Rand) string
	RandomBinary(rng *rand.Rand) expr.BinaryOp
	RandomExponent(rng *rand.Rand) expr.Expr
	RandomTree(rng *rand.Rand, maxDepth int) expr.Expr
}

var registry = map[string]func() Pool{}

// Register adds a pool constructor to the registry.
func Register(name string, constructor func() Pool) {
	registry[name] = constructor
}

// Get returns a pool by name.
func Get(name string) (Pool, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown pool: %s", name)
	}
	return ctor(), nil
}

// Names returns all registered pool names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// randomTree is a shared helper for building random trees.
func randomTree(p Pool, rng *rand.Rand, maxDepth int) expr.Expr {
	if maxDepth <= 1 {
		return p.RandomLeaf(rng)
	}
	// Bias toward leaves at shallow depths to keep trees small
	r := rng.Float64()
	switch {
	case r < 0.4:
		return p.RandomLeaf(rng)
	case r < 0.6:
		return expr.Call(p.RandomFunc(rng), randomTree(p, rng, maxDepth-1))
	default:
		op := p.RandomBinary(rng)
		left := randomTree(p, rng, maxDepth-1)
		if op == expr.OpPow {
			return expr.Pow(left, p.RandomExponent(rng))
		}
		return &expr.BinaryNode{Op: op, Left: left, Right: randomTree(p, rng, maxDepth-1)}
	}
}

func pick[T any](rng *rand.Rand, xs []T) T {
	return xs[rng.Intn(len(xs))]
}
