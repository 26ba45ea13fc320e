package pool

import (
	"math/rand"
	"testing"

	"github.com/wildfunctions/derivada/pkg/expr"
)

func TestCoveredPool(t *testing.T) {
	p, err := Get("covered")
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		tree := p.RandomTree(rng, 4)
		if tree.Depth() > 4 {
			t.Fatalf("tree %s deeper than 4", tree)
		}
		for _, name := range expr.Symbols(tree) {
			if name != Variable {
				t.Fatalf("covered pool produced foreign symbol %q in %s", name, tree)
			}
		}
	}
}

func TestWildPool(t *testing.T) {
	p, err := Get("wild")
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(7))
	foreign := 0
	total := 1000
	for i := 0; i < total; i++ {
		tree := p.RandomTree(rng, 4)
		for _, name := range expr.Symbols(tree) {
			if name != Variable {
				foreign++
				break
			}
		}
	}
	if foreign == 0 {
		t.Error("wild pool never produced a foreign symbol")
	}
	t.Logf("Wild pool: %d/%d trees contain foreign symbols", foreign, total)
}

func TestPoolRegistry(t *testing.T) {
	names := Names()
	if len(names) < 2 {
		t.Errorf("Expected at least 2 registered pools, got %d", len(names))
	}

	for _, name := range names {
		p, err := Get(name)
		if err != nil {
			t.Errorf("Get(%q) failed: %v", name, err)
			continue
		}
		if p.Name() != name {
			t.Errorf("Pool name mismatch: %q vs %q", p.Name(), name)
		}
	}
}

func TestUnknownPool(t *testing.T) {
	_, err := Get("nonexistent")
	if err == nil {
		t.Error("Expected error for unknown pool")
	}
}
