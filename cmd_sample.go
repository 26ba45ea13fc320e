package main

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wildfunctions/derivada/pkg/engine"
	"github.com/wildfunctions/derivada/pkg/pool"
)

var (
	samplePool  = "covered"
	sampleCount = 10
	sampleDepth = 4
	sampleSeed  int64

	sampleCmd = &cobra.Command{
		Use:   "sample",
		Short: "Differentiate randomly generated expressions in x",
		RunE:  runSample,
	}
)

func init() {
	f := sampleCmd.Flags()
	f.StringVar(&samplePool, "pool", samplePool, "expression pool ("+strings.Join(pool.Names(), ", ")+")")
	f.IntVar(&sampleCount, "count", sampleCount, "number of expressions")
	f.IntVar(&sampleDepth, "depth", sampleDepth, "max tree depth")
	f.Int64Var(&sampleSeed, "seed", sampleSeed, "random seed (0 = random)")
	rootCmd.AddCommand(sampleCmd)
}

func checkSampleFlags(count, depth int) error {
	if count < 0 {
		return fmt.Errorf("--count must be >= 0, got %d", count)
	}
	if depth < 1 {
		return fmt.Errorf("--depth must be >= 1, got %d", depth)
	}
	return nil
}

func runSample(cmd *cobra.Command, args []string) error {
	if err := checkSampleFlags(sampleCount, sampleDepth); err != nil {
		return err
	}
	p, err := pool.Get(samplePool)
	if err != nil {
		return err
	}
	seed := sampleSeed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))

	reqs := make([]engine.Request, sampleCount)
	for i := range reqs {
		reqs[i] = engine.Request{Expr: p.RandomTree(rng, sampleDepth), Variable: pool.Variable}
	}

	e, _, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Debug("sampling", "pool", p.Name(), "count", sampleCount, "seed", seed)
	report := engine.Summarize(e.DeriveBatch(cmd.Context(), reqs))
	return engine.Write(cmd.OutOrStdout(), cfg.Format, report)
}
