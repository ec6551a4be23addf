package evolve

import (
	"math"
	"math/rand"
	"testing"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
)

func testEvolution(size int) config.EvolutionConfig {
	cfg := config.DefaultEvolutionConfig()
	cfg.PopulationSize = size
	return cfg
}

func testMutator(tr *Tracker) *Mutator {
	cfg := config.DefaultEvolutionConfig()
	return &Mutator{
		Opts:        cfg.NEATOptions(),
		Tracker:     tr,
		Hidden:      neatmath.TanhActivation,
		WeightClamp: cfg.Mutation.WeightClamp,
		WeightRange: cfg.Network.WeightRange,
	}
}

func mustGenome(t *testing.T, id int, rng *rand.Rand) *genetics.Genome {
	t.Helper()
	g, err := NewGenome(id, config.DefaultEvolutionConfig().Network, rng)
	if err != nil {
		t.Fatalf("NewGenome() error = %v", err)
	}
	return g
}

// withWeights sets the initial link weights in innovation order.
func withWeights(g *genetics.Genome, weights ...float64) *genetics.Genome {
	for i, w := range weights {
		g.Genes[i].Link.ConnectionWeight = w
	}
	return g
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
