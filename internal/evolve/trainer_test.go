package evolve

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/core"
	"github.com/vovakirdan/flappy-evolve/internal/games/flappy"
)

func testTrainer(t *testing.T, size int, opts ...TrainerOption) *Trainer {
	t.Helper()
	evo := testEvolution(size)
	evo.MaxTicks = 300
	tr, err := NewTrainer(config.DefaultFlappyConfig(), evo, 42, opts...)
	if err != nil {
		t.Fatalf("NewTrainer() error = %v", err)
	}
	return tr
}

func TestTrainerRunGeneration(t *testing.T) {
	tr := testTrainer(t, 10)

	if tr.Champion().Genome != nil {
		t.Fatal("no champion before the first generation")
	}
	if _, err := tr.Champion().Record(); err == nil {
		t.Error("Record() without a champion should fail")
	}

	stats, err := tr.RunGeneration(context.Background(), 1)
	if err != nil {
		t.Fatalf("RunGeneration() error = %v", err)
	}
	if stats.Generation != 1 {
		t.Errorf("Generation = %d, expected 1", stats.Generation)
	}
	if stats.Ticks == 0 || stats.Ticks > 300 {
		t.Errorf("Ticks = %d, expected within (0, 300]", stats.Ticks)
	}
	if stats.Best < stats.Mean || stats.Mean < stats.Worst {
		t.Errorf("stats out of order: %+v", stats)
	}
	if stats.Species < 1 {
		t.Errorf("Species = %d, expected at least 1", stats.Species)
	}

	champ := tr.Champion()
	if champ.Genome == nil || champ.Fitness != stats.Best || champ.Generation != 1 {
		t.Errorf("champion = %+v, expected the generation's best", champ)
	}
	rec, err := champ.Record()
	if err != nil || rec.Generation != 1 {
		t.Errorf("Record() = %+v, %v", rec, err)
	}

	if len(tr.Population().Organisms) != 10 {
		t.Errorf("population size = %d after breeding, expected 10", len(tr.Population().Organisms))
	}
}

func TestTrainerIsDeterministic(t *testing.T) {
	a, err := testTrainer(t, 8).Run(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	b, err := testTrainer(t, 8).Run(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("equal seeds gave different runs:\n%+v\n%+v", a, b)
	}
}

func TestTrainerListeners(t *testing.T) {
	var gens []int
	tr := testTrainer(t, 6, WithListener(ListenerFunc(func(s GenerationStats, c Champion) {
		gens = append(gens, s.Generation)
		if c.Genome == nil {
			t.Error("listener got no champion")
		}
	})))

	history, err := tr.Run(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 || !reflect.DeepEqual(gens, []int{1, 2, 3}) {
		t.Errorf("history = %d entries, listener saw %v", len(history), gens)
	}
}

func TestTrainerChampionNeverRegresses(t *testing.T) {
	tr := testTrainer(t, 6)
	history, err := tr.Run(context.Background(), 4)
	if err != nil {
		t.Fatal(err)
	}
	best := history[0].Best
	for _, s := range history {
		best = max(best, s.Best)
	}
	if tr.Champion().Fitness != best {
		t.Errorf("champion fitness = %v, expected the best of all generations %v", tr.Champion().Fitness, best)
	}
}

func TestTrainerStopsAtFitnessThreshold(t *testing.T) {
	evo := testEvolution(5)
	evo.MaxTicks = 100
	evo.FitnessThreshold = 0.1
	tr, err := NewTrainer(config.DefaultFlappyConfig(), evo, 1)
	if err != nil {
		t.Fatal(err)
	}

	history, err := tr.Run(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Errorf("ran %d generations, expected to stop after 1", len(history))
	}
}

func TestTrainerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	history, err := testTrainer(t, 4).Run(ctx, 3)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, expected context.Canceled", err)
	}
	if len(history) != 0 {
		t.Errorf("history = %d entries, expected none", len(history))
	}
}

func TestTrainerSeedGenome(t *testing.T) {
	seed := withWeights(mustGenome(t, 5, rand.New(rand.NewSource(1))), 0.5, 0.5, 0.5, 0.5)
	tr := testTrainer(t, 4, WithSeedGenome(seed))

	first := tr.Population().Organisms[0].Genome
	for i, gene := range first.Genes {
		if gene.Link.ConnectionWeight != 0.5 {
			t.Errorf("gene %d = %v, expected the seed weight", i, gene.Link.ConnectionWeight)
		}
	}
}

func TestTrainerStepwiseEpisode(t *testing.T) {
	tr := testTrainer(t, 5)
	ep, brains, err := tr.NewEpisode(7)
	if err != nil {
		t.Fatal(err)
	}
	if len(brains) != 5 || len(ep.Agents()) != 5 || ep.Generation() != 7 {
		t.Fatalf("episode = %d agents, %d brains, generation %d", len(ep.Agents()), len(brains), ep.Generation())
	}

	for ep.State() == flappy.StateRunning && ep.Tick() < 50 {
		ep.Step(core.InputFrame{})
	}
	stats, err := tr.Finish(7, ep, brains)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Ticks != ep.Tick() || stats.Generation != 7 {
		t.Errorf("stats = %+v", stats)
	}

	other, err := flappy.NewEpisode(config.DefaultFlappyConfig(), []flappy.Controller{nil})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Finish(8, other, nil); err == nil {
		t.Error("Finish() with a mismatched episode should fail")
	}
}
