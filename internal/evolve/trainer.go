package evolve

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/games/flappy"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
)

// Listener is notified after every evaluated generation, before reproduction.
type Listener interface {
	OnGeneration(stats GenerationStats, champion Champion)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(GenerationStats, Champion)

// OnGeneration implements Listener.
func (f ListenerFunc) OnGeneration(stats GenerationStats, champion Champion) { f(stats, champion) }

// Champion is the best genome seen so far.
type Champion struct {
	Genome     *genetics.Genome
	Fitness    float64
	Score      int
	Generation int
}

// Record returns the champion in file form.
func (c Champion) Record() (GenomeRecord, error) {
	if c.Genome == nil {
		return GenomeRecord{}, fmt.Errorf("evolve: no champion yet")
	}
	return NewGenomeRecord(c.Genome, c.Generation, c.Fitness, c.Score)
}

// Trainer evolves a population by flying each generation in one shared
// episode, a bird per organism.
type Trainer struct {
	world      config.FlappyConfig
	evo        config.EvolutionConfig
	pop        *Population
	rng        *rand.Rand
	logger     *log.Logger
	listeners  []Listener
	champion   Champion
	seedGenome *genetics.Genome
}

// TrainerOption configures a Trainer.
type TrainerOption func(*Trainer)

// WithLogger sets the logger. Trainers log nothing by default.
func WithLogger(l *log.Logger) TrainerOption {
	return func(t *Trainer) { t.logger = l }
}

// WithListener adds a generation listener.
func WithListener(l Listener) TrainerOption {
	return func(t *Trainer) { t.listeners = append(t.listeners, l) }
}

// WithSeedGenome starts from mutated copies of a saved genome instead of
// fresh founders.
func WithSeedGenome(g *genetics.Genome) TrainerOption {
	return func(t *Trainer) { t.seedGenome = g }
}

// NewTrainer creates a trainer. The seed drives every random choice, so equal
// seeds give equal runs.
func NewTrainer(world config.FlappyConfig, evo config.EvolutionConfig, seed int64, opts ...TrainerOption) (*Trainer, error) {
	t := &Trainer{
		world:  world,
		evo:    evo,
		rng:    rand.New(rand.NewSource(seed)),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(t)
	}
	var err error
	if t.seedGenome != nil {
		t.pop, err = FromGenome(evo, t.seedGenome, t.rng)
	} else {
		t.pop, err = NewPopulation(evo, t.rng)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Population returns the generation currently being evaluated.
func (t *Trainer) Population() *Population {
	return t.pop
}

// Champion returns the best genome seen so far. Its Genome is nil before the
// first generation finishes.
func (t *Trainer) Champion() Champion {
	return t.champion
}

// NewEpisode builds the episode for generation: one controller-driven bird
// per organism, in population order.
func (t *Trainer) NewEpisode(generation int) (*flappy.Episode, []*Brain, error) {
	if len(t.pop.Organisms) == 0 {
		return nil, nil, ErrEmptyPopulation
	}

	brains := make([]*Brain, len(t.pop.Organisms))
	controllers := make([]flappy.Controller, len(t.pop.Organisms))
	for i, org := range t.pop.Organisms {
		b, err := NewBrain(org.Genome, t.evo.Network.JumpThreshold)
		if err != nil {
			return nil, nil, err
		}
		brains[i] = b
		controllers[i] = b
	}

	ep, err := flappy.NewEpisode(t.world, controllers,
		flappy.WithScoreCap(t.evo.ScoreCap),
		flappy.WithGeneration(generation),
		flappy.WithSeed(t.rng.Int63()),
	)
	if err != nil {
		return nil, nil, err
	}
	return ep, brains, nil
}

// Finish reads the fitness of a played episode back into the population,
// reports the generation and breeds the next one.
func (t *Trainer) Finish(generation int, ep *flappy.Episode, brains []*Brain) (GenerationStats, error) {
	agents := ep.Agents()
	if len(agents) != len(t.pop.Organisms) {
		return GenerationStats{}, fmt.Errorf("evolve: episode has %d agents for %d organisms", len(agents), len(t.pop.Organisms))
	}

	fitness := make([]float64, len(agents))
	for i, a := range agents {
		t.pop.Organisms[i].Fitness = a.Fitness
		fitness[i] = a.Fitness
	}

	stats := ComputeStats(generation, fitness)
	stats.Score = ep.Score()
	stats.Ticks = ep.Tick()
	stats.Species = t.pop.Species.Len()
	for _, b := range brains {
		stats.ActivationErrors += b.Errors()
	}

	best := t.pop.Best()
	stats.ChampionID = best.ID()
	stats.ChampionComplexity = Complexity(best.Genome)
	if t.champion.Genome == nil || best.Fitness > t.champion.Fitness {
		g, err := CloneGenome(best.Genome, best.ID())
		if err != nil {
			return stats, err
		}
		t.champion = Champion{Genome: g, Fitness: best.Fitness, Score: ep.Score(), Generation: generation}
	}

	t.logger.Info("generation done",
		"generation", generation,
		"best", stats.Best,
		"mean", stats.Mean,
		"score", stats.Score,
		"ticks", stats.Ticks,
		"species", stats.Species,
	)
	if stats.ActivationErrors > 0 {
		t.logger.Warn("activation errors", "generation", generation, "count", stats.ActivationErrors)
	}
	for _, l := range t.listeners {
		l.OnGeneration(stats, t.champion)
	}

	if err := t.pop.Epoch(t.rng); err != nil {
		return stats, fmt.Errorf("evolve: epoch after generation %d: %w", generation, err)
	}
	return stats, nil
}

// RunGeneration evaluates and breeds one generation headless.
func (t *Trainer) RunGeneration(ctx context.Context, generation int) (GenerationStats, error) {
	ep, brains, err := t.NewEpisode(generation)
	if err != nil {
		return GenerationStats{}, err
	}
	if err := ep.Run(ctx, t.evo.MaxTicks); err != nil {
		return GenerationStats{}, err
	}
	return t.Finish(generation, ep, brains)
}

// Run trains generations 1..n. It stops early once the best fitness reaches
// FitnessThreshold, when that is set, and between generations when ctx is
// cancelled.
func (t *Trainer) Run(ctx context.Context, n int) ([]GenerationStats, error) {
	history := make([]GenerationStats, 0, n)
	for gen := 1; gen <= n; gen++ {
		if err := ctx.Err(); err != nil {
			return history, fmt.Errorf("evolve: stopped before generation %d: %w", gen, err)
		}
		stats, err := t.RunGeneration(ctx, gen)
		if err != nil {
			return history, err
		}
		history = append(history, stats)

		if t.evo.FitnessThreshold > 0 && stats.Best >= t.evo.FitnessThreshold {
			t.logger.Info("fitness threshold reached", "generation", gen, "best", stats.Best)
			break
		}
	}
	return history, nil
}
