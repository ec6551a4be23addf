package evolve

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
)

// ErrEmptyPopulation is returned when a population has no organisms to breed.
var ErrEmptyPopulation = errors.New("evolve: empty population")

// sharingFloor keeps every shared fitness positive.
const sharingFloor = 1e-3

// Organism is a genome with the fitness of its last evaluation.
type Organism struct {
	Genome    *genetics.Genome
	Fitness   float64
	SpeciesID int
}

// ID returns the genome ID.
func (o *Organism) ID() int {
	return o.Genome.Id
}

// Population is one generation of organisms plus the state needed to
// produce the next: species, innovation tracking and mutation settings.
type Population struct {
	Organisms []*Organism
	Species   *SpeciesManager
	Tracker   *Tracker

	cfg     config.EvolutionConfig
	opts    *neat.Options
	mutator *Mutator
}

// NewPopulation creates PopulationSize fully connected founders.
func NewPopulation(cfg config.EvolutionConfig, rng *rand.Rand) (*Population, error) {
	p, err := newPopulation(cfg)
	if err != nil {
		return nil, err
	}
	for i := 0; i < cfg.PopulationSize; i++ {
		g, err := NewGenome(p.Tracker.NextGenomeID(), cfg.Network, rng)
		if err != nil {
			return nil, err
		}
		p.Organisms = append(p.Organisms, &Organism{Genome: g})
	}
	p.Species.Speciate(p.Organisms)
	return p, nil
}

// FromGenome seeds a population with the given genome and mutated copies.
func FromGenome(cfg config.EvolutionConfig, seed *genetics.Genome, rng *rand.Rand) (*Population, error) {
	if seed == nil {
		return nil, fmt.Errorf("evolve: nil seed genome")
	}
	p, err := newPopulation(cfg)
	if err != nil {
		return nil, err
	}
	p.Tracker.Observe(seed)

	for i := 0; i < cfg.PopulationSize; i++ {
		g, err := CloneGenome(seed, p.Tracker.NextGenomeID())
		if err != nil {
			return nil, err
		}
		if i > 0 {
			p.mutator.mutateWeights(g, rng)
		}
		p.Organisms = append(p.Organisms, &Organism{Genome: g})
	}
	p.Species.Speciate(p.Organisms)
	return p, nil
}

func newPopulation(cfg config.EvolutionConfig) (*Population, error) {
	if cfg.PopulationSize <= 0 {
		return nil, ErrEmptyPopulation
	}
	hidden, err := Activation(cfg.Network.HiddenActivation)
	if err != nil {
		return nil, err
	}

	opts := cfg.NEATOptions()
	tracker := NewTracker()
	return &Population{
		Species: NewSpeciesManager(opts),
		Tracker: tracker,
		cfg:     cfg,
		opts:    opts,
		mutator: &Mutator{
			Opts:        opts,
			Tracker:     tracker,
			Hidden:      hidden,
			WeightClamp: cfg.Mutation.WeightClamp,
			WeightRange: cfg.Network.WeightRange,
		},
	}, nil
}

// Best returns the fittest organism, or nil when the population is empty.
func (p *Population) Best() *Organism {
	var best *Organism
	for _, o := range p.Organisms {
		if best == nil || o.Fitness > best.Fitness {
			best = o
		}
	}
	return best
}

// Epoch replaces the evaluated generation with its offspring. Organisms must
// carry their fitness. The population size is preserved.
func (p *Population) Epoch(rng *rand.Rand) error {
	if len(p.Organisms) == 0 {
		return ErrEmptyPopulation
	}

	p.Species.Speciate(p.Organisms)
	p.Species.Update()

	quotas := p.allocate()
	next := make([]*Organism, 0, p.cfg.PopulationSize)
	for i, sp := range p.Species.Species {
		children, err := p.reproduce(sp, quotas[i], rng)
		if err != nil {
			return err
		}
		next = append(next, children...)
	}

	p.Tracker.EndGeneration()
	p.Organisms = next
	p.Species.Speciate(p.Organisms)
	return nil
}

// allocate divides PopulationSize between species in proportion to their
// shared fitness: each member's fitness, shifted so the worst is just above
// zero, divided by its species size. Rounding uses largest remainders.
func (p *Population) allocate() []int {
	minFitness := math.Inf(1)
	for _, sp := range p.Species.Species {
		for _, m := range sp.Members {
			minFitness = math.Min(minFitness, m.Fitness)
		}
	}

	shared := make([]float64, len(p.Species.Species))
	total := 0.0
	for i, sp := range p.Species.Species {
		for _, m := range sp.Members {
			shared[i] += (m.Fitness - minFitness + sharingFloor) / float64(len(sp.Members))
		}
		total += shared[i]
	}

	size := p.cfg.PopulationSize
	quotas := make([]int, len(shared))
	remainders := make([]float64, len(shared))
	assigned := 0
	for i, s := range shared {
		exact := s / total * float64(size)
		quotas[i] = int(exact)
		remainders[i] = exact - float64(quotas[i])
		assigned += quotas[i]
	}

	order := make([]int, len(shared))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for i := 0; assigned < size; i = (i + 1) % len(order) {
		quotas[order[i]]++
		assigned++
	}
	return quotas
}

// reproduce breeds n offspring from a species: elites first, then children
// of parents drawn from the top SurvivalThresh fraction.
func (p *Population) reproduce(sp *Species, n int, rng *rand.Rand) ([]*Organism, error) {
	if n == 0 {
		return nil, nil
	}

	members := make([]*Organism, len(sp.Members))
	copy(members, sp.Members)
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Fitness > members[j].Fitness
	})

	children := make([]*Organism, 0, n)
	elites := min(p.cfg.Speciation.Elitism, n, len(members))
	for i := 0; i < elites; i++ {
		g, err := CloneGenome(members[i].Genome, p.Tracker.NextGenomeID())
		if err != nil {
			return nil, err
		}
		children = append(children, &Organism{Genome: g})
	}

	poolSize := int(math.Ceil(p.cfg.Speciation.SurvivalThresh * float64(len(members))))
	pool := members[:max(1, min(poolSize, len(members)))]

	for len(children) < n {
		mom := pool[rng.Intn(len(pool))]

		var child *genetics.Genome
		var err error
		mutate := true
		if len(pool) == 1 || rng.Float64() < p.opts.MutateOnlyProb {
			child, err = CloneGenome(mom.Genome, p.Tracker.NextGenomeID())
		} else {
			dad := pool[rng.Intn(len(pool))]
			child, err = Crossover(mom.Genome, dad.Genome, mom.Fitness, dad.Fitness, p.Tracker.NextGenomeID(), rng)
			mutate = rng.Float64() >= p.opts.MateOnlyProb
		}
		if err != nil {
			return nil, err
		}
		if mutate {
			if _, err := p.mutator.Mutate(child, rng); err != nil {
				return nil, err
			}
		}
		children = append(children, &Organism{Genome: child})
	}
	return children, nil
}
