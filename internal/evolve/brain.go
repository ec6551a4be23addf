package evolve

import (
	"fmt"

	"github.com/vovakirdan/flappy-evolve/internal/games/flappy"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// defaultDepth is used when the network cannot report its depth.
const defaultDepth = 5

// Brain flies a bird with the phenotype network of a genome.
type Brain struct {
	Genome    *genetics.Genome
	network   *network.Network
	depth     int
	threshold float64
	inputs    []float64
	errors    int
}

// NewBrain builds the network of genome. The bird jumps when the output
// exceeds threshold.
func NewBrain(genome *genetics.Genome, threshold float64) (*Brain, error) {
	phenotype, err := genome.Genesis(genome.Id)
	if err != nil {
		return nil, fmt.Errorf("evolve: build network of genome %d: %w", genome.Id, err)
	}

	depth, err := phenotype.MaxActivationDepth()
	if err != nil || depth < 1 {
		depth = defaultDepth
	}

	return &Brain{
		Genome:    genome,
		network:   phenotype,
		depth:     depth,
		threshold: threshold,
		inputs:    make([]float64, InputCount),
	}, nil
}

// Think returns the raw network output for an observation.
func (b *Brain) Think(obs flappy.Observation) (float64, error) {
	b.inputs[0], b.inputs[1], b.inputs[2] = obs.Y, obs.DTop, obs.DBottom
	b.inputs[3] = 1 // bias

	if err := b.network.LoadSensors(b.inputs); err != nil {
		return 0, fmt.Errorf("evolve: load sensors: %w", err)
	}
	for i := 0; i < b.depth; i++ {
		if _, err := b.network.Activate(); err != nil {
			return 0, fmt.Errorf("evolve: activate: %w", err)
		}
	}
	out := b.network.ReadOutputs()
	if _, err := b.network.Flush(); err != nil {
		return 0, fmt.Errorf("evolve: flush: %w", err)
	}
	if len(out) == 0 {
		return 0, fmt.Errorf("evolve: network of genome %d has no outputs", b.Genome.Id)
	}
	return out[0], nil
}

// Decide implements flappy.Controller. A failed activation glides.
func (b *Brain) Decide(obs flappy.Observation) flappy.Action {
	out, err := b.Think(obs)
	if err != nil {
		b.errors++
		return flappy.Glide
	}
	if out > b.threshold {
		return flappy.Jump
	}
	return flappy.Glide
}

// Errors returns how many decisions failed to activate.
func (b *Brain) Errors() int {
	return b.errors
}

// NodeCount returns the number of nodes in the network.
func (b *Brain) NodeCount() int {
	return b.network.NodeCount()
}

// LinkCount returns the number of links in the network.
func (b *Brain) LinkCount() int {
	return b.network.LinkCount()
}
