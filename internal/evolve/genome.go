// Package evolve breeds flappy controllers with NEAT. Genomes and phenotype
// networks come from goNEAT; this package adds the population loop:
// speciation, reproduction and the generation trainer.
package evolve

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

// Network shape: three observations plus a bias in, one jump signal out.
const (
	SensorCount = 3
	InputCount  = SensorCount + 1
	OutputCount = 1

	biasNodeID   = InputCount
	outputNodeID = InputCount + 1
)

// firstInnovation leaves room for the fixed innovations of the initial links.
const firstInnovation = 1000

// Tracker hands out genome IDs, node IDs and innovation numbers. Identical
// structural mutations within one generation share their numbers.
type Tracker struct {
	nextGenome int
	nextNode   int
	nextInnov  int64

	links  map[int64]int64       // in/out node pair -> innovation
	splits map[int64]splitRecord // split gene innovation -> new node and links
}

type splitRecord struct {
	node              int
	inInnov, outInnov int64
}

// NewTracker returns a tracker for a fresh population.
func NewTracker() *Tracker {
	return &Tracker{
		nextGenome: 1,
		nextNode:   outputNodeID + 1,
		nextInnov:  firstInnovation,
		links:      make(map[int64]int64),
		splits:     make(map[int64]splitRecord),
	}
}

// NextGenomeID returns a new genome ID.
func (t *Tracker) NextGenomeID() int {
	id := t.nextGenome
	t.nextGenome++
	return id
}

// Observe raises the counters past every ID used by g, so genomes loaded
// from disk never collide with new structure.
func (t *Tracker) Observe(g *genetics.Genome) {
	if g.Id >= t.nextGenome {
		t.nextGenome = g.Id + 1
	}
	for _, n := range g.Nodes {
		if n.Id >= t.nextNode {
			t.nextNode = n.Id + 1
		}
	}
	for _, gene := range g.Genes {
		if gene.InnovationNum >= t.nextInnov {
			t.nextInnov = gene.InnovationNum + 1
		}
	}
}

// EndGeneration forgets this generation's structural mutations.
func (t *Tracker) EndGeneration() {
	clear(t.links)
	clear(t.splits)
}

func (t *Tracker) linkInnovation(in, out int) int64 {
	key := connectionKey(in, out)
	if innov, ok := t.links[key]; ok {
		return innov
	}
	innov := t.nextInnov
	t.nextInnov++
	t.links[key] = innov
	return innov
}

func (t *Tracker) split(gene *genetics.Gene) splitRecord {
	if rec, ok := t.splits[gene.InnovationNum]; ok {
		return rec
	}
	rec := splitRecord{node: t.nextNode, inInnov: t.nextInnov, outInnov: t.nextInnov + 1}
	t.nextNode++
	t.nextInnov += 2
	t.splits[gene.InnovationNum] = rec
	return rec
}

// connectionKey creates a unique key for a connection between two nodes.
func connectionKey(inID, outID int) int64 {
	return int64(inID)<<32 | int64(outID)
}

// Activation resolves a configured activation name.
func Activation(name string) (neatmath.NodeActivationType, error) {
	switch name {
	case "tanh":
		return neatmath.TanhActivation, nil
	case "sigmoid":
		return neatmath.SigmoidSteepenedActivation, nil
	case "linear":
		return neatmath.LinearActivation, nil
	default:
		return 0, fmt.Errorf("evolve: unknown activation %q", name)
	}
}

// NewGenome creates a genome with every input wired to the output.
// Initial links carry innovations 1..InputCount so all founders align.
func NewGenome(id int, cfg config.NetworkConfig, rng *rand.Rand) (*genetics.Genome, error) {
	outAct, err := Activation(cfg.OutputActivation)
	if err != nil {
		return nil, err
	}

	nodes := make([]*network.NNode, 0, InputCount+OutputCount)
	for i := 1; i <= SensorCount; i++ {
		node := network.NewNNode(i, network.InputNeuron)
		node.ActivationType = neatmath.LinearActivation
		nodes = append(nodes, node)
	}
	bias := network.NewNNode(biasNodeID, network.BiasNeuron)
	bias.ActivationType = neatmath.LinearActivation
	nodes = append(nodes, bias)

	out := network.NewNNode(outputNodeID, network.OutputNeuron)
	out.ActivationType = outAct
	nodes = append(nodes, out)

	genes := make([]*genetics.Gene, 0, InputCount)
	for i := 0; i < InputCount; i++ {
		weight := (rng.Float64()*2 - 1) * cfg.WeightRange
		genes = append(genes, genetics.NewGeneWithTrait(nil, weight, nodes[i], out, false, int64(i+1), 0))
	}

	return genetics.NewGenome(id, nil, nodes, genes), nil
}

func copyNode(node *network.NNode) *network.NNode {
	newNode := network.NewNNode(node.Id, node.NeuronType)
	newNode.ActivationType = node.ActivationType
	return newNode
}

// CloneGenome creates a deep copy of a genome with a new ID.
func CloneGenome(genome *genetics.Genome, newID int) (*genetics.Genome, error) {
	if genome == nil {
		return nil, fmt.Errorf("evolve: cannot clone nil genome")
	}

	nodeMap := make(map[int]*network.NNode, len(genome.Nodes))
	newNodes := make([]*network.NNode, 0, len(genome.Nodes))
	for _, node := range genome.Nodes {
		newNode := copyNode(node)
		nodeMap[node.Id] = newNode
		newNodes = append(newNodes, newNode)
	}

	newGenes := make([]*genetics.Gene, 0, len(genome.Genes))
	for _, gene := range genome.Genes {
		inNode := nodeMap[gene.Link.InNode.Id]
		outNode := nodeMap[gene.Link.OutNode.Id]
		if inNode == nil || outNode == nil {
			continue
		}
		newGene := genetics.NewGeneWithTrait(
			nil,
			gene.Link.ConnectionWeight,
			inNode,
			outNode,
			gene.Link.IsRecurrent,
			gene.InnovationNum,
			gene.MutationNum,
		)
		newGene.IsEnabled = gene.IsEnabled
		newGenes = append(newGenes, newGene)
	}

	return genetics.NewGenome(newID, nil, newNodes, newGenes), nil
}

// Complexity is the number of enabled links plus hidden nodes.
func Complexity(g *genetics.Genome) int {
	n := 0
	for _, gene := range g.Genes {
		if gene.IsEnabled {
			n++
		}
	}
	for _, node := range g.Nodes {
		if node.NeuronType == network.HiddenNeuron {
			n++
		}
	}
	return n
}
