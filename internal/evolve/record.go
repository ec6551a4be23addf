package evolve

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
	"gopkg.in/yaml.v3"
)

// GenomeRecord is the file form of a genome together with how it did.
type GenomeRecord struct {
	ID         int          `yaml:"id"`
	Generation int          `yaml:"generation"`
	Fitness    float64      `yaml:"fitness"`
	Score      int          `yaml:"score"`
	Nodes      []NodeRecord `yaml:"nodes"`
	Genes      []GeneRecord `yaml:"genes"`
}

// NodeRecord describes one neuron.
type NodeRecord struct {
	ID         int    `yaml:"id"`
	Type       string `yaml:"type"`
	Activation string `yaml:"activation"`
}

// GeneRecord describes one link.
type GeneRecord struct {
	Innovation int64   `yaml:"innovation"`
	In         int     `yaml:"in"`
	Out        int     `yaml:"out"`
	Weight     float64 `yaml:"weight"`
	Enabled    bool    `yaml:"enabled"`
	Mutation   float64 `yaml:"mutation,omitempty"`
}

var neuronTypeNames = map[network.NodeNeuronType]string{
	network.InputNeuron:  "input",
	network.BiasNeuron:   "bias",
	network.HiddenNeuron: "hidden",
	network.OutputNeuron: "output",
}

var activationNames = map[neatmath.NodeActivationType]string{
	neatmath.TanhActivation:             "tanh",
	neatmath.SigmoidSteepenedActivation: "sigmoid",
	neatmath.LinearActivation:           "linear",
}

// NewGenomeRecord captures a genome.
func NewGenomeRecord(g *genetics.Genome, generation int, fitness float64, score int) (GenomeRecord, error) {
	rec := GenomeRecord{
		ID:         g.Id,
		Generation: generation,
		Fitness:    fitness,
		Score:      score,
	}
	for _, n := range g.Nodes {
		typ, ok := neuronTypeNames[n.NeuronType]
		if !ok {
			return GenomeRecord{}, fmt.Errorf("evolve: node %d: unsupported neuron type %d", n.Id, n.NeuronType)
		}
		act, ok := activationNames[n.ActivationType]
		if !ok {
			return GenomeRecord{}, fmt.Errorf("evolve: node %d: unsupported activation %d", n.Id, n.ActivationType)
		}
		rec.Nodes = append(rec.Nodes, NodeRecord{ID: n.Id, Type: typ, Activation: act})
	}
	for _, gene := range g.Genes {
		rec.Genes = append(rec.Genes, GeneRecord{
			Innovation: gene.InnovationNum,
			In:         gene.Link.InNode.Id,
			Out:        gene.Link.OutNode.Id,
			Weight:     gene.Link.ConnectionWeight,
			Enabled:    gene.IsEnabled,
			Mutation:   gene.MutationNum,
		})
	}
	sort.Slice(rec.Genes, func(i, j int) bool { return rec.Genes[i].Innovation < rec.Genes[j].Innovation })
	return rec, nil
}

// Genome rebuilds the genome described by the record.
func (r GenomeRecord) Genome() (*genetics.Genome, error) {
	if len(r.Nodes) == 0 {
		return nil, fmt.Errorf("evolve: genome %d has no nodes", r.ID)
	}

	nodes := make([]*network.NNode, 0, len(r.Nodes))
	byID := make(map[int]*network.NNode, len(r.Nodes))
	for _, nr := range r.Nodes {
		typ, err := neuronType(nr.Type)
		if err != nil {
			return nil, err
		}
		act, err := Activation(nr.Activation)
		if err != nil {
			return nil, err
		}
		if _, dup := byID[nr.ID]; dup {
			return nil, fmt.Errorf("evolve: duplicate node %d", nr.ID)
		}
		node := network.NewNNode(nr.ID, typ)
		node.ActivationType = act
		byID[nr.ID] = node
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Id < nodes[j].Id })

	genes := make([]*genetics.Gene, 0, len(r.Genes))
	for _, gr := range r.Genes {
		in, out := byID[gr.In], byID[gr.Out]
		if in == nil || out == nil {
			return nil, fmt.Errorf("evolve: gene %d links unknown node %d -> %d", gr.Innovation, gr.In, gr.Out)
		}
		gene := genetics.NewGeneWithTrait(nil, gr.Weight, in, out, false, gr.Innovation, gr.Mutation)
		gene.IsEnabled = gr.Enabled
		genes = append(genes, gene)
	}

	return genetics.NewGenome(r.ID, nil, nodes, genes), nil
}

func neuronType(name string) (network.NodeNeuronType, error) {
	for typ, n := range neuronTypeNames {
		if n == name {
			return typ, nil
		}
	}
	return 0, fmt.Errorf("evolve: unknown neuron type %q", name)
}

// SaveGenome writes the record as YAML, creating parent directories.
func SaveGenome(path string, rec GenomeRecord) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("evolve: marshal genome: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("evolve: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("evolve: write genome: %w", err)
	}
	return nil
}

// LoadGenome reads a record written by SaveGenome.
func LoadGenome(path string) (GenomeRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GenomeRecord{}, fmt.Errorf("evolve: read genome: %w", err)
	}
	return ParseGenome(data)
}

// ParseGenome decodes a YAML genome record.
func ParseGenome(data []byte) (GenomeRecord, error) {
	var rec GenomeRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return GenomeRecord{}, fmt.Errorf("evolve: parse genome: %w", err)
	}
	return rec, nil
}
