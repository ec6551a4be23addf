package evolve

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

const (
	perturbProb     = 0.9 // perturb rather than replace a weight
	maxLinkAttempts = 20
	disableKeepProb = 0.75 // a gene disabled in either parent stays disabled
)

// Crossover performs NEAT crossover. Genes are aligned by innovation number;
// matching genes are inherited from either parent at random, disjoint and
// excess genes from the fitter one (from both when fitness is equal).
func Crossover(parent1, parent2 *genetics.Genome, fitness1, fitness2 float64, childID int, rng *rand.Rand) (*genetics.Genome, error) {
	if parent1 == nil || parent2 == nil {
		return nil, fmt.Errorf("evolve: cannot crossover nil genomes")
	}

	primary, secondary := parent1, parent2
	if fitness2 > fitness1 {
		primary, secondary = parent2, parent1
	}
	equal := fitness1 == fitness2

	primaryGenes := make(map[int64]*genetics.Gene, len(primary.Genes))
	for _, gene := range primary.Genes {
		primaryGenes[gene.InnovationNum] = gene
	}
	secondaryGenes := make(map[int64]*genetics.Gene, len(secondary.Genes))
	for _, gene := range secondary.Genes {
		secondaryGenes[gene.InnovationNum] = gene
	}

	innovations := make([]int64, 0, len(primaryGenes)+len(secondaryGenes))
	for innov := range primaryGenes {
		innovations = append(innovations, innov)
	}
	for innov := range secondaryGenes {
		if _, ok := primaryGenes[innov]; !ok {
			innovations = append(innovations, innov)
		}
	}
	sort.Slice(innovations, func(i, j int) bool { return innovations[i] < innovations[j] })

	childNodeMap := make(map[int]*network.NNode)
	for _, node := range primary.Nodes {
		childNodeMap[node.Id] = copyNode(node)
	}
	if equal {
		for _, node := range secondary.Nodes {
			if _, exists := childNodeMap[node.Id]; !exists {
				childNodeMap[node.Id] = copyNode(node)
			}
		}
	}

	childGenes := make([]*genetics.Gene, 0, len(innovations))
	for _, innov := range innovations {
		pGene, sGene := primaryGenes[innov], secondaryGenes[innov]

		var selected *genetics.Gene
		enabled := true
		switch {
		case pGene != nil && sGene != nil:
			selected = pGene
			if rng.Float64() < 0.5 {
				selected = sGene
			}
			if (!pGene.IsEnabled || !sGene.IsEnabled) && rng.Float64() < disableKeepProb {
				enabled = false
			}
		case pGene != nil:
			selected = pGene
			enabled = pGene.IsEnabled
		case equal && rng.Float64() < 0.5:
			selected = sGene
			enabled = sGene.IsEnabled
		}
		if selected == nil {
			continue
		}

		inNode := childNodeMap[selected.Link.InNode.Id]
		outNode := childNodeMap[selected.Link.OutNode.Id]
		if inNode == nil || outNode == nil {
			continue
		}
		childGene := genetics.NewGeneWithTrait(
			nil,
			selected.Link.ConnectionWeight,
			inNode,
			outNode,
			selected.Link.IsRecurrent,
			selected.InnovationNum,
			selected.MutationNum,
		)
		childGene.IsEnabled = enabled
		childGenes = append(childGenes, childGene)
	}

	childNodes := make([]*network.NNode, 0, len(childNodeMap))
	for _, node := range childNodeMap {
		childNodes = append(childNodes, node)
	}
	sort.Slice(childNodes, func(i, j int) bool { return childNodes[i].Id < childNodes[j].Id })

	child := genetics.NewGenome(childID, nil, childNodes, childGenes)
	keepOutputsConnected(child)
	return child, nil
}

// Mutator applies NEAT mutations with the probabilities of opts.
type Mutator struct {
	Opts        *neat.Options
	Tracker     *Tracker
	Hidden      neatmath.NodeActivationType
	WeightClamp float64
	WeightRange float64
}

// Mutate mutates genome in place and reports whether anything changed.
func (m *Mutator) Mutate(genome *genetics.Genome, rng *rand.Rand) (bool, error) {
	if genome == nil {
		return false, fmt.Errorf("evolve: cannot mutate nil genome")
	}

	mutated := false
	if rng.Float64() < m.Opts.MutateAddNodeProb && m.addNode(genome, rng) {
		mutated = true
	}
	if rng.Float64() < m.Opts.MutateAddLinkProb && m.addLink(genome, rng) {
		mutated = true
	}
	if rng.Float64() < m.Opts.MutateLinkWeightsProb {
		m.mutateWeights(genome, rng)
		mutated = true
	}
	if rng.Float64() < m.Opts.MutateToggleEnableProb && toggleEnable(genome, rng) {
		mutated = true
	}
	return mutated, nil
}

func (m *Mutator) mutateWeights(genome *genetics.Genome, rng *rand.Rand) {
	for _, gene := range genome.Genes {
		if rng.Float64() < perturbProb {
			gene.Link.ConnectionWeight += (rng.Float64()*2 - 1) * m.Opts.WeightMutPower
		} else {
			gene.Link.ConnectionWeight = (rng.Float64()*2 - 1) * m.WeightRange
		}
		if m.WeightClamp > 0 {
			gene.Link.ConnectionWeight = math.Max(-m.WeightClamp, math.Min(m.WeightClamp, gene.Link.ConnectionWeight))
		}
		gene.MutationNum = gene.Link.ConnectionWeight
	}
}

// addNode splits an enabled link with a new hidden node.
func (m *Mutator) addNode(genome *genetics.Genome, rng *rand.Rand) bool {
	enabled := make([]*genetics.Gene, 0, len(genome.Genes))
	for _, gene := range genome.Genes {
		if gene.IsEnabled {
			enabled = append(enabled, gene)
		}
	}
	if len(enabled) == 0 {
		return false
	}

	split := enabled[rng.Intn(len(enabled))]
	rec := m.Tracker.split(split)
	for _, node := range genome.Nodes {
		if node.Id == rec.node {
			// This genome already split the same link.
			return false
		}
	}
	split.IsEnabled = false

	newNode := network.NewNNode(rec.node, network.HiddenNeuron)
	newNode.ActivationType = m.Hidden

	in := genetics.NewGeneWithTrait(nil, 1.0, split.Link.InNode, newNode, false, rec.inInnov, 0)
	out := genetics.NewGeneWithTrait(nil, split.Link.ConnectionWeight, newNode, split.Link.OutNode, false, rec.outInnov, 0)

	genome.Nodes = append(genome.Nodes, newNode)
	genome.Genes = append(genome.Genes, in, out)
	return true
}

// addLink connects two unconnected nodes without creating a cycle.
func (m *Mutator) addLink(genome *genetics.Genome, rng *rand.Rand) bool {
	var sources, targets []*network.NNode
	for _, node := range genome.Nodes {
		switch node.NeuronType {
		case network.InputNeuron, network.BiasNeuron:
			sources = append(sources, node)
		case network.OutputNeuron:
			targets = append(targets, node)
		case network.HiddenNeuron:
			sources = append(sources, node)
			targets = append(targets, node)
		}
	}
	if len(sources) == 0 || len(targets) == 0 {
		return false
	}

	existing := make(map[int64]bool, len(genome.Genes))
	for _, gene := range genome.Genes {
		existing[connectionKey(gene.Link.InNode.Id, gene.Link.OutNode.Id)] = true
	}

	for attempt := 0; attempt < maxLinkAttempts; attempt++ {
		source := sources[rng.Intn(len(sources))]
		target := targets[rng.Intn(len(targets))]
		if source.Id == target.Id || existing[connectionKey(source.Id, target.Id)] {
			continue
		}
		if reaches(genome, target.Id, source.Id) {
			continue
		}

		gene := genetics.NewGeneWithTrait(
			nil,
			(rng.Float64()*2-1)*m.WeightRange,
			source,
			target,
			false,
			m.Tracker.linkInnovation(source.Id, target.Id),
			0,
		)
		genome.Genes = append(genome.Genes, gene)
		return true
	}
	return false
}

// reaches reports whether a path of links leads from node from to node to.
func reaches(genome *genetics.Genome, from, to int) bool {
	next := make(map[int][]int)
	for _, gene := range genome.Genes {
		next[gene.Link.InNode.Id] = append(next[gene.Link.InNode.Id], gene.Link.OutNode.Id)
	}
	seen := map[int]bool{from: true}
	stack := []int{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		for _, o := range next[n] {
			if !seen[o] {
				seen[o] = true
				stack = append(stack, o)
			}
		}
	}
	return false
}

// toggleEnable flips a random gene, refusing to cut the output off entirely.
func toggleEnable(genome *genetics.Genome, rng *rand.Rand) bool {
	if len(genome.Genes) == 0 {
		return false
	}

	gene := genome.Genes[rng.Intn(len(genome.Genes))]
	gene.IsEnabled = !gene.IsEnabled
	if !gene.IsEnabled && !hasEnabledInput(genome, gene.Link.OutNode.Id) {
		gene.IsEnabled = true
		return false
	}
	return true
}

func hasEnabledInput(genome *genetics.Genome, nodeID int) bool {
	for _, g := range genome.Genes {
		if g.Link.OutNode.Id == nodeID && g.IsEnabled {
			return true
		}
	}
	return false
}

// keepOutputsConnected re-enables one link into any output left without input.
func keepOutputsConnected(genome *genetics.Genome) {
	for _, node := range genome.Nodes {
		if node.NeuronType != network.OutputNeuron || hasEnabledInput(genome, node.Id) {
			continue
		}
		for _, g := range genome.Genes {
			if g.Link.OutNode.Id == node.Id {
				g.IsEnabled = true
				break
			}
		}
	}
}

// Compatibility is the NEAT distance between two genomes: weighted counts of
// excess and disjoint genes plus the mean weight difference of matching ones.
func Compatibility(g1, g2 *genetics.Genome, opts *neat.Options) float64 {
	if g1 == nil || g2 == nil {
		return math.MaxFloat64
	}

	genes1 := make(map[int64]*genetics.Gene, len(g1.Genes))
	maxInnov1 := int64(0)
	for _, gene := range g1.Genes {
		genes1[gene.InnovationNum] = gene
		maxInnov1 = max(maxInnov1, gene.InnovationNum)
	}
	genes2 := make(map[int64]*genetics.Gene, len(g2.Genes))
	maxInnov2 := int64(0)
	for _, gene := range g2.Genes {
		genes2[gene.InnovationNum] = gene
		maxInnov2 = max(maxInnov2, gene.InnovationNum)
	}

	matching, disjoint, excess := 0, 0, 0
	weightDiff := 0.0
	for _, gene1 := range g1.Genes {
		innov := gene1.InnovationNum
		if gene2, ok := genes2[innov]; ok {
			matching++
			weightDiff += math.Abs(gene1.Link.ConnectionWeight - gene2.Link.ConnectionWeight)
		} else if innov > maxInnov2 {
			excess++
		} else {
			disjoint++
		}
	}
	for _, gene2 := range g2.Genes {
		innov := gene2.InnovationNum
		if _, ok := genes1[innov]; ok {
			continue
		}
		if innov > maxInnov1 {
			excess++
		} else {
			disjoint++
		}
	}

	// Small genomes are not normalised.
	n := float64(max(len(g1.Genes), len(g2.Genes)))
	if n < 20 {
		n = 1
	}
	avgWeightDiff := 0.0
	if matching > 0 {
		avgWeightDiff = weightDiff / float64(matching)
	}

	return (opts.ExcessCoeff*float64(excess)+opts.DisjointCoeff*float64(disjoint))/n +
		opts.MutdiffCoeff*avgWeightDiff
}
