package evolve

import (
	"slices"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
)

// Species is a group of genetically similar organisms.
type Species struct {
	ID             int
	Representative *genetics.Genome // compared against when assigning genomes
	Members        []*Organism
	BestFitness    float64 // best fitness ever reached
	AvgFitness     float64 // mean fitness of the last generation
	Age            int
	Staleness      int // generations without improving BestFitness
}

// Champion returns the fittest member, or nil for an empty species.
func (s *Species) Champion() *Organism {
	var best *Organism
	for _, m := range s.Members {
		if best == nil || m.Fitness > best.Fitness {
			best = m
		}
	}
	return best
}

// SpeciesManager assigns organisms to species and tracks their progress.
type SpeciesManager struct {
	Species []*Species
	opts    *neat.Options
	nextID  int
}

// NewSpeciesManager creates an empty species manager.
func NewSpeciesManager(opts *neat.Options) *SpeciesManager {
	return &SpeciesManager{opts: opts, nextID: 1}
}

// Speciate places every organism in the first species whose representative
// is within the compatibility threshold, founding new species as needed.
// Species left without members are dropped.
func (sm *SpeciesManager) Speciate(orgs []*Organism) {
	for _, sp := range sm.Species {
		sp.Members = sp.Members[:0]
	}

	for _, org := range orgs {
		sp := sm.find(org.Genome)
		if sp == nil {
			sp = &Species{ID: sm.nextID, Representative: org.Genome}
			sm.nextID++
			sm.Species = append(sm.Species, sp)
		}
		sp.Members = append(sp.Members, org)
		org.SpeciesID = sp.ID
	}

	sm.Species = slices.DeleteFunc(sm.Species, func(sp *Species) bool {
		return len(sp.Members) == 0
	})
}

func (sm *SpeciesManager) find(genome *genetics.Genome) *Species {
	for _, sp := range sm.Species {
		if sp.Representative == nil {
			continue
		}
		if Compatibility(genome, sp.Representative, sm.opts) < sm.opts.CompatThreshold {
			return sp
		}
	}
	return nil
}

// Update records the generation's fitness in every species, ages them and
// drops those stale for DropOffAge generations. The species holding the
// population champion is never dropped. Representatives become the
// species champions for the next assignment.
func (sm *SpeciesManager) Update() {
	var leader *Species
	leaderFitness := 0.0
	for _, sp := range sm.Species {
		champ := sp.Champion()
		if champ == nil {
			continue
		}
		if leader == nil || champ.Fitness > leaderFitness {
			leader, leaderFitness = sp, champ.Fitness
		}

		total := 0.0
		for _, m := range sp.Members {
			total += m.Fitness
		}
		sp.AvgFitness = total / float64(len(sp.Members))

		if sp.Age == 0 || champ.Fitness > sp.BestFitness {
			sp.BestFitness = champ.Fitness
			sp.Staleness = 0
		} else {
			sp.Staleness++
		}
		sp.Age++
		sp.Representative = champ.Genome
	}

	if sm.opts.DropOffAge <= 0 {
		return
	}
	sm.Species = slices.DeleteFunc(sm.Species, func(sp *Species) bool {
		return sp != leader && sp.Staleness >= sm.opts.DropOffAge
	})
}

// Get returns the species with the given ID.
func (sm *SpeciesManager) Get(id int) (*Species, bool) {
	for _, sp := range sm.Species {
		if sp.ID == id {
			return sp, true
		}
	}
	return nil, false
}

// Len returns the number of live species.
func (sm *SpeciesManager) Len() int {
	return len(sm.Species)
}
