package evolve

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GenerationStats summarises one evaluated generation.
type GenerationStats struct {
	Generation int     `csv:"generation"`
	Best       float64 `csv:"best_fitness"`
	Mean       float64 `csv:"mean_fitness"`
	StdDev     float64 `csv:"stddev_fitness"`
	Median     float64 `csv:"median_fitness"`
	Worst      float64 `csv:"worst_fitness"`
	Score      int     `csv:"score"` // pipes passed in the episode
	Ticks      int     `csv:"ticks"`
	Species    int     `csv:"species"`

	ChampionID         int `csv:"champion_id"`
	ChampionComplexity int `csv:"champion_complexity"`
	ActivationErrors   int `csv:"activation_errors"`
}

// ComputeStats fills the fitness summary of a generation from its fitness
// values. The remaining fields are left to the caller.
func ComputeStats(generation int, fitness []float64) GenerationStats {
	s := GenerationStats{Generation: generation}
	if len(fitness) == 0 {
		return s
	}

	sorted := slices.Clone(fitness)
	slices.Sort(sorted)

	s.Best = floats.Max(sorted)
	s.Worst = floats.Min(sorted)
	s.Mean, s.StdDev = stat.MeanStdDev(sorted, nil)
	if len(sorted) == 1 {
		s.StdDev = 0
	}
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	return s
}
