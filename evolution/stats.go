package evolution

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GenerationStats summarises the fitness of one generation.
type GenerationStats struct {
	Generation int
	Evaluated  bool // False when some creature has no score yet; the fitness fields are then partial.
	Best       float64
	Worst      float64
	Mean       float64
	Stdev      float64 // Sample standard deviation, 0 for fewer than two creatures.
	Median     float64 // Lower median.
}

func computeStats(gen int, g *Generation) GenerationStats {
	s := GenerationStats{Generation: gen, Evaluated: g.Evaluated()}
	fitnesses := g.Fitnesses()
	if len(fitnesses) == 0 {
		return s
	}
	s.Best = floats.Max(fitnesses)
	s.Worst = floats.Min(fitnesses)
	s.Mean = stat.Mean(fitnesses, nil)
	if len(fitnesses) > 1 {
		s.Stdev = stat.StdDev(fitnesses, nil)
	}
	sort.Float64s(fitnesses)
	s.Median = stat.Quantile(0.5, stat.Empirical, fitnesses, nil)
	return s
}

// Diversity is the mean pairwise genetic distance between the creatures of a generation.
func (g *Generation) Diversity(genome *GenomeConfig) float64 {
	n := len(g.Creatures)
	if n < 2 {
		return 0
	}
	distances := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			distances = append(distances, g.Creatures[i].Distance(g.Creatures[j], genome))
		}
	}
	return stat.Mean(distances, nil)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
