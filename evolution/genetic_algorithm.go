package evolution

import (
	"math/rand/v2"
	"sort"
)

// GeneticAlgorithm breeds each generation from tournament-selected parents of the previous one.
type GeneticAlgorithm struct {
	method
}

// NewGeneticAlgorithm creates a genetic algorithm that takes ownership of population.
func NewGeneticAlgorithm(population *Population, config *Config, evaluator Evaluator, opts ...MethodOption) *GeneticAlgorithm {
	return &GeneticAlgorithm{method: newMethod(GeneticAlgorithmKind, population, config, evaluator, opts)}
}

// GenerationSingle advances the population by one generation.
func (ga *GeneticAlgorithm) GenerationSingle(rng *rand.Rand) error {
	return ga.advance(rng, ga.reproduce)
}

// reproduce creates the next generation: the elites first, then one child per selected
// parent pair until Size creatures exist.
func (ga *GeneticAlgorithm) reproduce(current *Generation, rng *rand.Rand) (*Generation, int, error) {
	size := ga.population.Size
	cfg := ga.config.GeneticAlgorithm
	next := &Generation{Creatures: make([]*Creature, 0, size)}

	// Transfer elites.
	if cfg.Elitism > 0 {
		ranked := make([]*Creature, len(current.Creatures))
		copy(ranked, current.Creatures)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Fitness > ranked[j].Fitness
		})
		for i := 0; i < cfg.Elitism && i < len(ranked) && len(next.Creatures) < size; i++ {
			next.Creatures = append(next.Creatures, ranked[i].Copy())
		}
	}

	// Produce offspring.
	for len(next.Creatures) < size {
		parent1 := ga.selectParent(current, rng)
		var child *Creature
		if rng.Float64() < cfg.CrossoverRate {
			parent2 := ga.selectParent(current, rng)
			child = Crossover(parent1, parent2, rng)
		} else {
			child = parent1.Copy()
		}
		child.Mutate(&ga.config.Genome, &ga.config.Mutation, rng)
		child.ResetPosition()
		next.Creatures = append(next.Creatures, child)
	}
	return next, 0, nil
}

// selectParent runs a tournament of TournamentSize uniform draws with replacement. The
// fittest entrant wins; entrants tied for best win with equal probability.
func (ga *GeneticAlgorithm) selectParent(g *Generation, rng *rand.Rand) *Creature {
	n := len(g.Creatures)
	var best *Creature
	ties := 0
	for i := 0; i < ga.config.GeneticAlgorithm.TournamentSize; i++ {
		entrant := g.Creatures[rng.IntN(n)]
		switch {
		case best == nil || entrant.Fitness > best.Fitness:
			best, ties = entrant, 1
		case entrant.Fitness == best.Fitness:
			ties++
			if rng.IntN(ties) == 0 {
				best = entrant
			}
		}
	}
	return best
}
