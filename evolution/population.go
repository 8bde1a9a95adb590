package evolution

import (
	"fmt"
	"math/rand/v2"
)

// Generation is one round of the population: an ordered, fixed-size set of creatures.
type Generation struct {
	Creatures []*Creature
}

// Copy creates a deep copy of the generation.
func (g *Generation) Copy() *Generation {
	creatures := make([]*Creature, len(g.Creatures))
	for i, c := range g.Creatures {
		creatures[i] = c.Copy()
	}
	return &Generation{Creatures: creatures}
}

// Fitnesses returns the fitness of every creature, in order.
func (g *Generation) Fitnesses() []float64 {
	fitnesses := make([]float64, len(g.Creatures))
	for i, c := range g.Creatures {
		fitnesses[i] = c.Fitness
	}
	return fitnesses
}

// Evaluated reports whether every creature has been scored.
func (g *Generation) Evaluated() bool {
	for _, c := range g.Creatures {
		if !c.Evaluated {
			return false
		}
	}
	return true
}

// Best returns the index of the fittest creature, the first one on ties, or -1 when empty.
func (g *Generation) Best() int {
	best := -1
	for i, c := range g.Creatures {
		if best < 0 || c.Fitness > g.Creatures[best].Fitness {
			best = i
		}
	}
	return best
}

// Population holds the full ordered history of generations of one strategy run.
type Population struct {
	Generations []*Generation
	Gen         int // Number of completed generation transitions.
	Size        int // Creatures per generation, fixed for the run.
}

// NewPopulation creates generation 0 with size independently randomized creatures.
func NewPopulation(size int, genome *GenomeConfig, rng *rand.Rand) (*Population, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: population size must be positive, got %d", ErrInvalidConfiguration, size)
	}
	creatures := make([]*Creature, size)
	for i := range creatures {
		creatures[i] = NewCreature(genome, rng)
	}
	return &Population{
		Generations: []*Generation{{Creatures: creatures}},
		Gen:         0,
		Size:        size,
	}, nil
}

// Clone deep-copies the whole history so another strategy can start from identical
// conditions without aliasing.
func (p *Population) Clone() *Population {
	generations := make([]*Generation, len(p.Generations))
	for i, g := range p.Generations {
		generations[i] = g.Copy()
	}
	return &Population{
		Generations: generations,
		Gen:         p.Gen,
		Size:        p.Size,
	}
}

// Current returns the most recent generation.
func (p *Population) Current() *Generation {
	return p.Generations[len(p.Generations)-1]
}

// Generation returns the generation at index gen.
func (p *Population) Generation(gen int) (*Generation, error) {
	if gen < 0 || gen >= len(p.Generations) {
		return nil, fmt.Errorf("%w: generation %d (have %d)", ErrOutOfRange, gen, len(p.Generations))
	}
	return p.Generations[gen], nil
}

// Creature returns creature idx of generation gen.
func (p *Population) Creature(gen, idx int) (*Creature, error) {
	g, err := p.Generation(gen)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(g.Creatures) {
		return nil, fmt.Errorf("%w: creature %d of generation %d (have %d)", ErrOutOfRange, idx, gen, len(g.Creatures))
	}
	return g.Creatures[idx], nil
}

// RandomCreatureIndex draws a creature index uniformly from [0, Size).
func (p *Population) RandomCreatureIndex(rng *rand.Rand) int {
	return rng.IntN(p.Size)
}

// Stats summarises the fitness of generation gen.
func (p *Population) Stats(gen int) (GenerationStats, error) {
	g, err := p.Generation(gen)
	if err != nil {
		return GenerationStats{}, err
	}
	return computeStats(gen, g), nil
}

// appendGeneration adds next to the history. A generation of the wrong size is rejected
// and leaves the history untouched.
func (p *Population) appendGeneration(next *Generation) error {
	if len(next.Creatures) != p.Size {
		return &InvariantError{Generation: p.Gen + 1, Want: p.Size, Got: len(next.Creatures)}
	}
	p.Generations = append(p.Generations, next)
	p.Gen++
	return nil
}
