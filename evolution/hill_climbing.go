package evolution

import (
	"math/rand/v2"
)

// HillClimbing runs an independent local search per creature: each one is replaced by a
// mutated copy of itself only when the copy scores higher.
type HillClimbing struct {
	method
}

// NewHillClimbing creates a hill climber that takes ownership of population.
func NewHillClimbing(population *Population, config *Config, evaluator Evaluator, opts ...MethodOption) *HillClimbing {
	return &HillClimbing{method: newMethod(HillClimbingKind, population, config, evaluator, opts)}
}

// GenerationSingle advances the population by one generation.
func (hc *HillClimbing) GenerationSingle(rng *rand.Rand) error {
	return hc.advance(rng, hc.climb)
}

func (hc *HillClimbing) climb(current *Generation, rng *rand.Rand) (*Generation, int, error) {
	candidates, err := hc.scoreCandidates(current, rng)
	if err != nil {
		return nil, 0, err
	}

	next := &Generation{Creatures: make([]*Creature, len(current.Creatures))}
	for i, parent := range current.Creatures {
		candidate := candidates[i]
		if candidate.Fitness > parent.Fitness ||
			(hc.config.HillClimbing.AcceptTies && candidate.Fitness == parent.Fitness) {
			next.Creatures[i] = candidate
		} else {
			next.Creatures[i] = parent.Copy()
		}
	}
	return next, len(candidates), nil
}

// scoreCandidates creates one mutated copy per creature of current and scores them all.
// Mutation draws happen in creature order before any evaluation starts.
func (m *method) scoreCandidates(current *Generation, rng *rand.Rand) ([]*Creature, error) {
	candidates := make([]*Creature, len(current.Creatures))
	for i, parent := range current.Creatures {
		candidate := parent.Copy()
		candidate.Mutate(&m.config.Genome, &m.config.Mutation, rng)
		candidate.ResetPosition()
		candidates[i] = candidate
	}

	scores, err := scoreBatch(m.population.Gen, candidates, m.evaluator, m.config.Run.Parallelism)
	if err != nil {
		return nil, err
	}
	commitScores(candidates, scores)
	return candidates, nil
}
