package evolution

import (
	"math"
	"math/rand/v2"
)

// SimulatedAnnealing runs a local search per creature that also accepts worse candidates,
// with a probability that shrinks as the shared temperature cools.
//
// Fitness is not monotonic per lineage.
type SimulatedAnnealing struct {
	method
}

// NewSimulatedAnnealing creates an annealer that takes ownership of population. The
// temperature starts at SimulatedAnnealing.InitialTemperature for generation 0.
func NewSimulatedAnnealing(population *Population, config *Config, evaluator Evaluator, opts ...MethodOption) *SimulatedAnnealing {
	return &SimulatedAnnealing{method: newMethod(SimulatedAnnealingKind, population, config, evaluator, opts)}
}

// GenerationSingle advances the population by one generation.
func (sa *SimulatedAnnealing) GenerationSingle(rng *rand.Rand) error {
	return sa.advance(rng, sa.anneal)
}

// Temperature returns the temperature the next transition will use.
func (sa *SimulatedAnnealing) Temperature() float64 {
	return sa.TemperatureAt(sa.population.Gen)
}

// TemperatureAt returns the geometric schedule initial * cooling^gen, floored at MinTemperature.
func (sa *SimulatedAnnealing) TemperatureAt(gen int) float64 {
	cfg := sa.config.SimulatedAnnealing
	t := cfg.InitialTemperature * math.Pow(cfg.CoolingRate, float64(gen))
	if t < cfg.MinTemperature || math.IsNaN(t) {
		return cfg.MinTemperature
	}
	return t
}

func (sa *SimulatedAnnealing) anneal(current *Generation, rng *rand.Rand) (*Generation, int, error) {
	temperature := sa.Temperature()
	candidates, err := sa.scoreCandidates(current, rng)
	if err != nil {
		return nil, 0, err
	}

	next := &Generation{Creatures: make([]*Creature, len(current.Creatures))}
	for i, parent := range current.Creatures {
		if accept(candidates[i].Fitness-parent.Fitness, temperature, rng) {
			next.Creatures[i] = candidates[i]
		} else {
			next.Creatures[i] = parent.Copy()
		}
	}
	sa.metrics.observeTemperature(sa.Name(), temperature)
	return next, len(candidates), nil
}

// accept is the Metropolis criterion. No random number is drawn for improvements.
func accept(delta, temperature float64, rng *rand.Rand) bool {
	if delta >= 0 {
		return true
	}
	return rng.Float64() < math.Exp(delta/temperature)
}
