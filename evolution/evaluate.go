package evolution

import (
	"fmt"

	"github.com/sourcegraph/conc/pool"
)

// Evaluator runs the physics trial that produces a creature's raw fitness (higher is better).
// The creature passed in is a private copy; the evaluator may freely move its nodes.
// With Run.Parallelism > 1 it must be safe for concurrent use.
type Evaluator interface {
	Evaluate(c *Creature) (float64, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(c *Creature) (float64, error)

// Evaluate calls f(c).
func (f EvaluatorFunc) Evaluate(c *Creature) (float64, error) {
	return f(c)
}

// scoreBatch returns the fitness of every creature, running the evaluator on a copy of
// each one that is not yet scored. Nothing in creatures is modified, so a failure leaves
// them exactly as they were. The error, if any, is the one of the lowest index.
func scoreBatch(gen int, creatures []*Creature, evaluator Evaluator, parallelism int) ([]float64, error) {
	scores := make([]float64, len(creatures))
	errs := make([]error, len(creatures))

	p := pool.New().WithMaxGoroutines(max(parallelism, 1))
	for i, c := range creatures {
		if c.Evaluated {
			scores[i] = c.Fitness
			continue
		}
		trial := c.Copy()
		p.Go(func() {
			score, err := evaluator.Evaluate(trial)
			if err == nil && !isFinite(score) {
				err = fmt.Errorf("non-finite fitness %v", score)
			}
			scores[i], errs[i] = score, err
		})
	}
	p.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, &EvaluationError{Generation: gen, Creature: i, Err: err}
		}
	}
	return scores, nil
}

// commitScores writes scores produced by scoreBatch back onto the creatures.
func commitScores(creatures []*Creature, scores []float64) {
	for i, c := range creatures {
		c.Fitness = scores[i]
		c.Evaluated = true
	}
}
