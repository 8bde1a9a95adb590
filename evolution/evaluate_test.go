package evolution

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// genomeScore is a cheap deterministic fitness used in place of a physics trial.
func genomeScore(c *Creature) (float64, error) {
	score := c.Heartbeat
	for _, n := range c.Nodes {
		score += n.StartX - n.Friction
	}
	for _, m := range c.Muscles {
		score += m.Strength/100 + m.ExtendedLength - m.ContractedLength
	}
	return score, nil
}

func TestScoreBatch(t *testing.T) {
	cfg := DefaultConfig()
	rng := NewRand(1)
	creatures := make([]*Creature, 20)
	for i := range creatures {
		creatures[i] = NewCreature(&cfg.Genome, rng)
	}
	creatures[3].Fitness, creatures[3].Evaluated = 99, true

	var calls atomic.Int64
	eval := EvaluatorFunc(func(c *Creature) (float64, error) {
		calls.Add(1)
		c.Nodes[0].X += 1 // trials run on a copy
		return genomeScore(c)
	})

	for _, parallelism := range []int{1, 4} {
		calls.Store(0)
		scores, err := scoreBatch(0, creatures, eval, parallelism)
		require.NoError(t, err)
		assert.EqualValues(t, 19, calls.Load())
		assert.Equal(t, 99.0, scores[3])
		for i, c := range creatures {
			if i == 3 {
				continue
			}
			want, _ := genomeScore(c)
			assert.Equal(t, want, scores[i])
			assert.False(t, c.Evaluated)
			assert.Equal(t, c.Nodes[0].StartX, c.Nodes[0].X)
		}
	}
}

func TestScoreBatchReportsLowestFailingIndex(t *testing.T) {
	cfg := DefaultConfig()
	rng := NewRand(2)
	creatures := make([]*Creature, 10)
	for i := range creatures {
		creatures[i] = NewCreature(&cfg.Genome, rng)
		creatures[i].Heartbeat = float64(i)
	}

	boom := errors.New("boom")
	eval := EvaluatorFunc(func(c *Creature) (float64, error) {
		switch c.Heartbeat {
		case 4, 7:
			return 0, boom
		}
		return 1, nil
	})

	_, err := scoreBatch(6, creatures, eval, 3)
	require.ErrorIs(t, err, ErrEvaluationFailure)
	require.ErrorIs(t, err, boom)

	var evalErr *EvaluationError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, 6, evalErr.Generation)
	assert.Equal(t, 4, evalErr.Creature)
}

func TestScoreBatchRejectsNonFiniteFitness(t *testing.T) {
	cfg := DefaultConfig()
	creatures := []*Creature{NewCreature(&cfg.Genome, NewRand(3))}

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		eval := EvaluatorFunc(func(*Creature) (float64, error) { return v, nil })
		_, err := scoreBatch(0, creatures, eval, 1)
		assert.ErrorIs(t, err, ErrEvaluationFailure)
	}
}
