package evolution

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	cfg := testConfig(10)
	cfg.Run.Seed = 42
	s, err := NewSession(cfg, EvaluatorFunc(genomeScore), nil)
	require.NoError(t, err)

	_, err = uuid.Parse(s.RunID)
	require.NoError(t, err)

	require.Len(t, s.Methods, 3)
	for i, kind := range allKinds {
		assert.Equal(t, kind, s.Methods[i].Kind())
	}

	// Every method starts from an identical but unshared generation 0.
	first := s.Methods[0].Data().Current()
	for _, m := range s.Methods[1:] {
		other := m.Data().Current()
		assert.Equal(t, first, other)
		assert.NotSame(t, first.Creatures[0], other.Creatures[0])
	}

	assert.Equal(t, 0, s.SpectateMethod)
	assert.Equal(t, 0, s.SpectateGeneration)
	assert.GreaterOrEqual(t, s.SpectateCreature, 0)
	assert.Less(t, s.SpectateCreature, cfg.Run.GenerationSize)
}

func TestNewSessionRequiresAMethod(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Run.GeneticAlgorithm = false
	_, err := NewSession(cfg, EvaluatorFunc(genomeScore), nil)
	require.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "please select at least one optimisation method")

	_, err = NewSession(DefaultConfig(), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestSessionIsDeterministicForASeed(t *testing.T) {
	run := func() []float64 {
		cfg := testConfig(8)
		cfg.Run.Seed = 99
		s, err := NewSession(cfg, EvaluatorFunc(genomeScore), nil)
		require.NoError(t, err)
		require.NoError(t, s.Run(5))
		var fitnesses []float64
		for _, m := range s.Methods {
			fitnesses = append(fitnesses, m.Data().Generations[4].Fitnesses()...)
		}
		return fitnesses
	}
	assert.Equal(t, run(), run())
}

func TestSessionGenerationSingle(t *testing.T) {
	cfg := testConfig(6)
	s, err := NewSession(cfg, EvaluatorFunc(genomeScore), nil)
	require.NoError(t, err)

	s.SimulationFrame = 30
	require.NoError(t, s.GenerationSingle())
	require.NoError(t, s.GenerationSingle())

	assert.Equal(t, 2, s.TotalGenerations)
	assert.Equal(t, 2, s.SpectateGeneration)
	assert.Zero(t, s.SimulationFrame)
	for _, m := range s.Methods {
		assert.Equal(t, 2, m.Data().Gen)
	}
}

func TestSessionGenerationSingleRetriesOnlyLaggingMethods(t *testing.T) {
	cfg := testConfig(5)
	size := cfg.Run.GenerationSize

	// Trials in the first round: the genetic algorithm scores generation 0, each local
	// search scores generation 0 and one candidate per creature.
	failAt := size + 2*size + 1
	calls, failed := 0, false
	boom := errors.New("boom")
	eval := EvaluatorFunc(func(c *Creature) (float64, error) {
		calls++
		if calls == failAt && !failed {
			failed = true
			return 0, boom
		}
		return genomeScore(c)
	})

	s, err := NewSession(cfg, eval, nil)
	require.NoError(t, err)

	err = s.GenerationSingle()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.TotalGenerations)
	assert.Equal(t, 1, s.Methods[0].Data().Gen)
	assert.Equal(t, 1, s.Methods[1].Data().Gen)
	assert.Equal(t, 0, s.Methods[2].Data().Gen)

	require.NoError(t, s.GenerationSingle())
	assert.Equal(t, 1, s.TotalGenerations)
	for _, m := range s.Methods {
		assert.Equal(t, 1, m.Data().Gen)
	}
}

func TestSessionSetCreature(t *testing.T) {
	cfg := testConfig(4)
	s, err := NewSession(cfg, EvaluatorFunc(genomeScore), nil)
	require.NoError(t, err)
	require.NoError(t, s.Run(2))

	require.NoError(t, s.SetCreature(1, 3, 1))
	c, err := s.Methods[1].Data().Creature(1, 3)
	require.NoError(t, err)
	assert.Equal(t, c.Fitness, s.CurrentFitness)
	assert.Equal(t, 1, s.SpectateMethod)
	assert.Equal(t, 1, s.SpectateGeneration)
	assert.Equal(t, 3, s.SpectateCreature)

	assert.ErrorIs(t, s.SetCreature(3, 0, 0), ErrOutOfRange)
	assert.ErrorIs(t, s.SetCreature(0, 4, 0), ErrOutOfRange)
	assert.ErrorIs(t, s.SetCreature(0, 0, 3), ErrOutOfRange)
	assert.Equal(t, 3, s.SpectateCreature)

	for i := 0; i < 50; i++ {
		require.NoError(t, s.SetCreatureRandom())
		assert.Less(t, s.SpectateCreature, cfg.Run.GenerationSize)
	}
}

func TestSessionResetSimulation(t *testing.T) {
	cfg := testConfig(4)
	s, err := NewSession(cfg, EvaluatorFunc(genomeScore), nil)
	require.NoError(t, err)

	for _, m := range s.Methods {
		c, err := m.Data().Creature(s.SpectateGeneration, s.SpectateCreature)
		require.NoError(t, err)
		c.Nodes[0].X += 3
		c.Nodes[0].VelX = 1
	}
	s.SimulationFrame = 10
	s.ResetSimulation()

	assert.Zero(t, s.SimulationFrame)
	for _, m := range s.Methods {
		c, err := m.Data().Creature(s.SpectateGeneration, s.SpectateCreature)
		require.NoError(t, err)
		assert.Equal(t, c.Nodes[0].StartX, c.Nodes[0].X)
		assert.Zero(t, c.Nodes[0].VelX)
	}
}

func TestSessionResetAndRestart(t *testing.T) {
	cfg := testConfig(4)
	s, err := NewSession(cfg, EvaluatorFunc(genomeScore), nil)
	require.NoError(t, err)
	require.NoError(t, s.Run(3))

	s.Reset()
	assert.Empty(t, s.Methods)
	assert.Zero(t, s.TotalGenerations)
	assert.Zero(t, s.SpectateGeneration)
	assert.ErrorIs(t, s.SetCreatureRandom(), ErrOutOfRange)

	require.NoError(t, s.Restart())
	assert.Len(t, s.Methods, 3)
	require.NoError(t, s.GenerationSingle())
	assert.Equal(t, 1, s.TotalGenerations)
}
