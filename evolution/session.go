package evolution

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"
)

// Session runs every enabled strategy side by side over clones of one initial population,
// and tracks which creature a viewer is spectating.
type Session struct {
	RunID   string
	Config  *Config
	Methods []OptimisationMethod

	TotalGenerations   int
	SpectateMethod     int
	SpectateGeneration int
	SpectateCreature   int
	SimulationFrame    int
	CurrentFitness     float64

	rng       *rand.Rand
	evaluator Evaluator
	logger    *slog.Logger
	opts      []MethodOption
}

// NewSession validates config and creates the strategies it enables, in genetic algorithm,
// hill climbing, simulated annealing order. Options are passed on to each strategy.
func NewSession(config *Config, evaluator Evaluator, logger *slog.Logger, opts ...MethodOption) (*Session, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("%w: evaluator is nil", ErrInvalidConfiguration)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Session{
		RunID:     uuid.NewString(),
		Config:    config,
		rng:       NewRand(config.Run.Seed),
		evaluator: evaluator,
	}
	s.logger = logger.With("run_id", s.RunID)
	s.opts = append([]MethodOption{WithLogger(s.logger)}, opts...)

	if err := s.initMethods(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) initMethods() error {
	kinds := s.Config.Methods()
	if len(kinds) == 0 {
		return configError("please select at least one optimisation method")
	}

	population, err := NewPopulation(s.Config.Run.GenerationSize, &s.Config.Genome, s.rng)
	if err != nil {
		return err
	}
	for _, kind := range kinds {
		m, err := NewMethod(kind, population.Clone(), s.Config, s.evaluator, s.opts...)
		if err != nil {
			return err
		}
		s.Methods = append(s.Methods, m)
	}

	s.logger.Info("session started",
		"methods", len(s.Methods),
		"generation_size", s.Config.Run.GenerationSize,
		"seed", s.Config.Run.Seed,
	)
	return s.SetCreatureRandom()
}

// Rand returns the session's random source.
func (s *Session) Rand() *rand.Rand {
	return s.rng
}

// GenerationSingle advances every strategy by one generation. When a strategy fails the
// error is returned and the counters stay put; calling again only advances the strategies
// that are still behind.
func (s *Session) GenerationSingle() error {
	target := s.TotalGenerations + 1
	for _, m := range s.Methods {
		if m.Data().Gen >= target {
			continue
		}
		if err := m.GenerationSingle(s.rng); err != nil {
			return err
		}
	}

	s.TotalGenerations = target
	s.SpectateGeneration++
	s.SimulationFrame = 0
	return nil
}

// Run calls GenerationSingle n times, stopping at the first error.
func (s *Session) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := s.GenerationSingle(); err != nil {
			return err
		}
	}
	return nil
}

// SetCreature selects the spectated creature and loads its fitness.
func (s *Session) SetCreature(method, index, generation int) error {
	if method < 0 || method >= len(s.Methods) {
		return fmt.Errorf("%w: method %d (have %d)", ErrOutOfRange, method, len(s.Methods))
	}
	c, err := s.Methods[method].Data().Creature(generation, index)
	if err != nil {
		return err
	}

	s.ResetSimulation()
	s.SpectateMethod = method
	s.SpectateGeneration = generation
	s.SpectateCreature = index
	s.CurrentFitness = c.Fitness
	return nil
}

// SetCreatureRandom spectates a uniformly drawn creature of the current method and generation.
func (s *Session) SetCreatureRandom() error {
	if len(s.Methods) == 0 {
		return fmt.Errorf("%w: no methods", ErrOutOfRange)
	}
	index := s.Methods[s.SpectateMethod].Data().RandomCreatureIndex(s.rng)
	return s.SetCreature(s.SpectateMethod, index, s.SpectateGeneration)
}

// ResetSimulation puts the spectated creature of every strategy back at its start position.
func (s *Session) ResetSimulation() {
	for _, m := range s.Methods {
		if c, err := m.Data().Creature(s.SpectateGeneration, s.SpectateCreature); err == nil {
			c.ResetPosition()
		}
	}
	s.SimulationFrame = 0
}

// Reset drops all strategies and counters. The random source keeps its state.
func (s *Session) Reset() {
	s.Methods = nil
	s.TotalGenerations = 0
	s.SpectateMethod = 0
	s.SpectateGeneration = 0
	s.SpectateCreature = 0
	s.SimulationFrame = 0
	s.CurrentFitness = 0
}

// Restart resets the session and creates fresh strategies from a new initial population.
func (s *Session) Restart() error {
	s.Reset()
	return s.initMethods()
}
