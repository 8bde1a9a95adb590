package evolution

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
)

// OptimisationMethod is the capability set shared by every strategy.
type OptimisationMethod interface {
	// Name is the strategy's config name, e.g. "hill_climbing".
	Name() string
	Kind() MethodKind
	// GenerationSingle scores the current generation, derives the next one and appends it.
	// On error the history, Gen and the current generation's scores are left unchanged.
	GenerationSingle(rng *rand.Rand) error
	// Data exposes the full history. Callers may mutate transient creature state
	// (ResetPosition, replays) through it.
	Data() *Population
}

// MethodKind identifies one of the strategies.
type MethodKind int

const (
	GeneticAlgorithmKind MethodKind = iota
	HillClimbingKind
	SimulatedAnnealingKind
)

var methodNames = map[MethodKind]string{
	GeneticAlgorithmKind:   "genetic_algorithm",
	HillClimbingKind:       "hill_climbing",
	SimulatedAnnealingKind: "simulated_annealing",
}

func (k MethodKind) String() string {
	if name, ok := methodNames[k]; ok {
		return name
	}
	return fmt.Sprintf("MethodKind(%d)", int(k))
}

// ParseMethodKind accepts a config name ("genetic_algorithm") or its short form ("ga", "hc", "sa").
func ParseMethodKind(s string) (MethodKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "genetic_algorithm", "ga":
		return GeneticAlgorithmKind, nil
	case "hill_climbing", "hc":
		return HillClimbingKind, nil
	case "simulated_annealing", "sa":
		return SimulatedAnnealingKind, nil
	}
	return 0, fmt.Errorf("%w: unknown optimisation method %q", ErrInvalidConfiguration, s)
}

// MethodOption configures a strategy at construction.
type MethodOption func(*method)

// WithLogger sets the logger generation summaries are written to.
func WithLogger(logger *slog.Logger) MethodOption {
	return func(m *method) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics sets the Prometheus collectors the strategy reports to.
func WithMetrics(metrics *Metrics) MethodOption {
	return func(m *method) {
		m.metrics = metrics
	}
}

// NewMethod creates the strategy of the given kind. It takes ownership of population.
func NewMethod(kind MethodKind, population *Population, config *Config, evaluator Evaluator, opts ...MethodOption) (OptimisationMethod, error) {
	switch kind {
	case GeneticAlgorithmKind:
		return NewGeneticAlgorithm(population, config, evaluator, opts...), nil
	case HillClimbingKind:
		return NewHillClimbing(population, config, evaluator, opts...), nil
	case SimulatedAnnealingKind:
		return NewSimulatedAnnealing(population, config, evaluator, opts...), nil
	}
	return nil, fmt.Errorf("%w: unknown optimisation method %v", ErrInvalidConfiguration, kind)
}

// stepFunc derives the next generation from a fully scored current generation. It must not
// modify current. evaluations is the number of extra physics trials it ran.
type stepFunc func(current *Generation, rng *rand.Rand) (next *Generation, evaluations int, err error)

// method holds the state and transition skeleton shared by the strategies.
type method struct {
	kind       MethodKind
	population *Population
	config     *Config
	evaluator  Evaluator
	logger     *slog.Logger
	metrics    *Metrics
}

func newMethod(kind MethodKind, population *Population, config *Config, evaluator Evaluator, opts []MethodOption) method {
	m := method{
		kind:       kind,
		population: population,
		config:     config,
		evaluator:  evaluator,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m *method) Name() string      { return m.kind.String() }
func (m *method) Kind() MethodKind  { return m.kind }
func (m *method) Data() *Population { return m.population }

// advance runs one generation transition: score the current generation, apply step,
// append the result. Scores written to the current generation are rolled back on failure.
func (m *method) advance(rng *rand.Rand, step stepFunc) error {
	start := time.Now()
	gen := m.population.Gen
	current := m.population.Current()

	pending := 0
	for _, c := range current.Creatures {
		if !c.Evaluated {
			pending++
		}
	}

	scores, err := scoreBatch(gen, current.Creatures, m.evaluator, m.config.Run.Parallelism)
	if err != nil {
		return m.fail(gen, err)
	}

	saved := snapshotScores(current.Creatures)
	commitScores(current.Creatures, scores)

	next, evaluations, err := step(current, rng)
	if err == nil {
		err = m.population.appendGeneration(next)
	}
	if err != nil {
		restoreScores(current.Creatures, saved)
		return m.fail(gen, err)
	}

	stats := computeStats(gen, current)
	elapsed := time.Since(start)
	m.metrics.observeTransition(m.Name(), stats, pending+evaluations, elapsed)

	level := slog.LevelDebug
	if m.config.Run.PrintData {
		level = slog.LevelInfo
	}
	m.logger.Log(context.Background(), level, "generation complete",
		"method", m.Name(),
		"generation", gen,
		"best", stats.Best,
		"mean", stats.Mean,
		"median", stats.Median,
		"stdev", stats.Stdev,
		"evaluations", pending+evaluations,
		"elapsed", elapsed,
	)
	return nil
}

func (m *method) fail(gen int, err error) error {
	m.metrics.observeFailure(m.Name())
	m.logger.Warn("generation failed", "method", m.Name(), "generation", gen, "error", err)
	return fmt.Errorf("%s generation %d: %w", m.Name(), gen, err)
}

type scoreState struct {
	fitness   float64
	evaluated bool
}

func snapshotScores(creatures []*Creature) []scoreState {
	saved := make([]scoreState, len(creatures))
	for i, c := range creatures {
		saved[i] = scoreState{fitness: c.Fitness, evaluated: c.Evaluated}
	}
	return saved
}

func restoreScores(creatures []*Creature, saved []scoreState) {
	for i, c := range creatures {
		c.Fitness, c.Evaluated = saved[i].fitness, saved[i].evaluated
	}
}
