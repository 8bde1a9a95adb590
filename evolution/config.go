package evolution

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Config stores the parameters of a run.
type Config struct {
	Run                RunConfig                `yaml:"run"`
	Genome             GenomeConfig             `yaml:"genome"`
	Mutation           MutationConfig           `yaml:"mutation"`
	GeneticAlgorithm   GeneticAlgorithmConfig   `yaml:"genetic_algorithm"`
	HillClimbing       HillClimbingConfig       `yaml:"hill_climbing"`
	SimulatedAnnealing SimulatedAnnealingConfig `yaml:"simulated_annealing"`
	Physics            PhysicsConfig            `yaml:"physics"`
}

// RunConfig holds the construction parameters accepted from the caller.
type RunConfig struct {
	GenerationSize     int    `ini:"generation_size" yaml:"generation_size"`
	Seed               uint64 `ini:"seed" yaml:"seed"` // 0 picks a random seed
	GeneticAlgorithm   bool   `ini:"genetic_algorithm" yaml:"genetic_algorithm"`
	HillClimbing       bool   `ini:"hill_climbing" yaml:"hill_climbing"`
	SimulatedAnnealing bool   `ini:"simulated_annealing" yaml:"simulated_annealing"`
	Generations        int    `ini:"generations" yaml:"generations"` // Used by drivers, not by the core.
	Parallelism        int    `ini:"parallelism" yaml:"parallelism"` // Concurrent fitness evaluations.
	PrintData          bool   `ini:"print_data" yaml:"print_data"`   // Log generation summaries at info level.
}

// GenomeConfig bounds the randomized genome of a generation-0 creature.
// All mutations clamp attributes back into these ranges.
type GenomeConfig struct {
	MinNodes        int     `ini:"min_nodes" yaml:"min_nodes"`
	MaxNodes        int     `ini:"max_nodes" yaml:"max_nodes"`
	SpawnWidth      float64 `ini:"spawn_width" yaml:"spawn_width"`
	SpawnHeight     float64 `ini:"spawn_height" yaml:"spawn_height"`
	FrictionMin     float64 `ini:"friction_min" yaml:"friction_min"`
	FrictionMax     float64 `ini:"friction_max" yaml:"friction_max"`
	StrengthMin     float64 `ini:"strength_min" yaml:"strength_min"`
	StrengthMax     float64 `ini:"strength_max" yaml:"strength_max"`
	LengthMin       float64 `ini:"length_min" yaml:"length_min"`
	LengthMax       float64 `ini:"length_max" yaml:"length_max"`
	HeartbeatMin    float64 `ini:"heartbeat_min" yaml:"heartbeat_min"` // seconds
	HeartbeatMax    float64 `ini:"heartbeat_max" yaml:"heartbeat_max"`
	ExtraMuscleProb float64 `ini:"extra_muscle_prob" yaml:"extra_muscle_prob"`
}

// MutationConfig holds the variation parameters shared by all three strategies.
type MutationConfig struct {
	MutateRate       float64 `ini:"mutate_rate" yaml:"mutate_rate"`   // Per-gene probability.
	MutatePower      float64 `ini:"mutate_power" yaml:"mutate_power"` // Gaussian stdev as a fraction of the attribute range.
	NodeAddProb      float64 `ini:"node_add_prob" yaml:"node_add_prob"`
	MuscleAddProb    float64 `ini:"muscle_add_prob" yaml:"muscle_add_prob"`
	MuscleDeleteProb float64 `ini:"muscle_delete_prob" yaml:"muscle_delete_prob"`
}

// GeneticAlgorithmConfig holds selection and crossover parameters.
type GeneticAlgorithmConfig struct {
	TournamentSize int     `ini:"tournament_size" yaml:"tournament_size"`
	CrossoverRate  float64 `ini:"crossover_rate" yaml:"crossover_rate"`
	Elitism        int     `ini:"elitism" yaml:"elitism"`
}

// HillClimbingConfig holds the acceptance policy.
type HillClimbingConfig struct {
	AcceptTies bool `ini:"accept_ties" yaml:"accept_ties"` // Accept equal fitness (>=) instead of strict improvement.
}

// SimulatedAnnealingConfig holds the cooling schedule.
type SimulatedAnnealingConfig struct {
	InitialTemperature float64 `ini:"initial_temperature" yaml:"initial_temperature"`
	CoolingRate        float64 `ini:"cooling_rate" yaml:"cooling_rate"`
	MinTemperature     float64 `ini:"min_temperature" yaml:"min_temperature"`
}

// PhysicsConfig parameterises the reference physics trial.
type PhysicsConfig struct {
	Frames     int     `ini:"frames" yaml:"frames"`
	TimeStep   float64 `ini:"time_step" yaml:"time_step"`
	Gravity    float64 `ini:"gravity" yaml:"gravity"`
	AirDamping float64 `ini:"air_damping" yaml:"air_damping"` // Fraction of velocity kept per frame.
}

// DefaultConfig returns a configuration that runs out of the box.
func DefaultConfig() *Config {
	return &Config{
		Run: RunConfig{
			GenerationSize:   100,
			GeneticAlgorithm: true,
			Generations:      100,
			Parallelism:      1,
		},
		Genome: GenomeConfig{
			MinNodes:        3,
			MaxNodes:        6,
			SpawnWidth:      4,
			SpawnHeight:     4,
			FrictionMin:     0.05,
			FrictionMax:     0.95,
			StrengthMin:     5,
			StrengthMax:     40,
			LengthMin:       0.5,
			LengthMax:       4,
			HeartbeatMin:    0.5,
			HeartbeatMax:    2,
			ExtraMuscleProb: 0.3,
		},
		Mutation: MutationConfig{
			MutateRate:       0.2,
			MutatePower:      0.1,
			NodeAddProb:      0.02,
			MuscleAddProb:    0.04,
			MuscleDeleteProb: 0.04,
		},
		GeneticAlgorithm: GeneticAlgorithmConfig{
			TournamentSize: 3,
			CrossoverRate:  0.7,
			Elitism:        0,
		},
		SimulatedAnnealing: SimulatedAnnealingConfig{
			InitialTemperature: 1.0,
			CoolingRate:        0.98,
			MinTemperature:     1e-3,
		},
		Physics: PhysicsConfig{
			Frames:     600,
			TimeStep:   1.0 / 60.0,
			Gravity:    9.81,
			AirDamping: 0.99,
		},
	}
}

// LoadConfig loads a configuration file on top of DefaultConfig.
// Files ending in .yaml or .yml are parsed as YAML, everything else as INI.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", filePath, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
		}
	default:
		cfg, err := ini.LoadSources(ini.LoadOptions{
			IgnoreInlineComment:         true,
			UnescapeValueCommentSymbols: true,
		}, filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
		}
		sections := []struct {
			name   string
			target any
		}{
			{"Run", &config.Run},
			{"Genome", &config.Genome},
			{"Mutation", &config.Mutation},
			{"GeneticAlgorithm", &config.GeneticAlgorithm},
			{"HillClimbing", &config.HillClimbing},
			{"SimulatedAnnealing", &config.SimulatedAnnealing},
			{"Physics", &config.Physics},
		}
		for _, s := range sections {
			section, err := cfg.GetSection(s.name)
			if err != nil {
				continue // missing sections keep their defaults
			}
			if err := section.MapTo(s.target); err != nil {
				return nil, fmt.Errorf("failed to map [%s] section: %w", s.name, err)
			}
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks every section. Errors wrap ErrInvalidConfiguration.
func (c *Config) Validate() error {
	if c.Run.GenerationSize <= 0 {
		return configError("generation_size must be positive")
	}
	if len(c.Methods()) == 0 {
		return configError("please select at least one optimisation method")
	}
	if c.Run.Parallelism <= 0 {
		return configError("parallelism must be positive")
	}
	if c.Run.Generations < 0 {
		return configError("generations cannot be negative")
	}

	g := c.Genome
	if g.MinNodes < 2 {
		return configError("min_nodes must be at least 2")
	}
	if g.MaxNodes < g.MinNodes {
		return configError("max_nodes cannot be less than min_nodes")
	}
	if g.SpawnWidth <= 0 || g.SpawnHeight < 0 {
		return configError("spawn area must be positive")
	}
	if g.FrictionMin < 0 || g.FrictionMax > 1 || g.FrictionMax < g.FrictionMin {
		return configError("friction range must lie within [0, 1]")
	}
	if g.StrengthMin <= 0 || g.StrengthMax < g.StrengthMin {
		return configError("strength range must be positive and ordered")
	}
	if g.LengthMin <= 0 || g.LengthMax < g.LengthMin {
		return configError("length range must be positive and ordered")
	}
	if g.HeartbeatMin <= 0 || g.HeartbeatMax < g.HeartbeatMin {
		return configError("heartbeat range must be positive and ordered")
	}
	if !isProbability(g.ExtraMuscleProb) {
		return configError("extra_muscle_prob must be between 0 and 1")
	}

	m := c.Mutation
	probabilities := []struct {
		name  string
		value float64
	}{
		{"mutate_rate", m.MutateRate},
		{"node_add_prob", m.NodeAddProb},
		{"muscle_add_prob", m.MuscleAddProb},
		{"muscle_delete_prob", m.MuscleDeleteProb},
	}
	for _, p := range probabilities {
		if !isProbability(p.value) {
			return configError("%s must be between 0 and 1", p.name)
		}
	}
	if m.MutatePower < 0 {
		return configError("mutate_power cannot be negative")
	}

	ga := c.GeneticAlgorithm
	if ga.TournamentSize < 1 {
		return configError("tournament_size must be positive")
	}
	if !isProbability(ga.CrossoverRate) {
		return configError("crossover_rate must be between 0 and 1")
	}
	if ga.Elitism < 0 || ga.Elitism > c.Run.GenerationSize {
		return configError("elitism must be between 0 and generation_size")
	}

	sa := c.SimulatedAnnealing
	if sa.MinTemperature <= 0 {
		return configError("min_temperature must be positive")
	}
	if sa.InitialTemperature < sa.MinTemperature {
		return configError("initial_temperature cannot be less than min_temperature")
	}
	if sa.CoolingRate <= 0 || sa.CoolingRate > 1 {
		return configError("cooling_rate must be in (0, 1]")
	}

	p := c.Physics
	if p.Frames <= 0 {
		return configError("frames must be positive")
	}
	if p.TimeStep <= 0 {
		return configError("time_step must be positive")
	}
	if p.AirDamping <= 0 || p.AirDamping > 1 {
		return configError("air_damping must be in (0, 1]")
	}
	return nil
}

// Methods lists the enabled strategies in their canonical order.
func (c *Config) Methods() []MethodKind {
	var kinds []MethodKind
	if c.Run.GeneticAlgorithm {
		kinds = append(kinds, GeneticAlgorithmKind)
	}
	if c.Run.HillClimbing {
		kinds = append(kinds, HillClimbingKind)
	}
	if c.Run.SimulatedAnnealing {
		kinds = append(kinds, SimulatedAnnealingKind)
	}
	return kinds
}

func isProbability(p float64) bool {
	return p >= 0 && p <= 1
}
