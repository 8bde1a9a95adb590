package evolution

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// --------------------------- Node ---------------------------

// Node is a point mass of the creature's body.
// StartX, StartY and Friction are genes; X, Y, VelX and VelY are transient simulation state.
type Node struct {
	StartX   float64
	StartY   float64
	Friction float64 // Fraction of horizontal velocity lost per frame while touching the ground.

	X, Y       float64
	VelX, VelY float64
}

// newNode creates a node with attributes drawn uniformly from the genome ranges.
func newNode(config *GenomeConfig, rng *rand.Rand) Node {
	n := Node{
		StartX:   uniformAttribute(0, config.SpawnWidth, rng),
		StartY:   uniformAttribute(0, config.SpawnHeight, rng),
		Friction: uniformAttribute(config.FrictionMin, config.FrictionMax, rng),
	}
	n.Reset()
	return n
}

// String returns a string representation of the Node.
func (n Node) String() string {
	return fmt.Sprintf("Node(Start: %.3f,%.3f, Friction: %.3f)", n.StartX, n.StartY, n.Friction)
}

// Reset moves the node back to its start position at rest.
func (n *Node) Reset() {
	n.X, n.Y = n.StartX, n.StartY
	n.VelX, n.VelY = 0, 0
}

func (n *Node) mutate(config *GenomeConfig, mutation *MutationConfig, rng *rand.Rand) {
	n.StartX = mutateAttribute(n.StartX, 0, config.SpawnWidth, mutation, rng)
	n.StartY = mutateAttribute(n.StartY, 0, config.SpawnHeight, mutation, rng)
	n.Friction = mutateAttribute(n.Friction, config.FrictionMin, config.FrictionMax, mutation, rng)
	n.Reset()
}

// crossover returns a node inheriting each attribute from n or other with equal probability.
func (n Node) crossover(other Node, rng *rand.Rand) Node {
	child := n
	if rng.Float64() < 0.5 {
		child.StartX = other.StartX
	}
	if rng.Float64() < 0.5 {
		child.StartY = other.StartY
	}
	if rng.Float64() < 0.5 {
		child.Friction = other.Friction
	}
	child.Reset()
	return child
}

// distance is the range-normalised attribute difference between two nodes.
func (n Node) distance(other Node, config *GenomeConfig) float64 {
	return normalisedDiff(n.StartX, other.StartX, 0, config.SpawnWidth) +
		normalisedDiff(n.StartY, other.StartY, 0, config.SpawnHeight) +
		normalisedDiff(n.Friction, other.Friction, config.FrictionMin, config.FrictionMax)
}

// --------------------------- Muscle ---------------------------

// Muscle is a spring between two nodes that switches between a contracted and an
// extended rest length once per heartbeat.
type Muscle struct {
	A, B             int // Node indices.
	ContractedLength float64
	ExtendedLength   float64
	Strength         float64
	ExtendTime       float64 // Phase in [0, 1) of the heartbeat at which the muscle extends.
	ContractTime     float64 // Phase in [0, 1) at which it contracts again.
}

// newMuscle creates a muscle between nodes a and b with random attributes.
func newMuscle(a, b int, config *GenomeConfig, rng *rand.Rand) Muscle {
	m := Muscle{
		A:                a,
		B:                b,
		ContractedLength: uniformAttribute(config.LengthMin, config.LengthMax, rng),
		ExtendedLength:   uniformAttribute(config.LengthMin, config.LengthMax, rng),
		Strength:         uniformAttribute(config.StrengthMin, config.StrengthMax, rng),
		ExtendTime:       rng.Float64(),
		ContractTime:     rng.Float64(),
	}
	m.normalise()
	return m
}

// String returns a string representation of the Muscle.
func (m Muscle) String() string {
	return fmt.Sprintf("Muscle(%d->%d, Length: %.3f..%.3f, Strength: %.3f, Phase: %.3f..%.3f)",
		m.A, m.B, m.ContractedLength, m.ExtendedLength, m.Strength, m.ExtendTime, m.ContractTime)
}

// Extended reports whether the muscle is extended at the given heartbeat phase in [0, 1).
func (m Muscle) Extended(phase float64) bool {
	if m.ExtendTime <= m.ContractTime {
		return phase >= m.ExtendTime && phase < m.ContractTime
	}
	return phase >= m.ExtendTime || phase < m.ContractTime
}

// TargetLength is the rest length the muscle pulls towards at the given phase.
func (m Muscle) TargetLength(phase float64) float64 {
	if m.Extended(phase) {
		return m.ExtendedLength
	}
	return m.ContractedLength
}

// Connects reports whether the muscle joins nodes a and b, in either direction.
func (m Muscle) Connects(a, b int) bool {
	return (m.A == a && m.B == b) || (m.A == b && m.B == a)
}

func (m *Muscle) mutate(config *GenomeConfig, mutation *MutationConfig, rng *rand.Rand) {
	m.ContractedLength = mutateAttribute(m.ContractedLength, config.LengthMin, config.LengthMax, mutation, rng)
	m.ExtendedLength = mutateAttribute(m.ExtendedLength, config.LengthMin, config.LengthMax, mutation, rng)
	m.Strength = mutateAttribute(m.Strength, config.StrengthMin, config.StrengthMax, mutation, rng)
	m.ExtendTime = mutatePhase(m.ExtendTime, mutation, rng)
	m.ContractTime = mutatePhase(m.ContractTime, mutation, rng)
	m.normalise()
}

// crossover returns a muscle with m's endpoints and each attribute taken from m or other.
func (m Muscle) crossover(other Muscle, rng *rand.Rand) Muscle {
	child := m
	if rng.Float64() < 0.5 {
		child.ContractedLength = other.ContractedLength
	}
	if rng.Float64() < 0.5 {
		child.ExtendedLength = other.ExtendedLength
	}
	if rng.Float64() < 0.5 {
		child.Strength = other.Strength
	}
	if rng.Float64() < 0.5 {
		child.ExtendTime = other.ExtendTime
		child.ContractTime = other.ContractTime
	}
	child.normalise()
	return child
}

func (m Muscle) distance(other Muscle, config *GenomeConfig) float64 {
	return normalisedDiff(m.ContractedLength, other.ContractedLength, config.LengthMin, config.LengthMax) +
		normalisedDiff(m.ExtendedLength, other.ExtendedLength, config.LengthMin, config.LengthMax) +
		normalisedDiff(m.Strength, other.Strength, config.StrengthMin, config.StrengthMax) +
		phaseDiff(m.ExtendTime, other.ExtendTime) +
		phaseDiff(m.ContractTime, other.ContractTime)
}

// normalise keeps ContractedLength <= ExtendedLength.
func (m *Muscle) normalise() {
	if m.ContractedLength > m.ExtendedLength {
		m.ContractedLength, m.ExtendedLength = m.ExtendedLength, m.ContractedLength
	}
}

// --------------------------- Attribute Helpers ---------------------------

func uniformAttribute(minVal, maxVal float64, rng *rand.Rand) float64 {
	return minVal + rng.Float64()*(maxVal-minVal)
}

// mutateAttribute perturbs value with probability MutateRate by a gaussian step of
// MutatePower times the attribute range, then clamps it back into range.
func mutateAttribute(value, minVal, maxVal float64, mutation *MutationConfig, rng *rand.Rand) float64 {
	if rng.Float64() >= mutation.MutateRate {
		return value
	}
	value += rng.NormFloat64() * mutation.MutatePower * (maxVal - minVal)
	return clamp(value, minVal, maxVal)
}

// mutatePhase perturbs a heartbeat phase, wrapping around [0, 1).
func mutatePhase(value float64, mutation *MutationConfig, rng *rand.Rand) float64 {
	if rng.Float64() >= mutation.MutateRate {
		return value
	}
	value += rng.NormFloat64() * mutation.MutatePower
	value -= math.Floor(value)
	if value >= 1 {
		value = 0
	}
	return value
}

// clamp restricts a value to a given range [minVal, maxVal].
func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(value, maxVal))
}

func normalisedDiff(a, b, minVal, maxVal float64) float64 {
	span := maxVal - minVal
	if span <= 0 {
		return 0
	}
	return math.Abs(a-b) / span
}

// phaseDiff is the circular distance between two phases, scaled to [0, 1].
func phaseDiff(a, b float64) float64 {
	d := math.Abs(a - b)
	return 2 * math.Min(d, 1-d)
}
