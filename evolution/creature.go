package evolution

import (
	"fmt"
	"math/rand/v2"
)

// Creature is one candidate solution: a body made of Nodes joined by Muscles, a heartbeat
// driving the muscles, and the fitness its last physics trial produced.
type Creature struct {
	Nodes     []Node
	Muscles   []Muscle
	Heartbeat float64 // Muscle cycle period in seconds.

	Fitness   float64 // Only meaningful when Evaluated is true.
	Evaluated bool
}

// NewCreature creates a creature with a random connected body within the genome ranges.
func NewCreature(config *GenomeConfig, rng *rand.Rand) *Creature {
	numNodes := config.MinNodes + rng.IntN(config.MaxNodes-config.MinNodes+1)
	c := &Creature{
		Nodes:     make([]Node, 0, numNodes),
		Heartbeat: uniformAttribute(config.HeartbeatMin, config.HeartbeatMax, rng),
	}
	for i := 0; i < numNodes; i++ {
		c.Nodes = append(c.Nodes, newNode(config, rng))
	}

	// A random spanning tree keeps the body in one piece.
	for i := 1; i < numNodes; i++ {
		c.Muscles = append(c.Muscles, newMuscle(rng.IntN(i), i, config, rng))
	}
	for i := 0; i < numNodes; i++ {
		for j := i + 1; j < numNodes; j++ {
			if c.hasMuscle(i, j) {
				continue
			}
			if rng.Float64() < config.ExtraMuscleProb {
				c.Muscles = append(c.Muscles, newMuscle(i, j, config, rng))
			}
		}
	}
	return c
}

// String returns a short description of the creature.
func (c *Creature) String() string {
	return fmt.Sprintf("Creature(Nodes: %d, Muscles: %d, Heartbeat: %.3f, Fitness: %.4f)",
		len(c.Nodes), len(c.Muscles), c.Heartbeat, c.Fitness)
}

// Copy creates a deep copy of the creature, including fitness and transient state.
func (c *Creature) Copy() *Creature {
	cp := *c
	cp.Nodes = append([]Node(nil), c.Nodes...)
	cp.Muscles = append([]Muscle(nil), c.Muscles...)
	return &cp
}

// ResetPosition returns every node to its start position at rest, so a fresh trial or a
// replay is not polluted by an earlier one.
func (c *Creature) ResetPosition() {
	for i := range c.Nodes {
		c.Nodes[i].Reset()
	}
}

// ClearFitness marks the creature as needing evaluation.
func (c *Creature) ClearFitness() {
	c.Fitness = 0
	c.Evaluated = false
}

// Center returns the mean node position.
func (c *Creature) Center() (x, y float64) {
	if len(c.Nodes) == 0 {
		return 0, 0
	}
	for _, n := range c.Nodes {
		x += n.X
		y += n.Y
	}
	count := float64(len(c.Nodes))
	return x / count, y / count
}

// StartCenter returns the mean node start position.
func (c *Creature) StartCenter() (x, y float64) {
	if len(c.Nodes) == 0 {
		return 0, 0
	}
	for _, n := range c.Nodes {
		x += n.StartX
		y += n.StartY
	}
	count := float64(len(c.Nodes))
	return x / count, y / count
}

// Crossover creates a child from two parents. The fitter parent (parent1 on ties) provides
// the body structure; homologous genes take each attribute from either parent with equal
// probability. Nodes are homologous by index, muscles by the pair of nodes they join.
func Crossover(parent1, parent2 *Creature, rng *rand.Rand) *Creature {
	if parent1.Fitness < parent2.Fitness {
		parent1, parent2 = parent2, parent1
	}

	child := &Creature{
		Nodes:     make([]Node, len(parent1.Nodes)),
		Muscles:   make([]Muscle, len(parent1.Muscles)),
		Heartbeat: parent1.Heartbeat,
	}
	if rng.Float64() < 0.5 {
		child.Heartbeat = parent2.Heartbeat
	}

	for i, n1 := range parent1.Nodes {
		if i < len(parent2.Nodes) {
			child.Nodes[i] = n1.crossover(parent2.Nodes[i], rng)
		} else {
			child.Nodes[i] = n1
			child.Nodes[i].Reset()
		}
	}

	for i, m1 := range parent1.Muscles {
		if j := parent2.muscleIndex(m1.A, m1.B); j >= 0 {
			child.Muscles[i] = m1.crossover(parent2.Muscles[j], rng)
		} else {
			child.Muscles[i] = m1
		}
	}
	return child
}

// Mutate applies structural and attribute mutations in place and clears the fitness.
func (c *Creature) Mutate(genome *GenomeConfig, mutation *MutationConfig, rng *rand.Rand) {
	// --- Structural Mutations ---
	if rng.Float64() < mutation.NodeAddProb {
		c.mutateAddNode(genome, rng)
	}
	if rng.Float64() < mutation.MuscleAddProb {
		c.mutateAddMuscle(genome, rng)
	}
	if rng.Float64() < mutation.MuscleDeleteProb {
		c.mutateDeleteMuscle(rng)
	}

	// --- Attribute Mutations ---
	for i := range c.Nodes {
		c.Nodes[i].mutate(genome, mutation, rng)
	}
	for i := range c.Muscles {
		c.Muscles[i].mutate(genome, mutation, rng)
	}
	c.Heartbeat = mutateAttribute(c.Heartbeat, genome.HeartbeatMin, genome.HeartbeatMax, mutation, rng)

	c.ClearFitness()
}

// mutateAddNode attaches a new node to a random existing node with a new muscle.
func (c *Creature) mutateAddNode(genome *GenomeConfig, rng *rand.Rand) {
	if len(c.Nodes) >= genome.MaxNodes || len(c.Nodes) == 0 {
		return
	}
	anchor := rng.IntN(len(c.Nodes))
	c.Nodes = append(c.Nodes, newNode(genome, rng))
	c.Muscles = append(c.Muscles, newMuscle(anchor, len(c.Nodes)-1, genome, rng))
}

// mutateAddMuscle joins two previously unconnected nodes.
func (c *Creature) mutateAddMuscle(genome *GenomeConfig, rng *rand.Rand) {
	if len(c.Nodes) < 2 {
		return
	}
	const maxAttempts = 20
	for i := 0; i < maxAttempts; i++ {
		a := rng.IntN(len(c.Nodes))
		b := rng.IntN(len(c.Nodes))
		if a == b || c.hasMuscle(a, b) {
			continue
		}
		c.Muscles = append(c.Muscles, newMuscle(a, b, genome, rng))
		return
	}
}

// mutateDeleteMuscle removes a random muscle unless that would split the body.
func (c *Creature) mutateDeleteMuscle(rng *rand.Rand) {
	if len(c.Muscles) <= len(c.Nodes)-1 {
		return // a tree has no removable muscle
	}
	idx := rng.IntN(len(c.Muscles))
	remaining := make([]Muscle, 0, len(c.Muscles)-1)
	remaining = append(remaining, c.Muscles[:idx]...)
	remaining = append(remaining, c.Muscles[idx+1:]...)
	if !connected(len(c.Nodes), remaining) {
		return
	}
	c.Muscles = remaining
}

// Distance calculates the genetic distance between two creatures: the number of
// non-homologous genes plus the mean attribute difference of homologous ones.
func (c *Creature) Distance(other *Creature, genome *GenomeConfig) float64 {
	disjoint := 0
	diffSum := 0.0
	matching := 0

	shared := min(len(c.Nodes), len(other.Nodes))
	disjoint += max(len(c.Nodes), len(other.Nodes)) - shared
	for i := 0; i < shared; i++ {
		diffSum += c.Nodes[i].distance(other.Nodes[i], genome)
		matching++
	}

	for _, m1 := range c.Muscles {
		if j := other.muscleIndex(m1.A, m1.B); j >= 0 {
			diffSum += m1.distance(other.Muscles[j], genome)
			matching++
		} else {
			disjoint++
		}
	}
	for _, m2 := range other.Muscles {
		if c.muscleIndex(m2.A, m2.B) < 0 {
			disjoint++
		}
	}

	n := float64(max(len(c.Nodes)+len(c.Muscles), len(other.Nodes)+len(other.Muscles)))
	if n < 1 {
		n = 1
	}
	d := float64(disjoint) / n
	if matching > 0 {
		d += diffSum / float64(matching)
	}
	d += normalisedDiff(c.Heartbeat, other.Heartbeat, genome.HeartbeatMin, genome.HeartbeatMax)
	return d
}

func (c *Creature) hasMuscle(a, b int) bool {
	return c.muscleIndex(a, b) >= 0
}

func (c *Creature) muscleIndex(a, b int) int {
	for i, m := range c.Muscles {
		if m.Connects(a, b) {
			return i
		}
	}
	return -1
}

// connected reports whether the muscles join all numNodes nodes into one body.
func connected(numNodes int, muscles []Muscle) bool {
	if numNodes <= 1 {
		return true
	}
	visited := make([]bool, numNodes)
	visited[0] = true
	queue := []int{0}
	seen := 1
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, m := range muscles {
			next := -1
			if m.A == current {
				next = m.B
			} else if m.B == current {
				next = m.A
			}
			if next >= 0 && !visited[next] {
				visited[next] = true
				seen++
				queue = append(queue, next)
			}
		}
	}
	return seen == numNodes
}
