package evolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	g := &Generation{Creatures: []*Creature{
		{Fitness: 3, Evaluated: true},
		{Fitness: 1, Evaluated: true},
		{Fitness: 4, Evaluated: true},
		{Fitness: 2, Evaluated: true},
	}}

	s := computeStats(2, g)
	assert.Equal(t, 2, s.Generation)
	assert.True(t, s.Evaluated)
	assert.Equal(t, 4.0, s.Best)
	assert.Equal(t, 1.0, s.Worst)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, 1.2909944, s.Stdev, 1e-6)
	assert.Equal(t, 2.0, s.Median)

	// Stats must not reorder the generation.
	assert.Equal(t, []float64{3, 1, 4, 2}, g.Fitnesses())
}

func TestComputeStatsSmallGenerations(t *testing.T) {
	s := computeStats(0, &Generation{Creatures: []*Creature{{Fitness: 5}}})
	assert.False(t, s.Evaluated)
	assert.Equal(t, 5.0, s.Median)
	assert.Zero(t, s.Stdev)

	assert.Equal(t, GenerationStats{Generation: 1, Evaluated: true}, computeStats(1, &Generation{}))
}

func TestDiversity(t *testing.T) {
	cfg := DefaultConfig()
	rng := NewRand(1)
	c := NewCreature(&cfg.Genome, rng)

	same := &Generation{Creatures: []*Creature{c, c.Copy(), c.Copy()}}
	assert.Zero(t, same.Diversity(&cfg.Genome))

	mixed := &Generation{Creatures: []*Creature{c, NewCreature(&cfg.Genome, rng)}}
	assert.Positive(t, mixed.Diversity(&cfg.Genome))
}
