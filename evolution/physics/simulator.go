// Package physics is a reference fitness trial: a 2-D mass-spring simulation in which a
// creature's muscles pull its nodes around above a flat floor at y = 0.
package physics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/TomboFry/creature-evolution/evolution"
)

// ErrUnstable is returned when the simulation produces a non-finite node state.
var ErrUnstable = errors.New("simulation diverged")

// Simulator evaluates creatures by how far their centre of mass walks along the x axis.
// It holds no per-trial state and is safe for concurrent use.
type Simulator struct {
	Config evolution.PhysicsConfig
}

// NewSimulator creates a simulator for the given physics parameters.
func NewSimulator(config evolution.PhysicsConfig) *Simulator {
	return &Simulator{Config: config}
}

// Evaluate resets c, runs Config.Frames frames and returns the horizontal distance the
// centre of mass travelled. c's transient state is left at the final frame.
func (s *Simulator) Evaluate(c *evolution.Creature) (float64, error) {
	c.ResetPosition()
	startX, _ := c.StartCenter()
	for frame := 0; frame < s.Config.Frames; frame++ {
		if err := s.Step(c, frame); err != nil {
			return 0, err
		}
	}
	endX, _ := c.Center()
	return endX - startX, nil
}

// Step advances c by one frame using semi-implicit Euler integration. Nodes have unit mass.
func (s *Simulator) Step(c *evolution.Creature, frame int) error {
	dt := s.Config.TimeStep
	phase := Phase(float64(frame)*dt, c.Heartbeat)

	forces := make([]r2.Vec, len(c.Nodes))
	for _, m := range c.Muscles {
		a, b := &c.Nodes[m.A], &c.Nodes[m.B]
		d := r2.Sub(r2.Vec{X: b.X, Y: b.Y}, r2.Vec{X: a.X, Y: a.Y})
		length := r2.Norm(d)
		if length == 0 {
			continue
		}
		// Hooke's law along the muscle; positive pulls the nodes together.
		f := r2.Scale(m.Strength*(length-m.TargetLength(phase))/length, d)
		forces[m.A] = r2.Add(forces[m.A], f)
		forces[m.B] = r2.Sub(forces[m.B], f)
	}

	for i := range c.Nodes {
		n := &c.Nodes[i]
		n.VelX = (n.VelX + forces[i].X*dt) * s.Config.AirDamping
		n.VelY = (n.VelY + (forces[i].Y-s.Config.Gravity)*dt) * s.Config.AirDamping
		n.X += n.VelX * dt
		n.Y += n.VelY * dt

		if n.Y <= 0 {
			n.Y = 0
			if n.VelY < 0 {
				n.VelY = 0
			}
			n.VelX *= 1 - n.Friction
		}

		if !finite(n.X) || !finite(n.Y) || !finite(n.VelX) || !finite(n.VelY) {
			return fmt.Errorf("%w: node %d at frame %d", ErrUnstable, i, frame)
		}
	}
	return nil
}

// Phase returns the position in [0, 1) of time t within a heartbeat of the given period.
func Phase(t, heartbeat float64) float64 {
	if heartbeat <= 0 {
		return 0
	}
	_, frac := math.Modf(t / heartbeat)
	return frac
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
