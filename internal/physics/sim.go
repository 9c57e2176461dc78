package physics

import (
	"math"

	"github.com/san-kum/pivotsim/internal/dynamo"
	"github.com/san-kum/pivotsim/internal/units"
)

// Sim steps a two-state plant (position, velocity) with a held input voltage
// and hard position limits. It never reads a clock: identical inputs always
// give identical trajectories.
type Sim struct {
	plant      dynamo.System
	integrator dynamo.Integrator
	x          dynamo.State
	u          float64
	t          float64
	min, max   float64
	maxVoltage float64
}

type SimConfig struct {
	MinPosition      float64
	MaxPosition      float64
	StartingPosition float64
	MaxVoltage       float64
}

func NewSim(plant dynamo.System, integrator dynamo.Integrator, cfg SimConfig) *Sim {
	return &Sim{
		plant:      plant,
		integrator: integrator,
		x:          dynamo.State{cfg.StartingPosition, 0},
		min:        cfg.MinPosition,
		max:        cfg.MaxPosition,
		maxVoltage: cfg.MaxVoltage,
	}
}

// SetInput records the voltage applied on the next Advance, clamped to the
// supply range. NaN passes through so that Advance can reject it.
func (s *Sim) SetInput(voltage float64) {
	s.u = units.Clamp(voltage, -s.maxVoltage, s.maxVoltage)
}

// Advance integrates one step of dt seconds using the last input.
func (s *Sim) Advance(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return dynamo.ErrStepTooSmall
	}
	next := s.integrator.Step(s.plant, s.x, dynamo.Control{s.u}, s.t, dt)
	if !next.IsValid() {
		return &dynamo.SimulationError{Time: s.t, State: next, Wrapped: dynamo.ErrInvalidState}
	}

	switch {
	case next[0] < s.min:
		next = dynamo.State{s.min, 0}
	case next[0] > s.max:
		next = dynamo.State{s.max, 0}
	}

	s.x = next
	s.t += dt
	return nil
}

func (s *Sim) Position() float64 { return s.x[0] }
func (s *Sim) Velocity() float64 { return s.x[1] }
func (s *Sim) Input() float64    { return s.u }
func (s *Sim) Time() float64     { return s.t }

func (s *Sim) State() dynamo.State { return s.x.Clone() }

// SimCheckpoint captures everything Advance and SetInput mutate.
type SimCheckpoint struct {
	x    dynamo.State
	u, t float64
}

func (s *Sim) Checkpoint() SimCheckpoint {
	return SimCheckpoint{x: s.x.Clone(), u: s.u, t: s.t}
}

func (s *Sim) Restore(c SimCheckpoint) {
	s.x = c.x.Clone()
	s.u = c.u
	s.t = c.t
}

func (s *Sim) HasHitLowerLimit() bool { return s.x[0] <= s.min }
func (s *Sim) HasHitUpperLimit() bool { return s.x[0] >= s.max }
