package control

import (
	"math"

	"github.com/san-kum/pivotsim/internal/units"
)

type Constraints struct {
	MaxVelocity     float64
	MaxAcceleration float64
	// MaxJerk limits how fast the reported acceleration may change. It
	// smooths the acceleration feedforward only; position and velocity still
	// follow the trapezoid. Zero means unlimited.
	MaxJerk float64
}

type ProfileState struct {
	Position     float64
	Velocity     float64
	Acceleration float64
}

// Trapezoid is an online motion profile generator. Each call to Next moves
// the reference toward the goal, cruising at MaxVelocity and braking so that
// it arrives with zero velocity.
type Trapezoid struct {
	c    Constraints
	ref  ProfileState
	goal float64
}

func NewTrapezoid(c Constraints) *Trapezoid {
	return &Trapezoid{c: c}
}

// Reset restarts the profile from the given state, typically the measured
// mechanism state when a new goal arrives.
func (t *Trapezoid) Reset(from ProfileState) {
	t.ref = from
}

func (t *Trapezoid) SetGoal(goal float64) { t.goal = goal }
func (t *Trapezoid) Goal() float64        { return t.goal }
func (t *Trapezoid) State() ProfileState  { return t.ref }

func (t *Trapezoid) Done() bool {
	return t.ref.Position == t.goal && t.ref.Velocity == 0
}

func (t *Trapezoid) Next(dt float64) ProfileState {
	if t.Done() {
		t.ref.Acceleration = 0
		return t.ref
	}

	maxV, maxA := t.c.MaxVelocity, t.c.MaxAcceleration
	dist := t.goal - t.ref.Position
	dir := units.Signum(dist)

	vDes := dir * math.Min(maxV, math.Sqrt(2*maxA*math.Abs(dist)))
	aDes := units.Clamp((vDes-t.ref.Velocity)/dt, -maxA, maxA)

	t.ref.Velocity = units.Clamp(t.ref.Velocity+aDes*dt, -maxV, maxV)
	t.ref.Position += t.ref.Velocity * dt
	if t.c.MaxJerk > 0 {
		step := t.c.MaxJerk * dt
		aDes = t.ref.Acceleration + units.Clamp(aDes-t.ref.Acceleration, -step, step)
	}
	t.ref.Acceleration = aDes

	crossed := units.Signum(t.goal-t.ref.Position) != dir
	if crossed && math.Abs(t.ref.Velocity) <= 2*maxA*dt {
		t.ref = ProfileState{Position: t.goal}
	}
	return t.ref
}
