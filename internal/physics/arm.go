package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/pivotsim/internal/dynamo"
)

const StandardGravity = 9.8

// SingleJointedArm is a rod of uniform mass pinned at one end and driven
// through a gearbox. State is {angle rad, angular velocity rad/s}; angle 0 is
// horizontal and gravity pulls toward -π/2.
type SingleJointedArm struct {
	Motor           DCMotor
	Gearing         float64
	MOI             float64 // kg·m²
	ArmLength       float64 // m, used for the gravity torque only
	SimulateGravity bool
	Gravity         float64
}

func NewSingleJointedArm(motor DCMotor, gearing, moi, armLength float64, simulateGravity bool) *SingleJointedArm {
	return &SingleJointedArm{
		Motor:           motor,
		Gearing:         gearing,
		MOI:             moi,
		ArmLength:       armLength,
		SimulateGravity: simulateGravity,
		Gravity:         StandardGravity,
	}
}

// EstimateMOI returns the moment of inertia of a uniform rod about one end.
func EstimateMOI(length, mass float64) float64 {
	return mass * length * length / 3.0
}

func (a *SingleJointedArm) StateDim() int   { return 2 }
func (a *SingleJointedArm) ControlDim() int { return 1 }

func (a *SingleJointedArm) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	theta, omega := x[0], x[1]

	voltage := 0.0
	if len(u) > 0 {
		voltage = u[0]
	}

	m := a.Motor
	g := a.Gearing
	alpha := -g*g*m.Kt/(m.Kv*m.R*a.MOI)*omega + g*m.Kt/(m.R*a.MOI)*voltage
	if a.SimulateGravity {
		alpha += 1.5 * -a.Gravity * math.Cos(theta) / a.ArmLength
	}

	return dynamo.State{omega, alpha}
}

// GravityVoltage is the input that holds the arm still at angle theta.
func (a *SingleJointedArm) GravityVoltage(theta float64) float64 {
	if !a.SimulateGravity {
		return 0
	}
	m := a.Motor
	return 1.5 * a.Gravity * math.Cos(theta) / a.ArmLength * m.R * a.MOI / (a.Gearing * m.Kt)
}

var _ dynamo.Configurable = (*SingleJointedArm)(nil)

func (a *SingleJointedArm) GetParams() map[string]float64 {
	return map[string]float64{
		"gearing":    a.Gearing,
		"moi":        a.MOI,
		"arm_length": a.ArmLength,
		"gravity":    a.Gravity,
	}
}

func (a *SingleJointedArm) SetParam(name string, value float64) error {
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s: %w", name, dynamo.ErrParameterBounds)
	}
	switch name {
	case "gearing":
		a.Gearing = value
	case "moi":
		a.MOI = value
	case "arm_length":
		a.ArmLength = value
	case "gravity":
		a.Gravity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
