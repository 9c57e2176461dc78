package control

import (
	"math"

	"github.com/san-kum/pivotsim/internal/units"
)

// ArmFeedforward estimates the voltage for a rotating arm from its angle
// (radians, 0 = horizontal), velocity and acceleration.
type ArmFeedforward struct {
	KS float64 // static friction, volts
	KG float64 // gravity at horizontal, volts
	KV float64 // volts per rad/s
	KA float64 // volts per rad/s²
}

func (f ArmFeedforward) Calculate(angle, velocity, acceleration float64) float64 {
	return f.KS*units.Signum(velocity) +
		f.KG*math.Cos(angle) +
		f.KV*velocity +
		f.KA*acceleration
}

// MaxAchievableVelocity is the fastest the arm can move at the given angle
// and acceleration without exceeding maxVoltage.
func (f ArmFeedforward) MaxAchievableVelocity(maxVoltage, angle, acceleration float64) float64 {
	return (maxVoltage - f.KS - math.Cos(angle)*f.KG - acceleration*f.KA) / f.KV
}

// ElevatorFeedforward is the linear counterpart: gravity is constant.
type ElevatorFeedforward struct {
	KS float64
	KG float64
	KV float64
	KA float64
}

func (f ElevatorFeedforward) Calculate(velocity, acceleration float64) float64 {
	return f.KS*units.Signum(velocity) + f.KG + f.KV*velocity + f.KA*acceleration
}
