package physics

import "github.com/san-kum/pivotsim/internal/dynamo"

// Elevator is a carriage lifted by a cable drum. State is {height m, velocity m/s}.
type Elevator struct {
	Motor           DCMotor
	Gearing         float64
	CarriageMass    float64 // kg
	DrumRadius      float64 // m
	SimulateGravity bool
	Gravity         float64
}

func NewElevator(motor DCMotor, gearing, carriageMass, drumRadius float64, simulateGravity bool) *Elevator {
	return &Elevator{
		Motor:           motor,
		Gearing:         gearing,
		CarriageMass:    carriageMass,
		DrumRadius:      drumRadius,
		SimulateGravity: simulateGravity,
		Gravity:         StandardGravity,
	}
}

func (e *Elevator) StateDim() int   { return 2 }
func (e *Elevator) ControlDim() int { return 1 }

func (e *Elevator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	v := x[1]

	voltage := 0.0
	if len(u) > 0 {
		voltage = u[0]
	}

	m := e.Motor
	g, r, mass := e.Gearing, e.DrumRadius, e.CarriageMass
	a := -g*g*m.Kt/(m.R*r*r*mass*m.Kv)*v + g*m.Kt/(m.R*r*mass)*voltage
	if e.SimulateGravity {
		a -= e.Gravity
	}

	return dynamo.State{v, a}
}
