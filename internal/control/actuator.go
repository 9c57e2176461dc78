package control

import "github.com/san-kum/pivotsim/internal/units"

// Actuator blends arm feedforward with a PID into a single clamped voltage.
//
// The feedforward runs on the measured angle in radians with zero commanded
// velocity. The PID runs in degrees: this is the only place a measured angle
// is converted to degrees for control.
type Actuator struct {
	ff         ArmFeedforward
	pid        *PID
	maxVoltage float64

	lastFeedforward float64
	lastFeedback    float64
}

type ActuatorCheckpoint struct {
	pid    PIDState
	ff, fb float64
}

func NewActuator(ff ArmFeedforward, pid *PID, maxVoltage float64) *Actuator {
	return &Actuator{ff: ff, pid: pid, maxVoltage: maxVoltage}
}

// ComputeEffort returns the voltage to command for the given measured angle
// and setpoint. NaN and Inf are not sanitized: a non-finite sum is returned
// unclamped so the caller can see it.
func (a *Actuator) ComputeEffort(measuredRad, setpointDeg float64) float64 {
	ff := a.ff.Calculate(measuredRad, 0, 0)
	fb := a.pid.Calculate(units.RadiansToDegrees(measuredRad), setpointDeg)
	a.lastFeedforward, a.lastFeedback = ff, fb

	out := ff + fb
	if !units.IsFinite(out) {
		return out
	}
	return units.Clamp(out, -a.maxVoltage, a.maxVoltage)
}

func (a *Actuator) LastFeedforward() float64    { return a.lastFeedforward }
func (a *Actuator) LastFeedback() float64       { return a.lastFeedback }
func (a *Actuator) MaxVoltage() float64         { return a.maxVoltage }
func (a *Actuator) PID() *PID                   { return a.pid }
func (a *Actuator) Feedforward() ArmFeedforward { return a.ff }

func (a *Actuator) Checkpoint() ActuatorCheckpoint {
	return ActuatorCheckpoint{pid: a.pid.Checkpoint(), ff: a.lastFeedforward, fb: a.lastFeedback}
}

func (a *Actuator) Restore(c ActuatorCheckpoint) {
	a.pid.Restore(c.pid)
	a.lastFeedforward, a.lastFeedback = c.ff, c.fb
}
