package control

import (
	"fmt"
	"math"

	"github.com/san-kum/pivotsim/internal/dynamo"
	"github.com/san-kum/pivotsim/internal/units"
)

// PID is a discrete PID controller. Its integral and previous-error state
// persist across calls and only Reset clears them, so calling Calculate twice
// with the same inputs does not return the same output.
type PID struct {
	Kp     float64
	Ki     float64
	Kd     float64
	Period float64

	// IZone disables and clears the integral while |error| exceeds it.
	IZone float64
	// MinIntegral and MaxIntegral bound Ki*integral, in output units.
	MinIntegral float64
	MaxIntegral float64

	setpoint      float64
	measurement   float64
	positionError float64
	prevError     float64
	velocityError float64
	totalError    float64
}

var _ dynamo.Configurable = (*PID)(nil)

// PIDState is the accumulated state of a PID, used to checkpoint and restore
// a controller around a tick that may be rolled back.
type PIDState struct {
	setpoint      float64
	measurement   float64
	positionError float64
	prevError     float64
	velocityError float64
	totalError    float64
}

func NewPID(kp, ki, kd, period float64) *PID {
	return &PID{
		Kp:          kp,
		Ki:          ki,
		Kd:          kd,
		Period:      period,
		IZone:       math.Inf(1),
		MinIntegral: -1.0,
		MaxIntegral: 1.0,
	}
}

// Calculate returns the correction for the given measurement and setpoint.
// The derivative is the change in error divided by Period.
func (p *PID) Calculate(measurement, setpoint float64) float64 {
	p.setpoint = setpoint
	p.measurement = measurement
	p.prevError = p.positionError
	p.positionError = setpoint - measurement
	p.velocityError = (p.positionError - p.prevError) / p.Period

	if math.Abs(p.positionError) > p.IZone {
		p.totalError = 0
	} else if p.Ki != 0 {
		p.totalError = units.Clamp(
			p.totalError+p.positionError*p.Period,
			p.MinIntegral/p.Ki,
			p.MaxIntegral/p.Ki,
		)
	}

	return p.Kp*p.positionError + p.Ki*p.totalError + p.Kd*p.velocityError
}

func (p *PID) Setpoint() float64      { return p.setpoint }
func (p *PID) PositionError() float64 { return p.positionError }
func (p *PID) VelocityError() float64 { return p.velocityError }

// TotalError is the accumulated error integral (error·seconds).
func (p *PID) TotalError() float64 { return p.totalError }

// IntegralTerm is the integral contribution to the last output.
func (p *PID) IntegralTerm() float64 { return p.Ki * p.totalError }

func (p *PID) AtSetpoint(positionTolerance, velocityTolerance float64) bool {
	return math.Abs(p.positionError) < positionTolerance &&
		math.Abs(p.velocityError) < velocityTolerance
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.positionError = 0
	p.prevError = 0
	p.velocityError = 0
	p.totalError = 0
}

func (p *PID) Checkpoint() PIDState {
	return PIDState{
		setpoint:      p.setpoint,
		measurement:   p.measurement,
		positionError: p.positionError,
		prevError:     p.prevError,
		velocityError: p.velocityError,
		totalError:    p.totalError,
	}
}

func (p *PID) Restore(s PIDState) {
	p.setpoint = s.setpoint
	p.measurement = s.measurement
	p.positionError = s.positionError
	p.prevError = s.prevError
	p.velocityError = s.velocityError
	p.totalError = s.totalError
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp": p.Kp,
		"Ki": p.Ki,
		"Kd": p.Kd,
	}
}

// SetParam adjusts a PID gain
func (p *PID) SetParam(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return dynamo.ErrParameterBounds
	}
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	default:
		return fmt.Errorf("unknown PID parameter: %s", name)
	}
	return nil
}
