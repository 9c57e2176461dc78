package physics

import "math"

// DCMotor is the steady-state model of a brushed/brushless DC motor,
// aggregated over NumMotors identical motors on one gearbox.
type DCMotor struct {
	NominalVoltage float64
	StallTorque    float64 // N·m
	StallCurrent   float64 // A
	FreeCurrent    float64 // A
	FreeSpeed      float64 // rad/s
	NumMotors      int

	R  float64 // winding resistance, ohms
	Kv float64 // rad/s per volt
	Kt float64 // N·m per amp
}

func NewDCMotor(nominalVoltage, stallTorque, stallCurrent, freeCurrent, freeSpeed float64, numMotors int) DCMotor {
	n := float64(numMotors)
	m := DCMotor{
		NominalVoltage: nominalVoltage,
		StallTorque:    stallTorque * n,
		StallCurrent:   stallCurrent * n,
		FreeCurrent:    freeCurrent * n,
		FreeSpeed:      freeSpeed,
		NumMotors:      numMotors,
	}
	m.R = nominalVoltage / m.StallCurrent
	m.Kv = freeSpeed / (nominalVoltage - m.R*m.FreeCurrent)
	m.Kt = m.StallTorque / m.StallCurrent
	return m
}

func rpmToRadPerSec(rpm float64) float64 {
	return rpm * 2 * math.Pi / 60
}

func Falcon500(numMotors int) DCMotor {
	return NewDCMotor(12, 4.69, 257, 1.5, rpmToRadPerSec(6380), numMotors)
}

func KrakenX60(numMotors int) DCMotor {
	return NewDCMotor(12, 7.09, 366, 2, rpmToRadPerSec(6000), numMotors)
}

// MotorByName resolves the motor names accepted in config files.
func MotorByName(name string, numMotors int) (DCMotor, bool) {
	switch name {
	case "falcon500", "":
		return Falcon500(numMotors), true
	case "krakenx60":
		return KrakenX60(numMotors), true
	}
	return DCMotor{}, false
}

// Current drawn at the given rotor speed (rad/s) and applied voltage.
func (m DCMotor) Current(speed, voltage float64) float64 {
	return -1.0/m.Kv/m.R*speed + 1.0/m.R*voltage
}

func (m DCMotor) Torque(current float64) float64 {
	return m.Kt * current
}
