// Package control provides the control laws used by the pivot and elevator.
//
//   - [PID]: discrete PID with integrator range and I-zone
//   - [ArmFeedforward] and [ElevatorFeedforward]: physics-based voltage estimates
//   - [Actuator]: arm feedforward plus PID, clamped to the supply voltage
//   - [Trapezoid]: online trapezoidal motion profile
//
// # Units
//
// [Actuator] owns the one radians-to-degrees conversion on the control path:
// the measured angle arrives in radians, the feedforward uses it as is, and
// the PID sees degrees because its gains are tuned per degree.
//
//	pid := control.NewPID(0.3, 0, 0.001, 0.02)
//	act := control.NewActuator(control.ArmFeedforward{KS: 4, KG: 1.315, KV: 0.4, KA: 0.1}, pid, 12)
//	volts := act.ComputeEffort(angleRad, 90)
package control
