// Package driver provides a simulated motor controller.
//
// Sim accepts the same commands as a real device: a raw voltage, or a
// profiled position that the device executes on its own with a trapezoid
// and slot-0 gains. Positions handed to it are mechanism radians; the
// device works in rotor rotations using the configured gearing.
package driver
