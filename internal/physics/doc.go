// Package physics provides the plant models used when no real actuator is
// attached.
//
// Each plant implements [dynamo.System]:
//
//   - [SingleJointedArm]: geared DC motor driving a uniform rod against gravity
//   - [Elevator]: geared DC motor lifting a carriage on a cable drum
//
// [Sim] wraps a plant with an integrator, a held input voltage and hard
// position limits, and is advanced exactly once per control tick:
//
//	arm := physics.NewSingleJointedArm(physics.Falcon500(1), 36, physics.EstimateMOI(0.5, 3), 0.2, true)
//	sim := physics.NewSim(arm, integrators.NewRK4(), physics.SimConfig{MinPosition: -10000, MaxPosition: 100000, MaxVoltage: 12})
//	sim.SetInput(6)
//	_ = sim.Advance(0.02)
//
// # Motor model
//
// [DCMotor] derives resistance, Kv and Kt from the datasheet free/stall
// figures. [Falcon500] and [KrakenX60] are provided.
package physics
