// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types shared by the
// plant models, integrators and the tick loop:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: fixed-step numerical integrator
//   - [Metric] and [Observer]: hooks called once per tick
//
// # Example
//
//	arm := physics.NewSingleJointedArm(physics.Falcon500(1), 36, physics.EstimateMOI(0.5, 3), 0.2, true)
//	x := dynamo.State{0, 0}
//	x = integrators.NewRK4().Step(arm, x, dynamo.Control{12}, 0, 0.02)
//
// # Determinism
//
// Integrators never read clocks or random sources. Identical inputs produce
// identical trajectories.
package dynamo
