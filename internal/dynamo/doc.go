// Package dynamo provides the simulation primitives for the damped
// oscillator energy engine.
//
// The package defines the state, parameter and output types together with
// the interfaces the engine is assembled from:
//
//   - [State]: position, velocity and time of the oscillator
//   - [Params]: physical coefficients, initial conditions and step control
//   - [System]: force model (acceleration and energy terms)
//   - [Integrator]: fixed-step numerical stepper
//   - [Simulator]: drives a run and records one [Sample] per step
//   - [Series]: the four index-aligned output sequences
//
// # Example
//
//	osc := physics.NewDampedOscillator(1, 1, 0.5)
//	s := dynamo.New(osc, integrators.NewSymplecticEuler())
//	result, err := s.Run(ctx, dynamo.State{Position: 1}, dynamo.Config{Steps: 1000, Dt: 0.01})
//
// # Degenerate parameters
//
// A zero mass produces Inf/NaN samples. The default [Config] lets them
// propagate; [Config.Strict] and [Config.RejectNonFinite] turn them into
// errors.
//
// # Thread Safety
//
// A Simulator is NOT safe for concurrent runs because its metrics are
// stateful. Use [Ensemble] to run independent jobs in parallel.
package dynamo
