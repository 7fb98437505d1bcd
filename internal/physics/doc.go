// Package physics provides the oscillator force model.
//
// [DampedOscillator] implements [dynamo.System] for a mass-spring-damper,
// m*a = -k*x - c*v, and [dynamo.Hamiltonian] for its mechanical energy:
//
//	KE = 0.5 * m * v^2
//	PE = 0.5 * k * x^2
//
// It also implements [dynamo.Configurable], which parameter sweeps use to
// vary mass, stiffness and damping by name, and [dynamo.Validator] for
// strict runs.
package physics
