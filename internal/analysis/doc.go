// Package analysis characterizes an oscillator run.
//
//   - [Characterize]: natural and damped frequency, damping ratio and regime
//     of a parameter set, in closed form
//   - [PowerSpectrum]: magnitude spectrum of a sampled series
//   - [DominantFrequency]: strongest oscillation in an energy series
//
// # Energy frequency
//
// Kinetic and potential energy oscillate at twice the displacement
// frequency, so the dominant frequency of an energy series should match
// [Characteristics.EnergyFrequency]:
//
//	c := analysis.Characterize(p)
//	f := analysis.DominantFrequency(series.Kinetic, p.Dt)
//	// f ≈ c.EnergyFrequency()
package analysis
