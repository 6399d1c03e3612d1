// Package analysis characterises sampled runs and whole worlds.
//
//   - [PowerSpectrum] and [DominantFrequency]: FFT of a sampled coordinate
//   - [Crossings] and [Period]: upward threshold crossings of a series
//   - [PortraitToASCII]: a tracked particle's path as text
//   - [Divergence]: growth rate of a small perturbation between two worlds
//   - [Sweep]: distinct positions of a particle across a parameter range
//
// # Chaos Detection
//
// A positive divergence rate indicates sensitive dependence on initial
// conditions:
//
//	sc, _ := scene.NewRegistry().Get("double-pendulum")
//	rate, err := analysis.Divergence(func() (*physics.World, error) { return sc.New(0) }, 1e-6, 2000)
//	if err == nil && rate > 0 {
//	    // chaotic
//	}
package analysis
