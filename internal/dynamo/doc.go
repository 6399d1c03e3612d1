// Package dynamo provides the primitives shared by every simulation package.
//
//   - [Vec2]: immutable 2D vector arithmetic
//   - sentinel errors ([ErrParameterBounds], [ErrInvalidState], ...) matched with errors.Is
//   - [SimulationError]: wraps an error with the step and time it occurred at
//
// # Degenerate vectors
//
// [Vec2.Unit] of the zero vector is the zero vector. Solver code relies on
// this so that coincident points produce no correction instead of NaN:
//
//	dir := b.Sub(a).Unit() // zero when a == b
//	a = a.Add(dir.Scale(correction))
package dynamo
