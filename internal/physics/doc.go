// Package physics implements a 2D position-based particle world.
//
// A [World] owns [Particle] values and [Constraint] values and advances them
// with a fixed timestep. Each [World.Step] runs, in order:
//
//   - cleanup: age elements, drop expired ones, reset accumulators
//   - forces: gravity and attraction into Acc, SPH into Force
//   - collisions: one contact constraint per overlapping pair
//   - relaxation: SolverIterations Gauss-Seidel passes with a wall clamp,
//     then breakage
//   - integration: damped position Verlet
//
// Velocity is implicit in Pos and PrevPos. Use [Particle.Teleport] and
// [Particle.SetVelocity] to move particles between steps.
//
//	w, _ := physics.NewWorld(10, 10, 1.0/60, 10)
//	anchor, _ := w.AddParticle(physics.ParticleSpec{Pos: dynamo.V(5, 9), Mass: 1, Fixed: true})
//	bob, _ := w.AddParticle(physics.ParticleSpec{Pos: dynamo.V(6, 9), Mass: 1, Radius: 0.1})
//	w.AddDistanceConstraint(anchor, bob)
//	for range 600 {
//	    w.Step()
//	}
package physics
