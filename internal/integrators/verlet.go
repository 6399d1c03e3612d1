package integrators

import "github.com/san-kum/rubble/internal/dynamo"

// PositionVerlet advances a point one step of Stormer-Verlet with uniform
// damping d:
//
//	next = pos*(2-d) - prev*(1-d) + acc*dt²
//
// Velocity is implicit in (pos - prev); d = 0 is undamped, d = 1 discards
// the carried velocity entirely.
func PositionVerlet(pos, prev, acc dynamo.Vec2, dt, damping float64) dynamo.Vec2 {
	// same as pos*(2-d) - prev*(1-d), but exact for a particle at rest
	return pos.Add(pos.Sub(prev).Scale(1 - damping)).Add(acc.Scale(dt * dt))
}

// ImpliedVelocity is the velocity carried between two consecutive positions.
func ImpliedVelocity(pos, prev dynamo.Vec2, dt float64) dynamo.Vec2 {
	if dt == 0 {
		return dynamo.Vec2{}
	}
	return pos.Sub(prev).Scale(1 / dt)
}

// SeedPrevious returns the previous position that makes ImpliedVelocity(pos, prev, dt) == vel.
func SeedPrevious(pos, vel dynamo.Vec2, dt float64) dynamo.Vec2 {
	return pos.Sub(vel.Scale(dt))
}
