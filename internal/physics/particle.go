package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/integrators"
)

// Particle is a point mass owned by a World.
//
// Pos and PrevPos together encode velocity. Code that moves a particle
// outside of a step should use Teleport or SetVelocity so the pair stays
// consistent; writing Pos alone injects velocity equal to the jump.
type Particle struct {
	Element

	Pos     dynamo.Vec2
	PrevPos dynamo.Vec2
	// Vel is recomputed after each integration. Informational only.
	Vel dynamo.Vec2
	// Acc accumulates mass-independent field effects (gravity, attraction).
	Acc dynamo.Vec2
	// Force accumulates forces that are divided by Mass at integration (SPH).
	Force dynamo.Vec2

	Mass   float64
	Radius float64
	Fixed  bool

	// Collides opts in to contacts. A pair collides only when both have it set.
	Collides           bool
	AttractiveStrength float64
	// Restitution is stored for callers but not used by any response.
	Restitution float64

	Fluid     bool
	Neighbors []*Particle
	Density   float64
	Pressure  float64

	world   *World
	removed bool
}

// ParticleSpec describes a particle to create.
type ParticleSpec struct {
	Pos    dynamo.Vec2
	Vel    dynamo.Vec2
	Acc    dynamo.Vec2
	Force  dynamo.Vec2
	Mass   float64
	Radius float64
	Fixed  bool
}

// Teleport moves the particle to pos without changing its velocity.
func (p *Particle) Teleport(pos dynamo.Vec2) {
	delta := pos.Sub(p.Pos)
	p.Pos = pos
	p.PrevPos = p.PrevPos.Add(delta)
}

// SetVelocity rewrites PrevPos so the next integration carries vel.
func (p *Particle) SetVelocity(vel dynamo.Vec2, dt float64) {
	p.PrevPos = integrators.SeedPrevious(p.Pos, vel, dt)
	p.Vel = vel
}

// ImpliedVelocity is the velocity encoded by Pos and PrevPos.
func (p *Particle) ImpliedVelocity(dt float64) dynamo.Vec2 {
	return integrators.ImpliedVelocity(p.Pos, p.PrevPos, dt)
}

// resetAccumulators clears per-step transient state.
func (p *Particle) resetAccumulators() {
	p.Force.SetToZero()
	p.Acc.SetToZero()
	p.Neighbors = p.Neighbors[:0]
	p.Density = 0
	p.Pressure = 0
}

func (p *Particle) integrate(dt, damping float64) {
	if p.Fixed {
		return
	}
	p.Acc = p.Acc.Add(p.Force.Scale(1 / p.Mass))
	next := integrators.PositionVerlet(p.Pos, p.PrevPos, p.Acc, dt, damping)
	p.PrevPos = p.Pos
	p.Pos = next
	p.Vel = integrators.ImpliedVelocity(p.Pos, p.PrevPos, dt)
}

func (p *Particle) valid() bool {
	return p.Pos.IsValid() && p.PrevPos.IsValid()
}

func (s ParticleSpec) validate() error {
	switch {
	case !(s.Mass > 0):
		return fmt.Errorf("%w: mass must be positive, got %v", dynamo.ErrInvalidParticle, s.Mass)
	case !(s.Radius >= 0) || math.IsInf(s.Radius, 0):
		return fmt.Errorf("%w: radius must be non-negative, got %v", dynamo.ErrInvalidParticle, s.Radius)
	case math.IsInf(s.Mass, 0):
		return fmt.Errorf("%w: mass must be finite", dynamo.ErrInvalidParticle)
	case !s.Pos.IsValid() || !s.Vel.IsValid() || !s.Acc.IsValid() || !s.Force.IsValid():
		return fmt.Errorf("%w: kinematic state must be finite", dynamo.ErrInvalidParticle)
	}
	return nil
}
