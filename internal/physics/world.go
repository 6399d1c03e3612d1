package physics

import (
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/integrators"
)

// Collision records an overlapping pair found during the current step.
type Collision struct {
	A, B *Particle
}

// World owns every particle and constraint and advances them one fixed
// timestep at a time. A World is not safe for concurrent use.
type World struct {
	width, height float64
	dt            float64
	params        Params

	particles   []*Particle
	constraints []*Constraint
	collisions  []Collision

	grid   *SpatialHash
	kernel Kernel
	fluid  []*Particle

	time   float64
	steps  int
	broken int
}

// NewWorld creates an empty world spanning [0, width] x [0, height] with
// default parameters and the given solver iteration count.
func NewWorld(width, height, dt float64, iterations int) (*World, error) {
	switch {
	case !(width > 0) || math.IsInf(width, 0):
		return nil, fmt.Errorf("%w: width must be positive, got %v", dynamo.ErrParameterBounds, width)
	case !(height > 0) || math.IsInf(height, 0):
		return nil, fmt.Errorf("%w: height must be positive, got %v", dynamo.ErrParameterBounds, height)
	case !(dt > 0) || math.IsInf(dt, 0):
		return nil, fmt.Errorf("%w: timestep must be positive, got %v", dynamo.ErrParameterBounds, dt)
	case iterations < 1:
		return nil, fmt.Errorf("%w: solver iterations must be >= 1, got %d", dynamo.ErrParameterBounds, iterations)
	}

	params := DefaultParams()
	params.SolverIterations = iterations
	return &World{
		width:  width,
		height: height,
		dt:     dt,
		params: params,
		grid:   NewSpatialHash(params.SmoothingLength),
		kernel: NewKernel(params.SmoothingLength),
	}, nil
}

func (w *World) Width() float64    { return w.width }
func (w *World) Height() float64   { return w.height }
func (w *World) TimeStep() float64 { return w.dt }
func (w *World) Time() float64     { return w.time }
func (w *World) Steps() int        { return w.steps }
func (w *World) Params() Params    { return w.params }

// SetParams replaces the world parameters after validating them.
func (w *World) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.SmoothingLength != w.params.SmoothingLength {
		w.kernel = NewKernel(p.SmoothingLength)
	}
	w.params = p
	return nil
}

func (w *World) ParticleCount() int   { return len(w.particles) }
func (w *World) ConstraintCount() int { return len(w.constraints) }

// Particles returns a snapshot of the particle list in insertion order.
func (w *World) Particles() []*Particle { return slices.Clone(w.particles) }

// Constraints returns a snapshot of the constraint list in insertion order.
func (w *World) Constraints() []*Constraint { return slices.Clone(w.constraints) }

// Collisions returns the overlapping pairs detected in the last step.
func (w *World) Collisions() []Collision { return slices.Clone(w.collisions) }

// BrokenLastStep is the number of constraints removed by breakage during
// the last step.
func (w *World) BrokenLastStep() int { return w.broken }

func (w *World) ParticleAt(i int) (*Particle, error) {
	if i < 0 || i >= len(w.particles) {
		return nil, fmt.Errorf("%w: particle index %d out of range [0, %d)", dynamo.ErrNotFound, i, len(w.particles))
	}
	return w.particles[i], nil
}

func (w *World) ConstraintAt(i int) (*Constraint, error) {
	if i < 0 || i >= len(w.constraints) {
		return nil, fmt.Errorf("%w: constraint index %d out of range [0, %d)", dynamo.ErrNotFound, i, len(w.constraints))
	}
	return w.constraints[i], nil
}

// Valid reports whether every particle has a finite position.
func (w *World) Valid() bool {
	for _, p := range w.particles {
		if !p.valid() {
			return false
		}
	}
	return true
}

// AddParticle creates a particle from spec. A non-zero initial velocity is
// encoded by seeding PrevPos one step behind Pos.
func (w *World) AddParticle(spec ParticleSpec) (*Particle, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	p := &Particle{
		Pos:      spec.Pos,
		PrevPos:  integrators.SeedPrevious(spec.Pos, spec.Vel, w.dt),
		Vel:      spec.Vel,
		Acc:      spec.Acc,
		Force:    spec.Force,
		Mass:     spec.Mass,
		Radius:   spec.Radius,
		Fixed:    spec.Fixed,
		Collides: true,
		world:    w,
	}
	w.particles = append(w.particles, p)
	return p, nil
}

// Contains reports whether p is a live particle of this world. It turns
// false once p expires or is removed.
func (w *World) Contains(p *Particle) bool { return w.owns(p) }

func (w *World) owns(p *Particle) bool {
	return p != nil && p.world == w && !p.removed
}

// AddDistanceConstraint links a and b. The rest distance defaults to their
// current separation.
func (w *World) AddDistanceConstraint(a, b *Particle, opts ...ConstraintOption) (*Constraint, error) {
	if !w.owns(a) || !w.owns(b) {
		return nil, fmt.Errorf("%w: endpoints must belong to this world", dynamo.ErrInvalidConstraint)
	}
	if a == b {
		return nil, fmt.Errorf("%w: endpoints must be distinct", dynamo.ErrInvalidConstraint)
	}
	cfg, err := newConstraintConfig(opts)
	if err != nil {
		return nil, err
	}
	if !cfg.hasRest {
		cfg.rest = a.Pos.DistanceFrom(b.Pos)
	}
	c := &Constraint{
		Kind:            KindDistance,
		A:               a,
		B:               b,
		Distance:        cfg.rest,
		Stiffness:       cfg.stiffness,
		Breakable:       cfg.breakable,
		BreakingStrain:  cfg.breakingStrain,
		CurrentDistance: a.Pos.DistanceFrom(b.Pos),
		world:           w,
	}
	w.constraints = append(w.constraints, c)
	return c, nil
}

// AddPointConstraint pins p to an anchor, by default its current position.
func (w *World) AddPointConstraint(p *Particle, opts ...ConstraintOption) (*Constraint, error) {
	if !w.owns(p) {
		return nil, fmt.Errorf("%w: particle must belong to this world", dynamo.ErrInvalidConstraint)
	}
	cfg, err := newConstraintConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.hasRest && cfg.rest != 0 {
		return nil, fmt.Errorf("%w: point constraints have zero rest distance", dynamo.ErrInvalidConstraint)
	}
	if !cfg.hasAnchor {
		cfg.anchor = p.Pos
	}
	c := &Constraint{
		Kind:            KindPoint,
		A:               p,
		Anchor:          cfg.anchor,
		Stiffness:       cfg.stiffness,
		Breakable:       cfg.breakable,
		BreakingStrain:  cfg.breakingStrain,
		CurrentDistance: p.Pos.DistanceFrom(cfg.anchor),
		world:           w,
	}
	w.constraints = append(w.constraints, c)
	return c, nil
}

// RemoveParticle removes p and every constraint that references it.
func (w *World) RemoveParticle(p *Particle) error {
	if !w.owns(p) {
		return fmt.Errorf("%w: particle not in world", dynamo.ErrNotFound)
	}
	p.removed = true
	w.compact()
	return nil
}

func (w *World) RemoveParticleAt(i int) error {
	p, err := w.ParticleAt(i)
	if err != nil {
		return err
	}
	return w.RemoveParticle(p)
}

func (w *World) RemoveConstraint(c *Constraint) error {
	if c == nil || c.world != w || c.removed {
		return fmt.Errorf("%w: constraint not in world", dynamo.ErrNotFound)
	}
	c.removed = true
	w.compact()
	return nil
}

func (w *World) RemoveConstraintAt(i int) error {
	c, err := w.ConstraintAt(i)
	if err != nil {
		return err
	}
	return w.RemoveConstraint(c)
}

// compact drops marked particles, then marked constraints and any constraint
// left pointing at a removed particle. Order is preserved.
func (w *World) compact() {
	w.particles = slices.DeleteFunc(w.particles, func(p *Particle) bool {
		if p.removed {
			p.world = nil
			return true
		}
		return false
	})
	w.constraints = slices.DeleteFunc(w.constraints, func(c *Constraint) bool {
		if c.removed || c.detached() {
			c.removed = true
			c.world = nil
			return true
		}
		return false
	})
}

// Step advances the world by one timestep.
func (w *World) Step() {
	w.cleanup()
	w.accumulateForces()
	w.detectCollisions()
	w.resolveConstraints()
	w.integrate()
	w.time += w.dt
	w.steps++
}

func (w *World) cleanup() {
	w.grid.Clear()
	clear(w.collisions)
	w.collisions = w.collisions[:0]

	for _, c := range w.constraints {
		c.tick()
		if c.Expired() {
			c.removed = true
		}
	}
	for _, p := range w.particles {
		p.tick()
		if p.Expired() {
			p.removed = true
		}
	}
	w.compact()

	for _, p := range w.particles {
		p.resetAccumulators()
	}
}

func (w *World) accumulateForces() {
	g := w.params.Gravity
	for _, p := range w.particles {
		p.Acc = p.Acc.Add(g)
	}
	if w.params.Attraction {
		w.applyAttraction()
	}
	w.applyFluid()
}

// applyAttraction adds the inverse-square pull of every other particle,
// scaled by both attractive strengths and divided by the receiver's mass.
func (w *World) applyAttraction() {
	coeff := w.params.AttractionCoefficient
	for _, p := range w.particles {
		if p.AttractiveStrength == 0 {
			continue
		}
		var sum dynamo.Vec2
		for _, q := range w.particles {
			if q == p || q.AttractiveStrength == 0 {
				continue
			}
			d2 := p.Pos.DistanceFromSquared(q.Pos)
			if d2 == 0 {
				continue
			}
			mag := coeff * p.AttractiveStrength * q.AttractiveStrength / d2
			sum = sum.Add(q.Pos.Sub(p.Pos).Unit().Scale(mag))
		}
		p.Acc = p.Acc.Add(sum.Scale(1 / p.Mass))
	}
}

func (w *World) applyFluid() {
	clear(w.fluid)
	w.fluid = w.fluid[:0]
	for _, p := range w.particles {
		if p.Fluid {
			w.fluid = append(w.fluid, p)
		}
	}
	if len(w.fluid) == 0 {
		return
	}

	h := w.params.SmoothingLength
	if w.params.SpatialPartitioning {
		findNeighborsHashed(w.fluid, h, w.grid)
	} else {
		findNeighborsNaive(w.fluid, h)
	}
	computeDensityPressure(w.fluid, w.kernel, w.params.RestDensity, w.params.PressureStiffness)
	applyFluidForces(w.fluid, w.kernel, w.params.Viscosity, w.dt)
}

// detectCollisions appends a single-step contact constraint for every
// overlapping pair of colliding particles.
func (w *World) detectCollisions() {
	if !w.params.ParticleCollisions {
		return
	}
	for i, a := range w.particles {
		if !a.Collides {
			continue
		}
		for _, b := range w.particles[i+1:] {
			if !b.Collides {
				continue
			}
			rest := a.Radius + b.Radius
			d2 := a.Pos.DistanceFromSquared(b.Pos)
			if d2 >= rest*rest {
				continue
			}
			c := &Constraint{
				Kind:            KindContact,
				A:               a,
				B:               b,
				Distance:        rest,
				Stiffness:       1,
				CurrentDistance: math.Sqrt(d2),
				world:           w,
			}
			c.SetLifetime(c.Age())
			w.constraints = append(w.constraints, c)
			w.collisions = append(w.collisions, Collision{A: a, B: b})
		}
	}
}

func (w *World) resolveConstraints() {
	n := w.params.SolverIterations
	for range n {
		for _, c := range w.constraints {
			c.enforce(n)
		}
		if w.params.BoundaryCollisions {
			w.clampToBounds()
		}
	}

	w.broken = 0
	for _, c := range w.constraints {
		if c.hasBroken() {
			c.removed = true
			w.broken++
		}
	}
	if w.broken > 0 {
		w.compact()
	}
}

// clampToBounds projects particles back inside the world rectangle. PrevPos
// is left alone so wall hits lose velocity on the next integration.
func (w *World) clampToBounds() {
	for _, p := range w.particles {
		if p.Fixed {
			continue
		}
		r := p.Radius
		if p.Pos.X < r {
			p.Pos.X = r
		} else if p.Pos.X > w.width-r {
			p.Pos.X = w.width - r
		}
		if p.Pos.Y < r {
			p.Pos.Y = r
		} else if p.Pos.Y > w.height-r {
			p.Pos.Y = w.height - r
		}
	}
}

func (w *World) integrate() {
	for _, p := range w.particles {
		p.integrate(w.dt, w.params.Damping)
	}
}
