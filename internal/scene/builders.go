package scene

import (
	"fmt"
	"math"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
)

// Grid lays out a rectangular lattice of (DivisionsW+1) x (DivisionsH+1)
// particles centred on Center and rotated by Angle radians.
type Grid struct {
	Center     dynamo.Vec2
	Angle      float64
	Width      float64
	Height     float64
	DivisionsW int
	DivisionsH int
	// FillPercent sizes particle radii as a percentage of half the smaller
	// lattice spacing.
	FillPercent float64
	// Density is mass per unit area, spread evenly over the particles.
	Density float64
}

// Links configures the constraints a builder creates between particles.
type Links struct {
	Stiffness float64
	// BreakingStrain makes every link breakable when positive.
	BreakingStrain float64
}

func (l Links) options() []physics.ConstraintOption {
	opts := []physics.ConstraintOption{physics.WithStiffness(l.Stiffness)}
	if l.BreakingStrain > 0 {
		opts = append(opts, physics.WithBreakingStrain(l.BreakingStrain))
	}
	return opts
}

func (g Grid) validate() error {
	switch {
	case g.DivisionsW < 1 || g.DivisionsH < 1:
		return fmt.Errorf("%w: grid divisions must be >= 1, got %dx%d", dynamo.ErrParameterBounds, g.DivisionsW, g.DivisionsH)
	case !(g.Width > 0) || !(g.Height > 0):
		return fmt.Errorf("%w: grid size must be positive, got %vx%v", dynamo.ErrParameterBounds, g.Width, g.Height)
	case !(g.Density > 0):
		return fmt.Errorf("%w: density must be positive, got %v", dynamo.ErrParameterBounds, g.Density)
	}
	return nil
}

// lattice creates the grid particles row by row from the top-left corner.
// radiusFactor scales the fill percentage into a radius.
func (g Grid) lattice(w *physics.World, radiusFactor float64) ([]*physics.Particle, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	cols, rows := g.DivisionsW+1, g.DivisionsH+1
	mass := g.Density * g.Width * g.Height / float64(cols*rows)
	sw := g.Width / float64(g.DivisionsW)
	sh := g.Height / float64(g.DivisionsH)
	radius := g.FillPercent / 200 * radiusFactor * math.Min(sw, sh)

	ps := make([]*physics.Particle, 0, cols*rows)
	for i := range rows {
		for j := range cols {
			pos := dynamo.V(
				g.Center.X-g.Width/2+float64(j)*sw,
				g.Center.Y+g.Height/2-float64(i)*sh,
			).RotateAbout(g.Center, g.Angle)
			p, err := w.AddParticle(physics.ParticleSpec{Pos: pos, Mass: mass, Radius: radius})
			if err != nil {
				return ps, err
			}
			ps = append(ps, p)
		}
	}
	return ps, nil
}

// SquareCluster creates an unlinked lattice of particles.
func SquareCluster(w *physics.World, g Grid) ([]*physics.Particle, error) {
	return g.lattice(w, 0.99)
}

// FluidCluster creates a lattice of fluid particles. Fluid particles are
// smaller than solid ones so the pressure field, not contacts, keeps them
// apart.
func FluidCluster(w *physics.World, g Grid, collides bool) ([]*physics.Particle, error) {
	ps, err := g.lattice(w, 0.6)
	for _, p := range ps {
		p.Fluid = true
		p.Collides = collides
	}
	return ps, err
}

// Cloth creates a lattice linked to its horizontal and vertical neighbours.
func Cloth(w *physics.World, g Grid, l Links) ([]*physics.Particle, error) {
	return linkedLattice(w, g, l, false)
}

// Blob is a cloth with both shear diagonals, which makes it hold its shape.
func Blob(w *physics.World, g Grid, l Links) ([]*physics.Particle, error) {
	return linkedLattice(w, g, l, true)
}

func linkedLattice(w *physics.World, g Grid, l Links, shear bool) ([]*physics.Particle, error) {
	ps, err := g.lattice(w, 0.99)
	if err != nil {
		return ps, err
	}
	cols := g.DivisionsW + 1
	link := func(a, b int) error {
		_, err := w.AddDistanceConstraint(ps[a], ps[b], l.options()...)
		return err
	}

	for idx := range ps {
		i, j := idx/cols, idx%cols
		if j > 0 {
			if err := link(idx, idx-1); err != nil {
				return ps, err
			}
		}
		if i == 0 {
			continue
		}
		if err := link(idx, idx-cols); err != nil {
			return ps, err
		}
		if !shear {
			continue
		}
		if j < g.DivisionsW {
			if err := link(idx, idx-cols+1); err != nil {
				return ps, err
			}
		}
		if j > 0 {
			if err := link(idx, idx-cols-1); err != nil {
				return ps, err
			}
		}
	}
	return ps, nil
}

// Rope describes a chain of particles from Start towards End. The first
// particle is fixed.
type Rope struct {
	Start, End  dynamo.Vec2
	Divisions   int
	FillPercent float64
	// Density is mass per unit length.
	Density   float64
	Stiffness float64
}

// BuildRope creates Divisions particles spaced |End-Start|/Divisions apart.
// The chain stops one segment short of End.
func BuildRope(w *physics.World, r Rope) ([]*physics.Particle, error) {
	length := r.End.DistanceFrom(r.Start)
	switch {
	case r.Divisions < 2:
		return nil, fmt.Errorf("%w: rope needs at least 2 divisions, got %d", dynamo.ErrParameterBounds, r.Divisions)
	case !(length > 0):
		return nil, fmt.Errorf("%w: rope has zero length", dynamo.ErrParameterBounds)
	}

	dir := r.End.Sub(r.Start).Unit()
	segment := length / float64(r.Divisions)
	mass := r.Density * segment
	radius := r.FillPercent / 200 * 0.99 * segment

	ps := make([]*physics.Particle, 0, r.Divisions)
	for i := range r.Divisions {
		p, err := w.AddParticle(physics.ParticleSpec{
			Pos:    r.Start.Add(dir.Scale(segment * float64(i))),
			Mass:   mass,
			Radius: radius,
			Fixed:  i == 0,
		})
		if err != nil {
			return ps, err
		}
		if i > 0 {
			if _, err := w.AddDistanceConstraint(p, ps[i-1], physics.WithStiffness(r.Stiffness)); err != nil {
				return ps, err
			}
		}
		ps = append(ps, p)
	}
	return ps, nil
}

// BuildRopeWithBall adds a heavy ball two segments beyond the rope's last
// particle, linked to it. The ball is the last returned particle.
func BuildRopeWithBall(w *physics.World, r Rope, ballMass float64) ([]*physics.Particle, error) {
	ps, err := BuildRope(w, r)
	if err != nil {
		return ps, err
	}
	dir := r.End.Sub(r.Start).Unit()
	segment := r.End.DistanceFrom(r.Start) / float64(r.Divisions)
	ball, err := w.AddParticle(physics.ParticleSpec{
		Pos:    r.Start.Add(dir.Scale(segment * float64(r.Divisions+1))),
		Mass:   ballMass,
		Radius: 0.5,
	})
	if err != nil {
		return ps, err
	}
	if _, err := w.AddDistanceConstraint(ball, ps[len(ps)-1], physics.WithStiffness(r.Stiffness)); err != nil {
		return ps, err
	}
	return append(ps, ball), nil
}
