package scene

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
)

const maxPlacementAttempts = 10000

func noParticleCollisions(p *physics.Params) { p.ParticleCollisions = false }

func undampedWithoutCollisions(p *physics.Params) {
	p.ParticleCollisions = false
	p.Damping = 0
}

func orbital(boundaries bool) func(p *physics.Params) {
	return func(p *physics.Params) {
		p.Gravity = dynamo.Vec2{}
		p.ParticleCollisions = true
		p.BoundaryCollisions = boundaries
		p.Attraction = true
		p.Damping = 0
	}
}

// body is a free particle with an optional initial displacement per step.
type body struct {
	pos    dynamo.Vec2
	mass   float64
	radius float64
	step   dynamo.Vec2
	fixed  bool
}

func addBodies(w *physics.World, bodies ...body) ([]*physics.Particle, error) {
	ps := make([]*physics.Particle, 0, len(bodies))
	for _, b := range bodies {
		p, err := w.AddParticle(physics.ParticleSpec{
			Pos:    b.pos,
			Vel:    b.step.Scale(1 / w.TimeStep()),
			Mass:   b.mass,
			Radius: b.radius,
			Fixed:  b.fixed,
		})
		if err != nil {
			return ps, err
		}
		ps = append(ps, p)
	}
	return ps, nil
}

// attractByMass gives every particle an attractive strength of mass/divisor.
func attractByMass(ps []*physics.Particle, divisor float64) {
	for _, p := range ps {
		p.AttractiveStrength = p.Mass / divisor
	}
}

func fix(ps []*physics.Particle, idx ...int) {
	for _, i := range idx {
		ps[i].Fixed = true
	}
}

// scatter places n non-overlapping particles at random. size draws a
// radius; the particle mass is massPerSize times its radius.
func scatter(w *physics.World, rng *rand.Rand, n int, lo, span float64, size func() float64, massPerSize float64) ([]*physics.Particle, error) {
	ps := make([]*physics.Particle, 0, n)
	for range n {
		placed := false
		for attempt := 0; attempt < maxPlacementAttempts && !placed; attempt++ {
			r := size()
			pos := dynamo.V(lo+rng.Float64()*span, lo+rng.Float64()*span)
			overlapping := false
			for _, q := range ps {
				if pos.DistanceFromSquared(q.Pos) < (q.Radius+r)*(q.Radius+r) {
					overlapping = true
					break
				}
			}
			if overlapping {
				continue
			}
			p, err := w.AddParticle(physics.ParticleSpec{Pos: pos, Mass: r * massPerSize, Radius: r})
			if err != nil {
				return ps, err
			}
			ps = append(ps, p)
			placed = true
		}
		if !placed {
			return ps, fmt.Errorf("%w: no room for particle %d", dynamo.ErrParameterBounds, len(ps))
		}
	}
	return ps, nil
}

func rope(start, end dynamo.Vec2, divisions int, fill, density, stiffness float64) Rope {
	return Rope{Start: start, End: end, Divisions: divisions, FillPercent: fill, Density: density, Stiffness: stiffness}
}

func grid(cx, cy, angle, width, height float64, dw, dh int, fill, density float64) Grid {
	return Grid{
		Center:      dynamo.V(cx, cy),
		Angle:       angle,
		Width:       width,
		Height:      height,
		DivisionsW:  dw,
		DivisionsH:  dh,
		FillPercent: fill,
		Density:     density,
	}
}

func builtin() []Scene {
	var scenes []Scene
	add := func(s Scene) {
		if s.Size == 0 {
			s.Size = 10
		}
		if s.Iterations == 0 {
			s.Iterations = 10
		}
		scenes = append(scenes, s)
	}

	add(Scene{
		Name:        "cloth-flexible",
		Description: "loose cloth pinned at two top points",
		Frequency:   50,
		Configure:   undampedWithoutCollisions,
		Build: func(w *physics.World, _ *rand.Rand) error {
			ps, err := Cloth(w, grid(5, 7, 0, 5, 4, 20, 20, 10, 50), Links{Stiffness: 0.9})
			if err != nil {
				return err
			}
			fix(ps, 0, 10)
			return nil
		},
	})
	add(Scene{
		Name:        "cloth-stiff",
		Description: "rigid cloth pinned at its bottom corners",
		Frequency:   50,
		Configure:   noParticleCollisions,
		Build: func(w *physics.World, _ *rand.Rand) error {
			ps, err := Cloth(w, grid(5, 7.5, 0, 5, 4, 14, 14, 20, 50), Links{Stiffness: 1})
			if err != nil {
				return err
			}
			fix(ps, len(ps)-1, len(ps)-15)
			return nil
		},
	})
	add(Scene{
		Name:        "cloth-breakable",
		Description: "cloth that tears under its own weight",
		Frequency:   50,
		Configure:   undampedWithoutCollisions,
		Build: func(w *physics.World, _ *rand.Rand) error {
			ps, err := Cloth(w, grid(5, 7, 0, 5, 4, 14, 14, 30, 50), Links{Stiffness: 0.7, BreakingStrain: 1.1})
			if err != nil {
				return err
			}
			fix(ps, 0, 2, 6, 14)
			return nil
		},
	})

	add(Scene{
		Name:        "flexible-box",
		Description: "soft box dropped at an angle",
		Frequency:   50,
		Build: func(w *physics.World, _ *rand.Rand) error {
			_, err := Blob(w, grid(5, 7, 2*math.Pi/20*6, 4, 4, 5, 5, 30, 50), Links{Stiffness: 0.6})
			return err
		},
	})
	add(Scene{
		Name:        "flexible-box-random",
		Description: "soft box with random size, angle and stiffness",
		Frequency:   50,
		Build: func(w *physics.World, rng *rand.Rand) error {
			width, height := rng.Float64()*3+2, rng.Float64()*3+2
			angle := 2 * math.Pi / 6 * rng.Float64()
			stiffness := 0.5 + rng.Float64()*0.5
			_, err := Blob(w, grid(5, 5, angle, width, height, 5, 5, 50, 50), Links{Stiffness: stiffness})
			return err
		},
	})
	add(Scene{
		Name:        "flexible-box-breakable",
		Description: "soft box that shatters on impact",
		Frequency:   50,
		Build: func(w *physics.World, _ *rand.Rand) error {
			_, err := Blob(w, grid(5, 6, math.Pi/6, 4, 4, 5, 5, 30, 50), Links{Stiffness: 0.7, BreakingStrain: 0.1})
			return err
		},
	})
	add(Scene{
		Name:        "flexible-box-breakable-random",
		Description: "fine breakable box with random size, angle and stiffness",
		Frequency:   50,
		Build: func(w *physics.World, rng *rand.Rand) error {
			width, height := rng.Float64()*3+2, rng.Float64()*3+2
			angle := 2 * math.Pi / 6 * rng.Float64()
			stiffness := 0.5 + rng.Float64()*0.5
			_, err := Blob(w, grid(5, 5, angle, width, height, 10, 10, 50, 50), Links{Stiffness: stiffness, BreakingStrain: 0.15})
			return err
		},
	})

	add(Scene{
		Name:        "fluid-single-column",
		Description: "column of fluid collapsing",
		Frequency:   100,
		Build: func(w *physics.World, _ *rand.Rand) error {
			_, err := FluidCluster(w, grid(3, 4, 0, 5, 7, 15, 25, 90, 1000), false)
			return err
		},
	})
	add(Scene{
		Name:        "fluid-double-columns",
		Description: "two fluid columns colliding in the middle",
		Frequency:   100,
		Build: func(w *physics.World, _ *rand.Rand) error {
			if _, err := FluidCluster(w, grid(2, 6, 0, 3, 6, 9, 18, 90, 800), false); err != nil {
				return err
			}
			_, err := FluidCluster(w, grid(8, 6, 0, 3, 6, 9, 18, 90, 800), false)
			return err
		},
	})
	add(Scene{
		Name:        "fluid-1024-particles",
		Description: "tilted block of about a thousand fluid particles",
		Frequency:   100,
		Build: func(w *physics.World, _ *rand.Rand) error {
			_, err := FluidCluster(w, grid(5, 5, 0.1, 8, 8, 32, 32, 90, 1000), false)
			return err
		},
	})
	add(Scene{
		Name:        "fluid-1600-particles",
		Description: "tilted block of about sixteen hundred fluid particles",
		Frequency:   100,
		Build: func(w *physics.World, _ *rand.Rand) error {
			_, err := FluidCluster(w, grid(5, 5, 0.1, 8, 8, 40, 40, 90, 1000), false)
			return err
		},
	})
	add(Scene{
		Name:        "fluid-waves",
		Description: "weightless fluid disturbed by an overlapping block",
		Frequency:   100,
		Configure:   func(p *physics.Params) { p.Gravity = dynamo.Vec2{} },
		Build: func(w *physics.World, _ *rand.Rand) error {
			if _, err := FluidCluster(w, grid(5, 5, 0, 9, 9, 27, 27, 90, 1000), false); err != nil {
				return err
			}
			_, err := FluidCluster(w, grid(2.3, 5, 0, 2, 2, 6, 6, 90, 1000), false)
			return err
		},
	})
	add(Scene{
		Name:        "fluid-buoyancy",
		Description: "balls of different mass dropped into a pool",
		Frequency:   100,
		Configure:   func(p *physics.Params) { p.RestDensity = 1000 },
		Build: func(w *physics.World, _ *rand.Rand) error {
			if _, err := FluidCluster(w, grid(5, 2.7, 0, 9, 5, 25, 18, 90, 1000), true); err != nil {
				return err
			}
			_, err := addBodies(w,
				body{pos: dynamo.V(8, 8), mass: 200, radius: 0.5},
				body{pos: dynamo.V(5, 8), mass: 1500, radius: 0.5},
				body{pos: dynamo.V(2, 8), mass: 5000, radius: 0.5},
			)
			return err
		},
	})
	add(Scene{
		Name:        "fluid-sponge-interaction",
		Description: "soft sponge whose nodes take part in the fluid",
		Frequency:   100,
		Configure: func(p *physics.Params) {
			p.RestDensity = 1000
			p.ParticleCollisions = false
		},
		Build: func(w *physics.World, _ *rand.Rand) error {
			if _, err := FluidCluster(w, grid(5, 2.7, 0, 9, 5, 25, 18, 100, 1000), true); err != nil {
				return err
			}
			sponge, err := Blob(w, grid(5, 8, 2*math.Pi/20*6, 2, 2, 5, 5, 90, 500), Links{Stiffness: 0.1})
			for _, p := range sponge {
				p.Fluid = true
			}
			return err
		},
	})

	add(Scene{
		Name:        "particle-cluster",
		Description: "loose block of colliding particles",
		Frequency:   100,
		Build: func(w *physics.World, _ *rand.Rand) error {
			_, err := SquareCluster(w, grid(5, 5, -2*math.Pi/8, 4, 5, 12, 15, 90, 50))
			return err
		},
	})
	add(Scene{
		Name:        "restitution",
		Description: "three balls with different restitution coefficients",
		Frequency:   100,
		Build: func(w *physics.World, _ *rand.Rand) error {
			ps, err := addBodies(w,
				body{pos: dynamo.V(8, 8), mass: 200, radius: 0.5},
				body{pos: dynamo.V(5, 8), mass: 1500, radius: 0.5},
				body{pos: dynamo.V(2, 8), mass: 5000, radius: 0.5},
			)
			if err != nil {
				return err
			}
			for i, e := range []float64{0.9, 0.5, 0.3} {
				ps[i].Restitution = e
			}
			return nil
		},
	})

	add(Scene{
		Name:        "rope-stiff",
		Description: "rigid rope swinging from a fixed end",
		Frequency:   50,
		Build: func(w *physics.World, _ *rand.Rand) error {
			_, err := BuildRope(w, rope(dynamo.V(5, 6), dynamo.V(9, 8), 15, 30, 10, 1))
			return err
		},
	})
	add(Scene{
		Name:        "rope-stiff-with-ball",
		Description: "rigid rope carrying a heavy ball",
		Frequency:   50,
		Build: func(w *physics.World, _ *rand.Rand) error {
			_, err := BuildRopeWithBall(w, rope(dynamo.V(5, 6), dynamo.V(9, 8), 15, 30, 10, 1), 100)
			return err
		},
	})
	add(Scene{
		Name:        "rope-stretchy",
		Description: "elastic rope swinging from a fixed end",
		Frequency:   50,
		Build: func(w *physics.World, _ *rand.Rand) error {
			_, err := BuildRope(w, rope(dynamo.V(5, 6), dynamo.V(9, 8), 15, 30, 10, 0.5))
			return err
		},
	})
	add(Scene{
		Name:        "rope-stretchy-with-ball",
		Description: "elastic rope carrying a heavy ball",
		Frequency:   50,
		Build: func(w *physics.World, _ *rand.Rand) error {
			_, err := BuildRopeWithBall(w, rope(dynamo.V(5, 8), dynamo.V(8, 8), 10, 30, 10, 0.95), 100)
			return err
		},
	})

	add(Scene{
		Name:        "double-pendulum",
		Description: "undamped double pendulum released with a kick",
		Frequency:   100,
		Configure:   undampedWithoutCollisions,
		Build: func(w *physics.World, _ *rand.Rand) error {
			ps, err := addBodies(w,
				body{pos: dynamo.V(5, 5), mass: 100, radius: 0.2, fixed: true},
				body{pos: dynamo.V(6.5, 6.5), mass: 100, radius: 0.5, step: dynamo.V(-0.5, 0)},
				body{pos: dynamo.V(8, 8), mass: 100, radius: 0.5, step: dynamo.V(0.5, 0)},
			)
			if err != nil {
				return err
			}
			if _, err := w.AddDistanceConstraint(ps[1], ps[2]); err != nil {
				return err
			}
			_, err = w.AddDistanceConstraint(ps[0], ps[1])
			return err
		},
	})
	add(Scene{
		Name:        "cantilever",
		Description: "three rigid beams clamped on their left side",
		Frequency:   50,
		Build: func(w *physics.World, _ *rand.Rand) error {
			beams := []struct {
				y    float64
				rows int
			}{{9, 1}, {6, 2}, {2, 3}}
			for _, b := range beams {
				ps, err := Blob(w, grid(5, b.y, 0, 7, float64(b.rows), 7, b.rows, 20, 50), Links{Stiffness: 1})
				if err != nil {
					return err
				}
				for row := 0; row <= b.rows; row++ {
					fix(ps, row*8)
				}
			}
			return nil
		},
	})

	add(Scene{
		Name:        "gravitation-particles-few",
		Description: "five mutually attracting bodies in a box",
		Size:        40,
		Frequency:   50,
		Configure:   orbital(true),
		Build: func(w *physics.World, _ *rand.Rand) error {
			kick := dynamo.V(-0.05, 0.05)
			ps, err := addBodies(w,
				body{pos: dynamo.V(20, 15), mass: 4, radius: 4},
				body{pos: dynamo.V(12, 7), mass: 1, radius: 1, step: kick},
				body{pos: dynamo.V(14, 21), mass: 1.5, radius: 1.5},
				body{pos: dynamo.V(17, 7), mass: 1.5, radius: 1.5, step: kick},
				body{pos: dynamo.V(34, 30), mass: 1.7, radius: 1.7, step: kick},
			)
			attractByMass(ps, 1)
			return err
		},
	})
	add(Scene{
		Name:        "gravitation-particle-cluster-pattern",
		Description: "lattice of attracting particles collapsing",
		Size:        40,
		Frequency:   50,
		Configure:   orbital(true),
		Build: func(w *physics.World, _ *rand.Rand) error {
			ps, err := SquareCluster(w, grid(20, 20, -2*math.Pi/8, 25, 25, 10, 10, 60, 50))
			attractByMass(ps, 60)
			return err
		},
	})
	add(Scene{
		Name:        "gravitation-elliptical-orbit",
		Description: "single satellite on an elliptical orbit",
		Size:        100,
		Frequency:   50,
		Configure:   orbital(false),
		Build: func(w *physics.World, _ *rand.Rand) error {
			ps, err := addBodies(w,
				body{pos: dynamo.V(50, 50), mass: 130, radius: 10},
				body{pos: dynamo.V(26, 20), mass: 1, radius: 1, step: dynamo.V(-0.1, 0.1)},
			)
			attractByMass(ps, 1)
			return err
		},
	})
	add(Scene{
		Name:        "gravitation-unstable-satellites",
		Description: "three satellites perturbing each other",
		Size:        100,
		Frequency:   50,
		Configure:   orbital(false),
		Build: func(w *physics.World, _ *rand.Rand) error {
			ps, err := addBodies(w,
				body{pos: dynamo.V(50, 50), mass: 130, radius: 10},
				body{pos: dynamo.V(25, 25), mass: 1, radius: 1, step: dynamo.V(-0.15, 0.15)},
				body{pos: dynamo.V(75, 75), mass: 1, radius: 1, step: dynamo.V(0.15, -0.15)},
				body{pos: dynamo.V(25, 75), mass: 1, radius: 1, step: dynamo.V(0.15, 0.15)},
			)
			attractByMass(ps, 1)
			return err
		},
	})
	add(Scene{
		Name:        "gravitation-stable-satellites",
		Description: "four symmetric satellites",
		Size:        100,
		Frequency:   50,
		Configure:   orbital(false),
		Build: func(w *physics.World, _ *rand.Rand) error {
			ps, err := addBodies(w,
				body{pos: dynamo.V(50, 50), mass: 130, radius: 10},
				body{pos: dynamo.V(25, 25), mass: 1, radius: 1, step: dynamo.V(-0.15, 0.15)},
				body{pos: dynamo.V(75, 75), mass: 1, radius: 1, step: dynamo.V(0.15, -0.15)},
				body{pos: dynamo.V(25, 75), mass: 1, radius: 1, step: dynamo.V(0.15, 0.15)},
				body{pos: dynamo.V(75, 25), mass: 1, radius: 1, step: dynamo.V(-0.15, -0.15)},
			)
			attractByMass(ps, 1)
			return err
		},
	})
	add(Scene{
		Name:        "gravitation-binary-stars",
		Description: "two equal stars orbiting each other",
		Size:        100,
		Frequency:   50,
		Configure:   orbital(false),
		Build: func(w *physics.World, _ *rand.Rand) error {
			ps, err := addBodies(w,
				body{pos: dynamo.V(25, 50), mass: 100, radius: 10, step: dynamo.V(0, 0.1)},
				body{pos: dynamo.V(75, 50), mass: 100, radius: 10, step: dynamo.V(0, -0.1)},
			)
			attractByMass(ps, 1)
			return err
		},
	})
	coalescence := func(n int) func(*physics.World, *rand.Rand) error {
		return func(w *physics.World, rng *rand.Rand) error {
			size := func() float64 { return 0.05 + rng.Float64()*0.1 }
			ps, err := scatter(w, rng, n, 0.5, w.Width()-1, size, 1)
			attractByMass(ps, 15)
			return err
		}
	}
	coalescing := func(p *physics.Params) {
		p.Gravity = dynamo.Vec2{}
		p.BoundaryCollisions = false
		p.Attraction = true
	}
	add(Scene{
		Name:        "gravitation-random-coalescence-few",
		Description: "dust of two hundred grains clumping together",
		Frequency:   75,
		Configure:   coalescing,
		Build:       coalescence(200),
	})
	add(Scene{
		Name:        "gravitation-random-coalescence-many",
		Description: "dust of five hundred grains clumping together",
		Frequency:   100,
		Configure:   coalescing,
		Build:       coalescence(500),
	})

	add(Scene{
		Name:        "combo-1",
		Description: "heavy ball dropped on a rope bridge",
		Frequency:   50,
		Build: func(w *physics.World, _ *rand.Rand) error {
			ps, err := BuildRope(w, rope(dynamo.V(1, 6), dynamo.V(9, 6), 30, 95, 20, 0.85))
			if err != nil {
				return err
			}
			fix(ps, len(ps)-1)
			_, err = addBodies(w, body{pos: dynamo.V(4, 7.5), mass: 120, radius: 1})
			return err
		},
	})
	add(Scene{
		Name:        "combo-2",
		Description: "long rigid rope bridge",
		Frequency:   100,
		Build: func(w *physics.World, _ *rand.Rand) error {
			ps, err := BuildRope(w, rope(dynamo.V(1, 5), dynamo.V(9, 5), 40, 30, 10, 1))
			if err != nil {
				return err
			}
			fix(ps, len(ps)-1)
			return nil
		},
	})
	add(Scene{
		Name:        "combo-3",
		Description: "loose rope draped over two pegs",
		Frequency:   50,
		Build: func(w *physics.World, _ *rand.Rand) error {
			ps, err := BuildRope(w, rope(dynamo.V(1, 6), dynamo.V(9, 5), 30, 30, 10, 0.8))
			if err != nil {
				return err
			}
			ps[0].Fixed = false
			_, err = addBodies(w,
				body{pos: dynamo.V(3, 3.5), mass: 100, radius: 0.5, fixed: true},
				body{pos: dynamo.V(6, 4), mass: 100, radius: 0.5, fixed: true},
			)
			return err
		},
	})
	add(Scene{
		Name:        "combo-4",
		Description: "rope with weighted ends sliding off two pegs",
		Frequency:   50,
		Build: func(w *physics.World, _ *rand.Rand) error {
			ps, err := BuildRope(w, rope(dynamo.V(3, 7), dynamo.V(8, 7), 35, 30, 10, 0.9))
			if err != nil {
				return err
			}
			first, last := ps[0], ps[len(ps)-1]
			first.Fixed = false
			weights, err := addBodies(w,
				body{pos: last.Pos.Add(dynamo.V(0.45, 0)), mass: 25, radius: 0.4},
				body{pos: first.Pos.Sub(dynamo.V(0.45, 0)), mass: 25, radius: 0.4},
				body{pos: dynamo.V(3.5, 5), mass: 100, radius: 0.5, fixed: true},
				body{pos: dynamo.V(6.5, 5), mass: 100, radius: 0.5, fixed: true},
			)
			if err != nil {
				return err
			}
			if _, err := w.AddDistanceConstraint(weights[0], last, physics.WithStiffness(1)); err != nil {
				return err
			}
			_, err = w.AddDistanceConstraint(weights[1], first, physics.WithStiffness(1))
			return err
		},
	})
	add(Scene{
		Name:        "combo-5",
		Description: "rope falling through a field of pegs",
		Frequency:   50,
		Build: func(w *physics.World, _ *rand.Rand) error {
			ps, err := BuildRope(w, rope(dynamo.V(0.5, 9), dynamo.V(9.5, 9), 35, 30, 10, 0.8))
			if err != nil {
				return err
			}
			ps[0].Fixed = false
			var pegs []body
			for _, pos := range []dynamo.Vec2{
				dynamo.V(4.5, 2.5), dynamo.V(6, 3), dynamo.V(3, 3),
				dynamo.V(2.5, 7.5), dynamo.V(7, 7.5), dynamo.V(4.5, 6),
			} {
				pegs = append(pegs, body{pos: pos, mass: 100, radius: 0.5, fixed: true})
			}
			_, err = addBodies(w, pegs...)
			return err
		},
	})
	add(Scene{
		Name:        "balls-many",
		Description: "a hundred random balls piling up",
		Frequency:   100,
		Build: func(w *physics.World, rng *rand.Rand) error {
			size := func() float64 { return 0.2 + rng.Float64()*0.5 }
			_, err := scatter(w, rng, 100, 1, w.Width()-2, size, 10)
			return err
		},
	})

	return scenes
}
