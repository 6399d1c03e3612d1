package scene_test

import (
	"math"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
	"github.com/san-kum/rubble/internal/scene"
)

func emptyWorld() *physics.World {
	w, err := physics.NewWorld(10, 10, 0.02, 10)
	Expect(err).NotTo(HaveOccurred())
	return w
}

var _ = Describe("Registry", func() {
	var reg *scene.Registry

	BeforeEach(func() {
		reg = scene.NewRegistry()
	})

	It("lists scenes in sorted order", func() {
		names := reg.List()
		Expect(names).NotTo(BeEmpty())
		Expect(names).To(HaveLen(36))
		for i := 1; i < len(names); i++ {
			Expect(names[i-1] < names[i]).To(BeTrue())
		}
	})

	It("reports unknown scenes as not found", func() {
		_, err := reg.Get("nonexistent")
		Expect(err).To(MatchError(dynamo.ErrNotFound))
	})

	It("validates registrations", func() {
		build := func(*physics.World, *rand.Rand) error { return nil }
		Expect(reg.Register(scene.Scene{Size: 10, Frequency: 50, Iterations: 1, Build: build})).
			To(MatchError(dynamo.ErrParameterBounds))
		Expect(reg.Register(scene.Scene{Name: "x", Size: 10, Frequency: 50, Iterations: 1})).
			To(MatchError(dynamo.ErrParameterBounds))
		Expect(reg.Register(scene.Scene{Name: "x", Size: 10, Frequency: 0, Iterations: 1, Build: build})).
			To(MatchError(dynamo.ErrParameterBounds))
		Expect(reg.Register(scene.Scene{Name: "rope-stiff", Size: 10, Frequency: 50, Iterations: 1, Build: build})).
			To(HaveOccurred())

		Expect(reg.Register(scene.Scene{Name: "empty", Size: 10, Frequency: 50, Iterations: 1, Build: build})).
			To(Succeed())
		Expect(reg.List()).To(ContainElement("empty"))
	})

	It("builds randomised scenes deterministically from the seed", func() {
		sc, err := reg.Get("flexible-box-random")
		Expect(err).NotTo(HaveOccurred())

		a, err := sc.New(7)
		Expect(err).NotTo(HaveOccurred())
		b, err := sc.New(7)
		Expect(err).NotTo(HaveOccurred())
		c, err := sc.New(8)
		Expect(err).NotTo(HaveOccurred())

		Expect(a.Particles()[0].Pos).To(Equal(b.Particles()[0].Pos))
		Expect(a.Particles()[0].Pos).NotTo(Equal(c.Particles()[0].Pos))
	})

	Describe("built-in scenes", func() {
		for _, name := range scene.NewRegistry().List() {
			It("builds and steps "+name, func() {
				sc, err := reg.Get(name)
				Expect(err).NotTo(HaveOccurred())
				Expect(sc.Description).NotTo(BeEmpty())

				w, err := sc.New(1)
				Expect(err).NotTo(HaveOccurred())
				Expect(w.ParticleCount()).To(BeNumerically(">", 0))
				Expect(w.TimeStep()).To(BeNumerically("~", sc.TimeStep(), 1e-15))

				for range 300 {
					w.Step()
				}
				Expect(w.Valid()).To(BeTrue())

				dt := w.TimeStep()
				bounded := w.Params().BoundaryCollisions
				for _, p := range w.Particles() {
					speed := p.Vel.Magnitude()
					Expect(speed).To(BeNumerically("<", 150), "particle at %v", p.Pos)
					if !bounded || p.Fixed {
						continue
					}
					r := p.Radius
					Expect(p.PrevPos.X).To(BeNumerically(">=", r-1e-9))
					Expect(p.PrevPos.X).To(BeNumerically("<=", w.Width()-r+1e-9))
					Expect(p.PrevPos.Y).To(BeNumerically(">=", r-1e-9))
					Expect(p.PrevPos.Y).To(BeNumerically("<=", w.Height()-r+1e-9))
					slack := r + speed*dt + 1e-9
					Expect(p.Pos.X).To(BeNumerically(">=", -slack))
					Expect(p.Pos.X).To(BeNumerically("<=", w.Width()+slack))
					Expect(p.Pos.Y).To(BeNumerically(">=", -slack))
					Expect(p.Pos.Y).To(BeNumerically("<=", w.Height()+slack))
				}
			})
		}
	})

	It("keeps a settled fluid column compressed and calm", func() {
		sc, err := reg.Get("fluid-single-column")
		Expect(err).NotTo(HaveOccurred())
		w, err := sc.New(1)
		Expect(err).NotTo(HaveOccurred())

		for range 300 {
			w.Step()
		}

		rest := w.Params().RestDensity
		compressed := 0
		for _, p := range w.Particles() {
			if !p.Fluid {
				continue
			}
			Expect(p.Density).To(BeNumerically(">=", rest))
			Expect(p.Pressure).To(BeNumerically(">=", 0))
			Expect(p.Vel.Magnitude()).To(BeNumerically("<", 50))
			if p.Density > rest {
				compressed++
			}
		}
		Expect(compressed).To(BeNumerically(">", 0))
	})
})

var _ = Describe("Builders", func() {
	var w *physics.World

	BeforeEach(func() {
		w = emptyWorld()
	})

	grid := scene.Grid{
		Center:      dynamo.V(5, 5),
		Width:       2,
		Height:      1,
		DivisionsW:  2,
		DivisionsH:  1,
		FillPercent: 50,
		Density:     6,
	}

	It("lays out a square cluster row by row from the top left", func() {
		ps, err := scene.SquareCluster(w, grid)
		Expect(err).NotTo(HaveOccurred())
		Expect(ps).To(HaveLen(6))
		Expect(w.ConstraintCount()).To(Equal(0))

		Expect(ps[0].Pos.X).To(BeNumerically("~", 4, 1e-12))
		Expect(ps[0].Pos.Y).To(BeNumerically("~", 5.5, 1e-12))
		Expect(ps[5].Pos.X).To(BeNumerically("~", 6, 1e-12))
		Expect(ps[5].Pos.Y).To(BeNumerically("~", 4.5, 1e-12))

		total := 0.0
		for _, p := range ps {
			total += p.Mass
		}
		Expect(total).To(BeNumerically("~", 12, 1e-12))
		Expect(ps[0].Radius).To(BeNumerically("~", 0.5/2*0.99, 1e-12))
	})

	It("rotates the lattice about its centre", func() {
		g := grid
		g.Angle = math.Pi / 2
		ps, err := scene.SquareCluster(w, g)
		Expect(err).NotTo(HaveOccurred())
		Expect(ps[0].Pos.X).To(BeNumerically("~", 4.5, 1e-12))
		Expect(ps[0].Pos.Y).To(BeNumerically("~", 4, 1e-12))
	})

	It("rejects degenerate grids", func() {
		g := grid
		g.DivisionsW = 0
		_, err := scene.SquareCluster(w, g)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("marks fluid clusters", func() {
		ps, err := scene.FluidCluster(w, grid, false)
		Expect(err).NotTo(HaveOccurred())
		for _, p := range ps {
			Expect(p.Fluid).To(BeTrue())
			Expect(p.Collides).To(BeFalse())
		}
	})

	It("links cloth to its horizontal and vertical neighbours", func() {
		_, err := scene.Cloth(w, grid, scene.Links{Stiffness: 1})
		Expect(err).NotTo(HaveOccurred())
		// 2 rows of 2 horizontal links plus 3 vertical links
		Expect(w.ConstraintCount()).To(Equal(7))
	})

	It("adds shear diagonals to blobs", func() {
		_, err := scene.Blob(w, grid, scene.Links{Stiffness: 1, BreakingStrain: 0.5})
		Expect(err).NotTo(HaveOccurred())
		Expect(w.ConstraintCount()).To(Equal(11))
		for _, c := range w.Constraints() {
			Expect(c.Breakable).To(BeTrue())
		}
	})

	It("builds a rope with a fixed first particle", func() {
		r := scene.Rope{Start: dynamo.V(1, 5), End: dynamo.V(5, 5), Divisions: 4, FillPercent: 30, Density: 10, Stiffness: 1}
		ps, err := scene.BuildRope(w, r)
		Expect(err).NotTo(HaveOccurred())
		Expect(ps).To(HaveLen(4))
		Expect(w.ConstraintCount()).To(Equal(3))
		Expect(ps[0].Fixed).To(BeTrue())
		Expect(ps[1].Fixed).To(BeFalse())
		Expect(ps[3].Pos.X).To(BeNumerically("~", 4, 1e-12))
		Expect(ps[1].Mass).To(BeNumerically("~", 10, 1e-12))
	})

	It("hangs a ball beyond the rope", func() {
		r := scene.Rope{Start: dynamo.V(1, 5), End: dynamo.V(5, 5), Divisions: 4, FillPercent: 30, Density: 10, Stiffness: 1}
		ps, err := scene.BuildRopeWithBall(w, r, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(ps).To(HaveLen(5))
		ball := ps[4]
		Expect(ball.Mass).To(Equal(100.0))
		Expect(ball.Pos.X).To(BeNumerically("~", 6, 1e-12))
		Expect(w.ConstraintCount()).To(Equal(4))
	})

	It("rejects short ropes", func() {
		_, err := scene.BuildRope(w, scene.Rope{Start: dynamo.V(1, 5), End: dynamo.V(5, 5), Divisions: 1, Density: 1, Stiffness: 1})
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})
})
