package physics

import (
	"math"
	"slices"
	"testing"

	"github.com/san-kum/rubble/internal/dynamo"
)

func TestKernelSupport(t *testing.T) {
	k := NewKernel(0.5)

	if got, want := k.Poly6(0), 4/(math.Pi*0.25); math.Abs(got-want) > 1e-12 {
		t.Errorf("Poly6(0) = %v, want %v", got, want)
	}
	if got, want := k.SpikyGradient(0), 30/(math.Pi*0.25*0.5); math.Abs(got-want) > 1e-9 {
		t.Errorf("SpikyGradient(0) = %v, want %v", got, want)
	}
	if got, want := k.ViscosityLaplacian(0), 40/(math.Pi*0.25*0.5*0.5); math.Abs(got-want) > 1e-9 {
		t.Errorf("ViscosityLaplacian(0) = %v, want %v", got, want)
	}

	for _, r := range []float64{0.5, 0.6, 10} {
		if k.Poly6(r*r) != 0 || k.SpikyGradient(r) != 0 || k.ViscosityLaplacian(r) != 0 {
			t.Errorf("kernels non-zero at r=%v", r)
		}
	}

	prev := math.Inf(1)
	for r := 0.0; r < 0.5; r += 0.05 {
		w := k.Poly6(r * r)
		if w <= 0 || w >= prev {
			t.Errorf("Poly6 not positive and decreasing at r=%v: %v", r, w)
		}
		prev = w
	}
}

func TestDensityFloor(t *testing.T) {
	k := NewKernel(0.35)
	lone := &Particle{Pos: dynamo.V(0, 0), Mass: 1}
	a := &Particle{Pos: dynamo.V(5, 5), Mass: 1}
	b := &Particle{Pos: dynamo.V(5.1, 5), Mass: 1}
	fluid := []*Particle{lone, a, b}
	findNeighborsNaive(fluid, k.SmoothingLength())

	computeDensityPressure(fluid, k, 1000, 2000)
	for i, p := range fluid {
		if p.Density != 1000 || p.Pressure != 0 {
			t.Errorf("particle %d: density %v pressure %v, want floored at rest", i, p.Density, p.Pressure)
		}
	}

	computeDensityPressure(fluid, k, 1, 2000)
	self := k.Poly6(0)
	if math.Abs(lone.Density-self) > 1e-9 {
		t.Errorf("lone density %v, want self term %v", lone.Density, self)
	}
	if a.Density <= lone.Density {
		t.Errorf("neighbour did not add density: %v <= %v", a.Density, lone.Density)
	}
	for i, p := range fluid {
		if p.Density < 1 || p.Pressure < 0 {
			t.Errorf("particle %d: density %v pressure %v", i, p.Density, p.Pressure)
		}
	}
}

func fluidLattice(n int) []*Particle {
	var ps []*Particle
	for i := range n {
		for j := range n {
			x := -1 + 0.13*float64(i) + 0.05*math.Sin(float64(i*j))
			y := -0.7 + 0.11*float64(j) + 0.04*math.Cos(float64(i+3*j))
			ps = append(ps, &Particle{Pos: dynamo.V(x, y), Mass: 1, Fluid: true})
		}
	}
	return ps
}

func neighborIndices(ps []*Particle) [][]int {
	index := make(map[*Particle]int, len(ps))
	for i, p := range ps {
		index[p] = i
	}
	out := make([][]int, len(ps))
	for i, p := range ps {
		for _, q := range p.Neighbors {
			out[i] = append(out[i], index[q])
		}
		slices.Sort(out[i])
	}
	return out
}

func TestNeighborSearchEquivalence(t *testing.T) {
	for _, h := range []float64{0.1, 0.2, 0.35} {
		hashed := fluidLattice(12)
		naive := fluidLattice(12)

		findNeighborsHashed(hashed, h, NewSpatialHash(1))
		findNeighborsNaive(naive, h)

		got, want := neighborIndices(hashed), neighborIndices(naive)
		total := 0
		for i := range want {
			if !slices.Equal(got[i], want[i]) {
				t.Errorf("h=%v particle %d: hashed %v, naive %v", h, i, got[i], want[i])
			}
			if slices.Contains(got[i], i) {
				t.Errorf("h=%v particle %d lists itself", h, i)
			}
			total += len(want[i])
		}
		if total == 0 {
			t.Errorf("h=%v: lattice produced no neighbours", h)
		}
	}
}

func fluidPair(t *testing.T, mutate func(*Params)) (*World, *Particle, *Particle) {
	t.Helper()
	w := newTestWorld(t, 0.01, 10, func(p *Params) {
		weightless(p)
		if mutate != nil {
			mutate(p)
		}
	})
	a := mustParticle(t, w, ParticleSpec{Pos: dynamo.V(5, 5), Mass: 1})
	b := mustParticle(t, w, ParticleSpec{Pos: dynamo.V(5.1, 5), Mass: 1})
	a.Fluid = true
	b.Fluid = true
	return w, a, b
}

func TestPressureForceRepels(t *testing.T) {
	w, a, b := fluidPair(t, func(p *Params) { p.RestDensity = 1 })

	w.cleanup()
	w.accumulateForces()

	if a.Force.X >= 0 || b.Force.X <= 0 {
		t.Errorf("pressure should push apart: a=%v b=%v", a.Force, b.Force)
	}
	if math.Abs(a.Force.X+b.Force.X) > 1e-9 {
		t.Errorf("pressure forces not symmetric: %v vs %v", a.Force, b.Force)
	}
	if a.Acc != (dynamo.Vec2{}) || b.Acc != (dynamo.Vec2{}) {
		t.Errorf("fluid forces leaked into Acc: %v %v", a.Acc, b.Acc)
	}
	if a.Pressure <= 0 {
		t.Errorf("pressure = %v", a.Pressure)
	}
}

func TestViscosityDragsTowardNeighborVelocity(t *testing.T) {
	w, a, b := fluidPair(t, nil)
	b.SetVelocity(dynamo.V(0, 1), w.TimeStep())

	w.cleanup()
	w.accumulateForces()

	if a.Force.Y <= 0 || b.Force.Y >= 0 {
		t.Errorf("viscosity should equalise velocities: a=%v b=%v", a.Force, b.Force)
	}
	if a.Force.X != 0 || b.Force.X != 0 {
		t.Errorf("pressure at rest density should vanish: a=%v b=%v", a.Force, b.Force)
	}
}

func TestWorldFluidPartitioningEquivalence(t *testing.T) {
	run := func(partition bool) []dynamo.Vec2 {
		w := newTestWorld(t, 1.0/60, 4, func(p *Params) {
			p.SpatialPartitioning = partition
			p.RestDensity = 20
		})
		for i := range 6 {
			for j := range 6 {
				p := mustParticle(t, w, ParticleSpec{
					Pos:    dynamo.V(3+0.12*float64(i), 1+0.12*float64(j)),
					Mass:   1,
					Radius: 0.05,
				})
				p.Fluid = true
			}
		}
		for range 10 {
			w.Step()
		}
		var out []dynamo.Vec2
		for _, p := range w.Particles() {
			out = append(out, p.Pos)
		}
		return out
	}

	hashed, naive := run(true), run(false)
	for i := range hashed {
		// neighbour order differs, so only summation rounding may differ
		if hashed[i].DistanceFrom(naive[i]) > 1e-6 {
			t.Errorf("particle %d: hashed %v, naive %v", i, hashed[i], naive[i])
		}
	}
}

func BenchmarkNeighborsHashed(b *testing.B) {
	ps := fluidLattice(30)
	grid := NewSpatialHash(0.2)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, p := range ps {
			p.Neighbors = p.Neighbors[:0]
		}
		grid.Clear()
		findNeighborsHashed(ps, 0.2, grid)
	}
}

func BenchmarkNeighborsNaive(b *testing.B) {
	ps := fluidLattice(30)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, p := range ps {
			p.Neighbors = p.Neighbors[:0]
		}
		findNeighborsNaive(ps, 0.2)
	}
}
