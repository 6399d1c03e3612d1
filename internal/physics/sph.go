package physics

import (
	"math"

	"github.com/san-kum/rubble/internal/dynamo"
)

// Kernel holds the 2D SPH smoothing kernels for one smoothing length with
// their normalisation constants precomputed.
type Kernel struct {
	h, h2 float64

	poly6Sigma float64
	spikySigma float64
	viscSigma  float64
}

func NewKernel(h float64) Kernel {
	return Kernel{
		h:          h,
		h2:         h * h,
		poly6Sigma: 4 / (math.Pi * math.Pow(h, 8)),
		spikySigma: 30 / (math.Pi * math.Pow(h, 5)),
		viscSigma:  40 / (math.Pi * math.Pow(h, 5)),
	}
}

func (k Kernel) SmoothingLength() float64 { return k.h }

// Poly6 is the density kernel, evaluated on squared distance.
func (k Kernel) Poly6(r2 float64) float64 {
	if r2 >= k.h2 {
		return 0
	}
	d := k.h2 - r2
	return k.poly6Sigma * d * d * d
}

// SpikyGradient is the magnitude of the spiky kernel gradient.
func (k Kernel) SpikyGradient(r float64) float64 {
	if r >= k.h {
		return 0
	}
	d := k.h - r
	return k.spikySigma * d * d
}

// ViscosityLaplacian is the laplacian of the viscosity kernel.
func (k Kernel) ViscosityLaplacian(r float64) float64 {
	if r >= k.h {
		return 0
	}
	return k.viscSigma * (k.h - r)
}

// findNeighborsHashed fills Neighbors through the spatial hash. The hash is
// cleared by the caller at the start of the step.
func findNeighborsHashed(fluid []*Particle, h float64, grid *SpatialHash) {
	if grid.BinSize() != h {
		grid.SetBinSize(h)
	}
	for i, p := range fluid {
		grid.Insert(p.Pos, i)
	}

	h2 := h * h
	var candidates []int
	for i, p := range fluid {
		candidates = grid.Candidates(p.Pos, candidates[:0])
		for _, j := range candidates {
			if j == i {
				continue
			}
			if p.Pos.DistanceFromSquared(fluid[j].Pos) < h2 {
				p.Neighbors = append(p.Neighbors, fluid[j])
			}
		}
	}
}

func findNeighborsNaive(fluid []*Particle, h float64) {
	h2 := h * h
	for i, p := range fluid {
		for j, q := range fluid {
			if j == i {
				continue
			}
			if p.Pos.DistanceFromSquared(q.Pos) < h2 {
				p.Neighbors = append(p.Neighbors, q)
			}
		}
	}
}

// computeDensityPressure estimates density including the self contribution,
// floors it at the rest density and applies a linear equation of state.
func computeDensityPressure(fluid []*Particle, k Kernel, restDensity, stiffness float64) {
	self := k.Poly6(0)
	for _, p := range fluid {
		rho := p.Mass * self
		for _, q := range p.Neighbors {
			rho += q.Mass * k.Poly6(p.Pos.DistanceFromSquared(q.Pos))
		}
		p.Density = math.Max(rho, restDensity)
		p.Pressure = stiffness * (p.Density - restDensity)
	}
}

// applyFluidForces adds pressure and viscosity forces to Force.
func applyFluidForces(fluid []*Particle, k Kernel, viscosity, dt float64) {
	for _, p := range fluid {
		vi := p.ImpliedVelocity(dt)
		var f dynamo.Vec2
		for _, q := range p.Neighbors {
			sep := p.Pos.Sub(q.Pos)
			r := sep.Magnitude()

			pressure := q.Mass * (p.Pressure + q.Pressure) / (2 * q.Density) * k.SpikyGradient(r)
			f = f.Add(sep.Unit().Scale(pressure))

			visc := viscosity * q.Mass / q.Density * k.ViscosityLaplacian(r)
			f = f.Add(q.ImpliedVelocity(dt).Sub(vi).Scale(visc))
		}
		p.Force = p.Force.Add(f)
	}
}
