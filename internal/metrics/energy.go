package metrics

import (
	"math"

	"github.com/san-kum/rubble/internal/physics"
)

// KineticEnergy sums ½mv² over the movable particles.
func KineticEnergy(w *physics.World) float64 {
	var ke float64
	for _, p := range w.Particles() {
		if p.Fixed {
			continue
		}
		ke += 0.5 * p.Mass * p.Vel.MagnitudeSquared()
	}
	return ke
}

// PotentialEnergy is the energy of the movable particles in the uniform
// gravity field, zero at the origin.
func PotentialEnergy(w *physics.World) float64 {
	g := w.Params().Gravity
	var pe float64
	for _, p := range w.Particles() {
		if p.Fixed {
			continue
		}
		pe -= p.Mass * g.Dot(p.Pos)
	}
	return pe
}

func TotalEnergy(w *physics.World) float64 {
	return KineticEnergy(w) + PotentialEnergy(w)
}

// Energy is the mean total energy over the observed steps.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(w *physics.World) {
	e.totalEnergy += TotalEnergy(w)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative deviation from the first observed
// total energy.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(w *physics.World) {
	energy := TotalEnergy(w)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
