package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
)

// Divergence estimates the largest Lyapunov exponent of a world by stepping
// two copies side by side. newWorld must build identical worlds on every
// call. The first free particle of the second copy is displaced by
// perturbation along x; after every step the separation of all particle
// positions is measured and the perturbed copy is pulled back to the
// original distance.
func Divergence(newWorld func() (*physics.World, error), perturbation float64, steps int) (float64, error) {
	if !(perturbation > 0) || steps < 1 {
		return 0, fmt.Errorf("%w: need positive perturbation and steps", dynamo.ErrParameterBounds)
	}
	w, err := newWorld()
	if err != nil {
		return 0, err
	}
	wp, err := newWorld()
	if err != nil {
		return 0, err
	}
	if w.ParticleCount() != wp.ParticleCount() {
		return 0, fmt.Errorf("%w: builder produced different worlds", dynamo.ErrInvalidState)
	}

	moved := false
	for _, p := range wp.Particles() {
		if p.Fixed {
			continue
		}
		p.Teleport(p.Pos.Add(dynamo.V(perturbation, 0)))
		moved = true
		break
	}
	if !moved {
		return 0, fmt.Errorf("%w: world has no free particle", dynamo.ErrParameterBounds)
	}

	sumLog := 0.0
	for range steps {
		w.Step()
		wp.Step()
		if w.ParticleCount() != wp.ParticleCount() {
			return 0, &dynamo.SimulationError{
				Step:    w.Steps(),
				Time:    w.Time(),
				Wrapped: fmt.Errorf("%w: copies diverged in particle count", dynamo.ErrInvalidState),
			}
		}

		ps, pps := w.Particles(), wp.Particles()
		sep := 0.0
		for i := range ps {
			sep += ps[i].Pos.DistanceFromSquared(pps[i].Pos)
		}
		sep = math.Sqrt(sep)
		if !(sep > 0) || math.IsInf(sep, 0) {
			continue
		}
		sumLog += math.Log(sep / perturbation)

		scale := perturbation / sep
		for i := range ps {
			pps[i].Pos = ps[i].Pos.Add(pps[i].Pos.Sub(ps[i].Pos).Scale(scale))
			pps[i].PrevPos = ps[i].PrevPos.Add(pps[i].PrevPos.Sub(ps[i].PrevPos).Scale(scale))
		}
	}
	return sumLog / (float64(steps) * w.TimeStep()), nil
}
