package metrics

import (
	"github.com/san-kum/rubble/internal/physics"
)

// Stability is the fraction of steps in which every particle stayed finite
// and below a speed threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(w *physics.World) {
	s.samples++
	limit := s.threshold * s.threshold
	for _, p := range w.Particles() {
		if !p.Pos.IsValid() || p.Vel.MagnitudeSquared() > limit {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
