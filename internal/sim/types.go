package sim

import (
	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
)

// Metric accumulates a scalar over the steps of a run.
type Metric interface {
	Name() string
	Observe(w *physics.World)
	Value() float64
	Reset()
}

// Observer is notified after every step.
type Observer interface {
	OnStep(w *physics.World)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(w *physics.World)

func (f ObserverFunc) OnStep(w *physics.World) { f(w) }

type Config struct {
	Steps int
	// SampleEvery records tracked positions every n steps. Zero means 1.
	SampleEvery int
	// Track lists particle indices whose positions are sampled.
	Track []int
	// ValidateState stops the run on the first NaN or Inf position.
	ValidateState bool
}

type Result struct {
	Times []float64
	// Samples[i][k] is the position of Track[k] at Times[i].
	Samples    [][]dynamo.Vec2
	Metrics    map[string]float64
	StepsTaken int
	Broken     int
}

// Series returns one coordinate of one tracked particle over time. axis is
// 0 for x and 1 for y.
func (r *Result) Series(track, axis int) []float64 {
	out := make([]float64, 0, len(r.Samples))
	for _, s := range r.Samples {
		if track >= len(s) {
			return nil
		}
		if axis == 0 {
			out = append(out, s[track].X)
		} else {
			out = append(out, s[track].Y)
		}
	}
	return out
}
