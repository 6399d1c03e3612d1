package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
)

// Runner drives a world for a bounded number of steps.
type Runner struct {
	world     *physics.World
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
}

func New(w *physics.World) *Runner {
	return &Runner{
		world:     w,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) SetLogger(l *slog.Logger) {
	if l != nil {
		r.logger = l
	}
}

func (r *Runner) World() *physics.World { return r.world }

// Run steps the world cfg.Steps times. On cancellation, invalid state or a
// tracked particle leaving the world the partial result is returned along
// with the error.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	tracked, err := r.validateConfig(cfg)
	if err != nil {
		return nil, err
	}
	every := max(cfg.SampleEvery, 1)

	result := &Result{
		Times:   make([]float64, 0, cfg.Steps/every+1),
		Samples: make([][]dynamo.Vec2, 0, cfg.Steps/every+1),
		Metrics: make(map[string]float64),
	}
	for _, m := range r.metrics {
		m.Reset()
	}

	r.logger.Info("run started",
		"steps", cfg.Steps,
		"particles", r.world.ParticleCount(),
		"constraints", r.world.ConstraintCount(),
		"dt", r.world.TimeStep())

	r.sample(result, tracked)
	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			r.logger.Warn("run canceled", "step", r.world.Steps())
			r.collect(result)
			return result, &dynamo.SimulationError{
				Step:    r.world.Steps(),
				Time:    r.world.Time(),
				Wrapped: fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err()),
			}
		default:
		}

		r.world.Step()
		result.StepsTaken++

		if cfg.ValidateState && !r.world.Valid() {
			r.logger.Error("invalid state", "step", r.world.Steps(), "time", r.world.Time())
			r.collect(result)
			return result, &dynamo.SimulationError{
				Step:    r.world.Steps(),
				Time:    r.world.Time(),
				Wrapped: fmt.Errorf("%w: non-finite particle position", dynamo.ErrInvalidState),
			}
		}

		if n := r.world.BrokenLastStep(); n > 0 {
			result.Broken += n
			r.logger.Debug("constraints broke", "step", r.world.Steps(), "count", n)
		}
		for _, m := range r.metrics {
			m.Observe(r.world)
		}
		for _, obs := range r.observers {
			obs.OnStep(r.world)
		}
		if k := r.lost(tracked); k >= 0 {
			r.logger.Warn("tracked particle gone", "step", r.world.Steps(), "track", cfg.Track[k])
			r.collect(result)
			return result, &dynamo.SimulationError{
				Step:    r.world.Steps(),
				Time:    r.world.Time(),
				Wrapped: fmt.Errorf("%w: tracked particle %d removed or expired", dynamo.ErrNotFound, cfg.Track[k]),
			}
		}
		if (i+1)%every == 0 {
			r.sample(result, tracked)
		}
	}

	r.collect(result)
	r.logger.Info("run finished",
		"steps", result.StepsTaken,
		"time", r.world.Time(),
		"broken", result.Broken,
		"particles", r.world.ParticleCount())
	return result, nil
}

// RunWithCallback steps until callback returns false or steps is reached.
// steps <= 0 runs until the callback or ctx stops it.
func (r *Runner) RunWithCallback(ctx context.Context, steps int, callback func(*physics.World) bool) error {
	for i := 0; steps <= 0 || i < steps; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		r.world.Step()
		if !r.world.Valid() {
			return &dynamo.SimulationError{
				Step:    r.world.Steps(),
				Time:    r.world.Time(),
				Wrapped: dynamo.ErrInvalidState,
			}
		}
		if !callback(r.world) {
			return nil
		}
	}
	return nil
}

func (r *Runner) validateConfig(cfg Config) ([]*physics.Particle, error) {
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrParameterBounds, cfg.Steps)
	}
	if cfg.SampleEvery < 0 {
		return nil, fmt.Errorf("%w: sample interval must be non-negative, got %d", dynamo.ErrParameterBounds, cfg.SampleEvery)
	}
	tracked := make([]*physics.Particle, 0, len(cfg.Track))
	for _, idx := range cfg.Track {
		p, err := r.world.ParticleAt(idx)
		if err != nil {
			return nil, fmt.Errorf("track: %w", err)
		}
		tracked = append(tracked, p)
	}
	return tracked, nil
}

// lost returns the position in tracked of the first particle no longer in
// the world, or -1.
func (r *Runner) lost(tracked []*physics.Particle) int {
	for k, p := range tracked {
		if !r.world.Contains(p) {
			return k
		}
	}
	return -1
}

func (r *Runner) sample(result *Result, tracked []*physics.Particle) {
	if len(tracked) == 0 {
		return
	}
	row := make([]dynamo.Vec2, len(tracked))
	for k, p := range tracked {
		row[k] = p.Pos
	}
	result.Times = append(result.Times, r.world.Time())
	result.Samples = append(result.Samples, row)
}

func (r *Runner) collect(result *Result) {
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
