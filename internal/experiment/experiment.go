package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/rubble/internal/config"
	"github.com/san-kum/rubble/internal/metrics"
	"github.com/san-kum/rubble/internal/physics"
	"github.com/san-kum/rubble/internal/scene"
	"github.com/san-kum/rubble/internal/sim"
)

// Experiment is one configured run of a scene.
type Experiment struct {
	cfg    config.Config
	scene  scene.Scene
	world  *physics.World
	runner *sim.Runner
}

// New builds the configured scene and applies the world overrides.
func New(reg *scene.Registry, cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sc, err := reg.Get(cfg.Scene)
	if err != nil {
		return nil, err
	}
	w, err := sc.New(cfg.Seed)
	if err != nil {
		return nil, err
	}
	p := w.Params()
	cfg.World.Apply(&p)
	if err := w.SetParams(p); err != nil {
		return nil, fmt.Errorf("scene %s overrides: %w", sc.Name, err)
	}
	return &Experiment{cfg: *cfg, scene: sc, world: w}, nil
}

// SetParams applies named scalar parameters on top of the config overrides.
func (e *Experiment) SetParams(values map[string]float64) error {
	p := e.world.Params()
	for name, v := range values {
		if err := p.SetParam(name, v); err != nil {
			return err
		}
	}
	return e.world.SetParams(p)
}

func (e *Experiment) Setup(ms []sim.Metric, logger *slog.Logger) {
	e.runner = sim.New(e.world)
	if logger != nil {
		e.runner.SetLogger(logger.With("scene", e.scene.Name))
	}
	for _, m := range ms {
		e.runner.AddMetric(m)
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.runner == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.runner.Run(ctx, sim.Config{
		Steps:         e.cfg.Steps,
		SampleEvery:   e.cfg.SampleEvery,
		Track:         e.cfg.Track,
		ValidateState: true,
	})
}

func (e *Experiment) Scene() scene.Scene      { return e.scene }
func (e *Experiment) World() *physics.World   { return e.world }
func (e *Experiment) Config() config.Config   { return e.cfg }

// Runner returns the underlying runner for adding observers. Nil before Setup.
func (e *Experiment) Runner() *sim.Runner { return e.runner }

func DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergy(),
		metrics.NewEnergyDrift(),
		metrics.NewStability(100),
		metrics.NewMaxStrain(),
		metrics.NewContacts(),
	}
}
