package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rubble/internal/config"
	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/experiment"
	"github.com/san-kum/rubble/internal/scene"
	"github.com/san-kum/rubble/internal/sim"
)

// Scenario is a scripted batch of runs loaded from yaml.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun is one run of a scenario. Zero fields keep the preset or
// default value.
type ScenarioRun struct {
	Scene       string             `yaml:"scene"`
	Preset      string             `yaml:"preset"`
	Steps       int                `yaml:"steps"`
	Seed        uint64             `yaml:"seed"`
	SampleEvery int                `yaml:"sample_every"`
	Track       []int              `yaml:"track"`
	World       config.WorldConfig `yaml:"world"`
	Params      map[string]float64 `yaml:"params"`
}

// Outcome pairs a finished run with the experiment that produced it.
type Outcome struct {
	Experiment *experiment.Experiment
	Result     *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("%w: scenario %q has no runs", dynamo.ErrParameterBounds, scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the run against its preset and the defaults.
func (r ScenarioRun) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if r.Preset != "" {
		cfg = config.GetPreset(r.Scene, r.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: preset %s/%s", dynamo.ErrNotFound, r.Scene, r.Preset)
		}
	}
	cfg.Scene = r.Scene
	if r.Steps > 0 {
		cfg.Steps = r.Steps
	}
	if r.Seed != 0 {
		cfg.Seed = r.Seed
	}
	if r.SampleEvery > 0 {
		cfg.SampleEvery = r.SampleEvery
	}
	if r.Track != nil {
		cfg.Track = r.Track
	}
	mergeWorld(&cfg.World, r.World)
	return cfg, cfg.Validate()
}

func mergeWorld(dst *config.WorldConfig, src config.WorldConfig) {
	if src.Gravity != nil {
		dst.Gravity = src.Gravity
	}
	if src.Damping != nil {
		dst.Damping = src.Damping
	}
	if src.ParticleCollisions != nil {
		dst.ParticleCollisions = src.ParticleCollisions
	}
	if src.BoundaryCollisions != nil {
		dst.BoundaryCollisions = src.BoundaryCollisions
	}
	if src.Attraction != nil {
		dst.Attraction = src.Attraction
	}
	if src.AttractionCoefficient != nil {
		dst.AttractionCoefficient = src.AttractionCoefficient
	}
	if src.SolverIterations != nil {
		dst.SolverIterations = src.SolverIterations
	}
	if src.SmoothingLength != nil {
		dst.SmoothingLength = src.SmoothingLength
	}
	if src.RestDensity != nil {
		dst.RestDensity = src.RestDensity
	}
	if src.PressureStiffness != nil {
		dst.PressureStiffness = src.PressureStiffness
	}
	if src.Viscosity != nil {
		dst.Viscosity = src.Viscosity
	}
	if src.SpatialPartitioning != nil {
		dst.SpatialPartitioning = src.SpatialPartitioning
	}
}

// RunScenario executes the runs in order and stops at the first failure,
// returning the outcomes that completed.
func RunScenario(ctx context.Context, reg *scene.Registry, scenario *Scenario, logger *slog.Logger) ([]Outcome, error) {
	logger = orDiscard(logger)
	outcomes := make([]Outcome, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		logger.Info("scenario run", "index", i+1, "of", len(scenario.Runs), "scene", run.Scene)

		cfg, err := run.Config()
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}
		exp, err := experiment.New(reg, cfg)
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}
		if err := exp.SetParams(run.Params); err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}
		exp.Setup(experiment.DefaultMetrics(), logger)

		result, err := exp.Run(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}
		outcomes = append(outcomes, Outcome{Experiment: exp, Result: result})
	}
	return outcomes, nil
}

// MonteCarloConfig runs one scene under many seeds, optionally jittering
// every free particle by up to Perturbation on each axis.
type MonteCarloConfig struct {
	Scene        string
	Trials       int
	Steps        int
	Seed         uint64
	Perturbation float64
	// Metric is reported per trial; one of experiment.DefaultMetrics.
	Metric string
}

type MonteCarloResult struct {
	Trial  int
	Seed   uint64
	Stable bool
	Value  float64
	Broken int
}

func RunMonteCarlo(ctx context.Context, reg *scene.Registry, mc MonteCarloConfig, logger *slog.Logger) ([]MonteCarloResult, error) {
	logger = orDiscard(logger)
	if mc.Trials < 1 || mc.Perturbation < 0 {
		return nil, fmt.Errorf("%w: trials must be positive and perturbation non-negative", dynamo.ErrParameterBounds)
	}
	results := make([]MonteCarloResult, 0, mc.Trials)

	for trial := 0; trial < mc.Trials; trial++ {
		cfg := config.DefaultConfig()
		cfg.Scene = mc.Scene
		cfg.Seed = mc.Seed + uint64(trial)
		if mc.Steps > 0 {
			cfg.Steps = mc.Steps
		}

		exp, err := experiment.New(reg, cfg)
		if err != nil {
			return nil, err
		}
		if mc.Perturbation > 0 {
			jitter(exp, rand.New(rand.NewPCG(mc.Seed, uint64(trial))), mc.Perturbation)
		}
		exp.Setup(experiment.DefaultMetrics(), nil)

		result, err := exp.Run(ctx)
		stable := true
		switch {
		case errors.Is(err, dynamo.ErrInvalidState):
			stable = false
		case err != nil:
			return results, err
		}

		value, ok := result.Metrics[mc.Metric]
		if !ok {
			return nil, fmt.Errorf("%w: metric %q", dynamo.ErrNotFound, mc.Metric)
		}
		results = append(results, MonteCarloResult{
			Trial:  trial,
			Seed:   cfg.Seed,
			Stable: stable,
			Value:  value,
			Broken: result.Broken,
		})

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo", "done", trial+1, "of", mc.Trials)
		}
	}
	return results, nil
}

func jitter(exp *experiment.Experiment, rng *rand.Rand, amount float64) {
	for _, p := range exp.World().Particles() {
		if p.Fixed {
			continue
		}
		p.Teleport(p.Pos.Add(dynamo.Vec2{
			X: (rng.Float64()*2 - 1) * amount,
			Y: (rng.Float64()*2 - 1) * amount,
		}))
	}
}

// MonteCarloStats counts stable trials and averages the metric over them.
func MonteCarloStats(results []MonteCarloResult) (stable, unstable int, mean float64) {
	var sum float64
	for _, r := range results {
		if r.Stable {
			stable++
			sum += r.Value
		} else {
			unstable++
		}
	}
	if stable > 0 {
		mean = sum / float64(stable)
	}
	return
}

func orDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l
}
