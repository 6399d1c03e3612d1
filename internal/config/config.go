package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
)

const (
	DefaultScene       = "rope-stiff"
	DefaultSteps       = 500
	DefaultSampleEvery = 5
	DefaultDataDir     = "data"
)

type Config struct {
	Scene       string      `yaml:"scene"`
	Steps       int         `yaml:"steps"`
	Seed        uint64      `yaml:"seed"`
	SampleEvery int         `yaml:"sample_every"`
	Track       []int       `yaml:"track,omitempty"`
	DataDir     string      `yaml:"data_dir"`
	World       WorldConfig `yaml:"world,omitempty"`
}

// WorldConfig overrides a scene's world parameters. Unset fields keep the
// scene's own value.
type WorldConfig struct {
	Gravity               *dynamo.Vec2 `yaml:"gravity,omitempty"`
	Damping               *float64     `yaml:"damping,omitempty"`
	ParticleCollisions    *bool        `yaml:"particle_collisions,omitempty"`
	BoundaryCollisions    *bool        `yaml:"boundary_collisions,omitempty"`
	Attraction            *bool        `yaml:"attraction,omitempty"`
	AttractionCoefficient *float64     `yaml:"attraction_coefficient,omitempty"`
	SolverIterations      *int         `yaml:"solver_iterations,omitempty"`
	SmoothingLength       *float64     `yaml:"smoothing_length,omitempty"`
	RestDensity           *float64     `yaml:"rest_density,omitempty"`
	PressureStiffness     *float64     `yaml:"pressure_stiffness,omitempty"`
	Viscosity             *float64     `yaml:"viscosity,omitempty"`
	SpatialPartitioning   *bool        `yaml:"spatial_partitioning,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:       DefaultScene,
		Steps:       DefaultSteps,
		SampleEvery: DefaultSampleEvery,
		Track:       []int{},
		DataDir:     DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Scene == "":
		return fmt.Errorf("%w: scene is required", dynamo.ErrParameterBounds)
	case c.Steps <= 0:
		return fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrParameterBounds, c.Steps)
	case c.SampleEvery < 0:
		return fmt.Errorf("%w: sample_every must be non-negative, got %d", dynamo.ErrParameterBounds, c.SampleEvery)
	}
	for _, idx := range c.Track {
		if idx < 0 {
			return fmt.Errorf("%w: negative track index %d", dynamo.ErrParameterBounds, idx)
		}
	}
	return nil
}

// Apply writes the set overrides into p.
func (w WorldConfig) Apply(p *physics.Params) {
	if w.Gravity != nil {
		p.Gravity = *w.Gravity
	}
	setFloat(&p.Damping, w.Damping)
	setBool(&p.ParticleCollisions, w.ParticleCollisions)
	setBool(&p.BoundaryCollisions, w.BoundaryCollisions)
	setBool(&p.Attraction, w.Attraction)
	setFloat(&p.AttractionCoefficient, w.AttractionCoefficient)
	if w.SolverIterations != nil {
		p.SolverIterations = *w.SolverIterations
	}
	setFloat(&p.SmoothingLength, w.SmoothingLength)
	setFloat(&p.RestDensity, w.RestDensity)
	setFloat(&p.PressureStiffness, w.PressureStiffness)
	setFloat(&p.Viscosity, w.Viscosity)
	setBool(&p.SpatialPartitioning, w.SpatialPartitioning)
}

func setFloat(dst, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst, src *bool) {
	if src != nil {
		*dst = *src
	}
}
