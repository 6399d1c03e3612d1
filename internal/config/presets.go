package config

import (
	"slices"

	"github.com/san-kum/rubble/internal/dynamo"
)

func ptr[T any](v T) *T { return &v }

var Presets = map[string]map[string]*Config{
	"rope-stiff": {
		"short": {Scene: "rope-stiff", Steps: 250, SampleEvery: 1, Track: []int{14}},
		"long":  {Scene: "rope-stiff", Steps: 3000, SampleEvery: 5, Track: []int{7, 14}},
		"slack": {
			Scene: "rope-stiff", Steps: 1000, SampleEvery: 2, Track: []int{14},
			World: WorldConfig{SolverIterations: ptr(2)},
		},
	},
	"double-pendulum": {
		"chaos": {Scene: "double-pendulum", Steps: 6000, SampleEvery: 1, Track: []int{1, 2}},
		"damped": {
			Scene: "double-pendulum", Steps: 3000, SampleEvery: 2, Track: []int{1, 2},
			World: WorldConfig{Damping: ptr(0.01)},
		},
	},
	"fluid-single-column": {
		"collapse": {Scene: "fluid-single-column", Steps: 400, SampleEvery: 4, Track: []int{0}},
		"naive": {
			Scene: "fluid-single-column", Steps: 200, SampleEvery: 4, Track: []int{0},
			World: WorldConfig{SpatialPartitioning: ptr(false)},
		},
	},
	"gravitation-binary-stars": {
		"orbit": {Scene: "gravitation-binary-stars", Steps: 5000, SampleEvery: 5, Track: []int{0, 1}},
	},
	"cloth-breakable": {
		"tear": {Scene: "cloth-breakable", Steps: 1500, SampleEvery: 10},
		"brittle": {
			Scene: "cloth-breakable", Steps: 1500, SampleEvery: 10,
			World: WorldConfig{Gravity: &dynamo.Vec2{Y: -20}, SolverIterations: ptr(4)},
		},
	},
}

// GetPreset returns a copy of the named preset with defaults filled in, or
// nil when it does not exist.
func GetPreset(scene, preset string) *Config {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	p, ok := scenePresets[preset]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Track = slices.Clone(p.Track)
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	return &cfg
}

func ListPresets(scene string) []string {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
