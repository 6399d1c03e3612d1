package scene

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
)

// Scene is a named recipe for a populated world.
type Scene struct {
	Name        string
	Description string
	// Size is the side of the square world.
	Size float64
	// Frequency is the number of steps per simulated second.
	Frequency  float64
	Iterations int
	// Configure adjusts the default parameters before Build runs.
	Configure func(p *physics.Params)
	Build     func(w *physics.World, rng *rand.Rand) error
}

func (s Scene) TimeStep() float64 { return 1 / s.Frequency }

// New builds the scene into a fresh world. seed drives the randomised scenes.
func (s Scene) New(seed uint64) (*physics.World, error) {
	w, err := physics.NewWorld(s.Size, s.Size, s.TimeStep(), s.Iterations)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", s.Name, err)
	}
	if s.Configure != nil {
		p := w.Params()
		s.Configure(&p)
		if err := w.SetParams(p); err != nil {
			return nil, fmt.Errorf("scene %s: %w", s.Name, err)
		}
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	if err := s.Build(w, rng); err != nil {
		return nil, fmt.Errorf("scene %s: %w", s.Name, err)
	}
	return w, nil
}

type Registry struct {
	scenes map[string]Scene
}

// NewRegistry returns a registry holding the built-in scenes.
func NewRegistry() *Registry {
	r := &Registry{scenes: make(map[string]Scene)}
	for _, s := range builtin() {
		r.scenes[s.Name] = s
	}
	return r
}

func (r *Registry) Register(s Scene) error {
	switch {
	case s.Name == "":
		return fmt.Errorf("%w: scene needs a name", dynamo.ErrParameterBounds)
	case s.Build == nil:
		return fmt.Errorf("%w: scene %s has no builder", dynamo.ErrParameterBounds, s.Name)
	case !(s.Size > 0) || !(s.Frequency > 0) || s.Iterations < 1:
		return fmt.Errorf("%w: scene %s needs positive size, frequency and iterations", dynamo.ErrParameterBounds, s.Name)
	}
	if _, ok := r.scenes[s.Name]; ok {
		return fmt.Errorf("scene %s already registered", s.Name)
	}
	r.scenes[s.Name] = s
	return nil
}

func (r *Registry) Get(name string) (Scene, error) {
	s, ok := r.scenes[name]
	if !ok {
		return Scene{}, fmt.Errorf("%w: unknown scene: %s", dynamo.ErrNotFound, name)
	}
	return s, nil
}

// List returns the scene names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.scenes))
	for name := range r.scenes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
