package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/rubble/internal/dynamo"
)

func TestDefaultParamsValid(t *testing.T) {
	p := DefaultParams()
	if err := p.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if p.Attraction || !p.ParticleCollisions || !p.BoundaryCollisions {
		t.Errorf("unexpected toggles: %+v", p)
	}
	if p.Gravity != dynamo.V(0, -9.81) {
		t.Errorf("gravity = %v", p.Gravity)
	}
}

func TestDefaultFluidParamsResolveSoundSpeed(t *testing.T) {
	p := DefaultParams()
	// fluid scenes step at 100 Hz
	const dt = 0.01
	if c := math.Sqrt(p.PressureStiffness); c*dt > 0.4*p.SmoothingLength {
		t.Errorf("sound speed %v m/s crosses %v of a smoothing length per step", c, c*dt/p.SmoothingLength)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"no iterations", func(p *Params) { p.SolverIterations = 0 }},
		{"nan gravity", func(p *Params) { p.Gravity.X = math.NaN() }},
		{"negative damping", func(p *Params) { p.Damping = -0.1 }},
		{"damping above one", func(p *Params) { p.Damping = 1.5 }},
		{"infinite attraction", func(p *Params) { p.AttractionCoefficient = math.Inf(1) }},
		{"zero smoothing length", func(p *Params) { p.SmoothingLength = 0 }},
		{"zero rest density", func(p *Params) { p.RestDensity = 0 }},
		{"negative stiffness", func(p *Params) { p.PressureStiffness = -1 }},
		{"negative viscosity", func(p *Params) { p.Viscosity = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestSetParam(t *testing.T) {
	p := DefaultParams()
	for name := range p.GetParams() {
		if err := p.SetParam(name, 3); err != nil {
			t.Errorf("SetParam(%q): %v", name, err)
		}
	}
	for name, v := range p.GetParams() {
		if v != 3 {
			t.Errorf("%s = %v after SetParam", name, v)
		}
	}
	if err := p.SetParam("nope", 1); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("unknown parameter: %v", err)
	}
}
