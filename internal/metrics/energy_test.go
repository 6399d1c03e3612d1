package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
)

func newWorld(t *testing.T) *physics.World {
	t.Helper()
	w, err := physics.NewWorld(10, 10, 0.01, 4)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestEnergyOfRestingParticle(t *testing.T) {
	w := newWorld(t)
	w.AddParticle(physics.ParticleSpec{Pos: dynamo.V(5, 2), Mass: 3})
	w.AddParticle(physics.ParticleSpec{Pos: dynamo.V(1, 9), Mass: 100, Fixed: true})

	if ke := KineticEnergy(w); ke != 0 {
		t.Errorf("expected zero kinetic energy, got %v", ke)
	}
	expected := 3 * 9.81 * 2
	if pe := PotentialEnergy(w); math.Abs(pe-expected) > 1e-9 {
		t.Errorf("expected potential energy %v, got %v", expected, pe)
	}
}

func TestKineticEnergy(t *testing.T) {
	w := newWorld(t)
	w.AddParticle(physics.ParticleSpec{Pos: dynamo.V(5, 5), Vel: dynamo.V(3, 4), Mass: 2})

	if ke := KineticEnergy(w); math.Abs(ke-25) > 1e-9 {
		t.Errorf("expected 25, got %v", ke)
	}
}

func TestEnergyDriftFreeFall(t *testing.T) {
	w := newWorld(t)
	p := w.Params()
	p.Damping = 0
	p.BoundaryCollisions = false
	w.SetParams(p)
	w.AddParticle(physics.ParticleSpec{Pos: dynamo.V(5, 9), Mass: 1})

	m := NewEnergyDrift()
	for range 100 {
		w.Step()
		m.Observe(w)
	}
	if d := m.Value(); d > 0.01 {
		t.Errorf("undamped free fall drifted by %v", d)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestEnergyReset(t *testing.T) {
	w := newWorld(t)
	w.AddParticle(physics.ParticleSpec{Pos: dynamo.V(5, 5), Mass: 1})

	m := NewEnergy()
	m.Observe(w)
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestMaxStrainAndContacts(t *testing.T) {
	w := newWorld(t)
	a, _ := w.AddParticle(physics.ParticleSpec{Pos: dynamo.V(2, 5), Mass: 1, Radius: 0.5, Fixed: true})
	b, _ := w.AddParticle(physics.ParticleSpec{Pos: dynamo.V(2.5, 5), Mass: 1, Radius: 0.5, Fixed: true})
	if _, err := w.AddDistanceConstraint(a, b, physics.WithRestDistance(0.25)); err != nil {
		t.Fatal(err)
	}

	strain := NewMaxStrain()
	contacts := NewContacts()
	for range 4 {
		w.Step()
		strain.Observe(w)
		contacts.Observe(w)
	}

	if got := strain.Value(); math.Abs(got-1) > 1e-9 {
		t.Errorf("max strain = %v, want 1", got)
	}
	if got := contacts.Value(); got != 1 {
		t.Errorf("contacts per step = %v, want 1", got)
	}
}

func TestStability(t *testing.T) {
	w := newWorld(t)
	w.AddParticle(physics.ParticleSpec{Pos: dynamo.V(5, 5), Vel: dynamo.V(50, 0), Mass: 1})

	s := NewStability(10)
	if s.Value() != 1 {
		t.Errorf("empty stability = %v", s.Value())
	}
	s.Observe(w)
	if s.Value() != 0 {
		t.Errorf("fast particle should violate: %v", s.Value())
	}
	s.Reset()
	if s.Value() != 1 {
		t.Error("expected reset stability of 1")
	}
}
