package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
)

func sine(freq, dt float64, n int, offset float64) ([]float64, []float64) {
	times := make([]float64, n)
	values := make([]float64, n)
	for i := range n {
		times[i] = float64(i) * dt
		values[i] = offset + math.Sin(2*math.Pi*freq*times[i])
	}
	return times, values
}

func TestPowerSpectrum(t *testing.T) {
	_, values := sine(2, 0.01, 400, 3)
	ps := PowerSpectrum(values)

	if len(ps) != 201 {
		t.Fatalf("expected 201 bins, got %d", len(ps))
	}
	if ps[0] > 1e-9 {
		t.Errorf("mean should be removed, dc bin is %g", ps[0])
	}
	for i, v := range ps {
		if i != 8 && v > ps[8] {
			t.Errorf("bin %d (%g) exceeds the signal bin (%g)", i, v, ps[8])
		}
	}
	if PowerSpectrum(nil) != nil {
		t.Error("expected nil spectrum for empty input")
	}
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		dt   float64
		n    int
	}{
		{"2Hz", 2, 0.01, 400},
		{"half Hz", 0.5, 0.02, 500},
		{"odd length", 5, 0.01, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, values := sine(tt.freq, tt.dt, tt.n, 1)
			got, err := DominantFrequency(values, tt.dt)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.freq) > 1e-9 {
				t.Errorf("expected %f Hz, got %f", tt.freq, got)
			}
		})
	}
}

func TestDominantFrequencyEdgeCases(t *testing.T) {
	if _, err := DominantFrequency([]float64{1, 2}, 0.1); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds for short input, got %v", err)
	}
	if _, err := DominantFrequency(make([]float64, 8), 0); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds for zero dt, got %v", err)
	}
	got, err := DominantFrequency([]float64{4, 4, 4, 4, 4, 4}, 0.1)
	if err != nil || got != 0 {
		t.Errorf("constant series: expected 0, got %f (%v)", got, err)
	}
}

func TestCrossings(t *testing.T) {
	times := []float64{0, 1, 2, 3, 4}
	values := []float64{-1, 1, 0.5, -1, 3}

	got := Crossings(times, values, 0)
	want := []float64{0.5, 3.25}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("crossing %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestPeriod(t *testing.T) {
	times, values := sine(2, 0.001, 3000, 7)
	if got := Period(times, values); math.Abs(got-0.5) > 1e-3 {
		t.Errorf("expected period 0.5, got %f", got)
	}
	if got := Period([]float64{0, 1}, []float64{1, 1}); got != 0 {
		t.Errorf("expected 0 without crossings, got %f", got)
	}
}

func TestPortraitToASCII(t *testing.T) {
	points := []dynamo.Vec2{dynamo.V(-1, -1), dynamo.V(0, 0), dynamo.V(1, 1)}
	out := PortraitToASCII(points, 20, 10)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 lines, got %d", len(lines))
	}
	if strings.Count(out, "•") != 3 {
		t.Errorf("expected 3 points, got %d", strings.Count(out, "•"))
	}
	if !strings.Contains(out, "│") || !strings.Contains(out, "─") {
		t.Error("expected both axes")
	}
	if PortraitToASCII(nil, 20, 10) != "" {
		t.Error("expected empty output without points")
	}
}

func freeParticleWorld(t *testing.T) func() (*physics.World, error) {
	t.Helper()
	return func() (*physics.World, error) {
		w, err := physics.NewWorld(10, 10, 0.1, 5)
		if err != nil {
			return nil, err
		}
		_, err = w.AddParticle(physics.ParticleSpec{Pos: dynamo.V(5, 5), Mass: 1, Radius: 0.1})
		return w, err
	}
}

func TestDivergenceOfFreeParticle(t *testing.T) {
	rate, err := Divergence(freeParticleWorld(t), 1e-6, 10)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(rate) > 1e-6 {
		t.Errorf("uniform motion should not diverge, got %g", rate)
	}
}

func TestDivergenceErrors(t *testing.T) {
	if _, err := Divergence(freeParticleWorld(t), 0, 10); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}

	fixedOnly := func() (*physics.World, error) {
		w, err := physics.NewWorld(10, 10, 0.1, 5)
		if err != nil {
			return nil, err
		}
		_, err = w.AddParticle(physics.ParticleSpec{Pos: dynamo.V(5, 5), Mass: 1, Fixed: true})
		return w, err
	}
	if _, err := Divergence(fixedOnly, 1e-6, 10); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds without free particles, got %v", err)
	}
}

func TestSweep(t *testing.T) {
	data, err := Sweep(freeParticleWorld(t), SweepConfig{
		Param:  "gravity",
		Min:    -10,
		Max:    0,
		Points: 2,
		Record: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 2 {
		t.Fatalf("expected 2 points, got %d", len(data))
	}
	if data[1].Param != 0 {
		t.Errorf("expected last param 0, got %f", data[1].Param)
	}
	if len(data[0].Values) != 1 || math.Abs(data[0].Values[0]-4.9) > 1e-9 {
		t.Errorf("expected y 4.9 under gravity, got %v", data[0].Values)
	}
	if len(data[1].Values) != 1 || data[1].Values[0] != 5 {
		t.Errorf("expected y 5 without gravity, got %v", data[1].Values)
	}

	out := SweepToASCII(data, 10, 5)
	if strings.Count(out, "•") != 2 {
		t.Errorf("expected 2 plotted values, got %q", out)
	}
}

func TestSweepErrors(t *testing.T) {
	if _, err := Sweep(freeParticleWorld(t), SweepConfig{Param: "bogus", Record: 1}); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds for unknown param, got %v", err)
	}
	if _, err := Sweep(freeParticleWorld(t), SweepConfig{Param: "gravity", Record: 1, Track: 3}); !errors.Is(err, dynamo.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing particle, got %v", err)
	}
	if _, err := Sweep(freeParticleWorld(t), SweepConfig{Param: "gravity"}); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds for zero record, got %v", err)
	}
}
