package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/rubble/internal/config"
	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/experiment"
	"github.com/san-kum/rubble/internal/scene"
)

func builder(t *testing.T, steps int) func(map[string]float64) (*experiment.Experiment, error) {
	t.Helper()
	reg := scene.NewRegistry()
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := config.DefaultConfig()
		cfg.Steps = steps
		exp, err := experiment.New(reg, cfg)
		if err != nil {
			return nil, err
		}
		if err := exp.SetParams(params); err != nil {
			return nil, err
		}
		exp.Setup(experiment.DefaultMetrics(), nil)
		return exp, nil
	}
}

func TestGridSearch(t *testing.T) {
	g, err := NewGridSearch(
		[]string{"damping", "iterations"},
		[][]float64{{0, 0.2}, {1, 10}},
	)
	if err != nil {
		t.Fatal(err)
	}

	best, trials, err := g.Search(context.Background(), builder(t, 40), "energy")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(trials) != 4 {
		t.Fatalf("expected 4 trials, got %d", len(trials))
	}
	for _, tr := range trials {
		if tr.Err == nil && tr.Value < best.Value {
			t.Errorf("trial %v beats best %v", tr, best)
		}
	}
	if _, ok := best.Params["damping"]; !ok {
		t.Errorf("best params missing damping: %v", best.Params)
	}
}

func TestGridSearchErrors(t *testing.T) {
	if _, err := NewGridSearch([]string{"damping"}, nil); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
	if _, err := NewGridSearch([]string{"damping"}, [][]float64{{}}); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}

	g, _ := NewGridSearch([]string{"damping"}, [][]float64{{0.01}})
	if _, _, err := g.Search(context.Background(), builder(t, 5), "nope"); !errors.Is(err, dynamo.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	g, _ = NewGridSearch([]string{"bogus"}, [][]float64{{1}})
	if _, _, err := g.Search(context.Background(), builder(t, 5), "energy"); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g, _ = NewGridSearch([]string{"damping"}, [][]float64{{0.01}})
	if _, _, err := g.Search(ctx, builder(t, 5), "energy"); !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Errorf("expected ErrContextCanceled, got %v", err)
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		values  []float64
		wantErr bool
	}{
		{"damping=0:0.1:3", "damping", []float64{0, 0.05, 0.1}, false},
		{"iterations=5:5:1", "iterations", []float64{5}, false},
		{"damping", "", nil, true},
		{"damping=0:1", "", nil, true},
		{"damping=a:1:2", "", nil, true},
		{"damping=0:1:0", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, values, err := ParseRange(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if name != tt.name || len(values) != len(tt.values) {
				t.Fatalf("got %s %v", name, values)
			}
			for i := range values {
				if math.Abs(values[i]-tt.values[i]) > 1e-12 {
					t.Errorf("value %d: expected %v, got %v", i, tt.values[i], values[i])
				}
			}
		})
	}
}
