package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/experiment"
)

// GridSearch evaluates every combination of parameter values and keeps the
// one with the smallest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// Trial is one evaluated grid point. Runs that went unstable are kept with
// Err set and do not compete for best.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: need one range per parameter", dynamo.ErrParameterBounds)
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("%w: empty range for %s", dynamo.ErrParameterBounds, params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (Trial, []Trial, error) {
	best := Trial{Value: math.Inf(1)}
	var trials []Trial

	err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &best, &trials)
	if err != nil {
		return best, trials, err
	}
	if best.Params == nil {
		return best, trials, fmt.Errorf("%w: no stable grid point", dynamo.ErrInvalidState)
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	best *Trial,
	trials *[]Trial,
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err)
		}
		exp, err := buildExperiment(current)
		if err != nil {
			return err
		}

		trial := Trial{Params: maps.Clone(current)}
		result, err := exp.Run(ctx)
		switch {
		case errors.Is(err, dynamo.ErrInvalidState):
			trial.Err = err
			*trials = append(*trials, trial)
			return nil
		case err != nil:
			return err
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("%w: metric %q", dynamo.ErrNotFound, metricName)
		}
		trial.Value = val
		*trials = append(*trials, trial)
		if val < best.Value {
			*best = trial
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := maps.Clone(current)
		next[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, next, buildExperiment, metricName, best, trials); err != nil {
			return err
		}
	}
	return nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

// ParseRange reads "name=lo:hi:n" into a parameter name and its values.
func ParseRange(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("%w: range %q, want name=lo:hi:n", dynamo.ErrParameterBounds, s)
	}
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("%w: range %q, want name=lo:hi:n", dynamo.ErrParameterBounds, s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("range %s: %w", name, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("range %s: %w", name, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", nil, fmt.Errorf("range %s: %w", name, err)
	}
	if n < 1 {
		return "", nil, fmt.Errorf("%w: range %s needs at least one point", dynamo.ErrParameterBounds, name)
	}
	return name, Linspace(lo, hi, n), nil
}
