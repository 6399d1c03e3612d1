package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/physics"
)

// SweepPoint holds the distinct heights a particle visited for one
// parameter value.
type SweepPoint struct {
	Param  float64
	Values []float64
}

type SweepConfig struct {
	// Param is a key understood by physics.Params.SetParam.
	Param    string
	Min, Max float64
	Points   int
	// Track is the index of the recorded particle.
	Track int
	// Transient steps run before recording starts.
	Transient int
	Record    int
}

// Sweep rebuilds the world for each parameter value, lets it settle and
// records the distinct y positions of the tracked particle, quantised to
// 1e-3. It is the particle-world form of a bifurcation diagram.
func Sweep(newWorld func() (*physics.World, error), cfg SweepConfig) ([]SweepPoint, error) {
	if cfg.Points < 2 {
		cfg.Points = 2
	}
	if cfg.Record < 1 || cfg.Transient < 0 {
		return nil, fmt.Errorf("%w: record must be positive and transient non-negative", dynamo.ErrParameterBounds)
	}
	step := (cfg.Max - cfg.Min) / float64(cfg.Points-1)

	results := make([]SweepPoint, 0, cfg.Points)
	for i := range cfg.Points {
		value := cfg.Min + float64(i)*step

		w, err := newWorld()
		if err != nil {
			return results, err
		}
		p := w.Params()
		if err := p.SetParam(cfg.Param, value); err != nil {
			return results, err
		}
		if err := w.SetParams(p); err != nil {
			return results, fmt.Errorf("%s=%v: %w", cfg.Param, value, err)
		}
		tracked, err := w.ParticleAt(cfg.Track)
		if err != nil {
			return results, err
		}

		for range cfg.Transient {
			w.Step()
		}
		values := make([]float64, 0, 100)
		seen := make(map[int]bool)
		for range cfg.Record {
			w.Step()
			y := tracked.Pos.Y
			key := int(y * 1000)
			if !seen[key] {
				seen[key] = true
				values = append(values, y)
			}
		}
		results = append(results, SweepPoint{Param: value, Values: values})
	}
	return results, nil
}

// SweepToASCII draws one column per sweep point.
func SweepToASCII(data []SweepPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	found := false
	for _, p := range data {
		for _, v := range p.Values {
			if !found {
				minVal, maxVal = v, v
				found = true
				continue
			}
			minVal, maxVal = min(minVal, v), max(maxVal, v)
		}
	}
	if !found {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	for i, p := range data {
		col := min(i*width/len(data), width-1)
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
