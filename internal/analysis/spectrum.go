package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/rubble/internal/dynamo"
)

// PowerSpectrum returns the magnitudes of bins 0..n/2 of the series with
// its mean removed.
func PowerSpectrum(samples []float64) []float64 {
	if len(samples) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))

	centered := make([]float64, len(samples))
	for i, v := range samples {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, len(coeffs)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-zero
// bin for samples taken every dt seconds.
func DominantFrequency(samples []float64, dt float64) (float64, error) {
	if len(samples) < 4 {
		return 0, fmt.Errorf("%w: need at least 4 samples, got %d", dynamo.ErrParameterBounds, len(samples))
	}
	if !(dt > 0) {
		return 0, fmt.Errorf("%w: sample interval must be positive, got %v", dynamo.ErrParameterBounds, dt)
	}

	ps := PowerSpectrum(samples)
	peak, peakMag := 0, 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > peakMag {
			peak, peakMag = i, ps[i]
		}
	}
	if peak == 0 || peakMag < 1e-12 {
		return 0, nil
	}
	return float64(peak) / (float64(len(samples)) * dt), nil
}

// Crossings returns the interpolated times at which the series rises
// through threshold.
func Crossings(times, values []float64, threshold float64) []float64 {
	n := min(len(times), len(values))
	var out []float64
	for i := 1; i < n; i++ {
		prev, curr := values[i-1], values[i]
		if prev >= threshold || curr < threshold {
			continue
		}
		frac := (threshold - prev) / (curr - prev)
		if math.IsNaN(frac) || math.IsInf(frac, 0) {
			frac = 0.5
		}
		out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
	}
	return out
}

// Period is the mean interval between upward crossings of the series mean.
// It returns 0 when fewer than two crossings occur.
func Period(times, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	c := Crossings(times, values, mean)
	if len(c) < 2 {
		return 0
	}
	return (c[len(c)-1] - c[0]) / float64(len(c)-1)
}
