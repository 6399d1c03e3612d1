package main

import (
	"fmt"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rubble/internal/analysis"
	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/export"
	"github.com/san-kum/rubble/internal/gui"
	"github.com/san-kum/rubble/internal/physics"
	"github.com/san-kum/rubble/internal/storage"
	"github.com/san-kum/rubble/internal/viz"
)

func loadRun(runID string) (*storage.RunMetadata, [][]float64, []float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(states) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: run %s has no samples", dynamo.ErrNotFound, runID)
	}
	return meta, states, times, nil
}

func checkSeries(meta *storage.RunMetadata, k int) error {
	if k < 0 || k >= len(meta.Track) {
		return fmt.Errorf("%w: series %d (run tracks %d particles)", dynamo.ErrParameterBounds, k, len(meta.Track))
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, states, _, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s)\n\n", meta.ID, meta.Scene)

	for k, idx := range meta.Track {
		if plotSeries >= 0 && k != plotSeries {
			continue
		}
		for axis, name := range []string{"x", "y"} {
			data := storage.Column(states, 2*k+axis)
			if len(data) == 0 {
				continue
			}
			graph := asciigraph.Plot(data,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("particle %d %s", idx, name)),
			)
			fmt.Println(graph)
			fmt.Println()
		}
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, states, times, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if err := checkSeries(meta, series); err != nil {
		return err
	}
	col := 2 * series
	switch axis {
	case "x":
	case "y":
		col++
	default:
		return fmt.Errorf("%w: axis must be x or y", dynamo.ErrParameterBounds)
	}

	data := storage.Column(states, col)
	sampleDt := meta.Dt * float64(meta.SampleEvery)

	fmt.Printf("particle %d %s over %d samples (every %.4fs)\n\n", meta.Track[series], axis, len(data), sampleDt)

	freq, err := analysis.DominantFrequency(data, sampleDt)
	if err != nil {
		return err
	}
	fmt.Printf("  dominant frequency: %.4f Hz\n", freq)
	if freq > 0 {
		fmt.Printf("  spectral period:    %.4f s\n", 1/freq)
	}
	if period := analysis.Period(times, data); period > 0 {
		fmt.Printf("  crossing period:    %.4f s\n", period)
	} else {
		fmt.Println("  crossing period:    n/a")
	}

	spectrum := analysis.PowerSpectrum(data)
	if len(spectrum) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(spectrum[1:],
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum"),
		))
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, states, _, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if err := checkSeries(meta, series); err != nil {
		return err
	}

	xs := storage.Column(states, 2*series)
	ys := storage.Column(states, 2*series+1)
	points := make([]dynamo.Vec2, len(xs))
	for i := range xs {
		points[i] = dynamo.Vec2{X: xs[i], Y: ys[i]}
	}

	fmt.Printf("path of particle %d (%s)\n\n", meta.Track[series], meta.ID)
	fmt.Println(analysis.PortraitToASCII(points, 60, 24))

	if outFile != "" {
		svg := export.TrajectoryToSVG(points, 600, 600, "#00ffff")
		if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("saved %s\n", outFile)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return viz.RunInteractive(registry, seed, frameRate)
	}
	sc, err := registry.Get(args[0])
	if err != nil {
		return err
	}
	return viz.RunLive(sc, seed, frameRate)
}

func runGUI(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return gui.RunInteractive(registry, seed)
	}
	return gui.Run(registry, args[0], seed)
}

func buildScene(name string) (*physics.World, error) {
	sc, err := registry.Get(name)
	if err != nil {
		return nil, err
	}
	return sc.New(seed)
}

func svgSnapshot(cmd *cobra.Command, args []string) error {
	w, err := buildScene(args[0])
	if err != nil {
		return err
	}
	for range svgSteps {
		w.Step()
	}

	if outFile == "" {
		return export.WorldToSVG(os.Stdout, w, scale)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WorldToSVG(f, w, scale); err != nil {
		return err
	}
	fmt.Printf("saved %s after %d steps\n", outFile, svgSteps)
	return nil
}
