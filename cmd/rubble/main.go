package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/rubble/internal/config"
	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/experiment"
	"github.com/san-kum/rubble/internal/scene"
	"github.com/san-kum/rubble/internal/storage"
	"github.com/san-kum/rubble/internal/tui"
	"github.com/san-kum/rubble/internal/viz"
)

var (
	dataDir     string
	verbose     bool
	steps       int
	seed        uint64
	sampleEvery int
	track       []int
	configFile  string
	preset      string
	watch       bool
	jsonOut     bool
	frameRate   int
	watchFPS    int
	series      int
	plotSeries  int
	svgSteps    int
	axis        string
	outFile     string
	scale       float64
)

var registry = scene.NewRegistry()

func main() {
	rootCmd := &cobra.Command{
		Use:   "rubble",
		Short: "2d particle and constraint simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(registry, seed, frameRate)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.Flags().Uint64Var(&seed, "seed", 1, "random seed for randomised scenes")
	rootCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene and store the sampled trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  runScene,
	}
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().Uint64Var(&seed, "seed", 1, "random seed for randomised scenes")
	runCmd.Flags().IntVar(&sampleEvery, "sample", config.DefaultSampleEvery, "sample tracked particles every n steps")
	runCmd.Flags().IntSliceVar(&track, "track", nil, "particle indices to sample")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().BoolVar(&watch, "watch", false, "print frames while running")
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "also write the result as json to stdout")
	runCmd.Flags().IntVar(&watchFPS, "fps", 20, "frame rate for --watch")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list built-in scenes",
		Args:  cobra.NoArgs,
		RunE:  listScenes,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list available presets for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scene: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot tracked particle positions",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotSeries, "series", -1, "tracked particle to plot (default all)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a tracked particle",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&series, "series", 0, "tracked particle to analyze")
	analyzeCmd.Flags().StringVar(&axis, "axis", "y", "coordinate to analyze (x or y)")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "path of a tracked particle",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&series, "series", 0, "tracked particle")
	phaseCmd.Flags().StringVar(&outFile, "svg", "", "also write the path as svg")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene in real time",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")
	liveCmd.Flags().Uint64Var(&seed, "seed", 1, "random seed for randomised scenes")

	guiCmd := &cobra.Command{
		Use:   "gui [scene]",
		Short: "run a scene in a window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGUI,
	}
	guiCmd.Flags().Uint64Var(&seed, "seed", 1, "random seed for randomised scenes")

	svgCmd := &cobra.Command{
		Use:   "svg [scene]",
		Short: "write an svg snapshot of a scene",
		Args:  cobra.ExactArgs(1),
		RunE:  svgSnapshot,
	}
	svgCmd.Flags().IntVar(&svgSteps, "steps", 0, "steps to run before the snapshot")
	svgCmd.Flags().Uint64Var(&seed, "seed", 1, "random seed for randomised scenes")
	svgCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")
	svgCmd.Flags().Float64Var(&scale, "scale", 50, "pixels per world unit")

	rootCmd.AddCommand(runCmd, listCmd, scenesCmd, presetsCmd, exportCmd, plotCmd, analyzeCmd, phaseCmd, liveCmd, guiCmd, svgCmd)
	rootCmd.AddCommand(benchCommand(), chaosCommand(), sweepCommand())
	rootCmd.AddCommand(batchCommand(), monteCarloCommand(), tuneCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadRunConfig layers defaults, preset, config file and explicit flags.
func loadRunConfig(cmd *cobra.Command, sceneName string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Scene = sceneName

	if preset != "" {
		p := config.GetPreset(sceneName, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(sceneName))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		cfg.Scene = sceneName
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("sample") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("track") {
		cfg.Track = track
	}
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	return cfg, cfg.Validate()
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd, args[0])
	if err != nil {
		return err
	}
	logger := newLogger()

	exp, err := experiment.New(registry, cfg)
	if err != nil {
		return err
	}
	exp.Setup(experiment.DefaultMetrics(), logger)

	if watch {
		r := tui.NewRenderer(os.Stdout, cfg.Scene, watchFPS)
		exp.Runner().AddObserver(r)
		r.Start()
		defer r.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	result, runErr := exp.Run(ctx)
	var simErr *dynamo.SimulationError
	if runErr != nil && (result == nil || !errors.As(runErr, &simErr)) {
		return runErr
	}
	elapsed := time.Since(start)

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	w := exp.World()
	runID, err := st.Save(storage.RunMetadata{
		Scene:       cfg.Scene,
		Seed:        cfg.Seed,
		Dt:          w.TimeStep(),
		SampleEvery: cfg.SampleEvery,
		Track:       cfg.Track,
		Particles:   w.ParticleCount(),
		Constraints: w.ConstraintCount(),
	}, result)
	if err != nil {
		return err
	}

	if jsonOut {
		if err := storage.ExportJSON(os.Stdout, cfg.Scene, w.TimeStep(), cfg.Track, result); err != nil {
			return err
		}
		return partialRunError(runErr)
	}

	if runErr != nil {
		fmt.Printf("stopped early: %v\n", runErr)
	}
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d  broken: %d  particles: %d\n", result.StepsTaken, result.Broken, w.ParticleCount())
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Printf("  %-14s %.6f\n", name, result.Metrics[name])
	}
	return partialRunError(runErr)
}

// partialRunError reports a run that stopped early once its partial result
// is saved. An interrupt is a normal way to end a run.
func partialRunError(err error) error {
	if err == nil || errors.Is(err, dynamo.ErrContextCanceled) {
		return nil
	}
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tSTEPS\tDT\tPARTICLES\tBROKEN")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Particles,
			run.Broken,
		)
	}
	return w.Flush()
}

func listScenes(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tHZ\tSIZE\tDESCRIPTION")
	for _, name := range registry.List() {
		sc, err := registry.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%.0f\t%.0f\t%s\n", sc.Name, sc.Frequency, sc.Size, sc.Description)
	}
	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
