package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/rubble/internal/analysis"
	"github.com/san-kum/rubble/internal/automation"
	"github.com/san-kum/rubble/internal/config"
	"github.com/san-kum/rubble/internal/experiment"
	"github.com/san-kum/rubble/internal/optim"
	"github.com/san-kum/rubble/internal/physics"
	"github.com/san-kum/rubble/internal/storage"
)

func benchCommand() *cobra.Command {
	var benchSteps int
	cmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "compare hashed and naive neighbour search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("benchmarking %s for %d steps\n\n", args[0], benchSteps)
			for _, hashed := range []bool{true, false} {
				w, err := buildScene(args[0])
				if err != nil {
					return err
				}
				p := w.Params()
				p.SpatialPartitioning = hashed
				if err := w.SetParams(p); err != nil {
					return err
				}

				start := time.Now()
				for range benchSteps {
					w.Step()
				}
				elapsed := time.Since(start)

				label := "naive"
				if hashed {
					label = "hashed"
				}
				rate := float64(benchSteps) / elapsed.Seconds()
				fmt.Printf("  %-7s %10v  %10.0f steps/s  %d particles\n", label, elapsed, rate, w.ParticleCount())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&benchSteps, "steps", 1000, "number of steps")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed for randomised scenes")
	return cmd
}

func chaosCommand() *cobra.Command {
	var (
		chaosSteps int
		eps        float64
	)
	cmd := &cobra.Command{
		Use:   "chaos [scene]",
		Short: "estimate the divergence rate of nearby trajectories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			newWorld := func() (*physics.World, error) { return buildScene(args[0]) }
			rate, err := analysis.Divergence(newWorld, eps, chaosSteps)
			if err != nil {
				return err
			}
			fmt.Printf("divergence rate: %.6f /s\n", rate)
			switch {
			case rate > 0.01:
				fmt.Println("nearby trajectories separate (chaotic)")
			case rate < -0.01:
				fmt.Println("nearby trajectories converge")
			default:
				fmt.Println("no clear separation")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&chaosSteps, "steps", 2000, "number of steps")
	cmd.Flags().Float64Var(&eps, "eps", 1e-6, "initial perturbation")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed for randomised scenes")
	return cmd
}

func sweepCommand() *cobra.Command {
	var cfg analysis.SweepConfig
	cmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "sweep a world parameter and plot settled positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			newWorld := func() (*physics.World, error) { return buildScene(args[0]) }
			data, err := analysis.Sweep(newWorld, cfg)
			if err != nil {
				return err
			}
			fmt.Printf("%s sweep over %s [%.3f, %.3f]\n\n", args[0], cfg.Param, cfg.Min, cfg.Max)
			fmt.Println(analysis.SweepToASCII(data, 80, 24))
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.Param, "param", "damping", "parameter to sweep")
	cmd.Flags().Float64Var(&cfg.Min, "min", 0, "lower bound")
	cmd.Flags().Float64Var(&cfg.Max, "max", 0.1, "upper bound")
	cmd.Flags().IntVar(&cfg.Points, "points", 40, "number of parameter values")
	cmd.Flags().IntVar(&cfg.Track, "track", 0, "particle to record")
	cmd.Flags().IntVar(&cfg.Transient, "transient", 500, "steps before recording")
	cmd.Flags().IntVar(&cfg.Record, "record", 200, "steps recorded")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed for randomised scenes")
	return cmd
}

func batchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run and store every run of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			outcomes, runErr := automation.RunScenario(ctx, registry, scenario, newLogger())

			st := storage.New(dataDir)
			if err := st.Init(); err != nil {
				return err
			}
			for _, o := range outcomes {
				cfg := o.Experiment.Config()
				w := o.Experiment.World()
				runID, err := st.Save(storage.RunMetadata{
					Scene:       cfg.Scene,
					Seed:        cfg.Seed,
					Dt:          w.TimeStep(),
					SampleEvery: cfg.SampleEvery,
					Track:       cfg.Track,
					Particles:   w.ParticleCount(),
					Constraints: w.ConstraintCount(),
				}, o.Result)
				if err != nil {
					return err
				}
				fmt.Printf("saved %s (%d steps, %d broken)\n", runID, o.Result.StepsTaken, o.Result.Broken)
			}
			return runErr
		},
	}
}

func monteCarloCommand() *cobra.Command {
	var mc automation.MonteCarloConfig
	cmd := &cobra.Command{
		Use:   "montecarlo [scene]",
		Short: "run a scene under many seeds and perturbations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mc.Scene = args[0]
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			results, err := automation.RunMonteCarlo(ctx, registry, mc, newLogger())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "TRIAL\tSEED\tSTABLE\tBROKEN\t%s\n", strings.ToUpper(mc.Metric))
			for _, r := range results {
				fmt.Fprintf(w, "%d\t%d\t%t\t%d\t%.6f\n", r.Trial, r.Seed, r.Stable, r.Broken, r.Value)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			stable, unstable, mean := automation.MonteCarloStats(results)
			fmt.Printf("\nstable: %d  unstable: %d  mean %s: %.6f\n", stable, unstable, mc.Metric, mean)
			return nil
		},
	}
	cmd.Flags().IntVar(&mc.Trials, "trials", 20, "number of trials")
	cmd.Flags().IntVar(&mc.Steps, "steps", config.DefaultSteps, "steps per trial")
	cmd.Flags().Uint64Var(&mc.Seed, "seed", 1, "first seed")
	cmd.Flags().Float64Var(&mc.Perturbation, "perturb", 0, "max position jitter per axis")
	cmd.Flags().StringVar(&mc.Metric, "metric", "energy_drift", "metric to report")
	return cmd
}

func tuneCommand() *cobra.Command {
	var (
		ranges    []string
		metric    string
		tuneSteps int
	)
	cmd := &cobra.Command{
		Use:   "tune [scene]",
		Short: "grid search world parameters minimising a metric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(ranges))
			values := make([][]float64, 0, len(ranges))
			for _, r := range ranges {
				name, vals, err := optim.ParseRange(r)
				if err != nil {
					return err
				}
				names = append(names, name)
				values = append(values, vals)
			}
			g, err := optim.NewGridSearch(names, values)
			if err != nil {
				return err
			}

			build := func(params map[string]float64) (*experiment.Experiment, error) {
				cfg := config.DefaultConfig()
				cfg.Scene = args[0]
				cfg.Steps = tuneSteps
				cfg.Seed = seed
				exp, err := experiment.New(registry, cfg)
				if err != nil {
					return nil, err
				}
				if err := exp.SetParams(params); err != nil {
					return nil, err
				}
				exp.Setup(experiment.DefaultMetrics(), nil)
				return exp, nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			best, trials, err := g.Search(ctx, build, metric)
			if err != nil {
				return err
			}
			fmt.Printf("%d grid points, best %s: %.6f\n", len(trials), metric, best.Value)
			for _, name := range names {
				fmt.Printf("  %-12s %.6g\n", name, best.Params[name])
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&ranges, "param", []string{"damping=0:0.1:5"}, "parameter range name=lo:hi:n (repeatable)")
	cmd.Flags().StringVar(&metric, "metric", "energy_drift", "metric to minimise")
	cmd.Flags().IntVar(&tuneSteps, "steps", 500, "steps per grid point")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed for randomised scenes")
	return cmd
}
