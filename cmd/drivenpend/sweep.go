package main

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/drivenpend/internal/analysis"
	"github.com/san-kum/drivenpend/internal/automation"
	"github.com/san-kum/drivenpend/internal/dynamo"
	"github.com/san-kum/drivenpend/internal/metrics"
	"github.com/san-kum/drivenpend/internal/observability"
	"github.com/san-kum/drivenpend/internal/sim"
)

var (
	sweepParam      string
	sweepFrom       float64
	sweepTo         float64
	sweepCount      int
	workers         int
	trials          int
	phaseJitter     float64
	amplitudeJitter float64
	seed            int64
)

func addBatchFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "concurrent runs")
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "run independent simulations over a range of one parameter",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addRunFlags(cmd)
	addBatchFlags(cmd)
	f := cmd.Flags()
	f.StringVar(&sweepParam, "param", "amplitude", "amplitude, frequency, tau, phi (all terms), length or gravity")
	f.Float64Var(&sweepFrom, "from", 0.1, "first value")
	f.Float64Var(&sweepTo, "to", 1.0, "last value")
	f.IntVar(&sweepCount, "count", 5, "number of values")
	return cmd
}

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addBatchFlags(cmd)
	return cmd
}

func newMonteCarloCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run trials with randomly perturbed forcing phases and amplitudes",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addRunFlags(cmd)
	addBatchFlags(cmd)
	f := cmd.Flags()
	f.IntVar(&trials, "trials", 20, "number of trials")
	f.Float64Var(&phaseJitter, "phase-jitter", 0.5, "maximum phase perturbation in radians")
	f.Float64Var(&amplitudeJitter, "amplitude-jitter", 0.1, "maximum relative amplitude perturbation")
	f.Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	return cmd
}

func newBatch(logger *zap.Logger) *sim.Batch {
	return sim.NewBatch(logger, workers).WithMetrics(func() []dynamo.Metric {
		return []dynamo.Metric{
			metrics.NewNoiseRMS(),
			metrics.NewStability(stabilityThreshold),
			metrics.NewDivergence(),
		}
	})
}

func printBatchTable(header string, names []string, results []*sim.Result) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tDATI_RMS\tDATI_MAX\tNOISE_RMS\tDOMINANT_HZ\tSTABILITY\tDIVERGED_AT\n", header)
	for i, res := range results {
		sum := analysis.Summarize(res.Signal.Values())
		dominant := math.NaN()
		if spec, err := analysis.AmplitudeSpectrum(finitePrefix(res.Signal.Values()), res.Dt); err == nil {
			dominant, _ = spec.Dominant()
		}
		diverged := "-"
		if step := res.Metrics["divergence_step"]; step >= 0 {
			diverged = fmt.Sprintf("%.0f", step)
		}
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%.4f\t%.3f\t%s\n",
			names[i], sum.RMS, math.Max(math.Abs(sum.Min), math.Abs(sum.Max)),
			res.Metrics["noise_rms"], dominant, res.Metrics["stability"], diverged)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, terms, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	logger := observability.GetLogger()
	logger.Info("sweep", zap.String("param", sweepParam), zap.Int("runs", sweepCount), zap.Int("workers", workers))

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Param:  sweepParam,
		Min:    sweepFrom,
		Max:    sweepTo,
		Count:  sweepCount,
		Terms:  terms,
		Config: cfg.Sim(),
	}, newBatch(logger))
	if err != nil {
		return err
	}

	names := make([]string, len(results))
	runs := make([]*sim.Result, len(results))
	for i, r := range results {
		names[i] = fmt.Sprintf("%g", r.Value)
		runs[i] = r.Result
	}
	return printBatchTable(sweepParam, names, runs)
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	jobs, err := scenario.Jobs()
	if err != nil {
		return err
	}
	logger := observability.GetLogger()
	logger.Info("scenario", zap.String("name", scenario.Name), zap.Int("runs", len(jobs)))

	results, err := newBatch(logger).Run(cmd.Context(), jobs)
	if err != nil {
		return err
	}

	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.Name
	}
	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}
	return printBatchTable("STEP", names, results)
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, terms, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	logger := observability.GetLogger()
	logger.Info("monte carlo", zap.Int("trials", trials), zap.Int64("seed", seed))

	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Terms:           terms,
		Config:          cfg.Sim(),
		PhaseJitter:     phaseJitter,
		AmplitudeJitter: amplitudeJitter,
		NumTrials:       trials,
		Seed:            seed,
	}, newBatch(logger))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tθ1\tθ2\tω1\tω2\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.4g\t%.4g\t%.4g\t%.4g\t%v\n",
			r.TrialID, r.Final.Theta1, r.Final.Theta2, r.Final.Omega1, r.Final.Omega2, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nstable: %d  unstable: %d\n", stable, unstable)
	return nil
}
