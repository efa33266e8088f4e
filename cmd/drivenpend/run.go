package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/drivenpend/internal/config"
	"github.com/san-kum/drivenpend/internal/dynamo"
	"github.com/san-kum/drivenpend/internal/export"
	"github.com/san-kum/drivenpend/internal/forcing"
	"github.com/san-kum/drivenpend/internal/metrics"
	"github.com/san-kum/drivenpend/internal/observability"
	"github.com/san-kum/drivenpend/internal/physics"
	"github.com/san-kum/drivenpend/internal/series"
	"github.com/san-kum/drivenpend/internal/sim"
	"github.com/san-kum/drivenpend/internal/storage"
	"github.com/san-kum/drivenpend/internal/tui"
)

const (
	defaultTermsFile   = "w.txt"
	stabilityThreshold = 1.0
)

var (
	termsPath string
	steps     int
	duration  float64
	gravity   float64
	length    float64
	preset    string
	outDir    string
	label     string
	chart     bool
	noStore   bool
)

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&termsPath, "terms", "w", defaultTermsFile, "forcing parameter file (tau freq_hz phi amplitude per line)")
	f.IntVarP(&steps, "steps", "n", dynamo.DefaultSteps, "number of integration steps")
	f.Float64Var(&duration, "duration", dynamo.DefaultDuration, "total simulated time in seconds")
	f.Float64Var(&gravity, "gravity", dynamo.DefaultGravity, "gravitational acceleration")
	f.Float64Var(&length, "length", dynamo.DefaultLength, "arm length")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVarP(&outDir, "out", "o", "", "directory for dati.txt and rumore_base.txt")
	f.StringVar(&label, "label", "", "label stored with the run")
	f.BoolVar(&chart, "chart", false, "also write a PNG chart of both signals")
	f.BoolVar(&noStore, "no-store", false, "do not save the run in the run store")
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the simulation and write dati.txt and rumore_base.txt",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(cmd)
	return cmd
}

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(cmd)
	return cmd
}

// resolveSettings layers the config file, then the preset, then flags set
// on the command line.
func resolveSettings(cmd *cobra.Command) (*config.Config, []forcing.Term, error) {
	cfg := *appCfg
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Steps, cfg.Duration, cfg.Gravity, cfg.Length = p.Steps, p.Duration, p.Gravity, p.Length
		cfg.TermsFile = ""
		cfg.Terms = p.Terms
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("duration") {
		cfg.Duration = duration
	}
	if flags.Changed("gravity") {
		cfg.Gravity = gravity
	}
	if flags.Changed("length") {
		cfg.Length = length
	}
	if flags.Changed("out") {
		cfg.Output.Dir = outDir
	}
	if flags.Changed("terms") || (cfg.TermsFile == "" && len(cfg.Terms) == 0) {
		cfg.TermsFile = termsPath
		cfg.Terms = nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	terms, err := cfg.ForcingTerms()
	if err != nil {
		return nil, nil, err
	}
	return &cfg, terms, nil
}

func newSimulator(logger *zap.Logger, cfg dynamo.Config) (*sim.Simulator, *metrics.Divergence) {
	dyn := physics.NewDrivenDoublePendulum(cfg.Gravity, cfg.Length)
	div := metrics.NewDivergence()

	s := sim.New(logger)
	s.AddMetric(metrics.NewEnergy(dyn))
	s.AddMetric(metrics.NewEnergyDrift(dyn))
	s.AddMetric(metrics.NewStability(stabilityThreshold))
	s.AddMetric(metrics.NewNoiseRMS())
	s.AddMetric(div)
	return s, div
}

func termSource(cfg *config.Config) string {
	if cfg.TermsFile != "" {
		return cfg.TermsFile
	}
	if preset != "" {
		return "preset " + preset
	}
	return "config"
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, terms, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	simCfg := cfg.Sim()
	logger := observability.GetLogger()

	logger.Info("read parameters", zap.Int("count", len(terms)), zap.String("source", termSource(cfg)))
	logger.Info("running", zap.Int("steps", simCfg.Steps), zap.Float64("dt", simCfg.Dt()))

	s, div := newSimulator(logger, simCfg)
	every := simCfg.Steps / 10
	s.SetProgress(every, func(done, total int) {
		logger.Debug("progress", zap.Int("done", done), zap.Int("total", total))
	})

	start := time.Now()
	result, runErr := s.Run(cmd.Context(), terms, simCfg)
	if runErr != nil && !errors.Is(runErr, dynamo.ErrCanceled) {
		return runErr
	}
	return finishRun(cfg, terms, result, div, time.Since(start), runErr)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, terms, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	simCfg := cfg.Sim()
	logger := observability.GetLogger()
	logger.Info("read parameters", zap.Int("count", len(terms)), zap.String("source", termSource(cfg)))

	// The view owns the terminal; the simulator stays quiet.
	s, div := newSimulator(zap.NewNop(), simCfg)

	start := time.Now()
	result, runErr := tui.Run(cmd.Context(), s, terms, simCfg, tea.WithAltScreen())
	if runErr != nil && !errors.Is(runErr, dynamo.ErrCanceled) {
		return runErr
	}
	if result == nil {
		return runErr
	}
	return finishRun(cfg, terms, result, div, time.Since(start), runErr)
}

// finishRun writes the output files, the optional chart and the run store
// entry, then prints a summary. A canceled run is written as far as it got
// and runErr is returned afterwards.
func finishRun(cfg *config.Config, terms []forcing.Term, result *sim.Result, div *metrics.Divergence, elapsed time.Duration, runErr error) error {
	logger := observability.GetLogger()

	if !result.Complete {
		logger.Warn("run interrupted, writing partial output",
			zap.Int("steps", result.StepsTaken), zap.Int("requested", cfg.Steps))
	}
	if step, t, ok := div.Diverged(); ok {
		logger.Warn("numeric divergence", zap.Int("step", step), zap.Float64("t", t))
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return err
	}
	if err := series.WriteFile(cfg.SignalPath(), result.Signal); err != nil {
		return fmt.Errorf("write signal: %w", err)
	}
	logger.Info("wrote file", zap.String("path", cfg.SignalPath()), zap.Int("samples", len(result.Signal)))
	if err := series.WriteFile(cfg.NoisePath(), result.Noise); err != nil {
		return fmt.Errorf("write noise: %w", err)
	}
	logger.Info("wrote file", zap.String("path", cfg.NoisePath()), zap.Int("samples", len(result.Noise)))

	if chart {
		opts := export.DefaultChartOptions()
		if err := export.SaveChart(cfg.ChartPath(), result.Signal, result.Noise, opts); err != nil {
			logger.Warn("chart not written", zap.Error(err))
		} else {
			logger.Info("wrote file", zap.String("path", cfg.ChartPath()))
		}
	}

	runID := ""
	if !noStore {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(label, terms, cfg.Sim(), result)
		if err != nil {
			return err
		}
		runID = id
	}

	logger.Info("completed", zap.Duration("elapsed", elapsed), zap.Int("steps", result.StepsTaken))

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	if runID != "" {
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("omega1(0): %.6f\n", result.Omega1)
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return runErr
}
