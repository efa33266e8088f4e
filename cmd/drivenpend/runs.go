package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/drivenpend/internal/analysis"
	"github.com/san-kum/drivenpend/internal/dynamo"
	"github.com/san-kum/drivenpend/internal/export"
	"github.com/san-kum/drivenpend/internal/series"
	"github.com/san-kum/drivenpend/internal/sim"
	"github.com/san-kum/drivenpend/internal/storage"
)

var (
	plotWidth    int
	plotHeight   int
	lyapunov     bool
	phaseArm     int
	poincare     bool
	peakCount    int
	exportFormat string
	exportOutput string
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the signal and noise of a run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	cmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	cmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and statistics analysis of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	cmd.Flags().IntVar(&peakCount, "peaks", 3, "number of spectral peaks to list")
	cmd.Flags().BoolVar(&lyapunov, "lyapunov", false, "estimate the largest Lyapunov exponent (reruns the simulation)")
	cmd.Flags().IntVar(&phaseArm, "phase", 0, "draw the phase portrait of arm 1 or 2 (reruns the simulation)")
	cmd.Flags().BoolVar(&poincare, "poincare", false, "draw the Poincaré section at θ1 = 0 (reruns the simulation)")
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as a chart (png, svg) or as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	cmd.Flags().StringVar(&exportFormat, "format", "png", "png, svg or json")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default <run_id>.<format>)")
	return cmd
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
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
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tTERMS\tSTEPS\tDURATION\tDT\tCOMPLETE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.2fs\t%.6fs\t%v\n",
			run.ID,
			run.Label,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Terms),
			run.StepsTaken,
			run.Duration,
			run.Dt,
			run.Complete,
		)
	}

	return w.Flush()
}

// finitePrefix cuts v at the first non-finite value.
func finitePrefix(v []float64) []float64 {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return v[:i]
		}
	}
	return v
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	signal, noise, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(signal) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("terms: %d\n", len(meta.Terms))
	fmt.Printf("samples: %d\n\n", len(signal))

	for _, p := range []struct {
		caption string
		s       series.Series
	}{
		{"dati (tip displacement + noise)", signal},
		{"rumore (forcing noise)", noise},
	} {
		values := p.s.Decimate(plotWidth * 4).Values()
		finite := finitePrefix(values)
		if len(finite) < len(values) {
			fmt.Printf("%s: non-finite values after %d of %d points\n", p.caption, len(finite), len(values))
		}
		if len(finite) < 2 {
			continue
		}
		graph := asciigraph.Plot(finite,
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	signal, noise, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("dt: %.6fs  sample rate: %.1f Hz\n\n", meta.Dt, 1/meta.Dt)

	for _, p := range []struct {
		name string
		s    series.Series
	}{
		{"dati", signal},
		{"rumore", noise},
	} {
		values := p.s.Values()
		sum := analysis.Summarize(values)
		fmt.Printf("%s:\n", p.name)
		fmt.Printf("  mean %.6g  stddev %.6g  min %.6g  max %.6g  rms %.6g\n",
			sum.Mean, sum.StdDev, sum.Min, sum.Max, sum.RMS)
		if sum.NonFinite > 0 {
			fmt.Printf("  %d non-finite samples\n", sum.NonFinite)
		}

		finite := finitePrefix(values)
		spec, err := analysis.AmplitudeSpectrum(finite, meta.Dt)
		if err != nil {
			fmt.Printf("  spectrum: %v\n\n", err)
			continue
		}
		freq, amp := spec.Dominant()
		fmt.Printf("  dominant frequency %.4f Hz (amplitude %.4g)\n", freq, amp)
		for i, k := range spec.Peaks(peakCount) {
			fmt.Printf("  peak %d: %.4f Hz  %.4g\n", i+1, spec.Freq[k], spec.Amplitude[k])
		}
		fmt.Println()
	}

	cfg := dynamo.Config{Steps: meta.Steps, Duration: meta.Duration, Gravity: meta.Gravity, Length: meta.Length}

	if lyapunov {
		lambda, err := analysis.LyapunovExponent(meta.Terms, cfg, 1e-8)
		if err != nil {
			return err
		}
		fmt.Printf("largest lyapunov exponent: %.4f 1/s\n", lambda)
		if lambda > 0 {
			fmt.Println("  (positive: chaotic)")
		}
		fmt.Println()
	}

	if phaseArm != 0 || poincare {
		return rerunPortraits(cmd.Context(), meta, cfg)
	}
	return nil
}

func rerunPortraits(ctx context.Context, meta *storage.RunMetadata, cfg dynamo.Config) error {
	s := sim.New(nil)

	var phase *analysis.PhaseRecorder
	if phaseArm != 0 {
		every := cfg.Steps / 2000
		phase = analysis.NewPhaseRecorder(phaseArm, every)
		s.AddObserver(phase)
	}
	var section *analysis.PoincareRecorder
	if poincare {
		section = &analysis.PoincareRecorder{}
		s.AddObserver(section)
	}

	if _, err := s.Run(ctx, meta.Terms, cfg); err != nil {
		return err
	}

	if phase != nil {
		fmt.Printf("phase portrait, arm %d (θ horizontal, ω vertical):\n", phase.Arm)
		fmt.Println(analysis.ToASCII(phase.Points, 70, 20))
	}
	if section != nil {
		fmt.Printf("poincaré section at θ1 = 0 (θ2 horizontal, ω2 vertical), %d crossings:\n", len(section.Points))
		if len(section.Points) == 0 {
			fmt.Println("no crossings detected")
		} else {
			fmt.Println(analysis.ToASCII(section.Points, 70, 20))
		}
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	format := strings.ToLower(exportFormat)

	output := exportOutput
	if output == "" {
		output = runID + "." + format
	}

	st := storage.New(dataDir)

	switch format {
	case "json":
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := st.ExportJSON(f, runID); err != nil {
			return err
		}
	case "png", "svg":
		if !strings.EqualFold(filepath.Ext(output), "."+format) {
			output += "." + format
		}
		signal, noise, err := st.LoadSeries(runID)
		if err != nil {
			return err
		}
		opts := export.DefaultChartOptions()
		opts.Title = "run " + runID
		if err := export.SaveChart(output, signal, noise, opts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format: %s (png, svg, json)", exportFormat)
	}

	fmt.Printf("exported to %s\n", output)
	return nil
}
