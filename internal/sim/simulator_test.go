package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/drivenpend/internal/dynamo"
	"github.com/san-kum/drivenpend/internal/forcing"
	"github.com/san-kum/drivenpend/internal/metrics"
	"github.com/san-kum/drivenpend/internal/physics"
)

func referenceTerms() []forcing.Term {
	return []forcing.Term{forcing.NewTerm(1.0, 0.5, 0, 1)}
}

func TestRunReferenceScenario(t *testing.T) {
	cfg := dynamo.Config{Steps: 4, Duration: 10, Gravity: 9.80513, Length: 5.0}

	result, err := New(nil).Run(context.Background(), referenceTerms(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !result.Complete || result.StepsTaken != 4 {
		t.Errorf("expected complete run of 4 steps, got complete=%v steps=%d", result.Complete, result.StepsTaken)
	}
	if result.Dt != 2.5 {
		t.Errorf("expected dt 2.5, got %v", result.Dt)
	}
	if math.Abs(result.Omega1-(-math.Pi/5)) > 1e-12 {
		t.Errorf("expected omega1(0) = -π/5, got %.10f", result.Omega1)
	}
	if result.Noise[0].V != 0 {
		t.Errorf("expected first noise sample 0, got %v", result.Noise[0].V)
	}

	wantTimes := []float64{0, 2.5, 5.0, 7.5}
	for k, want := range wantTimes {
		if result.Signal[k].T != want || result.Noise[k].T != want {
			t.Errorf("sample %d: times %v/%v, want %v", k, result.Signal[k].T, result.Noise[k].T, want)
		}
	}
}

func TestRunLengthsAndTimes(t *testing.T) {
	terms := []forcing.Term{
		forcing.NewTerm(2, 1.5, 0.3, 0.02),
		forcing.NewTerm(0.7, 4, 1.1, 0.01),
	}

	for _, n := range []int{1, 7, 1000} {
		cfg := dynamo.DefaultConfig()
		cfg.Steps = n

		signal, noise, err := Run(terms, cfg)
		if err != nil {
			t.Fatalf("n=%d: run failed: %v", n, err)
		}
		if len(signal) != n || len(noise) != n {
			t.Fatalf("n=%d: got lengths %d/%d", n, len(signal), len(noise))
		}

		dt := cfg.Duration / float64(n)
		for k := 0; k < n; k++ {
			if signal[k].T != noise[k].T {
				t.Fatalf("n=%d: sample %d time mismatch", n, k)
			}
			if math.Abs(signal[k].T-float64(k)*dt) > 1e-9 {
				t.Fatalf("n=%d: sample %d at %v, want %v", n, k, signal[k].T, float64(k)*dt)
			}
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	terms := []forcing.Term{
		forcing.NewTerm(1.5, 2, 0.4, 0.3),
		forcing.NewTerm(3, 0.25, -0.8, 0.6),
	}
	cfg := dynamo.DefaultConfig()
	cfg.Steps = 5000

	s1, n1, err := Run(terms, cfg)
	if err != nil {
		t.Fatal(err)
	}
	s2, n2, err := Run(terms, cfg)
	if err != nil {
		t.Fatal(err)
	}

	for k := range s1 {
		if math.Float64bits(s1[k].V) != math.Float64bits(s2[k].V) ||
			math.Float64bits(n1[k].V) != math.Float64bits(n2[k].V) {
			t.Fatalf("runs differ at sample %d", k)
		}
	}
}

func TestRunInitialSample(t *testing.T) {
	terms := []forcing.Term{
		forcing.NewTerm(1, 1, 0.3, 0.5),
		forcing.NewTerm(2, 3, 1.2, -0.25),
	}
	cfg := dynamo.DefaultConfig()
	cfg.Steps = 10

	signal, noise, err := Run(terms, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if signal[0].V != noise[0].V {
		t.Errorf("signal(0) = %v, noise(0) = %v", signal[0].V, noise[0].V)
	}
	want := 0.5*math.Sin(0.3) - 0.25*math.Sin(1.2)
	if math.Abs(noise[0].V-want) > 1e-12 {
		t.Errorf("noise(0) = %v, want %v", noise[0].V, want)
	}
}

func TestRunInitialOmegaIndependentOfGrid(t *testing.T) {
	terms := []forcing.Term{
		forcing.NewTerm(1, 1, 0.3, 0.5),
		forcing.NewTerm(2, 3, 1.2, -0.25),
	}
	l := 5.0
	want := -(terms[0].Omega*0.5*math.Cos(0.3) + terms[1].Omega*-0.25*math.Cos(1.2)) / l

	for _, cfg := range []dynamo.Config{
		{Steps: 10, Duration: 1, Gravity: 9.8, Length: l},
		{Steps: 20000, Duration: 10, Gravity: 9.8, Length: l},
		{Steps: 3, Duration: 100, Gravity: 1, Length: l},
	} {
		result, err := New(nil).Run(context.Background(), terms, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(result.Omega1-want) > 1e-12 {
			t.Errorf("steps=%d duration=%v: omega1 = %v, want %v", cfg.Steps, cfg.Duration, result.Omega1, want)
		}
	}
}

func TestRunZeroAmplitudeIsFreePendulum(t *testing.T) {
	terms := []forcing.Term{forcing.NewTerm(1, 2, 0.7, 0)}
	cfg := dynamo.DefaultConfig()
	cfg.Steps = 2000

	signal, noise, err := Run(terms, cfg)
	if err != nil {
		t.Fatal(err)
	}

	dyn := physics.NewDrivenDoublePendulum(cfg.Gravity, cfg.Length)
	x := dynamo.State{}
	for k := range signal {
		if noise[k].V != 0 {
			t.Fatalf("noise[%d] = %v, want 0", k, noise[k].V)
		}
		if want := dyn.TipX(x); signal[k].V != want {
			t.Fatalf("signal[%d] = %v, free trajectory gives %v", k, signal[k].V, want)
		}
		dyn.Advance(&x, cfg.Dt(), 0)
	}
}

func TestRunInvalidInput(t *testing.T) {
	valid := referenceTerms()

	tests := []struct {
		name  string
		terms []forcing.Term
		cfg   dynamo.Config
	}{
		{"zero steps", valid, dynamo.Config{Steps: 0, Duration: 10, Gravity: 9.8, Length: 5}},
		{"negative duration", valid, dynamo.Config{Steps: 10, Duration: -1, Gravity: 9.8, Length: 5}},
		{"zero length", valid, dynamo.Config{Steps: 10, Duration: 10, Gravity: 9.8, Length: 0}},
		{"zero tau", []forcing.Term{{Tau: 0, Omega: 1, Amplitude: 1}}, dynamo.DefaultConfig()},
		{"nan phase", []forcing.Term{{Tau: 1, Phi: math.NaN()}}, dynamo.DefaultConfig()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New(nil).Run(context.Background(), tt.terms, tt.cfg)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
			if result != nil {
				t.Error("expected no result for rejected input")
			}
		})
	}
}

func TestRunNegativeTauPropagates(t *testing.T) {
	terms := []forcing.Term{forcing.NewTerm(-0.01, 1, 0.5, 1)}
	cfg := dynamo.DefaultConfig()
	cfg.Steps = 1000

	div := metrics.NewDivergence()
	s := New(nil)
	s.AddMetric(div)

	result, err := s.Run(context.Background(), terms, cfg)
	if err != nil {
		t.Fatalf("negative tau must not be rejected: %v", err)
	}
	if !result.Complete || len(result.Signal) != 1000 {
		t.Fatalf("expected full run, got %d samples", len(result.Signal))
	}

	last := result.Noise[len(result.Noise)-1].V
	if !math.IsInf(last, 0) && !math.IsNaN(last) {
		t.Errorf("expected divergent noise at the end, got %v", last)
	}
	if _, _, ok := div.Diverged(); !ok {
		t.Error("expected divergence metric to fire")
	}
}

func TestRunCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(nil).Run(ctx, referenceTerms(), dynamo.DefaultConfig())
	if !errors.Is(err, dynamo.ErrCanceled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if result == nil || result.Complete || len(result.Signal) != 0 {
		t.Errorf("expected empty partial result, got %+v", result)
	}
}

func TestRunCanceledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(nil)
	s.AddObserver(dynamo.ObserverFunc(func(step int, x dynamo.State, signal, noise float64) {
		if step == 10 {
			cancel()
		}
	}))

	result, err := s.Run(ctx, referenceTerms(), dynamo.DefaultConfig())

	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if simErr.Step != 11 {
		t.Errorf("expected stop at step boundary 11, got %d", simErr.Step)
	}
	if result.Complete {
		t.Error("partial run reported as complete")
	}
	if len(result.Signal) != 11 || len(result.Noise) != 11 || result.StepsTaken != 11 {
		t.Errorf("expected 11 samples, got %d/%d", len(result.Signal), len(result.Noise))
	}
}

func TestObserverSeesPreAdvanceState(t *testing.T) {
	cfg := dynamo.Config{Steps: 5, Duration: 1, Gravity: 9.8, Length: 2}
	s := New(nil)

	var times []float64
	var steps []int
	s.AddObserver(dynamo.ObserverFunc(func(step int, x dynamo.State, signal, noise float64) {
		steps = append(steps, step)
		times = append(times, x.T)
	}))

	result, err := s.Run(context.Background(), referenceTerms(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	for k := range steps {
		if steps[k] != k || times[k] != result.Signal[k].T {
			t.Errorf("observer call %d: step %d at t=%v, sample at %v", k, steps[k], times[k], result.Signal[k].T)
		}
	}
	if result.Final.T <= times[len(times)-1] {
		t.Error("final state should be one step past the last sample")
	}
}

func TestProgress(t *testing.T) {
	cfg := dynamo.DefaultConfig()
	cfg.Steps = 25
	s := New(nil)

	var calls [][2]int
	s.SetProgress(10, func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})

	if _, err := s.Run(context.Background(), referenceTerms(), cfg); err != nil {
		t.Fatal(err)
	}

	want := [][2]int{{10, 25}, {20, 25}, {25, 25}}
	if len(calls) != len(want) {
		t.Fatalf("expected %d progress calls, got %v", len(want), calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d: got %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestSimulatorMetrics(t *testing.T) {
	cfg := dynamo.DefaultConfig()
	cfg.Steps = 100

	s := New(nil)
	s.AddMetric(metrics.NewNoiseRMS())
	s.AddMetric(metrics.NewStability(100))

	result, err := s.Run(context.Background(), referenceTerms(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, name := range []string{"noise_rms", "stability"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("metric %s not found in result", name)
		}
	}
	if result.Metrics["noise_rms"] <= 0 {
		t.Errorf("expected positive noise rms, got %v", result.Metrics["noise_rms"])
	}
}

func BenchmarkRun(b *testing.B) {
	terms := []forcing.Term{
		forcing.NewTerm(2, 1.5, 0.3, 0.02),
		forcing.NewTerm(0.7, 4, 1.1, 0.01),
	}
	cfg := dynamo.DefaultConfig()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := Run(terms, cfg); err != nil {
			b.Fatal(err)
		}
	}
}
