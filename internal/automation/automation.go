// Package automation builds and runs families of independent simulations:
// scripted scenarios, parameter sweeps and Monte Carlo trials.
package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/drivenpend/internal/config"
	"github.com/san-kum/drivenpend/internal/dynamo"
	"github.com/san-kum/drivenpend/internal/forcing"
	"github.com/san-kum/drivenpend/internal/sim"
)

// Scenario defines a scripted set of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run of a scenario. Unset numeric fields fall back
// to the preset, then to the defaults.
type ScenarioStep struct {
	Name      string              `yaml:"name"`
	Preset    string              `yaml:"preset"`
	TermsFile string              `yaml:"terms_file"`
	Terms     []config.TermConfig `yaml:"terms"`
	Steps     int                 `yaml:"steps"`
	Duration  float64             `yaml:"duration"`
	Gravity   float64             `yaml:"gravity"`
	Length    float64             `yaml:"length"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Jobs resolves every step into a batch job.
func (s *Scenario) Jobs() ([]sim.Job, error) {
	jobs := make([]sim.Job, 0, len(s.Steps))
	for i, step := range s.Steps {
		job, err := step.job()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if job.Name == "" {
			job.Name = fmt.Sprintf("step-%d", i+1)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (st ScenarioStep) job() (sim.Job, error) {
	cfg := config.DefaultConfig()
	if st.Preset != "" {
		cfg = config.GetPreset(st.Preset)
		if cfg == nil {
			return sim.Job{}, fmt.Errorf("unknown preset: %s", st.Preset)
		}
	}
	if st.TermsFile != "" || len(st.Terms) > 0 {
		cfg.TermsFile = st.TermsFile
		cfg.Terms = st.Terms
	}
	if st.Steps != 0 {
		cfg.Steps = st.Steps
	}
	if st.Duration != 0 {
		cfg.Duration = st.Duration
	}
	if st.Gravity != 0 {
		cfg.Gravity = st.Gravity
	}
	if st.Length != 0 {
		cfg.Length = st.Length
	}

	if err := cfg.Validate(); err != nil {
		return sim.Job{}, err
	}
	terms, err := cfg.ForcingTerms()
	if err != nil {
		return sim.Job{}, err
	}
	return sim.Job{Name: st.Name, Terms: terms, Config: cfg.Sim()}, nil
}

// RunScenario runs all steps on b and returns results in step order.
func RunScenario(ctx context.Context, scenario *Scenario, b *sim.Batch) ([]*sim.Result, error) {
	jobs, err := scenario.Jobs()
	if err != nil {
		return nil, err
	}
	return b.Run(ctx, jobs)
}

// SweepValues returns count evenly spaced values from min to max.
func SweepValues(min, max float64, count int) []float64 {
	if count <= 1 {
		return []float64{min}
	}
	values := make([]float64, count)
	step := (max - min) / float64(count-1)
	for i := range values {
		values[i] = min + float64(i)*step
	}
	return values
}

// SweepJob returns a copy of the base setup with param set to v. Term
// parameters (amplitude, frequency in Hz, tau, phi) are set on every term.
func SweepJob(param string, v float64, terms []forcing.Term, cfg dynamo.Config) (sim.Job, error) {
	job := sim.Job{
		Name:   fmt.Sprintf("%s=%g", param, v),
		Terms:  append([]forcing.Term(nil), terms...),
		Config: cfg,
	}
	for i := range job.Terms {
		t := &job.Terms[i]
		switch param {
		case "amplitude":
			t.Amplitude = v
		case "frequency":
			t.Omega = v * 2 * math.Pi
		case "tau":
			t.Tau = v
		case "phi":
			t.Phi = v
		}
	}
	switch param {
	case "amplitude", "frequency", "tau", "phi":
	case "length":
		job.Config.Length = v
	case "gravity":
		job.Config.Gravity = v
	default:
		return sim.Job{}, fmt.Errorf("unknown sweep parameter: %s", param)
	}
	return job, nil
}

// ParameterSweep runs one job per value of a single parameter.
type ParameterSweep struct {
	Param  string
	Min    float64
	Max    float64
	Count  int
	Terms  []forcing.Term
	Config dynamo.Config
}

type SweepResult struct {
	Value  float64
	Result *sim.Result
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, b *sim.Batch) ([]SweepResult, error) {
	values := SweepValues(sweep.Min, sweep.Max, sweep.Count)
	jobs := make([]sim.Job, 0, len(values))
	for _, v := range values {
		job, err := SweepJob(sweep.Param, v, sweep.Terms, sweep.Config)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	results, err := b.Run(ctx, jobs)
	if err != nil {
		return nil, err
	}
	out := make([]SweepResult, len(values))
	for i, v := range values {
		out[i] = SweepResult{Value: v, Result: results[i]}
	}
	return out, nil
}

// MonteCarloConfig perturbs every term's phase uniformly within ±PhaseJitter
// and scales its amplitude by a factor within 1±AmplitudeJitter.
type MonteCarloConfig struct {
	Terms           []forcing.Term
	Config          dynamo.Config
	PhaseJitter     float64
	AmplitudeJitter float64
	NumTrials       int
	Seed            int64
	// Bound is the largest |θ| or |ω| a final state may reach and still
	// count as stable.
	Bound float64
}

type MonteCarloResult struct {
	TrialID int
	Terms   []forcing.Term
	Final   dynamo.State
	Stable  bool
}

func (c *MonteCarloConfig) trials() []sim.Job {
	rng := rand.New(rand.NewSource(c.Seed))
	if c.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	jobs := make([]sim.Job, c.NumTrials)
	for trial := range jobs {
		terms := make([]forcing.Term, len(c.Terms))
		for i, t := range c.Terms {
			t.Phi += (rng.Float64() - 0.5) * 2 * c.PhaseJitter
			t.Amplitude *= 1 + (rng.Float64()-0.5)*2*c.AmplitudeJitter
			terms[i] = t
		}
		jobs[trial] = sim.Job{
			Name:   fmt.Sprintf("trial-%d", trial),
			Terms:  terms,
			Config: c.Config,
		}
	}
	return jobs
}

func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, b *sim.Batch) ([]MonteCarloResult, error) {
	jobs := cfg.trials()
	results, err := b.Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	bound := cfg.Bound
	if bound <= 0 {
		bound = 1e6
	}

	out := make([]MonteCarloResult, len(jobs))
	for i, res := range results {
		out[i] = MonteCarloResult{
			TrialID: i,
			Terms:   jobs[i].Terms,
			Final:   res.Final,
			Stable:  bounded(res.Final, bound),
		}
	}
	return out, nil
}

func bounded(x dynamo.State, bound float64) bool {
	if !x.IsValid() {
		return false
	}
	for _, v := range []float64{x.Theta1, x.Theta2, x.Omega1, x.Omega2} {
		if math.Abs(v) > bound {
			return false
		}
	}
	return true
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
