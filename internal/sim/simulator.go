package sim

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/drivenpend/internal/dynamo"
	"github.com/san-kum/drivenpend/internal/forcing"
	"github.com/san-kum/drivenpend/internal/physics"
	"github.com/san-kum/drivenpend/internal/series"
)

type Simulator struct {
	logger        *zap.Logger
	metrics       []dynamo.Metric
	observers     []dynamo.Observer
	progress      ProgressFunc
	progressEvery int
}

func New(logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		logger:    logger,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// SetProgress registers fn to be called every `every` steps and once more
// after the last step.
func (s *Simulator) SetProgress(every int, fn ProgressFunc) {
	if every <= 0 {
		every = 1
	}
	s.progressEvery = every
	s.progress = fn
}

// Run integrates the pendulum for cfg.Steps fixed steps. Input errors are
// returned before any sample is produced. If ctx is canceled between steps
// the partial result is returned with Complete unset, together with an
// error wrapping dynamo.ErrCanceled.
func (s *Simulator) Run(ctx context.Context, terms []forcing.Term, cfg dynamo.Config) (*Result, error) {
	if err := validate(terms, cfg); err != nil {
		return nil, err
	}

	steps := cfg.Steps
	dt := cfg.Dt()
	l := cfg.Length
	dyn := physics.NewDrivenDoublePendulum(cfg.Gravity, l)

	x := dynamo.State{Omega1: forcing.InitialOmega1(terms, l)}

	result := &Result{
		Signal:  make(series.Series, 0, steps),
		Noise:   make(series.Series, 0, steps),
		Omega1:  x.Omega1,
		Dt:      dt,
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	s.logger.Debug("starting run",
		zap.Int("terms", len(terms)),
		zap.Int("steps", steps),
		zap.Float64("dt", dt),
		zap.Float64("omega1", x.Omega1),
	)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			result.Final = x
			s.collectMetrics(result)
			s.logger.Debug("run canceled", zap.Int("step", i), zap.Float64("t", x.T))
			return result, &dynamo.SimulationError{
				Step:    i,
				Time:    x.T,
				State:   x,
				Wrapped: fmt.Errorf("%w: %w", dynamo.ErrCanceled, ctx.Err()),
			}
		default:
		}

		ev := forcing.Evaluate(x.T, x.Theta1, x.Theta2, l, terms)
		result.Signal = append(result.Signal, series.Sample{T: x.T, V: ev.Signal})
		result.Noise = append(result.Noise, series.Sample{T: x.T, V: ev.Noise})

		for _, m := range s.metrics {
			m.OnStep(i, x, ev.Signal, ev.Noise)
		}
		for _, obs := range s.observers {
			obs.OnStep(i, x, ev.Signal, ev.Noise)
		}

		dyn.Advance(&x, dt, ev.Accel)
		result.StepsTaken++

		if s.progress != nil && (result.StepsTaken%s.progressEvery == 0 || result.StepsTaken == steps) {
			s.progress(result.StepsTaken, steps)
		}
	}

	result.Final = x
	result.Complete = true
	s.collectMetrics(result)

	s.logger.Debug("run completed", zap.Int("steps", result.StepsTaken), zap.Stringer("final", x))
	return result, nil
}

func (s *Simulator) collectMetrics(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validate(terms []forcing.Term, cfg dynamo.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := forcing.ValidateTerms(terms); err != nil {
		return fmt.Errorf("forcing: %w", err)
	}
	return nil
}

// Run is the synchronous core entry point: it returns the signal and noise
// sequences of a complete run, or an input validation error.
func Run(terms []forcing.Term, cfg dynamo.Config) (signal, noise series.Series, err error) {
	result, err := New(nil).Run(context.Background(), terms, cfg)
	if err != nil {
		return nil, nil, err
	}
	return result.Signal, result.Noise, nil
}
