package dynamo

import (
	"fmt"
	"math"
)

// State is the dynamical state of the double pendulum.
type State struct {
	T      float64
	Theta1 float64
	Theta2 float64
	Omega1 float64
	Omega2 float64
}

func (s State) IsValid() bool {
	for _, v := range [...]float64{s.T, s.Theta1, s.Theta2, s.Omega1, s.Omega2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) String() string {
	return fmt.Sprintf("t=%.4f θ1=%.6f θ2=%.6f ω1=%.6f ω2=%.6f", s.T, s.Theta1, s.Theta2, s.Omega1, s.Omega2)
}

// Observer is notified once per step, before the state is advanced.
type Observer interface {
	OnStep(step int, x State, signal, noise float64)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(step int, x State, signal, noise float64)

func (f ObserverFunc) OnStep(step int, x State, signal, noise float64) { f(step, x, signal, noise) }

type Hamiltonian interface {
	Energy(x State) float64
}

// Metric is an Observer that reduces a run to a single number.
type Metric interface {
	Observer
	Name() string
	Value() float64
	Reset()
}

type Config struct {
	Steps    int
	Duration float64
	Gravity  float64
	Length   float64
}

const (
	DefaultSteps    = 20000
	DefaultDuration = 10.0
	DefaultGravity  = 9.80513
	DefaultLength   = 5.0
)

func DefaultConfig() Config {
	return Config{
		Steps:    DefaultSteps,
		Duration: DefaultDuration,
		Gravity:  DefaultGravity,
		Length:   DefaultLength,
	}
}

// Dt is the fixed time step of the run.
func (c Config) Dt() float64 {
	return c.Duration / float64(c.Steps)
}

// Validate rejects configurations the integration loop cannot start from.
func (c Config) Validate() error {
	if c.Steps <= 0 {
		return &InvalidParameterError{Field: "steps", Value: float64(c.Steps), Reason: "must be a positive integer"}
	}
	if !finite(c.Duration) || c.Duration <= 0 {
		return &InvalidParameterError{Field: "duration", Value: c.Duration, Reason: "must be positive and finite"}
	}
	if !finite(c.Length) || c.Length <= 0 {
		return &InvalidParameterError{Field: "length", Value: c.Length, Reason: "must be positive and finite"}
	}
	if !finite(c.Gravity) {
		return &InvalidParameterError{Field: "gravity", Value: c.Gravity, Reason: "must be finite"}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
