package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/drivenpend/internal/dynamo"
)

func TestSemiImplicitEulerOrder(t *testing.T) {
	integ := NewSemiImplicitEuler()
	x := dynamo.State{T: 1, Theta1: 0.5, Theta2: -0.5, Omega1: 1, Omega2: 2}

	integ.Step(&x, 10, -20, 0.1)

	// velocities first: 1+1=2, 2-2=0; positions use the new velocities
	if x.Omega1 != 2 || x.Omega2 != 0 {
		t.Errorf("velocities: got %v %v", x.Omega1, x.Omega2)
	}
	if math.Abs(x.Theta1-0.7) > 1e-15 {
		t.Errorf("theta1: got %.17f, want 0.7", x.Theta1)
	}
	if x.Theta2 != -0.5 {
		t.Errorf("theta2: got %v, want -0.5", x.Theta2)
	}
	if math.Abs(x.T-1.1) > 1e-15 {
		t.Errorf("time: got %v, want 1.1", x.T)
	}
}

// A harmonic oscillator integrated with semi-implicit Euler keeps a bounded
// energy error, unlike explicit Euler whose energy grows each step.
func TestSemiImplicitEulerHarmonicOscillator(t *testing.T) {
	integ := NewSemiImplicitEuler()
	x := dynamo.State{Theta1: 1.0}
	dt := 0.01
	steps := 10000

	energy := func(s dynamo.State) float64 {
		return 0.5*s.Omega1*s.Omega1 + 0.5*s.Theta1*s.Theta1
	}
	e0 := energy(x)
	maxDrift := 0.0

	for i := 0; i < steps; i++ {
		integ.Step(&x, -x.Theta1, 0, dt)
		maxDrift = math.Max(maxDrift, math.Abs(energy(x)-e0)/e0)
	}

	if maxDrift > 0.01 {
		t.Errorf("energy drift too large: %.6f", maxDrift)
	}

	expected := math.Cos(float64(steps) * dt)
	if math.Abs(x.Theta1-expected) > 0.05 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x.Theta1, expected)
	}
}

func TestSemiImplicitEulerZeroAcceleration(t *testing.T) {
	integ := NewSemiImplicitEuler()
	x := dynamo.State{Omega1: 0.5, Omega2: -0.25}
	for i := 0; i < 4; i++ {
		integ.Step(&x, 0, 0, 0.5)
	}
	if x.Theta1 != 1.0 || x.Theta2 != -0.5 || x.T != 2.0 {
		t.Errorf("uniform motion broken: %v", x)
	}
}
