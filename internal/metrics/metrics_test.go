package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/drivenpend/internal/dynamo"
)

func TestStability(t *testing.T) {
	s := NewStability(1.0)
	if s.Value() != 1.0 {
		t.Errorf("expected 1.0 with no samples, got %v", s.Value())
	}

	s.OnStep(0, dynamo.State{Omega1: 0.5}, 0, 0)
	s.OnStep(1, dynamo.State{Omega2: -2}, 0, 0)
	s.OnStep(2, dynamo.State{Omega1: math.NaN()}, 0, 0)
	s.OnStep(3, dynamo.State{}, 0, 0)

	if s.Value() != 0.5 {
		t.Errorf("expected 0.5, got %v", s.Value())
	}
}

func TestDivergence(t *testing.T) {
	d := NewDivergence()
	if d.Value() != -1 {
		t.Errorf("expected -1 before divergence, got %v", d.Value())
	}

	d.OnStep(0, dynamo.State{}, 0, 0)
	d.OnStep(1, dynamo.State{T: 0.1}, math.Inf(1), 0)
	d.OnStep(2, dynamo.State{T: 0.2, Theta1: math.NaN()}, 0, 0)

	step, tm, ok := d.Diverged()
	if !ok || step != 1 || tm != 0.1 {
		t.Errorf("Diverged() = %d, %v, %v", step, tm, ok)
	}
	if d.Value() != 1 {
		t.Errorf("Value() = %v, want 1", d.Value())
	}

	d.Reset()
	if _, _, ok := d.Diverged(); ok {
		t.Error("expected reset to clear divergence")
	}
}

func TestNoiseRMS(t *testing.T) {
	n := NewNoiseRMS()
	n.OnStep(0, dynamo.State{}, 0, 3)
	n.OnStep(1, dynamo.State{}, 0, -4)
	n.OnStep(2, dynamo.State{}, 0, 0)
	n.OnStep(3, dynamo.State{}, 0, 0)

	if math.Abs(n.Value()-2.5) > 1e-12 {
		t.Errorf("expected 2.5, got %v", n.Value())
	}
}
