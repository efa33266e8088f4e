package metrics

import (
	"math"

	"github.com/san-kum/drivenpend/internal/dynamo"
)

// Divergence records the first step at which the state or either output
// became non-finite. It only observes; values are never corrected.
type Divergence struct {
	name  string
	step  int
	time  float64
	found bool
}

func NewDivergence() *Divergence {
	return &Divergence{name: "divergence_step", step: -1}
}

func (d *Divergence) Name() string { return d.name }

func (d *Divergence) OnStep(step int, x dynamo.State, signal, noise float64) {
	if d.found {
		return
	}
	if !x.IsValid() || !finite(signal) || !finite(noise) {
		d.found = true
		d.step = step
		d.time = x.T
	}
}

// Value is the first divergent step, or -1.
func (d *Divergence) Value() float64 {
	return float64(d.step)
}

func (d *Divergence) Diverged() (step int, t float64, ok bool) {
	return d.step, d.time, d.found
}

func (d *Divergence) Reset() {
	d.step = -1
	d.time = 0
	d.found = false
}

// NoiseRMS is the root mean square of the forcing noise.
type NoiseRMS struct {
	name    string
	sumSq   float64
	samples int
}

func NewNoiseRMS() *NoiseRMS {
	return &NoiseRMS{name: "noise_rms"}
}

func (n *NoiseRMS) Name() string { return n.name }

func (n *NoiseRMS) OnStep(step int, x dynamo.State, signal, noise float64) {
	n.sumSq += noise * noise
	n.samples++
}

func (n *NoiseRMS) Value() float64 {
	if n.samples == 0 {
		return 0
	}
	return math.Sqrt(n.sumSq / float64(n.samples))
}

func (n *NoiseRMS) Reset() {
	n.sumSq = 0
	n.samples = 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
