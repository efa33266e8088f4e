package metrics

import (
	"math"

	"github.com/san-kum/drivenpend/internal/dynamo"
)

// Stability is the fraction of steps whose angular velocities stay below
// threshold in magnitude.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) OnStep(step int, x dynamo.State, signal, noise float64) {
	s.samples++
	if !(math.Abs(x.Omega1) <= s.threshold && math.Abs(x.Omega2) <= s.threshold) {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
