package forcing

import "math"

// Evaluation holds the per-step forcing quantities.
type Evaluation struct {
	Accel  float64
	Signal float64
	Noise  float64
}

// Evaluate computes the forcing acceleration and the two output samples at
// time t for a pendulum with rod length l and angles theta1, theta2.
// Non-finite results are returned as-is.
func Evaluate(t, theta1, theta2, l float64, terms []Term) Evaluation {
	var ev Evaluation
	for _, term := range terms {
		ev.Accel += term.Accel(t)
	}

	ev.Signal = l*math.Sin(theta1) + l*math.Sin(theta2)
	for _, term := range terms {
		s := term.Sample(t)
		ev.Signal += s
		ev.Noise += s
	}
	return ev
}

// InitialOmega1 is the angular velocity of the upper rod at t = 0.
func InitialOmega1(terms []Term, l float64) float64 {
	v1 := 0.0
	for _, term := range terms {
		v1 += -term.Omega * term.Amplitude * math.Cos(term.Phi) / l
	}
	return v1
}
