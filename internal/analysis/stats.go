package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Summary struct {
	N         int
	NonFinite int
	Mean      float64
	StdDev    float64
	Min       float64
	Max       float64
	RMS       float64
}

// Summarize computes statistics over the finite entries of values and
// counts the rest.
func Summarize(values []float64) Summary {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		finite = append(finite, v)
	}

	s := Summary{N: len(values), NonFinite: len(values) - len(finite)}
	if len(finite) == 0 {
		return s
	}

	s.Min = floats.Min(finite)
	s.Max = floats.Max(finite)
	s.RMS = floats.Norm(finite, 2) / math.Sqrt(float64(len(finite)))
	if len(finite) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(finite, nil)
	} else {
		s.Mean = finite[0]
	}
	return s
}
