package sim

import (
	"github.com/san-kum/drivenpend/internal/dynamo"
	"github.com/san-kum/drivenpend/internal/series"
)

// Result holds the two sampled outputs of a run. Signal and Noise share
// their time coordinates and have StepsTaken entries each.
type Result struct {
	Signal     series.Series
	Noise      series.Series
	Final      dynamo.State
	Omega1     float64
	Dt         float64
	StepsTaken int
	Complete   bool
	Metrics    map[string]float64
}

// ProgressFunc receives the number of completed steps out of total.
type ProgressFunc func(done, total int)
