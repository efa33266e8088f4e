package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/drivenpend/internal/dynamo"
	"github.com/san-kum/drivenpend/internal/forcing"
	"github.com/san-kum/drivenpend/internal/physics"
)

// LyapunovExponent estimates the largest Lyapunov exponent of the driven
// pendulum by following a second trajectory whose θ1 starts perturbation
// away. The separation is measured in (θ1, θ2, ω1, ω2) and renormalized to
// perturbation after every step. Both trajectories see the same forcing.
func LyapunovExponent(terms []forcing.Term, cfg dynamo.Config, perturbation float64) (float64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	if err := forcing.ValidateTerms(terms); err != nil {
		return 0, err
	}
	if !(perturbation > 0) || math.IsInf(perturbation, 0) {
		return 0, fmt.Errorf("perturbation must be positive and finite, got %g", perturbation)
	}

	dyn := physics.NewDrivenDoublePendulum(cfg.Gravity, cfg.Length)
	dt := cfg.Dt()

	x := dynamo.State{Omega1: forcing.InitialOmega1(terms, cfg.Length)}
	xp := x
	xp.Theta1 += perturbation
	d0 := perturbation

	sumLog := 0.0
	count := 0

	for i := 0; i < cfg.Steps; i++ {
		ap := forcing.Evaluate(x.T, x.Theta1, x.Theta2, cfg.Length, terms).Accel
		dyn.Advance(&x, dt, ap)
		dyn.Advance(&xp, dt, ap)

		sep := separation(x, xp)
		if math.IsNaN(sep) || math.IsInf(sep, 0) {
			break
		}
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / d0)
		count++

		scale := d0 / sep
		xp.Theta1 = x.Theta1 + (xp.Theta1-x.Theta1)*scale
		xp.Theta2 = x.Theta2 + (xp.Theta2-x.Theta2)*scale
		xp.Omega1 = x.Omega1 + (xp.Omega1-x.Omega1)*scale
		xp.Omega2 = x.Omega2 + (xp.Omega2-x.Omega2)*scale
	}

	if count == 0 {
		return 0, nil
	}
	return sumLog / (float64(count) * dt), nil
}

func separation(a, b dynamo.State) float64 {
	d1 := b.Theta1 - a.Theta1
	d2 := b.Theta2 - a.Theta2
	d3 := b.Omega1 - a.Omega1
	d4 := b.Omega2 - a.Omega2
	return math.Sqrt(d1*d1 + d2*d2 + d3*d3 + d4*d4)
}
