package physics

import (
	"math"

	"github.com/san-kum/drivenpend/internal/dynamo"
	"github.com/san-kum/drivenpend/internal/integrators"
)

// DrivenDoublePendulum is a double pendulum of two equal rods of length
// Length whose pivot is driven horizontally by a prescribed acceleration.
type DrivenDoublePendulum struct {
	Length  float64
	Gravity float64

	integ *integrators.SemiImplicitEuler
}

func NewDrivenDoublePendulum(gravity, length float64) *DrivenDoublePendulum {
	return &DrivenDoublePendulum{
		Length:  length,
		Gravity: gravity,
		integ:   integrators.NewSemiImplicitEuler(),
	}
}

// Denominator of the closed-form θ2'' expression; always in [0.5, 1].
func Denominator(delta float64) float64 {
	c := math.Cos(delta)
	return 1.0 - c*c*0.5
}

// Accelerations returns θ1'' and θ2'' for pivot acceleration ap.
func (d *DrivenDoublePendulum) Accelerations(x dynamo.State, ap float64) (alpha1, alpha2 float64) {
	l, g := d.Length, d.Gravity
	v1, v2 := x.Omega1, x.Omega2

	delta := x.Theta1 - x.Theta2
	sinD, cosD := math.Sin(delta), math.Cos(delta)
	sin1, cos1 := math.Sin(x.Theta1), math.Cos(x.Theta1)
	sin2, cos2 := math.Sin(x.Theta2), math.Cos(x.Theta2)

	alpha2 = (v2*v1*sinD + (ap/l)*cos2 - (g/l)*sin2 +
		v1*(v1-v2)*sinD -
		(cosD/2.0)*(2.0*(ap/l)*cos1-2.0*(g/l)*sin1-v1*v2*sinD+v2*(v1-v2)*sinD)) /
		(1.0 - cosD*cosD*0.5)

	alpha1 = 0.5 * (2*(ap/l)*cos1 - 2*(g/l)*sin1 - v1*v2*sinD - alpha2*cosD + v2*(v1-v2)*sinD)

	return alpha1, alpha2
}

// Advance moves x forward by one step of length dt under pivot
// acceleration ap. It never rejects a step; divergence shows up as
// non-finite state values.
func (d *DrivenDoublePendulum) Advance(x *dynamo.State, dt, ap float64) {
	alpha1, alpha2 := d.Accelerations(*x, ap)
	d.integ.Step(x, alpha1, alpha2, dt)
}

// TipX is the horizontal displacement of the lower bob from the pivot.
func (d *DrivenDoublePendulum) TipX(x dynamo.State) float64 {
	return d.Length*math.Sin(x.Theta1) + d.Length*math.Sin(x.Theta2)
}

// Energy is the mechanical energy of two unit point masses at the rod ends,
// measured in the pivot frame.
func (d *DrivenDoublePendulum) Energy(x dynamo.State) float64 {
	l, g := d.Length, d.Gravity

	v1sq := l * l * x.Omega1 * x.Omega1
	v2sq := v1sq + l*l*x.Omega2*x.Omega2 +
		2*l*l*x.Omega1*x.Omega2*math.Cos(x.Theta1-x.Theta2)

	ke := 0.5*v1sq + 0.5*v2sq
	y1 := -l * math.Cos(x.Theta1)
	y2 := y1 - l*math.Cos(x.Theta2)
	pe := g*y1 + g*y2

	return ke + pe
}
