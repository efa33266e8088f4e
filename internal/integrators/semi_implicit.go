package integrators

import "github.com/san-kum/drivenpend/internal/dynamo"

// SemiImplicitEuler advances velocities from the accelerations first, then
// positions from the updated velocities, then time.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Step(x *dynamo.State, alpha1, alpha2, dt float64) {
	x.Omega1 += alpha1 * dt
	x.Omega2 += alpha2 * dt
	x.Theta1 += x.Omega1 * dt
	x.Theta2 += x.Omega2 * dt
	x.T += dt
}
