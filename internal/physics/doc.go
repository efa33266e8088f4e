// Package physics provides the equations of motion of the driven double
// pendulum.
//
// [DrivenDoublePendulum.Accelerations] evaluates the closed-form angular
// accelerations for a given pivot acceleration, and
// [DrivenDoublePendulum.Advance] applies one semi-implicit Euler step.
// The θ2'' denominator 1 - cos²(θ1-θ2)/2 stays within [0.5, 1]
// (see [Denominator]), so a step never divides by zero.
//
// # Energy
//
// [DrivenDoublePendulum.Energy] reports the mechanical energy of the two
// bobs. It is an observable, not a conserved quantity, since the pivot is
// driven.
package physics
