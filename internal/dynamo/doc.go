// Package dynamo provides the core simulation primitives shared by the
// driven double pendulum packages.
//
// The package defines:
//
//   - [State]: angles, angular velocities and elapsed time of a run
//   - [Observer]: per-step hook used for progress and metrics
//   - [Config]: step count, duration and physical constants of a run
//   - the error taxonomy ([ErrInvalidParameter], [ErrCanceled])
//
// # Thread Safety
//
// A State is owned by exactly one run. Independent runs never share state,
// so they may execute concurrently.
package dynamo
