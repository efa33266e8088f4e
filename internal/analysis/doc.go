// Package analysis characterizes the output of a run.
//
//   - [AmplitudeSpectrum]: one-sided amplitude spectrum and dominant frequency
//   - [Summarize]: mean, standard deviation, extremes and RMS of a sequence
//   - [LyapunovExponent]: largest exponent from two nearby trajectories
//   - [PhaseRecorder]: (angle, angular velocity) portrait of one arm
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.LyapunovExponent(terms, cfg, 1e-8)
//	if err == nil && lambda > 0 {
//	    // nearby trajectories separate exponentially
//	}
package analysis
