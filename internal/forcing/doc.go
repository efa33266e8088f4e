// Package forcing models the external driving of the pendulum: a sum of
// exponentially decaying sinusoids, each described by a [Term].
//
// [Evaluate] computes, for one instant, the aggregate forcing acceleration
// applied to the pivot together with the two sampled outputs of a run:
// the tip signal (pendulum displacement plus forcing) and the forcing
// noise alone. [Parse] reads terms from the whitespace-delimited parameter
// format ("tau freq_hz phi amplitude" per line, '#' comments).
package forcing
