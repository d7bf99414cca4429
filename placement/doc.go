// SPDX-License-Identifier: MIT

// Package placement searches for the bus at which a new load can be
// connected with the least stress on the network.
//
// A Controller evaluates every candidate bus independently: it clones the
// base load vector, adds the increment at the candidate, checks generating
// capacity, runs a FlowSolver and derives violations, loading changes
// against the base case and the most affected branch. Candidates run on a
// bounded worker pool and share the network and the solver's cached
// factorisation; each owns only its load vector.
//
// Per-candidate numerical failures (singular system, infeasible load) are
// recorded on the Evaluation with sentinel metrics (Objective = +Inf,
// Margin = −Inf) and never abort the search. Structural errors (unknown
// candidate bus, foreign load vector) and cancellation abort the whole
// search without partial results.
//
// Two modes share the single-bus evaluation path:
//
//	Exhaustive - every candidate is evaluated.
//	Relaxed    - a Relaxer minimises over continuous weights; the bus with
//	             the largest weight is evaluated and reported.
package placement
