// SPDX-License-Identifier: MIT

// Package dcflow solves the linearized (DC) power flow of a grid.Network.
//
// Model: flat voltage magnitudes, no losses, small angle differences, so the
// active power injections P and bus angles θ satisfy P = B·θ with B the
// nodal susceptance matrix. The slack bus fixes θ = 0 and absorbs the
// imbalance; removing its row and column leaves a non-singular system B′
// whenever every bus is connected to the slack.
//
// A Solver is built once per network: it assembles B, locates the slack,
// checks connectivity and factorises B′ (gonum mat.LU). Solve then needs
// only one forward/back substitution per load vector, and concurrent Solve
// calls share the factors read-only.
//
// B′ is factorised as a dense matrix, so NewSolver costs O(n³) time and
// O(n²) memory in the bus count n. That is fine for study cases up to a few
// thousand buses; larger networks need a sparse factorisation.
//
//	s, err := dcflow.NewSolver(grid.Case9())
//	...
//	sol, err := s.Solve(ctx, net.Loads())
//	for _, f := range sol.Flows { ... f.FlowMW, f.LoadingPct ... }
//
// Errors:
//
//	ErrNoSlackBus      - no bus typed Slack (fatal, returned by NewSolver).
//	ErrSingularSystem  - islanded or numerically singular B′ (returned by Solve).
//	ErrLoadsMismatch   - load vector length differs from the bus count.
package dcflow
