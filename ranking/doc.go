// SPDX-License-Identifier: MIT

// Package ranking scores placement evaluations and picks a recommendation.
//
// Every evaluation falls in one category:
//
//	NonConvergent - the flow did not solve; score +Inf.
//	Violating     - a line, generator or capacity limit is broken; score = ViolationPenalty.
//	Clean         - score = MaxLoading + ChangeWeight·|largest loading change|.
//
// Entries are ordered by score, exact ties by the smaller bus id, so the
// ranking never depends on evaluation order. The recommendation is the best
// Clean entry; when there is none the ranking is infeasible and carries the
// category of the best entry as its reason.
package ranking
