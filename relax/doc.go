// SPDX-License-Identifier: MIT

// Package relax solves the continuous relaxation of the placement choice
// with gonum's Nelder–Mead simplex method.
//
// The relaxation assigns every candidate bus a weight in
// [Problem.Lower, Problem.Upper] with the weights summing to Problem.SumTo;
// the placement controller asks for [0,1] and a sum of one. Nelder–Mead is
// unconstrained, so every trial point is projected onto that set (Project)
// before the objective sees it. The objective is piecewise constant in the weights, so
// the search typically ends on the function-convergence rule or the
// evaluation limit; the caller re-evaluates the heaviest bus on the normal
// path either way.
package relax
