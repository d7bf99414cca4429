// SPDX-License-Identifier: MIT

// Package matrix assembles the nodal susceptance matrix B of a grid.Network
// for DC power flow.
//
// For every in-service branch k=(f,t) with reactance x ≠ 0, b = 1/x is added
// to B[f,f] and B[t,t] and subtracted from B[f,t] and B[t,f]. Branches with
// x = 0 or out of service contribute nothing. The result is symmetric and
// every row sums to zero (a weighted graph Laplacian), so B itself is
// singular; a solver removes the slack row and column with Reduce before
// factorising.
//
// Storage is sparse: rows are hash maps while assembling (O(1) amortized
// update per branch end) and are frozen into sorted column/value slices
// before Assemble returns. A Susceptance is read-only afterwards and may be
// shared by any number of goroutines.
//
// Reduce and Dense hand the matrix to gonum (mat.SymDense) for factorisation.
//
// Validators:
//
//	ValidateSymmetric   - |B[i,j] − B[j,i]| ≤ eps, else ErrAsymmetry.
//	ValidateZeroRowSums - |Σ_j B[i,j]| ≤ eps, else ErrNonZeroRowSum.
package matrix
