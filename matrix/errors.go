// SPDX-License-Identifier: MIT

package matrix

import "errors"

// Every message is prefixed with "matrix: ". Callers wrap with
// fmt.Errorf("ctx: %w", ErrX) and match with errors.Is.
var (
	// ErrNilNetwork indicates a nil *grid.Network was passed to Assemble.
	ErrNilNetwork = errors.New("matrix: network is nil")

	// ErrOutOfRange indicates a row or column index outside [0, Dim).
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates a vector whose length differs from Dim.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrAsymmetry indicates B[i,j] and B[j,i] differ by more than eps.
	ErrAsymmetry = errors.New("matrix: matrix is not symmetric within eps")

	// ErrNonZeroRowSum indicates a row whose entries do not cancel within eps.
	ErrNonZeroRowSum = errors.New("matrix: row sum not zero within eps")

	// ErrNaNInf indicates a non-finite susceptance (e.g. a denormal reactance).
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrEmpty indicates a reduction that would leave no rows.
	ErrEmpty = errors.New("matrix: reduced system is empty")
)
