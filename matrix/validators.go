// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"math"
)

func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateSymmetric checks |B[i,j] − B[j,i]| ≤ eps over the stored entries.
// Returns ErrNaNInf for a non-finite eps and ErrAsymmetry on violation.
func ValidateSymmetric(s *Susceptance, eps float64) error {
	if math.IsNaN(eps) || math.IsInf(eps, 0) {
		return validatorErrorf("ValidateSymmetric", ErrNaNInf)
	}
	eps = math.Abs(eps)

	for i := range s.cols {
		for k, j := range s.cols[i] {
			if j <= i {
				continue
			}
			aji, _ := s.At(j, i)
			if math.Abs(s.vals[i][k]-aji) > eps {
				return validatorErrorf("ValidateSymmetric",
					fmt.Errorf("%w: B[%d,%d]=%g, B[%d,%d]=%g", ErrAsymmetry, i, j, s.vals[i][k], j, i, aji))
			}
		}
	}

	return nil
}

// ValidateZeroRowSums checks |Σ_j B[i,j]| ≤ eps·max(1, |B[i,i]|) for every
// row, the Kirchhoff consistency of a susceptance Laplacian. The bound is
// relative to the diagonal so very small reactances do not trip it.
func ValidateZeroRowSums(s *Susceptance, eps float64) error {
	if math.IsNaN(eps) || math.IsInf(eps, 0) {
		return validatorErrorf("ValidateZeroRowSums", ErrNaNInf)
	}
	eps = math.Abs(eps)

	for i, sum := range s.RowSums() {
		d, _ := s.At(i, i)
		if math.Abs(sum) > eps*math.Max(1, math.Abs(d)) {
			return validatorErrorf("ValidateZeroRowSums",
				fmt.Errorf("%w: row %d (bus %d) sums to %g", ErrNonZeroRowSum, i, s.ids[i], sum))
		}
	}

	return nil
}
