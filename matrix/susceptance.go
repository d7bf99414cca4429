// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/gridload/grid"
)

// Susceptance is the sparse symmetric nodal susceptance matrix of a network,
// indexed like the network buses (grid.Network.Index).
type Susceptance struct {
	n    int
	cols [][]int     // cols[i] sorted ascending
	vals [][]float64 // vals[i][k] = B[i, cols[i][k]]
	ids  []int       // ids[i] = bus id of row i
}

// Assemble builds B from the modeled branches of net and runs the symmetry
// and zero-row-sum checks with the configured epsilon.
//
// Steps:
//  1. allocate one hash-map row per bus;
//  2. for every in-service branch with X ≠ 0 stamp ±1/X;
//  3. freeze rows into sorted slices;
//  4. validate.
//
// Complexity: O(n + m log d) for n buses, m branches and maximum degree d.
func Assemble(net *grid.Network, opts ...Option) (*Susceptance, error) {
	if net == nil {
		return nil, ErrNilNetwork
	}
	o := gatherOptions(opts...)

	n := net.NumBuses()
	rows := make([]map[int]float64, n)
	for i := range rows {
		rows[i] = make(map[int]float64, 4)
	}

	for k, br := range net.Branches() {
		if !br.Modeled() {
			continue
		}
		b := 1 / br.X
		if o.validateNaNInf && (math.IsNaN(b) || math.IsInf(b, 0)) {
			return nil, fmt.Errorf("matrix: branch %d (%d-%d): %w", k, br.From, br.To, ErrNaNInf)
		}
		f, _ := net.Index(br.From)
		t, _ := net.Index(br.To)
		if f == t {
			continue // a self-loop stamps +b and -b on the same cell
		}
		rows[f][f] += b
		rows[t][t] += b
		rows[f][t] -= b
		rows[t][f] -= b
	}

	s := &Susceptance{
		n:    n,
		cols: make([][]int, n),
		vals: make([][]float64, n),
		ids:  make([]int, n),
	}
	for i, row := range rows {
		s.ids[i] = net.BusAt(i).ID
		cols := make([]int, 0, len(row))
		for j := range row {
			cols = append(cols, j)
		}
		sort.Ints(cols)
		vals := make([]float64, len(cols))
		for k, j := range cols {
			vals[k] = row[j]
		}
		s.cols[i], s.vals[i] = cols, vals
	}

	if err := ValidateSymmetric(s, o.eps); err != nil {
		return nil, err
	}
	if err := ValidateZeroRowSums(s, o.eps); err != nil {
		return nil, err
	}

	return s, nil
}

// Dim returns the number of rows (buses).
func (s *Susceptance) Dim() int { return s.n }

// NNZ returns the number of stored entries.
func (s *Susceptance) NNZ() int {
	var nnz int
	for _, c := range s.cols {
		nnz += len(c)
	}

	return nnz
}

// BusID returns the bus id of row i.
func (s *Susceptance) BusID(i int) int { return s.ids[i] }

// At returns B[i,j]; missing entries are zero.
func (s *Susceptance) At(i, j int) (float64, error) {
	if i < 0 || i >= s.n || j < 0 || j >= s.n {
		return 0, ErrOutOfRange
	}
	cols := s.cols[i]
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return s.vals[i][k], nil
	}

	return 0, nil
}

// Row returns the stored columns and values of row i. The slices are shared
// and must not be modified.
func (s *Susceptance) Row(i int) ([]int, []float64) {
	return s.cols[i], s.vals[i]
}

// RowSums returns Σ_j B[i,j] for every row.
func (s *Susceptance) RowSums() []float64 {
	out := make([]float64, s.n)
	for i, vals := range s.vals {
		for _, v := range vals {
			out[i] += v
		}
	}

	return out
}

// MulVec returns B·x.
func (s *Susceptance) MulVec(x []float64) ([]float64, error) {
	if len(x) != s.n {
		return nil, fmt.Errorf("matrix: MulVec: %w", ErrDimensionMismatch)
	}
	out := make([]float64, s.n)
	for i := range s.cols {
		var acc float64
		for k, j := range s.cols[i] {
			acc += s.vals[i][k] * x[j]
		}
		out[i] = acc
	}

	return out, nil
}

// Dense returns B as a gonum symmetric matrix.
func (s *Susceptance) Dense() *mat.SymDense {
	d := mat.NewSymDense(s.n, nil)
	for i := range s.cols {
		for k, j := range s.cols[i] {
			if j >= i {
				d.SetSym(i, j, s.vals[i][k])
			}
		}
	}

	return d
}

// Reduce returns B with row and column skip removed, the reduced system
// B′ of a DC solve with skip as the slack row.
func (s *Susceptance) Reduce(skip int) (*mat.SymDense, error) {
	if skip < 0 || skip >= s.n {
		return nil, ErrOutOfRange
	}
	if s.n == 1 {
		return nil, ErrEmpty
	}

	d := mat.NewSymDense(s.n-1, nil)
	for i := range s.cols {
		if i == skip {
			continue
		}
		ri := reducedIndex(i, skip)
		for k, j := range s.cols[i] {
			if j == skip || j < i {
				continue
			}
			d.SetSym(ri, reducedIndex(j, skip), s.vals[i][k])
		}
	}

	return d, nil
}

// reducedIndex maps a full index to its position after removing skip.
func reducedIndex(i, skip int) int {
	if i > skip {
		return i - 1
	}

	return i
}
