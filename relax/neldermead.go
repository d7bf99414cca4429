// SPDX-License-Identifier: MIT

package relax

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/katalvlaran/gridload/placement"
)

// ErrEmptyProblem indicates a problem without candidates.
var ErrEmptyProblem = errors.New("relax: problem has no dimensions")

// NonConvergentPenalty replaces non-finite objective values so the simplex
// arithmetic stays finite.
const NonConvergentPenalty = 1e6

// NelderMead implements placement.Relaxer.
type NelderMead struct {
	// MaxEvaluations caps objective calls; 0 selects 100 per dimension.
	MaxEvaluations int
	// Concurrent allows that many objective calls in parallel.
	Concurrent int
	// SimplexSize is the edge length of the initial simplex; 0 keeps gonum's default.
	SimplexSize float64
}

// Minimize starts from the uniform weight vector and returns the optimum
// projected onto the problem's bounds. Reaching an iteration, runtime or evaluation limit is reported
// as Converged=false rather than an error.
func (nm NelderMead) Minimize(ctx context.Context, p placement.Problem) (placement.RelaxResult, error) {
	if p.Dim <= 0 {
		return placement.RelaxResult{}, ErrEmptyProblem
	}
	if err := p.Feasible(); err != nil {
		return placement.RelaxResult{}, fmt.Errorf("relax: %w", err)
	}
	project := func(x []float64) []float64 { return Project(x, p.Lower, p.Upper, p.SumTo) }

	maxEval := nm.MaxEvaluations
	if maxEval <= 0 {
		maxEval = 100 * p.Dim
	}

	prob := optimize.Problem{
		Func: func(x []float64) float64 {
			f := p.Func(project(x))
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return NonConvergentPenalty
			}
			return f
		},
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}

	x0 := make([]float64, p.Dim)
	for i := range x0 {
		x0[i] = p.SumTo / float64(p.Dim)
	}
	settings := &optimize.Settings{
		FuncEvaluations: maxEval,
		Concurrent:      nm.Concurrent,
	}

	res, err := optimize.Minimize(prob, x0, settings, &optimize.NelderMead{SimplexSize: nm.SimplexSize})
	if cerr := ctx.Err(); cerr != nil {
		return placement.RelaxResult{}, cerr
	}
	if res == nil {
		return placement.RelaxResult{}, fmt.Errorf("relax: %w", err)
	}
	if err != nil && !limitStatus(res.Status) {
		return placement.RelaxResult{}, fmt.Errorf("relax: %s: %w", res.Status, err)
	}

	return placement.RelaxResult{
		Weights:     project(res.X),
		Objective:   res.F,
		Converged:   !res.Status.Early(),
		Evaluations: res.FuncEvaluations,
		Status:      res.Status.String(),
	}, nil
}

func limitStatus(s optimize.Status) bool {
	switch s {
	case optimize.IterationLimit, optimize.RuntimeLimit, optimize.FunctionEvaluationLimit:
		return true
	}

	return false
}

// projectIterations bounds the bisection on the projection shift; it covers
// the full float64 exponent range.
const projectIterations = 2200

// Project returns the Euclidean projection of x onto
// {w : lower <= w_i <= upper, Σw = sum}, computed as w_i = clamp(x_i − τ)
// with the shift τ found by bisection. NaN and −Inf coordinates are read as
// lower, +Inf as upper.
// The bounds must be feasible (see placement.Problem.Feasible).
func Project(x []float64, lower, upper, sum float64) []float64 {
	w := make([]float64, len(x))
	if len(x) == 0 {
		return w
	}
	xs := make([]float64, len(x))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, v := range x {
		switch {
		case math.IsNaN(v) || math.IsInf(v, -1):
			v = lower
		case math.IsInf(v, 1):
			v = upper
		}
		xs[i] = v
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}

	fill := func(tau float64) float64 {
		var s float64
		for i, v := range xs {
			w[i] = math.Max(lower, math.Min(upper, v-tau))
			s += w[i]
		}
		return s
	}

	// Σw(τ) is non-increasing: every weight sits at upper for τ <= lo−upper
	// and at lower for τ >= hi−lower.
	a, b := lo-upper, hi-lower
	for range projectIterations {
		mid := a/2 + b/2
		if mid == a || mid == b {
			break
		}
		if fill(mid) > sum {
			a = mid
		} else {
			b = mid
		}
	}
	fill(b)

	return w
}
