// SPDX-License-Identifier: MIT

package placement_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gridload/grid"
	"github.com/katalvlaran/gridload/placement"
)

// scanRelaxer tries every one-hot vector and returns the best, recording
// the objective values it saw.
type scanRelaxer struct {
	mu      sync.Mutex
	seen    []float64
	problem placement.Problem
}

func (r *scanRelaxer) Minimize(ctx context.Context, p placement.Problem) (placement.RelaxResult, error) {
	r.problem = p
	best, bestF := 0, math.Inf(1)
	for rep := 0; rep < 2; rep++ {
		for i := 0; i < p.Dim; i++ {
			w := make([]float64, p.Dim)
			w[i] = 1
			f := p.Func(w)
			r.mu.Lock()
			r.seen = append(r.seen, f)
			r.mu.Unlock()
			if f < bestF {
				best, bestF = i, f
			}
		}
	}
	w := make([]float64, p.Dim)
	w[best] = 1

	return placement.RelaxResult{Weights: w, Objective: bestF, Converged: true, Evaluations: 2 * p.Dim, Status: "scan"}, nil
}

func TestSearch_Relaxed(t *testing.T) {
	net := grid.Case9()
	r := &scanRelaxer{}
	c, cs := newController(t, net, placement.WithRelaxer(r))

	res, err := c.Search(context.Background(), placement.Request{
		Candidates: []int{4, 5, 9},
		Load:       grid.Increment{MW: 300},
		Mode:       placement.Relaxed,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Relaxation)
	require.Len(t, res.Evaluations, 1)

	rel := res.Relaxation
	require.Equal(t, 3, rel.Evaluated)
	require.EqualValues(t, 1+3, cs.calls.Load(), "memoised: one solve per distinct bus plus the base")
	require.Len(t, r.seen, 6)
	require.Equal(t, 3, r.problem.Dim)
	require.Equal(t, 0.0, r.problem.Lower)
	require.Equal(t, 1.0, r.problem.Upper)
	require.Equal(t, 1.0, r.problem.SumTo)
	require.NoError(t, r.problem.Feasible())
	require.Equal(t, rel.Bus, rel.Evaluation.Bus)
	require.Equal(t, rel.Evaluation, res.Evaluations[0])
	require.InDelta(t, rel.Result.Objective, rel.Evaluation.Objective, 1e-12)
	for _, f := range r.seen {
		require.GreaterOrEqual(t, f, rel.Evaluation.Objective)
	}
}

func TestProblem_Feasible(t *testing.T) {
	ok := placement.Problem{Dim: 4, Lower: 0, Upper: 1, SumTo: 1}
	require.NoError(t, ok.Feasible())

	for name, p := range map[string]placement.Problem{
		"lower above upper": {Dim: 2, Lower: 0.6, Upper: 0.4, SumTo: 1},
		"sum below floor":   {Dim: 3, Lower: 0.5, Upper: 1, SumTo: 1},
		"sum above ceiling": {Dim: 2, Lower: 0, Upper: 0.4, SumTo: 1},
		"nan":               {Dim: 2, Lower: math.NaN(), Upper: 1, SumTo: 1},
	} {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, p.Feasible(), placement.ErrInfeasibleBounds)
		})
	}
}

func TestArgmax(t *testing.T) {
	require.Equal(t, 0, placement.Argmax([]float64{0.5, 0.5}))
	require.Equal(t, 2, placement.Argmax([]float64{0.1, 0.2, 0.7}))
	require.Equal(t, 0, placement.Argmax(nil))
}
