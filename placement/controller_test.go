// SPDX-License-Identifier: MIT

package placement_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gridload/dcflow"
	"github.com/katalvlaran/gridload/grid"
	"github.com/katalvlaran/gridload/loading"
	"github.com/katalvlaran/gridload/placement"
)

// countingSolver wraps a FlowSolver, counts calls and can fail on demand.
type countingSolver struct {
	inner placement.FlowSolver
	calls atomic.Int64
	fail  func(loads grid.Loads) error
}

func (s *countingSolver) Solve(ctx context.Context, loads grid.Loads) (*dcflow.Solution, error) {
	s.calls.Add(1)
	if s.fail != nil {
		if err := s.fail(loads); err != nil {
			return nil, err
		}
	}
	return s.inner.Solve(ctx, loads)
}

func newController(t *testing.T, net *grid.Network, opts ...placement.Option) (*placement.Controller, *countingSolver) {
	t.Helper()
	s, err := dcflow.NewSolver(net)
	require.NoError(t, err)
	cs := &countingSolver{inner: s}
	c, err := placement.New(net, cs, opts...)
	require.NoError(t, err)

	return c, cs
}

func TestSearch_Case9Exhaustive(t *testing.T) {
	net := grid.Case9()
	c, cs := newController(t, net, placement.WithWorkers(3))

	candidates := placement.DefaultCandidates(net)
	require.Equal(t, []int{2, 3, 4, 5, 6, 7, 8, 9}, candidates)
	candidates = []int{4, 5, 6, 7, 8, 9}

	res, err := c.Search(context.Background(), placement.Request{
		Candidates: candidates,
		Load:       grid.Increment{MW: 50, MVAr: 20},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Base)
	require.NoError(t, res.BaseErr)
	require.NotEqual(t, uuid.Nil, res.RunID)
	require.EqualValues(t, 1+len(candidates), cs.calls.Load(), "base case solved once")

	require.Len(t, res.Evaluations, len(candidates))
	for i, ev := range res.Evaluations {
		require.Equal(t, candidates[i], ev.Bus, "candidate order is kept")
		require.True(t, ev.Converged)
		require.NoError(t, ev.Err)
		require.Empty(t, ev.Violations)
		require.False(t, ev.Violated())
		require.InDelta(t, 65.2, ev.MaxLoadingPct, 1e-9)
		require.InDelta(t, 65.2, ev.Objective, 1e-9)
		require.InDelta(t, 34.8, ev.Margin, 1e-9)
		require.NotNil(t, ev.MostAffected)
		require.Len(t, ev.Changes, 9)
	}

	bus5 := res.Evaluations[1]
	require.Equal(t, 1, bus5.MostAffected.From)
	require.Equal(t, 4, bus5.MostAffected.To)
	require.InDelta(t, 20.0, bus5.MaxChangePct, 1e-9)
	require.InDelta(t, 17.297297, bus5.Changes[1].DeltaPct, 1e-5, "4-5")
	require.InDelta(t, 0.0576+0.092, bus5.SlackDistancePU, 1e-9)

	bus6 := res.Evaluations[2]
	require.Equal(t, 5, bus6.MostAffected.From)
	require.Equal(t, 6, bus6.MostAffected.To)
	require.Less(t, bus6.MaxChangePct, -20.0)
}

func TestSearch_DeterministicAcrossWorkers(t *testing.T) {
	net := grid.Case9()
	req := placement.Request{Candidates: []int{9, 8, 7, 6, 5, 4}, Load: grid.Increment{MW: 80}}

	c1, _ := newController(t, net, placement.WithWorkers(1))
	c8, _ := newController(t, net, placement.WithWorkers(8))
	r1, err := c1.Search(context.Background(), req)
	require.NoError(t, err)
	r8, err := c8.Search(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, r1.Evaluations, r8.Evaluations)
}

func TestSearch_AllCandidatesViolate(t *testing.T) {
	net := grid.Case9()
	c, _ := newController(t, net, placement.WithGeneratorLimits(1))

	res, err := c.Search(context.Background(), placement.Request{
		Candidates: []int{4, 5, 9},
		Load:       grid.Increment{MW: 300},
	})
	require.NoError(t, err)
	for _, ev := range res.Evaluations {
		require.True(t, ev.Converged)
		require.True(t, ev.Violated())
		require.NotEmpty(t, ev.Violations)
		require.Equal(t, 0, ev.Violations[0].Flow.Branch, "slack feeder 1-4 is overloaded")
		require.Len(t, ev.GenViolations, 1)
		require.Equal(t, loading.AboveMax, ev.GenViolations[0].Kind)
		require.Greater(t, ev.Objective, placement.DefaultViolationPenalty)
	}
}

func TestSearch_InfeasibleCapacity(t *testing.T) {
	net := grid.Case9()
	c, _ := newController(t, net)

	res, err := c.Search(context.Background(), placement.Request{
		Candidates: []int{5},
		Load:       grid.Increment{MW: 600},
	})
	require.NoError(t, err)
	ev := res.Evaluations[0]
	require.True(t, ev.CapacityExceeded)
	require.ErrorIs(t, ev.Err, loading.ErrInfeasibleLoad)
	require.True(t, math.IsInf(ev.Objective, 1))
	require.True(t, math.IsInf(ev.Margin, -1))

	off, _ := newController(t, net, placement.WithCapacityCheck(false))
	res, err = off.Search(context.Background(), placement.Request{Candidates: []int{5}, Load: grid.Increment{MW: 600}})
	require.NoError(t, err)
	require.False(t, res.Evaluations[0].CapacityExceeded)
}

func TestSearch_PerCandidateSingular(t *testing.T) {
	net := grid.Case9()
	c, cs := newController(t, net)
	i7, _ := net.Index(7)
	cs.fail = func(l grid.Loads) error {
		if l.P[i7] > 100 {
			return dcflow.ErrSingularSystem
		}
		return nil
	}

	res, err := c.Search(context.Background(), placement.Request{Candidates: []int{5, 7, 9}, Load: grid.Increment{MW: 10}})
	require.NoError(t, err, "singular candidates do not abort the search")
	require.True(t, res.Evaluations[0].Converged)
	require.False(t, res.Evaluations[1].Converged)
	require.ErrorIs(t, res.Evaluations[1].Err, dcflow.ErrSingularSystem)
	require.True(t, math.IsInf(res.Evaluations[1].Objective, 1))
	require.True(t, res.Evaluations[2].Converged)
}

// flagSolver reports non-convergence through the Solution flag, the way an
// iterative AC solver would, for load vectors matched by diverge.
type flagSolver struct {
	inner   placement.FlowSolver
	diverge func(loads grid.Loads) bool
	err     func(loads grid.Loads) error
}

func (s *flagSolver) Solve(ctx context.Context, loads grid.Loads) (*dcflow.Solution, error) {
	if s.err != nil {
		if err := s.err(loads); err != nil {
			return nil, err
		}
	}
	if s.diverge != nil && s.diverge(loads) {
		return &dcflow.Solution{Converged: false}, nil
	}
	return s.inner.Solve(ctx, loads)
}

func TestSearch_SolverReportsNonConvergence(t *testing.T) {
	net := grid.Case9()
	inner, err := dcflow.NewSolver(net)
	require.NoError(t, err)
	i6, _ := net.Index(6)
	i7, _ := net.Index(7)
	fs := &flagSolver{
		inner:   inner,
		diverge: func(l grid.Loads) bool { return l.P[i6] > 0 },
		err: func(l grid.Loads) error {
			if l.P[i7] > 100 {
				return fmt.Errorf("ac: newton-raphson after 10 iterations: %w", placement.ErrNotConverged)
			}
			return nil
		},
	}
	c, err := placement.New(net, fs)
	require.NoError(t, err)

	res, err := c.Search(context.Background(), placement.Request{Candidates: []int{5, 6, 7}, Load: grid.Increment{MW: 10}})
	require.NoError(t, err, "non-convergent candidates do not abort the search")
	require.NotNil(t, res.Base)
	require.Len(t, res.Evaluations, 3)

	require.True(t, res.Evaluations[0].Converged)
	require.NoError(t, res.Evaluations[0].Err)

	for _, ev := range res.Evaluations[1:] {
		require.False(t, ev.Converged, "bus %d", ev.Bus)
		require.ErrorIs(t, ev.Err, placement.ErrNotConverged)
		require.Empty(t, ev.Flows)
		require.Empty(t, ev.Changes)
		require.True(t, math.IsInf(ev.Objective, 1))
		require.True(t, math.IsInf(ev.Margin, -1))
	}
}

func TestSearch_BaseReportsNonConvergence(t *testing.T) {
	net := grid.Case9()
	inner, err := dcflow.NewSolver(net)
	require.NoError(t, err)
	i5, _ := net.Index(5)
	fs := &flagSolver{inner: inner, diverge: func(l grid.Loads) bool { return l.P[i5] == 90 }}
	c, err := placement.New(net, fs)
	require.NoError(t, err)

	res, err := c.Search(context.Background(), placement.Request{Candidates: []int{5, 9}, Load: grid.Increment{MW: 10}})
	require.NoError(t, err)
	require.Nil(t, res.Base)
	require.ErrorIs(t, res.BaseErr, placement.ErrNotConverged)
	require.True(t, res.Evaluations[0].Converged)
	require.Nil(t, res.Evaluations[0].MostAffected, "no base case to compare against")
	require.False(t, res.Evaluations[1].Converged, "bus 5 keeps its base load while bus 9 is loaded")
}

func TestSearch_SingularBase(t *testing.T) {
	net, err := grid.NewNetwork(
		[]grid.Bus{{ID: 1, Type: grid.Slack}, {ID: 2, PdMW: 10}, {ID: 3, PdMW: 5}},
		[]grid.Branch{{From: 1, To: 2, X: 0.1, RatingMW: 50, InService: true}},
		[]grid.Generator{{Bus: 1, PMaxMW: 100, InService: true}}, 100)
	require.NoError(t, err)
	c, _ := newController(t, net)

	res, err := c.Search(context.Background(), placement.Request{Candidates: []int{2, 3}, Load: grid.Increment{MW: 5}})
	require.NoError(t, err)
	require.Nil(t, res.Base)
	require.ErrorIs(t, res.BaseErr, dcflow.ErrSingularSystem)
	for _, ev := range res.Evaluations {
		require.False(t, ev.Converged)
		require.ErrorIs(t, ev.Err, dcflow.ErrSingularSystem)
	}
}

func TestSearch_FatalErrors(t *testing.T) {
	net := grid.Case9()
	c, cs := newController(t, net)
	ctx := context.Background()

	_, err := c.Search(ctx, placement.Request{})
	require.ErrorIs(t, err, placement.ErrNoCandidates)

	_, err = c.Search(ctx, placement.Request{Candidates: []int{5, 42}})
	require.ErrorIs(t, err, placement.ErrUnknownBusReference)
	require.ErrorIs(t, err, grid.ErrUnknownBusReference)

	_, err = c.Search(ctx, placement.Request{Candidates: []int{5, 5}})
	require.ErrorIs(t, err, placement.ErrDuplicateCandidate)

	_, err = c.Search(ctx, placement.Request{Candidates: []int{5}, Mode: placement.Relaxed})
	require.ErrorIs(t, err, placement.ErrNoRelaxer)

	boom := errors.New("boom")
	cs.fail = func(grid.Loads) error { return boom }
	res, err := c.Search(ctx, placement.Request{Candidates: []int{5}})
	require.ErrorIs(t, err, boom)
	require.Nil(t, res)
}

func TestSearch_Cancelled(t *testing.T) {
	c, _ := newController(t, grid.Case9())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := c.Search(ctx, placement.Request{Candidates: []int{4, 5, 6}, Load: grid.Increment{MW: 10}})
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, res, "no partial results")
}

func TestSearch_CancelledMidway(t *testing.T) {
	net := grid.Case9()
	c, cs := newController(t, net, placement.WithWorkers(1))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var n atomic.Int64
	cs.fail = func(grid.Loads) error {
		if n.Add(1) == 3 {
			cancel()
		}
		return nil
	}

	res, err := c.Search(ctx, placement.Request{Candidates: []int{4, 5, 6, 7, 8, 9}, Load: grid.Increment{MW: 10}})
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, res)
}

func TestNew_Options(t *testing.T) {
	net := grid.Case9()
	s, err := dcflow.NewSolver(net)
	require.NoError(t, err)

	_, err = placement.New(nil, s)
	require.ErrorIs(t, err, placement.ErrNilSolver)

	for _, opt := range []placement.Option{
		placement.WithWorkers(-1),
		placement.WithThreshold(0),
		placement.WithGeneratorLimits(-1),
		placement.WithViolationPenalty(-5),
	} {
		_, err = placement.New(net, s, opt)
		require.ErrorIs(t, err, placement.ErrOptionViolation)
	}

	c, err := placement.New(net, s, placement.WithWorkers(2), placement.WithThreshold(90), placement.WithViolationPenalty(10))
	require.NoError(t, err)
	o := c.Options()
	require.Equal(t, 2, o.Workers)
	require.Equal(t, 90.0, o.Threshold)
	require.Equal(t, 10.0, o.ViolationPenalty)
	require.True(t, o.CheckCapacity)
	require.False(t, o.GenLimits)
}

func TestEvaluate_ThresholdAndPenalty(t *testing.T) {
	net := grid.Case9()
	c, _ := newController(t, net, placement.WithThreshold(60), placement.WithViolationPenalty(10))

	ev, err := c.Evaluate(context.Background(), nil, 5, grid.Increment{MW: 50})
	require.NoError(t, err)
	require.Len(t, ev.Violations, 1, "8-2 at 65.2% exceeds a 60% threshold")
	require.Equal(t, 6, ev.Violations[0].Flow.Branch)
	require.InDelta(t, 75.2, ev.Objective, 1e-9)
	require.InDelta(t, -5.2, ev.Margin, 1e-9)
	require.Nil(t, ev.MostAffected, "no base case, no changes")

	_, err = c.Evaluate(context.Background(), nil, 99, grid.Increment{})
	require.ErrorIs(t, err, placement.ErrUnknownBusReference)
}
