// SPDX-License-Identifier: MIT

package dcflow

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/gridload/grid"
	"github.com/katalvlaran/gridload/matrix"
	"github.com/katalvlaran/gridload/topology"
)

// Solver holds everything that depends only on topology: the susceptance
// matrix, the slack position and the factorised reduced system. It is
// immutable after NewSolver and safe for concurrent Solve calls.
type Solver struct {
	net      *grid.Network
	b        *matrix.Susceptance
	slack    int
	pgen     []float64
	branches []grid.Branch
	lu       *mat.LU
	singular error // non-nil when B′ cannot be solved
}

// NewSolver prepares a DC solver for net.
//
// Steps:
//  1. locate the slack bus (first of type Slack), else ErrNoSlackBus;
//  2. assemble B;
//  3. find buses not connected to the slack;
//  4. factorise B′ and check its condition number.
//
// Steps 3 and 4 do not fail NewSolver: a singular system is reported by
// every Solve call so that callers evaluating many scenarios can record it
// per scenario.
func NewSolver(net *grid.Network, opts ...Option) (*Solver, error) {
	if net == nil {
		return nil, ErrNilNetwork
	}
	o := options{condLimit: DefaultConditionLimit}
	for _, opt := range opts {
		opt(&o)
	}

	slack, err := net.SlackIndex()
	if err != nil {
		return nil, err
	}
	b, err := matrix.Assemble(net, o.matrix...)
	if err != nil {
		return nil, fmt.Errorf("dcflow: assemble: %w", err)
	}

	s := &Solver{
		net:      net,
		b:        b,
		slack:    slack,
		pgen:     net.ScheduledGeneration(),
		branches: net.Branches(),
	}

	slackID := net.BusAt(slack).ID
	unreachable, err := topology.Unreachable(context.Background(), topology.FromNetwork(net), slackID)
	if err != nil {
		return nil, fmt.Errorf("dcflow: topology: %w", err)
	}
	if len(unreachable) > 0 {
		s.singular = fmt.Errorf("%w: buses %v not connected to slack bus %d", ErrSingularSystem, unreachable, slackID)
		return s, nil
	}
	if b.Dim() == 1 {
		return s, nil
	}

	bp, err := b.Reduce(slack)
	if err != nil {
		return nil, fmt.Errorf("dcflow: reduce: %w", err)
	}
	var lu mat.LU
	lu.Factorize(bp)
	if c := lu.Cond(); !(c <= o.condLimit) {
		s.singular = fmt.Errorf("%w: condition number %g", ErrSingularSystem, c)
		return s, nil
	}
	s.lu = &lu

	return s, nil
}

// Network returns the network the solver was built for.
func (s *Solver) Network() *grid.Network { return s.net }

// Susceptance returns the shared, read-only susceptance matrix.
func (s *Solver) Susceptance() *matrix.Susceptance { return s.b }

// SlackIndex returns the dense position of the slack bus.
func (s *Solver) SlackIndex() int { return s.slack }

// Singular returns the cached singularity diagnosis, or nil.
func (s *Solver) Singular() error { return s.singular }

// Injections returns the net active injection per bus in per-unit:
// (in-service generation − demand) / BaseMVA.
func (s *Solver) Injections(loads grid.Loads) ([]float64, error) {
	if len(loads.P) != len(s.pgen) {
		return nil, fmt.Errorf("%w: %d loads for %d buses", ErrLoadsMismatch, len(loads.P), len(s.pgen))
	}
	base := s.net.BaseMVA()
	p := make([]float64, len(s.pgen))
	for i := range p {
		p[i] = (s.pgen[i] - loads.P[i]) / base
	}

	return p, nil
}

// Solve runs the DC power flow for one load vector.
//
// Steps:
//  1. compute per-unit injections;
//  2. drop the slack entry and solve B′θ′ = P′ with the cached factors;
//  3. reinsert θ_slack = 0;
//  4. flow_k = (θ_f − θ_t)/x_k · BaseMVA for every modeled branch.
//
// Returns ErrSingularSystem when B′ is not solvable, ErrLoadsMismatch for a
// foreign load vector and ctx.Err() when ctx is already done.
func (s *Solver) Solve(ctx context.Context, loads grid.Loads) (*Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.Injections(loads)
	if err != nil {
		return nil, err
	}
	if s.singular != nil {
		return nil, s.singular
	}

	n := len(p)
	theta := make([]float64, n)
	if s.lu != nil {
		rhs := mat.NewVecDense(n-1, nil)
		for i, v := range p {
			if i == s.slack {
				continue
			}
			rhs.SetVec(reduced(i, s.slack), v)
		}
		var x mat.VecDense
		if err := s.lu.SolveVecTo(&x, false, rhs); err != nil {
			var cond mat.Condition
			if errors.As(err, &cond) {
				return nil, fmt.Errorf("%w: condition number %g", ErrSingularSystem, float64(cond))
			}
			return nil, fmt.Errorf("dcflow: solve: %w", err)
		}
		for i := range theta {
			if i != s.slack {
				theta[i] = x.AtVec(reduced(i, s.slack))
			}
		}
	}

	return &Solution{
		Converged: true,
		Angles:    theta,
		Flows:     s.flows(theta),
		SlackMW:   s.slackGeneration(theta, loads),
	}, nil
}

func (s *Solver) flows(theta []float64) []Flow {
	base := s.net.BaseMVA()
	out := make([]Flow, 0, len(s.branches))
	for k, br := range s.branches {
		if !br.Modeled() {
			continue
		}
		f, _ := s.net.Index(br.From)
		t, _ := s.net.Index(br.To)
		mw := (theta[f] - theta[t]) / br.X * base
		out = append(out, Flow{
			Branch:     k,
			From:       br.From,
			To:         br.To,
			FlowMW:     mw,
			RatingMW:   br.RatingMW,
			LoadingPct: Loading(mw, br.RatingMW),
		})
	}

	return out
}

// slackGeneration is the injection B[s,:]·θ at the slack plus its own demand.
func (s *Solver) slackGeneration(theta []float64, loads grid.Loads) float64 {
	cols, vals := s.b.Row(s.slack)
	var inj float64
	for k, j := range cols {
		inj += vals[k] * theta[j]
	}

	return inj*s.net.BaseMVA() + loads.P[s.slack]
}

func reduced(i, skip int) int {
	if i > skip {
		return i - 1
	}

	return i
}
