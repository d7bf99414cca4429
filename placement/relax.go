// SPDX-License-Identifier: MIT

package placement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/katalvlaran/gridload/dcflow"
	"github.com/katalvlaran/gridload/grid"
)

// Problem is a continuous relaxation of the placement choice: one weight
// per candidate in [Lower, Upper], weights summing to SumTo. Func is the
// objective of the candidate holding the largest weight; it may be called
// concurrently.
type Problem struct {
	Dim   int
	Func  func(weights []float64) float64
	Lower float64
	Upper float64
	SumTo float64
}

// ErrInfeasibleBounds indicates a Problem whose box and sum constraints
// admit no weight vector.
var ErrInfeasibleBounds = errors.New("placement: relaxation bounds are infeasible")

// Feasible returns ErrInfeasibleBounds unless Lower <= Upper and
// Dim·Lower <= SumTo <= Dim·Upper.
func (p Problem) Feasible() error {
	n := float64(p.Dim)
	switch {
	case math.IsNaN(p.Lower) || math.IsNaN(p.Upper) || math.IsNaN(p.SumTo):
		return fmt.Errorf("%w: NaN bound", ErrInfeasibleBounds)
	case p.Lower > p.Upper:
		return fmt.Errorf("%w: lower %v above upper %v", ErrInfeasibleBounds, p.Lower, p.Upper)
	case n*p.Lower > p.SumTo || n*p.Upper < p.SumTo:
		return fmt.Errorf("%w: %d weights in [%v, %v] cannot sum to %v", ErrInfeasibleBounds, p.Dim, p.Lower, p.Upper, p.SumTo)
	}

	return nil
}

// RelaxResult is what a Relaxer reports back.
type RelaxResult struct {
	Weights     []float64
	Objective   float64
	Converged   bool
	Evaluations int
	Status      string
}

// Relaxer minimises a Problem. Implementations own the constraint handling.
type Relaxer interface {
	Minimize(ctx context.Context, p Problem) (RelaxResult, error)
}

// Relaxation is the outcome of a Relaxed search.
type Relaxation struct {
	Result     RelaxResult
	Bus        int        // candidate with the largest optimized weight
	Evaluation Evaluation // that candidate, re-evaluated on the normal path
	Evaluated  int        // distinct candidates evaluated during the search
}

// Argmax returns the index of the largest weight; ties keep the first.
func Argmax(w []float64) int {
	best := 0
	for i := 1; i < len(w); i++ {
		if w[i] > w[best] {
			best = i
		}
	}

	return best
}

// memo caches single-bus evaluations for the duration of one relaxation.
type memo struct {
	c    *Controller
	ctx  context.Context
	base *dcflow.Solution
	inc  grid.Increment

	mu    sync.RWMutex
	evals map[int]Evaluation
	err   error
	sf    singleflight.Group
}

func (m *memo) get(bus int) (Evaluation, error) {
	m.mu.RLock()
	ev, ok := m.evals[bus]
	m.mu.RUnlock()
	if ok {
		return ev, nil
	}

	v, err, _ := m.sf.Do(strconv.Itoa(bus), func() (interface{}, error) {
		ev, err := m.c.evaluate(m.ctx, m.base, bus, m.inc)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.evals[bus] = ev
		m.mu.Unlock()
		return ev, nil
	})
	if err != nil {
		m.mu.Lock()
		if m.err == nil {
			m.err = err
		}
		m.mu.Unlock()
		return Evaluation{}, err
	}

	return v.(Evaluation), nil
}

func (c *Controller) relax(ctx context.Context, base *dcflow.Solution, req Request, log *slog.Logger) (*Relaxation, error) {
	m := &memo{c: c, ctx: ctx, base: base, inc: req.Load, evals: make(map[int]Evaluation)}

	prob := Problem{
		Dim:   len(req.Candidates),
		Lower: 0,
		Upper: 1,
		SumTo: 1,
		Func: func(w []float64) float64 {
			ev, err := m.get(req.Candidates[Argmax(w)])
			if err != nil {
				return math.Inf(1)
			}
			return ev.Objective
		},
	}

	res, err := c.opts.Relaxer.Minimize(ctx, prob)
	if m.err != nil {
		return nil, m.err
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bus := req.Candidates[0]
	if len(res.Weights) == len(req.Candidates) {
		bus = req.Candidates[Argmax(res.Weights)]
	}
	ev, err := m.get(bus)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	evaluated := len(m.evals)
	m.mu.RUnlock()
	log.Info("Relaxation finished", "bus", bus, "status", res.Status,
		"converged", res.Converged, "objective", res.Objective, "evaluated", evaluated)

	return &Relaxation{Result: res, Bus: bus, Evaluation: ev, Evaluated: evaluated}, nil
}
