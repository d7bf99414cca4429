// SPDX-License-Identifier: MIT

package placement

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/gridload/dcflow"
	"github.com/katalvlaran/gridload/grid"
	"github.com/katalvlaran/gridload/loading"
	"github.com/katalvlaran/gridload/topology"
)

// Controller runs placement searches against one network. It holds no
// per-search state and may serve concurrent searches.
type Controller struct {
	net    *grid.Network
	solver FlowSolver
	opts   Options
	log    *slog.Logger
	dist   map[int]float64 // electrical distance from the slack bus
}

// New returns a Controller for net using solver for every flow computation.
func New(net *grid.Network, solver FlowSolver, opts ...Option) (*Controller, error) {
	if net == nil || solver == nil {
		return nil, ErrNilSolver
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	c := &Controller{net: net, solver: solver, opts: o, log: o.Logger}
	if slack, err := net.SlackIndex(); err == nil {
		c.dist, _ = topology.ElectricalDistances(context.Background(), net, net.BusAt(slack).ID)
	}

	return c, nil
}

// Options returns the resolved configuration.
func (c *Controller) Options() Options { return c.opts }

// DefaultCandidates returns every non-slack bus of net in input order.
func DefaultCandidates(net *grid.Network) []int {
	var out []int
	for _, b := range net.Buses() {
		if b.Type != grid.Slack {
			out = append(out, b.ID)
		}
	}

	return out
}

// Search evaluates req and returns one Evaluation per candidate (Exhaustive)
// or the relaxation outcome (Relaxed).
//
// Fatal errors: ErrNoCandidates, ErrDuplicateCandidate,
// ErrUnknownBusReference, ErrNoRelaxer, ctx cancellation and any solver
// error other than a singular or non-convergent flow.
func (c *Controller) Search(ctx context.Context, req Request) (*Search, error) {
	if err := c.validate(req.Candidates); err != nil {
		return nil, err
	}
	if req.Mode == Relaxed && c.opts.Relaxer == nil {
		return nil, ErrNoRelaxer
	}

	start := time.Now()
	res := &Search{RunID: uuid.New(), Mode: req.Mode}
	log := c.log.With("run_id", res.RunID.String())
	log.Info("Placement search started",
		"mode", req.Mode.String(), "candidates", len(req.Candidates),
		"load_mw", req.Load.MW, "workers", c.opts.Workers)

	base, err := c.solver.Solve(ctx, c.net.Loads())
	if err == nil && (base == nil || !base.Converged) {
		err = fmt.Errorf("%w: base case", ErrNotConverged)
	}
	switch {
	case err == nil:
		res.Base = base
	case nonConvergent(err):
		res.BaseErr = err
		log.Warn("Base case did not solve", "error", err)
	default:
		return nil, fmt.Errorf("placement: base case: %w", err)
	}

	switch req.Mode {
	case Relaxed:
		rel, err := c.relax(ctx, res.Base, req, log)
		if err != nil {
			return nil, err
		}
		res.Relaxation = rel
		res.Evaluations = []Evaluation{rel.Evaluation}
	default:
		evals, err := c.exhaustive(ctx, res.Base, req, log)
		if err != nil {
			return nil, err
		}
		res.Evaluations = evals
	}

	log.Info("Placement search finished", "evaluations", len(res.Evaluations), "elapsed", time.Since(start))

	return res, nil
}

// Evaluate runs the single-bus path for one candidate against base, which
// may be nil when no base case is available.
func (c *Controller) Evaluate(ctx context.Context, base *dcflow.Solution, bus int, inc grid.Increment) (Evaluation, error) {
	if _, ok := c.net.Index(bus); !ok {
		return Evaluation{}, fmt.Errorf("%w: candidate bus %d", ErrUnknownBusReference, bus)
	}

	return c.evaluate(ctx, base, bus, inc)
}

func (c *Controller) validate(candidates []int) error {
	if len(candidates) == 0 {
		return ErrNoCandidates
	}
	seen := make(map[int]struct{}, len(candidates))
	for _, id := range candidates {
		if _, ok := c.net.Index(id); !ok {
			return fmt.Errorf("%w: candidate bus %d", ErrUnknownBusReference, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateCandidate, id)
		}
		seen[id] = struct{}{}
	}

	return nil
}

func (c *Controller) exhaustive(ctx context.Context, base *dcflow.Solution, req Request, log *slog.Logger) ([]Evaluation, error) {
	evals := make([]Evaluation, len(req.Candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for i, bus := range req.Candidates {
		g.Go(func() error {
			ev, err := c.evaluate(gctx, base, bus, req.Load)
			if err != nil {
				return err
			}
			evals[i] = ev
			log.Debug("Candidate evaluated", "bus", bus, "converged", ev.Converged,
				"max_loading_pct", ev.MaxLoadingPct, "violations", len(ev.Violations), "objective", ev.Objective)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return evals, nil
}

// evaluate is the single-bus path shared by both modes. It returns an error
// only for cancellation and structural problems; numerical failures are
// recorded on the Evaluation.
func (c *Controller) evaluate(ctx context.Context, base *dcflow.Solution, bus int, inc grid.Increment) (Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return Evaluation{}, err
	}
	ev := Evaluation{Bus: bus, Load: inc, SlackDistancePU: math.Inf(1)}
	if d, ok := c.dist[bus]; ok {
		ev.SlackDistancePU = d
	}

	loads := c.net.Loads()
	if err := loads.Add(c.net, bus, inc); err != nil {
		return Evaluation{}, err
	}

	var capErr error
	if c.opts.CheckCapacity {
		capErr = loading.CheckCapacity(loads.TotalMW(), c.net.TotalCapacityMW())
		ev.CapacityExceeded = capErr != nil
	}

	sol, err := c.solver.Solve(ctx, loads)
	if err == nil && (sol == nil || !sol.Converged) {
		err = fmt.Errorf("%w: bus %d", ErrNotConverged, bus)
	}
	if err != nil {
		if nonConvergent(err) {
			ev.failed(err)
			return ev, nil
		}
		return Evaluation{}, fmt.Errorf("placement: bus %d: %w", bus, err)
	}

	ev.Converged = true
	ev.Flows = sol.Flows
	ev.Violations = loading.Violations(sol.Flows, c.opts.Threshold)
	ev.MaxLoadingPct = loading.MaxLoading(sol.Flows)
	ev.TotalAbsFlowMW = loading.TotalAbsFlow(sol.Flows)
	if c.opts.GenLimits {
		ev.GenViolations = loading.GeneratorViolations(c.net, sol.SlackMW, c.opts.GenToleranceMW)
	}
	if base != nil {
		changes, err := loading.Changes(base.Flows, sol.Flows)
		if err != nil {
			return Evaluation{}, fmt.Errorf("placement: bus %d: %w", bus, err)
		}
		ev.Changes = changes
		if most, ok := loading.MostAffected(changes); ok {
			ev.MostAffected = &most
			ev.MaxChangePct = most.DeltaPct
		}
	}

	if capErr != nil {
		ev.failed(capErr)
		return ev, nil
	}
	ev.Objective = ev.MaxLoadingPct + c.opts.ViolationPenalty*float64(len(ev.Violations)+len(ev.GenViolations))
	ev.Margin = c.opts.Threshold - ev.MaxLoadingPct

	return ev, nil
}
