// SPDX-License-Identifier: MIT

package placement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"github.com/google/uuid"

	"github.com/katalvlaran/gridload/dcflow"
	"github.com/katalvlaran/gridload/grid"
	"github.com/katalvlaran/gridload/loading"
)

var (
	// ErrNoCandidates indicates an empty candidate list.
	ErrNoCandidates = errors.New("placement: no candidate buses")

	// ErrDuplicateCandidate indicates a bus listed twice.
	ErrDuplicateCandidate = errors.New("placement: duplicate candidate bus")

	// ErrUnknownBusReference is grid.ErrUnknownBusReference.
	ErrUnknownBusReference = grid.ErrUnknownBusReference

	// ErrNoRelaxer indicates Relaxed mode without a configured Relaxer.
	ErrNoRelaxer = errors.New("placement: relaxed mode needs a relaxer")

	// ErrOptionViolation indicates an invalid Option.
	ErrOptionViolation = errors.New("placement: invalid option supplied")

	// ErrNilSolver indicates a nil network or solver.
	ErrNilSolver = errors.New("placement: network and solver are required")

	// ErrNotConverged marks a flow that did not converge. FlowSolver
	// implementations may wrap it or report Solution.Converged == false;
	// either way the candidate is recorded as failed and the search goes on.
	ErrNotConverged = errors.New("placement: flow did not converge")
)

// nonConvergent reports whether err is a per-scenario numerical failure.
func nonConvergent(err error) bool {
	return errors.Is(err, dcflow.ErrSingularSystem) || errors.Is(err, ErrNotConverged)
}

// FlowSolver computes branch flows for a load vector. dcflow.Solver is the
// built-in implementation; an AC solver can be plugged in as long as it
// reports flows in the same shape. A solve that does not converge is
// reported either with Converged == false or with an error wrapping
// ErrNotConverged or dcflow.ErrSingularSystem.
type FlowSolver interface {
	Solve(ctx context.Context, loads grid.Loads) (*dcflow.Solution, error)
}

// Mode selects how candidates are searched.
type Mode int

const (
	// Exhaustive evaluates every candidate.
	Exhaustive Mode = iota
	// Relaxed delegates the search to a Relaxer over continuous weights.
	Relaxed
)

func (m Mode) String() string {
	if m == Relaxed {
		return "relaxed"
	}

	return "exhaustive"
}

// Request describes one placement study.
type Request struct {
	Candidates []int
	Load       grid.Increment
	Mode       Mode
}

// Evaluation is the outcome for one candidate bus.
type Evaluation struct {
	Bus              int
	Load             grid.Increment
	Converged        bool
	Flows            []dcflow.Flow
	Changes          []loading.Change
	Violations       []loading.Violation
	GenViolations    []loading.GeneratorViolation
	CapacityExceeded bool
	MaxLoadingPct    float64
	MaxChangePct     float64 // signed change of the most affected branch
	MostAffected     *loading.Change
	TotalAbsFlowMW   float64
	SlackDistancePU  float64 // series reactance to the slack bus, +Inf if unknown
	Objective        float64 // MaxLoadingPct + penalty per violation; +Inf on failure
	Margin           float64 // threshold − MaxLoadingPct; −Inf on failure
	Err              error   // per-candidate failure, nil when the solve succeeded
}

// Violated reports whether any line, generator or capacity limit is broken.
func (e *Evaluation) Violated() bool {
	return len(e.Violations) > 0 || len(e.GenViolations) > 0 || e.CapacityExceeded
}

// failed marks e with sentinel metrics.
func (e *Evaluation) failed(err error) {
	e.Err = err
	e.Objective = math.Inf(1)
	e.Margin = math.Inf(-1)
}

// Search is the result of Controller.Search.
type Search struct {
	RunID       uuid.UUID
	Mode        Mode
	Base        *dcflow.Solution // nil when the base case did not solve
	BaseErr     error
	Evaluations []Evaluation // candidate order
	Relaxation  *Relaxation  // set in Relaxed mode
}

// Option configures a Controller. An invalid Option is surfaced as
// ErrOptionViolation by New.
type Option func(*Options)

// Options holds the resolved controller configuration.
type Options struct {
	Workers          int
	Threshold        float64
	CheckCapacity    bool
	GenLimits        bool
	GenToleranceMW   float64
	ViolationPenalty float64
	Relaxer          Relaxer
	Logger           *slog.Logger

	err error
}

// Defaults.
const (
	DefaultViolationPenalty = 1000.0
)

// DefaultOptions returns GOMAXPROCS workers, a 100% threshold, capacity
// checking on, generator limits off and a discarding logger.
func DefaultOptions() Options {
	return Options{
		Workers:          runtime.GOMAXPROCS(0),
		Threshold:        loading.DefaultThreshold,
		CheckCapacity:    true,
		GenToleranceMW:   loading.DefaultGeneratorToleranceMW,
		ViolationPenalty: DefaultViolationPenalty,
		Logger:           slog.New(slog.DiscardHandler),
	}
}

// WithWorkers bounds the number of concurrent evaluations. n == 0 keeps
// the default and n < 0 is rejected.
func WithWorkers(n int) Option {
	return func(o *Options) {
		switch {
		case n < 0:
			o.err = fmt.Errorf("%w: workers cannot be negative (%d)", ErrOptionViolation, n)
		case n > 0:
			o.Workers = n
		}
	}
}

// WithThreshold sets the overload threshold in percent of rating.
func WithThreshold(pct float64) Option {
	return func(o *Options) {
		if !(pct > 0) || math.IsInf(pct, 0) {
			o.err = fmt.Errorf("%w: threshold must be positive and finite (%v)", ErrOptionViolation, pct)
			return
		}
		o.Threshold = pct
	}
}

// WithCapacityCheck toggles the total-capacity feasibility check.
func WithCapacityCheck(on bool) Option {
	return func(o *Options) { o.CheckCapacity = on }
}

// WithGeneratorLimits enables generator limit checks with the given tolerance.
func WithGeneratorLimits(toleranceMW float64) Option {
	return func(o *Options) {
		if toleranceMW < 0 || math.IsNaN(toleranceMW) {
			o.err = fmt.Errorf("%w: generator tolerance must be non-negative (%v)", ErrOptionViolation, toleranceMW)
			return
		}
		o.GenLimits = true
		o.GenToleranceMW = toleranceMW
	}
}

// WithViolationPenalty sets the objective penalty per violated limit.
func WithViolationPenalty(p float64) Option {
	return func(o *Options) {
		if p < 0 || math.IsNaN(p) {
			o.err = fmt.Errorf("%w: penalty must be non-negative (%v)", ErrOptionViolation, p)
			return
		}
		o.ViolationPenalty = p
	}
}

// WithRelaxer sets the collaborator used in Relaxed mode.
func WithRelaxer(r Relaxer) Option {
	return func(o *Options) { o.Relaxer = r }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}
