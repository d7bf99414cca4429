// SPDX-License-Identifier: MIT

package dcflow

import (
	"errors"
	"math"

	"github.com/katalvlaran/gridload/grid"
	"github.com/katalvlaran/gridload/matrix"
)

var (
	// ErrNoSlackBus is grid.ErrNoSlackBus, re-exported for callers of this package.
	ErrNoSlackBus = grid.ErrNoSlackBus

	// ErrSingularSystem indicates the reduced susceptance system cannot be
	// solved: an island without a slack or a numerically singular matrix.
	ErrSingularSystem = errors.New("dcflow: singular system")

	// ErrLoadsMismatch indicates a load vector that does not match the network.
	ErrLoadsMismatch = errors.New("dcflow: load vector does not match network")

	// ErrNilNetwork indicates a nil network.
	ErrNilNetwork = errors.New("dcflow: network is nil")
)

// Flow is the DC result for one modeled branch.
type Flow struct {
	Branch     int // index into grid.Network.Branches
	From       int
	To         int
	FlowMW     float64 // positive From→To
	RatingMW   float64
	LoadingPct float64 // |FlowMW|/RatingMW·100, 0 when unrated
}

// Solution is the outcome of one DC solve.
type Solution struct {
	Converged bool
	Angles    []float64 // radians, indexed like the network buses
	Flows     []Flow    // modeled branches in network order
	SlackMW   float64   // generation dispatched at the slack bus
}

// Loading returns |flowMW|/ratingMW·100, or 0 when the branch is unrated.
func Loading(flowMW, ratingMW float64) float64 {
	if ratingMW <= 0 {
		return 0
	}

	return math.Abs(flowMW) / ratingMW * 100
}

// Option configures a Solver. Constructors panic on nonsensical values.
type Option func(*options)

type options struct {
	condLimit float64
	matrix    []matrix.Option
}

// DefaultConditionLimit is the condition number above which B′ is treated
// as singular.
const DefaultConditionLimit = 1e16

// WithConditionLimit sets the condition-number limit. Panics unless c > 1.
func WithConditionLimit(c float64) Option {
	if !(c > 1) || math.IsInf(c, 0) {
		panic("dcflow: WithConditionLimit: limit must be finite and > 1")
	}

	return func(o *options) { o.condLimit = c }
}

// WithMatrixOptions forwards options to matrix.Assemble.
func WithMatrixOptions(opts ...matrix.Option) Option {
	return func(o *options) { o.matrix = append(o.matrix, opts...) }
}
