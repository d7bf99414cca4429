// SPDX-License-Identifier: MIT

package loading

import (
	"errors"

	"github.com/katalvlaran/gridload/dcflow"
)

var (
	// ErrFlowMismatch indicates two flow sets that do not describe the same branches.
	ErrFlowMismatch = errors.New("loading: flow sets do not match")

	// ErrInfeasibleLoad indicates total demand above in-service generating capacity.
	ErrInfeasibleLoad = errors.New("loading: load exceeds generation capacity")
)

// DefaultThreshold is the loading percentage above which a branch is overloaded.
const DefaultThreshold = 100.0

// DefaultGeneratorToleranceMW is the slack allowed around generator limits.
const DefaultGeneratorToleranceMW = 1.0

// Violation is a branch loaded past the threshold.
type Violation struct {
	Flow     dcflow.Flow
	LimitMW  float64 // rating scaled by threshold
	ExcessMW float64 // |flow| − limit
}

// Change is the loading difference of one branch between two solutions.
type Change struct {
	Branch   int
	From     int
	To       int
	BasePct  float64
	NewPct   float64
	DeltaPct float64 // NewPct − BasePct
}

// LimitKind tells which generator limit was crossed.
type LimitKind int

const (
	// AboveMax marks output above Pmax.
	AboveMax LimitKind = iota + 1
	// BelowMin marks output below Pmin.
	BelowMin
)

func (k LimitKind) String() string {
	switch k {
	case AboveMax:
		return "max"
	case BelowMin:
		return "min"
	default:
		return "unknown"
	}
}

// GeneratorViolation is a generator dispatched outside its limits.
type GeneratorViolation struct {
	Bus      int
	OutputMW float64
	LimitMW  float64
	Kind     LimitKind
	ExcessMW float64 // distance past the limit, tolerance excluded
}
