// SPDX-License-Identifier: MIT

package loading

import (
	"fmt"
	"math"

	"github.com/katalvlaran/gridload/dcflow"
	"github.com/katalvlaran/gridload/grid"
)

// Violations returns the branches whose loading exceeds threshold percent,
// in input order. Unrated branches never violate.
func Violations(flows []dcflow.Flow, threshold float64) []Violation {
	var out []Violation
	for _, f := range flows {
		if f.RatingMW <= 0 || f.LoadingPct <= threshold {
			continue
		}
		limit := f.RatingMW * threshold / 100
		out = append(out, Violation{
			Flow:     f,
			LimitMW:  limit,
			ExcessMW: math.Abs(f.FlowMW) - limit,
		})
	}

	return out
}

// Changes pairs base and next by branch and returns next − base loading.
// Returns ErrFlowMismatch when the sets differ in length or branch order.
func Changes(base, next []dcflow.Flow) ([]Change, error) {
	if len(base) != len(next) {
		return nil, fmt.Errorf("%w: %d vs %d branches", ErrFlowMismatch, len(base), len(next))
	}
	out := make([]Change, len(base))
	for k := range base {
		b, n := base[k], next[k]
		if b.Branch != n.Branch {
			return nil, fmt.Errorf("%w: position %d holds branch %d and %d", ErrFlowMismatch, k, b.Branch, n.Branch)
		}
		out[k] = Change{
			Branch:   n.Branch,
			From:     n.From,
			To:       n.To,
			BasePct:  b.LoadingPct,
			NewPct:   n.LoadingPct,
			DeltaPct: n.LoadingPct - b.LoadingPct,
		}
	}

	return out, nil
}

// MostAffected returns the change with the largest |DeltaPct|. Ties keep the
// earlier branch. ok is false for an empty slice.
func MostAffected(changes []Change) (c Change, ok bool) {
	for i, ch := range changes {
		if i == 0 || math.Abs(ch.DeltaPct) > math.Abs(c.DeltaPct) {
			c = ch
		}
	}

	return c, len(changes) > 0
}

// MaxLoading returns the highest branch loading percentage, 0 for no flows.
func MaxLoading(flows []dcflow.Flow) float64 {
	var m float64
	for _, f := range flows {
		m = math.Max(m, f.LoadingPct)
	}

	return m
}

// TotalAbsFlow returns Σ|flow| in MW.
func TotalAbsFlow(flows []dcflow.Flow) float64 {
	var s float64
	for _, f := range flows {
		s += math.Abs(f.FlowMW)
	}

	return s
}

// CheckCapacity returns ErrInfeasibleLoad when totalLoadMW exceeds capacityMW.
func CheckCapacity(totalLoadMW, capacityMW float64) error {
	if totalLoadMW > capacityMW {
		return fmt.Errorf("%w: %.2f MW demand, %.2f MW available", ErrInfeasibleLoad, totalLoadMW, capacityMW)
	}

	return nil
}

// GeneratorViolations checks every in-service generator against
// [Pmin − tol, Pmax + tol]. Generators keep their scheduled output except the
// first in-service unit at the slack bus, which takes slackMW less the
// schedule of any other unit on that bus.
func GeneratorViolations(net *grid.Network, slackMW, toleranceMW float64) []GeneratorViolation {
	slack, err := net.SlackIndex()
	if err != nil {
		return nil
	}
	slackID := net.BusAt(slack).ID
	gens := net.Generators()

	balancing := -1
	others := 0.0
	for i, g := range gens {
		if !g.InService || g.Bus != slackID {
			continue
		}
		if balancing < 0 {
			balancing = i
			continue
		}
		others += g.PgMW
	}

	var out []GeneratorViolation
	for i, g := range gens {
		if !g.InService {
			continue
		}
		output := g.PgMW
		if i == balancing {
			output = slackMW - others
		}
		switch {
		case output > g.PMaxMW+toleranceMW:
			out = append(out, GeneratorViolation{Bus: g.Bus, OutputMW: output, LimitMW: g.PMaxMW, Kind: AboveMax, ExcessMW: output - g.PMaxMW})
		case output < g.PMinMW-toleranceMW:
			out = append(out, GeneratorViolation{Bus: g.Bus, OutputMW: output, LimitMW: g.PMinMW, Kind: BelowMin, ExcessMW: g.PMinMW - output})
		}
	}

	return out
}
