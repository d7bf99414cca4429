// SPDX-License-Identifier: MIT

package commitment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/gridload/grid"
)

// ErrUnservedLoad indicates a period whose demand exceeds all in-service capacity.
var ErrUnservedLoad = errors.New("commitment: demand exceeds available capacity")

// DefaultPeriods is one day of hourly periods.
const DefaultPeriods = 24

// Committer schedules generators for a total demand.
type Committer interface {
	Commit(ctx context.Context, totalLoadMW float64, gens []grid.Generator) (*Schedule, error)
}

// UnitDispatch is one generator in one period.
type UnitDispatch struct {
	Bus       int
	Committed bool
	OutputMW  float64
}

// Period is the schedule of one period.
type Period struct {
	Index     int
	DemandMW  float64
	Units     []UnitDispatch // merit order
	Cost      float64
	SurplusMW float64 // minimum generation above demand
}

// Schedule is the full horizon.
type Schedule struct {
	Periods   []Period
	TotalCost float64
}

// DefaultProfile scales demand by 0.8 + 0.4·sin(πt/12).
func DefaultProfile(t int) float64 {
	return 0.8 + 0.4*math.Sin(math.Pi*float64(t)/12)
}

// PriorityList is a merit-order Committer.
type PriorityList struct {
	Periods int                 // 0 selects DefaultPeriods
	Profile func(t int) float64 // nil selects DefaultProfile
}

// Commit builds the schedule. Out-of-service units are ignored.
func (pl PriorityList) Commit(ctx context.Context, totalLoadMW float64, gens []grid.Generator) (*Schedule, error) {
	periods := pl.Periods
	if periods <= 0 {
		periods = DefaultPeriods
	}
	profile := pl.Profile
	if profile == nil {
		profile = DefaultProfile
	}

	merit := make([]grid.Generator, 0, len(gens))
	for _, g := range gens {
		if g.InService {
			merit = append(merit, g)
		}
	}
	sort.SliceStable(merit, func(i, j int) bool {
		if merit[i].CostLinear != merit[j].CostLinear {
			return merit[i].CostLinear < merit[j].CostLinear
		}
		return merit[i].Bus < merit[j].Bus
	})

	s := &Schedule{Periods: make([]Period, 0, periods)}
	for t := 0; t < periods; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := dispatch(t, totalLoadMW*profile(t), merit)
		if err != nil {
			return nil, err
		}
		s.Periods = append(s.Periods, p)
		s.TotalCost += p.Cost
	}

	return s, nil
}

func dispatch(t int, demand float64, merit []grid.Generator) (Period, error) {
	p := Period{Index: t, DemandMW: demand, Units: make([]UnitDispatch, len(merit))}

	// commit
	var capacity, minGen float64
	n := 0
	for n < len(merit) && capacity < demand {
		capacity += merit[n].PMaxMW
		minGen += merit[n].PMinMW
		n++
	}
	if capacity < demand {
		return Period{}, fmt.Errorf("%w: period %d needs %.2f MW, %.2f MW available", ErrUnservedLoad, t, demand, capacity)
	}

	// dispatch at Pmin, then top up in merit order
	remaining := demand - minGen
	if remaining < 0 {
		p.SurplusMW = -remaining
		remaining = 0
	}
	for i, g := range merit {
		u := UnitDispatch{Bus: g.Bus}
		if i < n {
			u.Committed = true
			u.OutputMW = g.PMinMW
			if up := math.Min(g.PMaxMW-g.PMinMW, remaining); up > 0 {
				u.OutputMW += up
				remaining -= up
			}
			p.Cost += g.CostFixed + g.CostLinear*u.OutputMW
		}
		p.Units[i] = u
	}

	return p, nil
}
