// SPDX-License-Identifier: MIT

package ranking

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/gridload/placement"
)

// Category classifies an evaluation.
type Category int

const (
	// Clean means solved with no broken limit.
	Clean Category = iota
	// Violating means solved with at least one broken limit.
	Violating
	// NonConvergent means the flow did not solve.
	NonConvergent
)

func (c Category) String() string {
	switch c {
	case Clean:
		return "clean"
	case Violating:
		return "violating"
	case NonConvergent:
		return "non-convergent"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Defaults.
const (
	DefaultViolationPenalty = 1000.0
	DefaultChangeWeight     = 2.0
)

// Policy holds the scoring parameters.
type Policy struct {
	ViolationPenalty float64
	ChangeWeight     float64
}

// DefaultPolicy returns a penalty of 1000 and a change weight of 2.
func DefaultPolicy() Policy {
	return Policy{ViolationPenalty: DefaultViolationPenalty, ChangeWeight: DefaultChangeWeight}
}

// Categorize returns the category of ev.
func (p Policy) Categorize(ev *placement.Evaluation) Category {
	switch {
	case !ev.Converged:
		return NonConvergent
	case ev.Violated():
		return Violating
	default:
		return Clean
	}
}

// Score returns the ranking score of ev; lower is better.
func (p Policy) Score(ev *placement.Evaluation) float64 {
	switch p.Categorize(ev) {
	case NonConvergent:
		return math.Inf(1)
	case Violating:
		return p.ViolationPenalty
	default:
		return ev.MaxLoadingPct + p.ChangeWeight*math.Abs(ev.MaxChangePct)
	}
}

// Entry is one ranked candidate.
type Entry struct {
	Bus        int                  `json:"bus"`
	Category   Category             `json:"category"`
	Score      float64              `json:"score"`
	Evaluation placement.Evaluation `json:"-"`
}

// Ranking is the ordered outcome of Rank.
type Ranking struct {
	Entries     []Entry  `json:"entries"`
	Recommended *Entry   `json:"recommended,omitempty"`
	Feasible    bool     `json:"feasible"`
	Reason      Category `json:"reason"`
	Message     string   `json:"message"`
}

// Rank scores and orders evals. It never fails: an empty input or a set
// without any Clean entry yields an infeasible Ranking.
func (p Policy) Rank(evals []placement.Evaluation) Ranking {
	entries := make([]Entry, len(evals))
	for i := range evals {
		ev := &evals[i]
		entries[i] = Entry{Bus: ev.Bus, Category: p.Categorize(ev), Score: p.Score(ev), Evaluation: *ev}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score < entries[j].Score
		}
		return entries[i].Bus < entries[j].Bus
	})

	r := Ranking{Entries: entries}
	for i := range entries {
		if entries[i].Category == Clean {
			rec := entries[i]
			r.Recommended = &rec
			r.Feasible = true
			r.Reason = Clean
			r.Message = fmt.Sprintf("Recommended bus %d: max loading %.2f%%, largest change %+.2f%%, score %.2f",
				rec.Bus, rec.Evaluation.MaxLoadingPct, rec.Evaluation.MaxChangePct, rec.Score)
			return r
		}
	}

	switch {
	case len(entries) == 0:
		r.Reason = NonConvergent
		r.Message = "No bus is recommended: no candidates were evaluated"
	case entries[0].Category == Violating:
		r.Reason = Violating
		r.Message = "No bus is recommended: every candidate violates a line or generation limit"
	default:
		r.Reason = NonConvergent
		r.Message = "No bus is recommended: no candidate produced a converged flow"
	}

	return r
}
