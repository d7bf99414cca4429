// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/gridload/config"
	"github.com/katalvlaran/gridload/dcflow"
	"github.com/katalvlaran/gridload/grid"
	"github.com/katalvlaran/gridload/placement"
	"github.com/katalvlaran/gridload/ranking"
	"github.com/katalvlaran/gridload/relax"
)

type rankFlags struct {
	loadMW    float64
	loadMVAr  float64
	mva       float64
	pf        float64
	buses     string
	relaxed   bool
	workers   int
	threshold float64
}

func newRankCmd(a *app) *cobra.Command {
	f := &rankFlags{}
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank candidate buses for a new load",
		Long: `Evaluate the new load at every candidate bus and recommend the one with
the lowest score.

Exit codes:
  0 - A bus is recommended
  1 - No candidate is feasible
  2 - Error (invalid input, unreadable case, no slack bus)`,
		Run: func(cmd *cobra.Command, args []string) {
			a.exitCode = runRank(cmd.Context(), a, f, cmd.Flags().Changed)
		},
	}

	cmd.Flags().Float64Var(&f.loadMW, "load-mw", 50, "Active power of the new load in MW (overrides LOADPLACE_LOAD_MW)")
	cmd.Flags().Float64Var(&f.loadMVAr, "load-mvar", 20, "Reactive power of the new load in MVAr (overrides LOADPLACE_LOAD_MVAR)")
	cmd.Flags().Float64Var(&f.mva, "mva", 0, "Apparent power of the new load in MVA, used with --pf instead of --load-mw/--load-mvar")
	cmd.Flags().Float64Var(&f.pf, "pf", 0.95, "Power factor used with --mva")
	cmd.Flags().StringVar(&f.buses, "buses", "", `Candidate buses, comma separated or "all" (overrides LOADPLACE_CANDIDATES)`)
	cmd.Flags().BoolVar(&f.relaxed, "relax", false, "Search continuous weights with Nelder-Mead instead of evaluating every candidate")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Concurrent evaluations, 0 = GOMAXPROCS (overrides LOADPLACE_WORKERS)")
	cmd.Flags().Float64Var(&f.threshold, "threshold", 100, "Overload threshold in percent (overrides LOADPLACE_THRESHOLD)")

	return cmd
}

func runRank(ctx context.Context, a *app, f *rankFlags, changed func(string) bool) int {
	cfg, net, err := a.settings()
	if err != nil {
		return a.fail(err)
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("threshold") {
		cfg.Threshold = f.threshold
	}

	inc, err := rankIncrement(cfg, f, changed)
	if err != nil {
		return a.fail(err)
	}
	candidates, err := rankCandidates(cfg, net, f, changed)
	if err != nil {
		return a.fail(err)
	}

	solver, err := dcflow.NewSolver(net)
	if err != nil {
		return a.fail(err)
	}

	opts := []placement.Option{
		placement.WithWorkers(cfg.Workers),
		placement.WithThreshold(cfg.Threshold),
		placement.WithCapacityCheck(cfg.CheckCapacity),
		placement.WithViolationPenalty(cfg.ViolationPenalty),
		placement.WithLogger(a.log),
	}
	if cfg.GeneratorLimits() {
		opts = append(opts, placement.WithGeneratorLimits(cfg.GenToleranceMW))
	}
	mode := placement.Exhaustive
	if f.relaxed {
		mode = placement.Relaxed
		opts = append(opts, placement.WithRelaxer(relax.NelderMead{Concurrent: cfg.Workers}))
	}

	ctl, err := placement.New(net, solver, opts...)
	if err != nil {
		return a.fail(err)
	}
	res, err := ctl.Search(ctx, placement.Request{Candidates: candidates, Load: inc, Mode: mode})
	if err != nil {
		return a.fail(err)
	}

	policy := ranking.Policy{ViolationPenalty: cfg.ViolationPenalty, ChangeWeight: cfg.ChangeWeight}
	rk := policy.Rank(res.Evaluations)
	report := newRankReport(res, rk)

	if a.jsonOutput {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return a.fail(err)
		}
		fmt.Fprintln(a.out, string(data))
	} else {
		writeRankHuman(a, report)
	}

	if !rk.Feasible {
		return exitInfeasible
	}
	return exitOK
}

func rankIncrement(cfg *config.Config, f *rankFlags, changed func(string) bool) (grid.Increment, error) {
	if changed("mva") {
		if changed("load-mw") || changed("load-mvar") {
			return grid.Increment{}, fmt.Errorf("--mva cannot be combined with --load-mw or --load-mvar")
		}
		return grid.IncrementFromApparent(f.mva, f.pf)
	}

	inc := grid.Increment{MW: cfg.LoadMW, MVAr: cfg.LoadMVAr}
	if changed("load-mw") {
		inc.MW = f.loadMW
	}
	if changed("load-mvar") {
		inc.MVAr = f.loadMVAr
	}
	return inc, nil
}

// rankCandidates picks the candidate list: the flag, then an explicit
// environment list, then the configured default for the built-in case and
// every non-slack bus for a case file.
func rankCandidates(cfg *config.Config, net *grid.Network, f *rankFlags, changed func(string) bool) ([]int, error) {
	var list []int
	switch {
	case changed("buses"):
		l, err := config.ParseIntList(f.buses)
		if err != nil {
			return nil, fmt.Errorf("--buses: %w", err)
		}
		list = l
	case cfg.CandidatesSet || cfg.CasePath == "":
		list = cfg.Candidates
	}

	if len(list) == 0 {
		return placement.DefaultCandidates(net), nil
	}
	return list, nil
}

type rankReport struct {
	RunID       string        `json:"run_id"`
	Mode        string        `json:"mode"`
	LoadMW      float64       `json:"load_mw"`
	LoadMVAr    float64       `json:"load_mvar"`
	Feasible    bool          `json:"feasible"`
	Recommended *int          `json:"recommended,omitempty"`
	Reason      string        `json:"reason"`
	Message     string        `json:"message"`
	Entries     []entryReport `json:"entries"`
	Relaxation  *relaxReport  `json:"relaxation,omitempty"`
}

type entryReport struct {
	Bus              int      `json:"bus"`
	Category         string   `json:"category"`
	Score            *float64 `json:"score"` // null when infinite
	MaxLoadingPct    float64  `json:"max_loading_pct"`
	MaxChangePct     float64  `json:"max_change_pct"`
	MostAffected     string   `json:"most_affected,omitempty"`
	SlackDistancePU  *float64 `json:"slack_distance_pu"` // null when unreachable
	Violations       int      `json:"violations"`
	GenViolations    int      `json:"generator_violations"`
	CapacityExceeded bool     `json:"capacity_exceeded"`
	Error            string   `json:"error,omitempty"`
}

type relaxReport struct {
	Weights     []float64 `json:"weights"`
	Objective   float64   `json:"objective"`
	Converged   bool      `json:"converged"`
	Evaluations int       `json:"evaluations"`
	Evaluated   int       `json:"candidates_evaluated"`
	Status      string    `json:"status"`
}

func newRankReport(res *placement.Search, rk ranking.Ranking) rankReport {
	r := rankReport{
		RunID:    res.RunID.String(),
		Mode:     res.Mode.String(),
		Feasible: rk.Feasible,
		Reason:   rk.Reason.String(),
		Message:  rk.Message,
		Entries:  make([]entryReport, len(rk.Entries)),
	}
	if len(res.Evaluations) > 0 {
		r.LoadMW = res.Evaluations[0].Load.MW
		r.LoadMVAr = res.Evaluations[0].Load.MVAr
	}
	if rk.Recommended != nil {
		bus := rk.Recommended.Bus
		r.Recommended = &bus
	}

	for i, e := range rk.Entries {
		ev := e.Evaluation
		er := entryReport{
			Bus:              e.Bus,
			Category:         e.Category.String(),
			Violations:       len(ev.Violations),
			GenViolations:    len(ev.GenViolations),
			CapacityExceeded: ev.CapacityExceeded,
		}
		er.Score = finite(e.Score)
		er.SlackDistancePU = finite(ev.SlackDistancePU)
		if ev.Converged {
			er.MaxLoadingPct = ev.MaxLoadingPct
			er.MaxChangePct = ev.MaxChangePct
		}
		if ev.MostAffected != nil {
			er.MostAffected = fmt.Sprintf("%d-%d", ev.MostAffected.From, ev.MostAffected.To)
		}
		if ev.Err != nil {
			er.Error = ev.Err.Error()
		}
		r.Entries[i] = er
	}

	if rel := res.Relaxation; rel != nil {
		r.Relaxation = &relaxReport{
			Weights:     rel.Result.Weights,
			Objective:   rel.Result.Objective,
			Converged:   rel.Result.Converged,
			Evaluations: rel.Result.Evaluations,
			Evaluated:   rel.Evaluated,
			Status:      rel.Result.Status,
		}
	}

	return r
}

// finite returns nil for values JSON cannot carry.
func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func writeRankHuman(a *app, r rankReport) {
	fmt.Fprintf(a.out, "Load %.2f MW / %.2f MVAr, %s search (run %s)\n\n", r.LoadMW, r.LoadMVAr, r.Mode, r.RunID)

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BUS\tCATEGORY\tSCORE\tMAX LOADING\tMAX CHANGE\tBRANCH\tX TO SLACK\tNOTE")
	for _, e := range r.Entries {
		score := "inf"
		if e.Score != nil {
			score = fmt.Sprintf("%.2f", *e.Score)
		}
		note := e.Error
		if note == "" && e.Violations+e.GenViolations > 0 {
			note = fmt.Sprintf("%d line, %d generator violation(s)", e.Violations, e.GenViolations)
		}
		if note == "" && e.CapacityExceeded {
			note = "exceeds generation capacity"
		}
		dist := "-"
		if e.SlackDistancePU != nil {
			dist = fmt.Sprintf("%.4f", *e.SlackDistancePU)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f%%\t%+.2f%%\t%s\t%s\t%s\n",
			e.Bus, e.Category, score, e.MaxLoadingPct, e.MaxChangePct, e.MostAffected, dist, note)
	}
	tw.Flush()

	if r.Relaxation != nil {
		fmt.Fprintf(a.out, "\nRelaxation: %s after %d evaluations over %d candidates\n",
			r.Relaxation.Status, r.Relaxation.Evaluations, r.Relaxation.Evaluated)
	}
	fmt.Fprintf(a.out, "\n%s\n", r.Message)
}
