// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/gridload/dcflow"
	"github.com/katalvlaran/gridload/grid"
	"github.com/katalvlaran/gridload/loading"
	"github.com/katalvlaran/gridload/topology"
)

type flowFlags struct {
	bus      int
	loadMW   float64
	loadMVAr float64
}

func newFlowCmd(a *app) *cobra.Command {
	f := &flowFlags{}
	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Solve the DC power flow and report branch loading",
		Long: `Solve the DC power flow of the base case, or of the base case plus a load
at --bus, and list every modeled branch with its loading.

Exit codes:
  0 - No branch above the threshold
  1 - At least one branch above the threshold
  2 - Error (invalid input, unreadable case, singular system)`,
		Run: func(cmd *cobra.Command, args []string) {
			a.exitCode = runFlow(cmd.Context(), a, f, cmd.Flags().Changed)
		},
	}

	cmd.Flags().IntVar(&f.bus, "bus", 0, "Add the load at this bus (unset = base case only)")
	cmd.Flags().Float64Var(&f.loadMW, "load-mw", 50, "Active power added at --bus in MW")
	cmd.Flags().Float64Var(&f.loadMVAr, "load-mvar", 20, "Reactive power added at --bus in MVAr")

	return cmd
}

type flowReport struct {
	Bus        *int             `json:"bus,omitempty"` // nil for the base case
	SlackMW    float64          `json:"slack_mw"`
	MaxLoading float64          `json:"max_loading_pct"`
	Branches   []branchReport   `json:"branches"`
	Violations []violationEntry `json:"violations"`
}

type branchReport struct {
	From       int     `json:"from"`
	To         int     `json:"to"`
	FlowMW     float64 `json:"flow_mw"`
	RatingMW   float64 `json:"rating_mw"`
	LoadingPct float64 `json:"loading_pct"`
	Radial     bool    `json:"radial"` // outage splits the network
}

type violationEntry struct {
	From     int     `json:"from"`
	To       int     `json:"to"`
	ExcessMW float64 `json:"excess_mw"`
}

func runFlow(ctx context.Context, a *app, f *flowFlags, changed func(string) bool) int {
	cfg, net, err := a.settings()
	if err != nil {
		return a.fail(err)
	}

	loads := net.Loads()
	var bus *int
	if changed("bus") {
		inc := grid.Increment{MW: f.loadMW, MVAr: f.loadMVAr}
		if err := loads.Add(net, f.bus, inc); err != nil {
			return a.fail(err)
		}
		bus = &f.bus
	}

	solver, err := dcflow.NewSolver(net)
	if err != nil {
		return a.fail(err)
	}
	sol, err := solver.Solve(ctx, loads)
	if err != nil {
		return a.fail(err)
	}

	r := flowReport{
		Bus:        bus,
		SlackMW:    sol.SlackMW,
		MaxLoading: loading.MaxLoading(sol.Flows),
		Branches:   make([]branchReport, len(sol.Flows)),
		Violations: []violationEntry{},
	}
	bridges, err := topology.Bridges(ctx, topology.FromNetwork(net))
	if err != nil {
		return a.fail(err)
	}
	radial := make(map[[2]int]bool, len(bridges))
	for _, b := range bridges {
		radial[b] = true
	}
	for i, fl := range sol.Flows {
		r.Branches[i] = branchReport{
			From:       fl.From,
			To:         fl.To,
			FlowMW:     fl.FlowMW,
			RatingMW:   fl.RatingMW,
			LoadingPct: fl.LoadingPct,
			Radial:     radial[[2]int{min(fl.From, fl.To), max(fl.From, fl.To)}],
		}
	}
	for _, v := range loading.Violations(sol.Flows, cfg.Threshold) {
		r.Violations = append(r.Violations, violationEntry{From: v.Flow.From, To: v.Flow.To, ExcessMW: v.ExcessMW})
	}

	if a.jsonOutput {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return a.fail(err)
		}
		fmt.Fprintln(a.out, string(data))
	} else {
		writeFlowHuman(a, r, cfg.Threshold)
	}

	if len(r.Violations) > 0 {
		return exitInfeasible
	}
	return exitOK
}

func writeFlowHuman(a *app, r flowReport, threshold float64) {
	if r.Bus != nil {
		fmt.Fprintf(a.out, "Flows with added load at bus %d\n\n", *r.Bus)
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FROM\tTO\tFLOW MW\tRATING MW\tLOADING\tRADIAL")
	for _, b := range r.Branches {
		mark := ""
		if b.RatingMW > 0 && b.LoadingPct > threshold {
			mark = "  ✗"
		}
		radial := ""
		if b.Radial {
			radial = "yes"
		}
		fmt.Fprintf(tw, "%d\t%d\t%.2f\t%.0f\t%.2f%%%s\t%s\n", b.From, b.To, b.FlowMW, b.RatingMW, b.LoadingPct, mark, radial)
	}
	tw.Flush()

	fmt.Fprintf(a.out, "\nSlack generation: %.2f MW\n", r.SlackMW)
	if len(r.Violations) > 0 {
		fmt.Fprintf(a.out, "OVERLOADED: %d branch(es) above %.0f%%\n", len(r.Violations), threshold)
	} else {
		fmt.Fprintf(a.out, "All branches within %.0f%% (max %.2f%%)\n", threshold, r.MaxLoading)
	}
}
