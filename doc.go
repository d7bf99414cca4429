// SPDX-License-Identifier: MIT

// Package gridload evaluates where a new load can be connected to a
// transmission network with the least impact on branch loading.
//
// The work is split over small packages, each usable on its own:
//
//	grid/           buses, branches, generators, per-scenario load vectors, IEEE 9-bus case
//	topology/       bus graph, islands, radial branches, electrical distance
//	matrix/         sparse susceptance matrix B, validators, slack reduction
//	dcflow/         DC power flow: factorise once, solve many load vectors
//	loading/        violations, loading changes, capacity and generator checks
//	placement/      candidate search (exhaustive or relaxed) on a worker pool
//	ranking/        scoring, deterministic ordering, recommendation
//	relax/          Nelder-Mead search over continuous candidate weights
//	commitment/     priority-list unit commitment over a daily profile
//	casefile/       YAML case files
//	config/         LOADPLACE_* environment settings
//	logger/         log/slog setup
//	cmd/loadplace   command-line front end
//
// A typical study:
//
//	net := grid.Case9()
//	solver, _ := dcflow.NewSolver(net)
//	ctl, _ := placement.New(net, solver)
//	res, _ := ctl.Search(ctx, placement.Request{
//	    Candidates: []int{4, 5, 6, 7, 8, 9},
//	    Load:       grid.Increment{MW: 50, MVAr: 20},
//	})
//	rk := ranking.DefaultPolicy().Rank(res.Evaluations)
//	fmt.Println(rk.Message)
//
// All flows are DC: lossless branches, flat voltage magnitudes, angles
// small enough that sin θ ≈ θ. Reactive power is carried through the
// scenario but does not enter the solution.
package gridload
