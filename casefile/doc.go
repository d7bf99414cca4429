// SPDX-License-Identifier: MIT

// Package casefile reads and writes networks as YAML case files.
//
// Fields are named rather than positional:
//
//	base_mva: 100
//	buses:
//	  - {id: 1, type: slack}
//	  - {id: 5, type: pq, pd_mw: 90, qd_mvar: 30}
//	branches:
//	  - {from: 1, to: 4, x: 0.0576, rating_mw: 250}
//	generators:
//	  - {bus: 1, pmax_mw: 250, pmin_mw: 10, cost_linear: 5.0}
//
// in_service defaults to true and base_mva to 100. Decoded cases go through
// grid.NewNetwork, so its validation errors surface unchanged.
package casefile
